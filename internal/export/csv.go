// SPDX-License-Identifier: MIT

// Package export renders the visible row subset as flat tabular CSV.
package export

import (
	"encoding/csv"
	"io"

	"github.com/kazlabs/kzrec/internal/pipeline"
)

// Header is the fixed CSV column order.
var Header = []string{"direction", "datetime", "owner_name", "device_name", "caller_number", "duration", "recording_id"}

// WriteCSV streams rows to w with a header line. Absent derived fields are
// written as empty cells.
func WriteCSV(w io.Writer, rows []pipeline.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Direction,
			r.Datetime,
			r.OwnerName,
			r.DeviceName,
			r.CallerNumber,
			r.DurationHMS,
			r.ID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
