// SPDX-License-Identifier: MIT

package pipeline

import (
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kazlabs/kzrec/internal/metrics"
)

// Snapshot is the rendering-boundary payload: enriched rows plus the
// metadata the filter widgets are seeded with.
type Snapshot struct {
	Rows           []Row     `json:"rows"`
	UserNames      []string  `json:"userNames"`
	DeviceNames    []string  `json:"deviceNames"`
	MinDuration    int64     `json:"minDuration"`
	MaxDuration    int64     `json:"maxDuration"`
	MinDurationHMS string    `json:"minDurationFormatted"`
	MaxDurationHMS string    `json:"maxDurationFormatted"`
	FetchedAt      time.Time `json:"fetchedAt"`
	// FailedResources names the reference fetch chains that failed; the rows
	// were rendered unenriched for those joins. Partial mirrors it.
	FailedResources []string `json:"failedResources,omitempty"`
	Partial         bool     `json:"partial,omitempty"`
}

// BuildSnapshot derives the filter metadata from enriched rows. Names are
// deduplicated (empty derived names are not select options) and sorted with
// root-locale collation. failed names the reference chains whose fetch
// failed; the snapshot is marked partial when any did.
func BuildSnapshot(rows []Row, fetchedAt time.Time, failed []string) *Snapshot {
	userSet := map[string]struct{}{}
	deviceSet := map[string]struct{}{}
	for _, r := range rows {
		if r.OwnerName != "" {
			userSet[r.OwnerName] = struct{}{}
		}
		if r.DeviceName != "" {
			deviceSet[r.DeviceName] = struct{}{}
		}
	}

	coll := collate.New(language.Und)
	userNames := setToSorted(userSet, coll)
	deviceNames := setToSorted(deviceSet, coll)

	min, max := DurationBounds(rows)
	metrics.SetRowsEnriched(len(rows))

	return &Snapshot{
		Rows:            rows,
		UserNames:       userNames,
		DeviceNames:     deviceNames,
		MinDuration:     min,
		MaxDuration:     max,
		MinDurationHMS:  FormatHMS(min),
		MaxDurationHMS:  FormatHMS(max),
		FetchedAt:       fetchedAt,
		FailedResources: failed,
		Partial:         len(failed) > 0,
	}
}

func setToSorted(set map[string]struct{}, coll *collate.Collator) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	coll.SortStrings(out)
	return out
}
