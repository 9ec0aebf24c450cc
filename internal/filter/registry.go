// SPDX-License-Identifier: MIT

package filter

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kazlabs/kzrec/internal/metrics"
	"github.com/kazlabs/kzrec/internal/pipeline"
)

// Predicate decides whether a single row passes one filter control. A
// predicate reads the State and must never mutate the row.
type Predicate struct {
	Name   string
	Accept func(row *pipeline.Row, st *State) bool
}

// Registry holds the ordered predicate set for one view instance. A row is
// visible iff every predicate accepts it.
type Registry struct {
	preds []Predicate
}

// NewRegistry builds the standard predicate set: datetime range, direction,
// user name, device name, duration range.
func NewRegistry() *Registry {
	return &Registry{preds: []Predicate{
		{Name: "datetime", Accept: acceptDateTime},
		{Name: "direction", Accept: acceptDirection},
		{Name: "user", Accept: acceptUserName},
		{Name: "device", Accept: acceptDeviceName},
		{Name: "duration", Accept: acceptDuration},
	}}
}

// Predicates returns the predicate names in evaluation order.
func (r *Registry) Predicates() []string {
	names := make([]string, len(r.preds))
	for i, p := range r.preds {
		names[i] = p.Name
	}
	return names
}

// Visible reports whether every predicate accepts the row.
func (r *Registry) Visible(row *pipeline.Row, st *State) bool {
	for _, p := range r.preds {
		if !p.Accept(row, st) {
			return false
		}
	}
	return true
}

// Reevaluate recomputes the visible subset from scratch. Any single control
// change re-runs the full pass; row counts are bounded by one account's
// history, so correctness wins over incremental updates. Rows are never
// mutated, only selected.
func (r *Registry) Reevaluate(rows []pipeline.Row, st *State) []pipeline.Row {
	visible := make([]pipeline.Row, 0, len(rows))
	for i := range rows {
		if r.Visible(&rows[i], st) {
			visible = append(visible, rows[i])
		}
	}
	metrics.RecordReevaluation()
	metrics.SetVisibleRows(len(visible))
	return visible
}

// acceptDateTime combines the date and time controls into one instant per
// boundary and compares the row's display datetime inclusively. When either
// boundary fails to parse the predicate accepts every row: an unparseable
// date field must never hide all data.
func acceptDateTime(row *pipeline.Row, st *State) bool {
	from, okFrom := combineBoundary(st.DateFrom, st.TimeFrom, st.DateOrder)
	to, okTo := combineBoundary(st.DateTo, st.TimeTo, st.DateOrder)
	if !okFrom || !okTo {
		return true
	}

	datePart, timePart, found := strings.Cut(row.Datetime, " ")
	if !found {
		return false
	}
	ts, ok := combineBoundary(datePart, timePart, st.DateOrder)
	if !ok {
		return false
	}
	return !ts.Before(from) && !ts.After(to)
}

// combineBoundary parses a date string and a clock string ("15:04" or
// "15:04:05") into one local instant.
func combineBoundary(dateStr, timeStr string, order pipeline.DateOrder) (time.Time, bool) {
	day, err := time.ParseInLocation(order.Layout(), dateStr, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	clock, ok := parseClock(timeStr)
	if !ok {
		return time.Time{}, false
	}
	return day.Add(clock), true
}

func parseClock(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		switch i {
		case 0:
			total += time.Duration(n) * time.Hour
		case 1:
			total += time.Duration(n) * time.Minute
		case 2:
			total += time.Duration(n) * time.Second
		}
	}
	return total, true
}

func acceptDirection(row *pipeline.Row, st *State) bool {
	return st.Direction == "" || st.Direction == DirectionAll || st.Direction == row.Direction
}

// acceptUserName is a multi-select: an empty selection accepts all rows; a
// row without a derived owner name never matches a non-empty selection.
func acceptUserName(row *pipeline.Row, st *State) bool {
	return acceptName(row.OwnerName, st.UserNames)
}

func acceptDeviceName(row *pipeline.Row, st *State) bool {
	return acceptName(row.DeviceName, st.DeviceNames)
}

func acceptName(name string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	if name == "" {
		return false
	}
	return slices.Contains(selected, name)
}

// acceptDuration parses the displayed HH:MM:SS column back into seconds and
// checks inclusive membership in the slider selection.
func acceptDuration(row *pipeline.Row, st *State) bool {
	secs, err := pipeline.ParseHMS(row.DurationHMS)
	if err != nil {
		return false
	}
	return secs >= st.DurationLo && secs <= st.DurationHi
}
