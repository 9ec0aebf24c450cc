// SPDX-License-Identifier: MIT

package filter

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazlabs/kzrec/internal/pipeline"
)

func mkRow(id string, start time.Time, direction, owner, device string, durationSecs int64) pipeline.Row {
	return pipeline.Row{
		ID:          id,
		StartTime:   start,
		Datetime:    pipeline.FormatDateTime(start, pipeline.DateOrderMDY),
		Duration:    durationSecs,
		DurationHMS: pipeline.FormatHMS(durationSecs),
		Direction:   direction,
		OwnerName:   owner,
		DeviceName:  device,
	}
}

// openState returns a State that accepts every row: unparseable (empty)
// datetime boundaries fail open, direction sentinel, empty selections, full
// duration range.
func openState(maxDuration int64) State {
	return State{
		DateOrder:   pipeline.DateOrderMDY,
		Direction:   DirectionAll,
		MinDuration: 0,
		MaxDuration: maxDuration,
		DurationLo:  0,
		DurationHi:  maxDuration,
	}
}

func ids(rows []pipeline.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestVisibleIsConjunctionOfPredicates(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)
	row := mkRow("r1", base, pipeline.DirectionOutbound, "Alice Smith", "Desk A", 45)
	reg := NewRegistry()

	st := openState(300)
	require.True(t, reg.Visible(&row, &st))

	// Each control alone flips the row invisible; restoring it flips it back.
	flips := []func(st *State){
		func(st *State) {
			st.DateFrom = "03/11/2024"
			st.TimeFrom = "00:00"
			st.DateTo = "03/12/2024"
			st.TimeTo = "00:00"
		},
		func(st *State) { st.Direction = pipeline.DirectionInbound },
		func(st *State) { st.UserNames = []string{"Bob Crane"} },
		func(st *State) { st.DeviceNames = []string{"Desk B"} },
		func(st *State) { st.DurationLo = 100; st.DurationHi = 300 },
	}
	for i, flip := range flips {
		st := openState(300)
		flip(&st)
		assert.False(t, reg.Visible(&row, &st), "control %d should hide the row", i)
	}
}

func TestDateTimePredicateFailOpen(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)
	rows := []pipeline.Row{
		mkRow("r1", base, pipeline.DirectionInbound, "", "", 10),
		mkRow("r2", base.AddDate(0, 0, 5), pipeline.DirectionInbound, "", "", 10),
	}
	reg := NewRegistry()

	// An unparseable "from" date must not hide all data, regardless of the
	// rows' timestamps and a perfectly valid "to" boundary.
	st := openState(100)
	st.DateFrom = "not-a-date"
	st.TimeFrom = "10:00"
	st.DateTo = "03/11/2024"
	st.TimeTo = "10:00"

	assert.Equal(t, []string{"r1", "r2"}, ids(reg.Reevaluate(rows, &st)))

	// Same for a garbled time control.
	st = openState(100)
	st.DateFrom = "03/01/2024"
	st.TimeFrom = "noon"
	st.DateTo = "03/11/2024"
	st.TimeTo = "10:00"

	assert.Equal(t, []string{"r1", "r2"}, ids(reg.Reevaluate(rows, &st)))
}

func TestDateTimePredicateInclusiveRange(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	rows := []pipeline.Row{
		mkRow("before", day.Add(9*time.Hour+59*time.Minute+59*time.Second), "inbound", "", "", 10),
		mkRow("at-from", day.Add(10*time.Hour), "inbound", "", "", 10),
		mkRow("inside", day.Add(10*time.Hour+30*time.Minute), "inbound", "", "", 10),
		mkRow("at-to", day.Add(11*time.Hour), "inbound", "", "", 10),
		mkRow("after", day.Add(11*time.Hour+30*time.Minute), "inbound", "", "", 10),
	}

	st := openState(100)
	st.DateFrom = "03/10/2024"
	st.TimeFrom = "10:00"
	st.DateTo = "03/10/2024"
	st.TimeTo = "11:00"

	got := ids(NewRegistry().Reevaluate(rows, &st))
	assert.Equal(t, []string{"at-from", "inside", "at-to"}, got)
}

func TestDirectionPredicate(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)
	rows := []pipeline.Row{
		mkRow("in", base, pipeline.DirectionInbound, "", "", 10),
		mkRow("out", base, pipeline.DirectionOutbound, "", "", 10),
	}
	reg := NewRegistry()

	st := openState(100)
	assert.Len(t, reg.Reevaluate(rows, &st), 2, "sentinel accepts all")

	st.Direction = pipeline.DirectionOutbound
	assert.Equal(t, []string{"out"}, ids(reg.Reevaluate(rows, &st)))
}

func TestNamePredicates(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)
	rows := []pipeline.Row{
		mkRow("r1", base, "inbound", "Alice Smith", "Desk A", 10),
		mkRow("r2", base, "inbound", "Bob Crane", "Desk B", 10),
		mkRow("r3", base, "inbound", "", "", 10), // join missed
	}
	reg := NewRegistry()

	st := openState(100)
	assert.Len(t, reg.Reevaluate(rows, &st), 3, "empty selections accept all, including absent names")

	st.UserNames = []string{"Alice Smith", "Bob Crane"}
	assert.Equal(t, []string{"r1", "r2"}, ids(reg.Reevaluate(rows, &st)), "absent name never matches a non-empty selection")

	st.UserNames = nil
	st.DeviceNames = []string{"Desk B"}
	assert.Equal(t, []string{"r2"}, ids(reg.Reevaluate(rows, &st)))
}

func TestDurationPredicateInclusive(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)
	rows := []pipeline.Row{
		mkRow("r10", base, "inbound", "", "", 10),
		mkRow("r45", base, "inbound", "", "", 45),
		mkRow("r100", base, "inbound", "", "", 100),
		mkRow("r101", base, "inbound", "", "", 101),
	}

	st := openState(300)
	st.DurationLo = 10
	st.DurationHi = 100

	got := ids(NewRegistry().Reevaluate(rows, &st))
	assert.Equal(t, []string{"r10", "r45", "r100"}, got)
}

func TestEndToEndScenario(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)
	rows := []pipeline.Row{
		mkRow("R1", base, pipeline.DirectionOutbound, "Alice", "A", 45),
		mkRow("R2", base.Add(time.Hour), pipeline.DirectionInbound, "Bob", "B", 10),
		mkRow("R3", base.Add(2*time.Hour), pipeline.DirectionOutbound, "Alice", "A", 200),
	}
	reg := NewRegistry()

	st := openState(300)
	st.Direction = pipeline.DirectionOutbound
	assert.Equal(t, []string{"R1", "R3"}, ids(reg.Reevaluate(rows, &st)))

	st.DurationLo = 0
	st.DurationHi = 100
	assert.Equal(t, []string{"R1"}, ids(reg.Reevaluate(rows, &st)))
}

func TestReevaluateDoesNotMutateRows(t *testing.T) {
	base := time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)
	rows := []pipeline.Row{
		mkRow("r1", base, pipeline.DirectionOutbound, "Alice", "A", 45),
		mkRow("r2", base, pipeline.DirectionInbound, "Bob", "B", 10),
	}
	before := append([]pipeline.Row(nil), rows...)

	st := openState(100)
	st.Direction = pipeline.DirectionOutbound
	_ = NewRegistry().Reevaluate(rows, &st)

	if diff := cmp.Diff(before, rows, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("rows mutated by reevaluation (-want +got):\n%s", diff)
	}
}

func TestNewStateAndReset(t *testing.T) {
	snap := &pipeline.Snapshot{MinDuration: 5, MaxDuration: 120}
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)

	st := NewState(snap, pipeline.DateOrderMDY, PresetLastWeek, now)
	assert.Equal(t, PresetLastWeek, st.Preset)
	assert.Equal(t, "03/03/2024", st.DateFrom)
	assert.Equal(t, DirectionAll, st.Direction)
	assert.Equal(t, int64(5), st.DurationLo)
	assert.Equal(t, int64(120), st.DurationHi)

	// Narrow everything, then reset back to defaults.
	st.Direction = pipeline.DirectionInbound
	st.UserNames = []string{"Alice"}
	st.DeviceNames = []string{"Desk A"}
	st.DurationLo = 50
	st.DurationHi = 60

	Reset(&st, PresetAll, now)
	assert.Equal(t, PresetAll, st.Preset)
	assert.Equal(t, DirectionAll, st.Direction)
	assert.Nil(t, st.UserNames)
	assert.Nil(t, st.DeviceNames)
	assert.Equal(t, int64(5), st.DurationLo)
	assert.Equal(t, int64(120), st.DurationHi)
}

func TestClampDurations(t *testing.T) {
	st := State{MinDuration: 10, MaxDuration: 100, DurationLo: 0, DurationHi: 500}
	st.ClampDurations()
	assert.Equal(t, int64(10), st.DurationLo)
	assert.Equal(t, int64(100), st.DurationHi)

	st = State{MinDuration: 10, MaxDuration: 100, DurationLo: 80, DurationHi: 20}
	st.ClampDurations()
	assert.Equal(t, int64(20), st.DurationLo)
	assert.Equal(t, int64(80), st.DurationHi)
}
