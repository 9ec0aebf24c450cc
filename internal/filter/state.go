// SPDX-License-Identifier: MIT

// Package filter implements the stateful table-filter engine: an explicit
// FilterState value holding every control's current input, a registry of
// independent predicates AND-composed over it, and the date-range preset
// resolver that seeds the datetime controls.
package filter

import (
	"time"

	"github.com/kazlabs/kzrec/internal/pipeline"
)

// DirectionAll is the direction selector sentinel accepting every row.
const DirectionAll = "all"

// State holds the current values of every filter control. It is owned and
// mutated by the UI layer; the predicates only read it. The exceptions are
// ApplyPreset and Reset, which are the documented control-mutating
// operations.
type State struct {
	DateOrder pipeline.DateOrder

	Preset   string
	DateFrom string // date component, formatted per DateOrder
	DateTo   string
	TimeFrom string // "15:04" or "15:04:05"
	TimeTo   string

	Direction   string // "all", "inbound" or "outbound"
	UserNames   []string
	DeviceNames []string

	// Global duration bounds from DurationBounds, and the slider's current
	// selection. Invariant: MinDuration <= DurationLo <= DurationHi <=
	// MaxDuration, maintained by ClampDurations.
	MinDuration int64
	MaxDuration int64
	DurationLo  int64
	DurationHi  int64
}

// NewState seeds a State from snapshot metadata: default preset applied to
// the datetime controls, direction on the accept-all sentinel, empty name
// selections, duration slider at its full bounds.
func NewState(snap *pipeline.Snapshot, order pipeline.DateOrder, defaultPreset string, now time.Time) State {
	st := State{
		DateOrder:   order,
		Direction:   DirectionAll,
		MinDuration: snap.MinDuration,
		MaxDuration: snap.MaxDuration,
		DurationLo:  snap.MinDuration,
		DurationHi:  snap.MaxDuration,
	}
	ApplyPreset(&st, defaultPreset, now)
	return st
}

// ClampDurations restores the duration-selection invariant after arbitrary
// control input.
func (st *State) ClampDurations() {
	if st.DurationLo < st.MinDuration {
		st.DurationLo = st.MinDuration
	}
	if st.DurationHi > st.MaxDuration {
		st.DurationHi = st.MaxDuration
	}
	if st.DurationLo > st.DurationHi {
		st.DurationLo, st.DurationHi = st.DurationHi, st.DurationLo
	}
}

// Reset restores every control to its default: default preset on the
// datetime controls, direction sentinel, cleared name selections, duration
// slider back to its full bounds.
func Reset(st *State, defaultPreset string, now time.Time) {
	ApplyPreset(st, defaultPreset, now)
	st.Direction = DirectionAll
	st.UserNames = nil
	st.DeviceNames = nil
	st.DurationLo = st.MinDuration
	st.DurationHi = st.MaxDuration
}
