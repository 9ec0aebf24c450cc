// SPDX-License-Identifier: MIT

package filter

import "time"

// Date-range preset keys. Unknown keys resolve like PresetAll.
const (
	PresetAll       = "all"
	PresetLastHour  = "last-hour"
	PresetLastDay   = "last-day"
	PresetLastWeek  = "last-week"
	PresetLastMonth = "last-month"
	PresetLastYear  = "last-year"
)

// Presets lists the preset keys in display order.
func Presets() []string {
	return []string{PresetAll, PresetLastHour, PresetLastDay, PresetLastWeek, PresetLastMonth, PresetLastYear}
}

// ResolvePreset maps a symbolic range key to a concrete [start, end] pair.
// end is always now. Calendar subtraction uses time.AddDate, which
// normalizes rollover (one month before March 31 lands in early March); the
// result is deterministic for any given now.
func ResolvePreset(key string, now time.Time) (start, end time.Time) {
	end = now
	switch key {
	case PresetLastYear:
		start = now.AddDate(-1, 0, 0)
	case PresetLastMonth:
		start = now.AddDate(0, -1, 0)
	case PresetLastWeek:
		start = now.AddDate(0, 0, -7)
	case PresetLastDay:
		start = now.AddDate(0, 0, -1)
	case PresetLastHour:
		start = now.Add(-time.Hour)
	default: // "all"
		start = time.Unix(0, 0)
	}
	return start, end
}

// ApplyPreset resolves key and writes the pair into the datetime controls.
// This is one of the two operations allowed to mutate control values.
func ApplyPreset(st *State, key string, now time.Time) {
	start, end := ResolvePreset(key, now)

	switch key {
	case PresetLastHour, PresetLastDay, PresetLastWeek, PresetLastMonth, PresetLastYear:
		st.Preset = key
	default:
		st.Preset = PresetAll
	}

	st.DateFrom = start.Format(st.DateOrder.Layout())
	st.TimeFrom = start.Format("15:04")
	st.DateTo = end.Format(st.DateOrder.Layout())
	st.TimeTo = end.Format("15:04")
}
