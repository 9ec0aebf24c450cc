// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kazoo stores instants as gregorian epoch seconds, offset from the Unix
// epoch by the seconds between year 1 and 1970.
const gregorianEpochOffset = 62167219200

// GregorianToTime converts gregorian epoch seconds to a local time.Time.
func GregorianToTime(g int64) time.Time {
	return time.Unix(g-gregorianEpochOffset, 0)
}

// TimeToGregorian converts a time.Time to gregorian epoch seconds.
func TimeToGregorian(t time.Time) int64 {
	return t.Unix() + gregorianEpochOffset
}

// DateOrder selects the date component order of display datetime strings,
// mirroring the per-user date format of the hosting UI.
type DateOrder string

const (
	DateOrderMDY DateOrder = "mdy"
	DateOrderDMY DateOrder = "dmy"
	DateOrderYMD DateOrder = "ymd"
)

// Layout returns the time.Parse layout for the date component.
func (o DateOrder) Layout() string {
	switch o {
	case DateOrderDMY:
		return "02/01/2006"
	case DateOrderYMD:
		return "2006/01/02"
	default:
		return "01/02/2006"
	}
}

// TimeLayout is the time component of display datetime strings.
const TimeLayout = "15:04:05"

// FormatDateTime renders the display datetime string: date component per the
// configured order, one space, 24h time. The filter layer re-parses this
// exact shape.
func FormatDateTime(t time.Time, o DateOrder) string {
	return t.Format(o.Layout() + " " + TimeLayout)
}

// FormatHMS renders a duration in seconds as HH:MM:SS. Hours do not wrap at
// 24.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ParseHMS converts an HH:MM:SS string back to seconds.
func ParseHMS(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("duration %q: want HH:MM:SS", s)
	}
	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("duration %q: bad component %q", s, p)
		}
		total = total*60 + n
	}
	return total, nil
}
