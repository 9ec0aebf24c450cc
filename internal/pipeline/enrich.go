// SPDX-License-Identifier: MIT

// Package pipeline turns raw Crossbar list documents into enriched,
// display-ready recording rows and computes the filter-widget metadata
// derived from them.
package pipeline

import (
	"time"

	"github.com/kazlabs/kzrec/internal/kazoo"
	"github.com/kazlabs/kzrec/internal/metrics"
)

// Call directions as classified from the authorizing channel variable.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Row is one enriched recording. Derived name fields stay empty when the
// reference join found no match; that is a valid state, not an error.
type Row struct {
	ID           string    `json:"id"`
	Start        int64     `json:"start"` // gregorian epoch seconds, as delivered
	StartTime    time.Time `json:"-"`
	Datetime     string    `json:"datetime"`
	Duration     int64     `json:"duration"`
	DurationHMS  string    `json:"durationFormatted"`
	Direction    string    `json:"direction"`
	OwnerID      string    `json:"ownerId,omitempty"`
	OwnerName    string    `json:"ownerName,omitempty"`
	DeviceName   string    `json:"deviceName,omitempty"`
	CallID       string    `json:"callId,omitempty"`
	CallerNumber string    `json:"callerNumber,omitempty"`
	HangupCause  string    `json:"hangupCause,omitempty"`
}

// Enrich joins recordings against the device, user and (optional) CDR
// reference collections and derives the display fields. cdrs may be nil.
//
// Lookup policy is first-match-wins: when a reference collection carries
// duplicate identifiers, the first document in iteration order is the one
// that sticks. A recording with no channel variables, no authorizing id, or
// no matching reference document keeps the derived field empty.
func Enrich(recordings []kazoo.Recording, devices []kazoo.Device, users []kazoo.User, cdrs []kazoo.CDR, order DateOrder) []Row {
	deviceNames := make(map[string]string, len(devices))
	for _, d := range devices {
		if _, ok := deviceNames[d.ID]; !ok {
			deviceNames[d.ID] = d.Name
		}
	}
	userNames := make(map[string]string, len(users))
	for _, u := range users {
		if _, ok := userNames[u.ID]; !ok {
			userNames[u.ID] = u.FirstName + " " + u.LastName
		}
	}
	cdrByCallID := make(map[string]kazoo.CDR, len(cdrs))
	for _, cdr := range cdrs {
		if _, ok := cdrByCallID[cdr.CallID]; !ok && cdr.CallID != "" {
			cdrByCallID[cdr.CallID] = cdr
		}
	}

	rows := make([]Row, 0, len(recordings))
	for _, rec := range recordings {
		start := GregorianToTime(int64(rec.Start))
		row := Row{
			ID:           rec.ID,
			Start:        int64(rec.Start),
			StartTime:    start,
			Datetime:     FormatDateTime(start, order),
			Duration:     int64(rec.Duration),
			DurationHMS:  FormatHMS(int64(rec.Duration)),
			OwnerID:      rec.OwnerID,
			CallID:       rec.CallID,
			CallerNumber: rec.CallerIDNumber,
		}

		if rec.AuthorizingID() != "" {
			row.Direction = DirectionOutbound
		} else {
			row.Direction = DirectionInbound
		}

		if id := rec.AuthorizingID(); id != "" {
			if name, ok := deviceNames[id]; ok {
				row.DeviceName = name
			} else {
				metrics.RecordJoinMiss("device")
			}
		}
		if rec.OwnerID != "" {
			if name, ok := userNames[rec.OwnerID]; ok {
				row.OwnerName = name
			} else {
				metrics.RecordJoinMiss("user")
			}
		}
		if rec.CallID != "" && len(cdrByCallID) > 0 {
			if cdr, ok := cdrByCallID[rec.CallID]; ok {
				if row.CallerNumber == "" {
					row.CallerNumber = cdr.CallerIDNumber
				}
				row.HangupCause = cdr.HangupCause
			} else {
				metrics.RecordJoinMiss("cdr")
			}
		}

		rows = append(rows, row)
	}
	return rows
}
