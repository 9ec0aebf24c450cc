// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kazlabs/kzrec/internal/export"
	"github.com/kazlabs/kzrec/internal/filter"
	"github.com/kazlabs/kzrec/internal/kazoo"
	"github.com/kazlabs/kzrec/internal/log"
	"github.com/kazlabs/kzrec/internal/pipeline"
)

// recordingsResponse is the table payload handed to the rendering layer.
type recordingsResponse struct {
	Rows            []pipeline.Row `json:"rows"`
	Total           int            `json:"total"`
	Visible         int            `json:"visible"`
	FetchedAt       time.Time      `json:"fetchedAt"`
	Partial         bool           `json:"partial,omitempty"`
	FailedResources []string       `json:"failedResources,omitempty"`
}

type filtersResponse struct {
	UserNames     []string       `json:"userNames"`
	DeviceNames   []string       `json:"deviceNames"`
	Duration      durationBounds `json:"duration"`
	Presets       []string       `json:"presets"`
	DefaultPreset string         `json:"defaultPreset"`
	Predicates    []string       `json:"predicates"`
}

type durationBounds struct {
	Min    int64  `json:"min"`
	MinHMS string `json:"minFormatted"`
	Max    int64  `json:"max"`
	MaxHMS string `json:"maxFormatted"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Resource string `json:"resource,omitempty"`
	Message  string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecordings implements GET /api/v1/recordings: the enriched row set
// with the current filter parameters applied.
func (s *Server) handleRecordings(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context(), false)
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}

	st := s.stateFromQuery(snap, r.URL.Query())
	visible := filter.NewRegistry().Reevaluate(snap.Rows, &st)

	writeJSON(w, r, http.StatusOK, recordingsResponse{
		Rows:            visible,
		Total:           len(snap.Rows),
		Visible:         len(visible),
		FetchedAt:       snap.FetchedAt,
		Partial:         snap.Partial,
		FailedResources: snap.FailedResources,
	})
}

// handleExport implements GET /api/v1/recordings/export: the visible subset
// as CSV, same filter parameters as the table endpoint.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context(), false)
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}

	st := s.stateFromQuery(snap, r.URL.Query())
	visible := filter.NewRegistry().Reevaluate(snap.Rows, &st)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="recordings.csv"`)
	if err := export.WriteCSV(w, visible); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("csv export failed")
	}
}

// handleFilters implements GET /api/v1/filters: the metadata the filter
// widgets are seeded with.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context(), false)
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, filtersResponse{
		UserNames:   snap.UserNames,
		DeviceNames: snap.DeviceNames,
		Duration: durationBounds{
			Min:    snap.MinDuration,
			MinHMS: snap.MinDurationHMS,
			Max:    snap.MaxDuration,
			MaxHMS: snap.MaxDurationHMS,
		},
		Presets:       filter.Presets(),
		DefaultPreset: s.cfg.DefaultPreset,
		Predicates:    filter.NewRegistry().Predicates(),
	})
}

// handleRefresh implements POST /api/v1/refresh: forces a new fetch chain.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context(), true)
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"rows":      len(snap.Rows),
		"fetchedAt": snap.FetchedAt,
		"partial":   snap.Partial,
	})
}

// stateFromQuery seeds a FilterState with the snapshot defaults, then
// overlays the explicit query parameters. Absent parameters keep the
// defaults; the duration selection is clamped back into its bounds.
func (s *Server) stateFromQuery(snap *pipeline.Snapshot, q url.Values) filter.State {
	preset := q.Get("preset")
	if preset == "" {
		preset = s.cfg.DefaultPreset
	}
	st := filter.NewState(snap, s.cfg.DateOrder, preset, time.Now())

	if v := q.Get("date_from"); v != "" {
		st.DateFrom = v
	}
	if v := q.Get("date_to"); v != "" {
		st.DateTo = v
	}
	if v := q.Get("time_from"); v != "" {
		st.TimeFrom = v
	}
	if v := q.Get("time_to"); v != "" {
		st.TimeTo = v
	}
	if v := q.Get("direction"); v != "" {
		st.Direction = v
	}
	if users, ok := q["user"]; ok {
		st.UserNames = users
	}
	if devices, ok := q["device"]; ok {
		st.DeviceNames = devices
	}
	if v := q.Get("duration_min"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			st.DurationLo = n
		}
	}
	if v := q.Get("duration_max"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			st.DurationHi = n
		}
	}
	st.ClampDurations()
	return st
}

// writeFetchError renders the single operator-facing alert naming the failed
// subsystem.
func (s *Server) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	resource := kazoo.ResourceLabel(err)
	msg := "An error occurred while requesting data."
	if resource != "" {
		msg = fmt.Sprintf("An error occurred while requesting %s data.", resource)
	}
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Error().
		Err(err).
		Str("resource", resource).
		Msg("fetch chain failed")
	writeJSON(w, r, http.StatusBadGateway, errorResponse{
		Error:    "fetch_failed",
		Resource: resource,
		Message:  msg,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
