// SPDX-License-Identifier: MIT

// Package view orchestrates the fetch-and-join pipeline for one account
// view: it drains the upstream list resources, enriches the rows, and keeps
// the latest snapshot cached for the HTTP surface.
package view

import (
	"bytes"
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/kazlabs/kzrec/internal/export"
	"github.com/kazlabs/kzrec/internal/kazoo"
	"github.com/kazlabs/kzrec/internal/log"
	"github.com/kazlabs/kzrec/internal/metrics"
	"github.com/kazlabs/kzrec/internal/pipeline"

	"github.com/google/renameio/v2"
)

const snapshotKey = "snapshot"

// Config holds the pipeline options of a Service.
type Config struct {
	WithCDRs    bool
	DateOrder   pipeline.DateOrder
	SnapshotTTL time.Duration
	ExportFile  string // optional on-refresh CSV dump, written atomically
}

// Client is the subset of the Crossbar client the view consumes.
type Client interface {
	ListRecordings(ctx context.Context) ([]kazoo.Recording, error)
	ListCDRs(ctx context.Context) ([]kazoo.CDR, error)
	ListDevices(ctx context.Context) ([]kazoo.Device, error)
	ListUsers(ctx context.Context) ([]kazoo.User, error)
}

// Service builds and caches snapshots.
type Service struct {
	client Client
	cfg    Config
	cache  *gocache.Cache
	group  singleflight.Group
}

// NewService creates a Service with a TTL cache for the latest snapshot.
func NewService(client Client, cfg Config) *Service {
	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{
		client: client,
		cfg:    cfg,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// Snapshot returns the cached snapshot, or refreshes it when missing or when
// force is set. Concurrent refreshes collapse into one fetch chain; the
// chain keeps running even if the triggering consumer goes away, and late
// consumers simply share its result.
func (s *Service) Snapshot(ctx context.Context, force bool) (*pipeline.Snapshot, error) {
	if !force {
		if v, ok := s.cache.Get(snapshotKey); ok {
			return v.(*pipeline.Snapshot), nil
		}
	}

	v, err, _ := s.group.Do(snapshotKey, func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*pipeline.Snapshot), nil
}

// refresh runs the full fetch-and-join chain. The recordings fetch is the
// primary chain: its failure yields an error and no rows. Reference fetches
// (devices, users, CDRs) are secondary: on failure the base collection is
// still rendered unenriched and the snapshot records which chain failed.
func (s *Service) refresh(ctx context.Context) (*pipeline.Snapshot, error) {
	started := time.Now()
	logger := log.WithComponentFromContext(ctx, "view")

	recordings, err := s.client.ListRecordings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("recordings fetch failed")
		return nil, err
	}

	var failed []string

	devices, err := s.client.ListDevices(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("device fetch failed, rendering rows without device names")
		failed = append(failed, kazoo.ResourceLabel(err))
		devices = nil
	}

	users, err := s.client.ListUsers(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("user fetch failed, rendering rows without owner names")
		failed = append(failed, kazoo.ResourceLabel(err))
		users = nil
	}

	var cdrs []kazoo.CDR
	if s.cfg.WithCDRs {
		cdrs, err = s.client.ListCDRs(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("cdr fetch failed, rendering rows without cdr fields")
			failed = append(failed, kazoo.ResourceLabel(err))
			cdrs = nil
		}
	}

	rows := pipeline.Enrich(recordings, devices, users, cdrs, s.cfg.DateOrder)
	snap := pipeline.BuildSnapshot(rows, time.Now(), failed)
	s.cache.Set(snapshotKey, snap, gocache.DefaultExpiration)
	metrics.ObserveRefreshDuration(time.Since(started))

	logger.Info().
		Int("rows", len(snap.Rows)).
		Int("users", len(snap.UserNames)).
		Int("devices", len(snap.DeviceNames)).
		Bool("partial", snap.Partial).
		Dur("elapsed", time.Since(started)).
		Msg("snapshot refreshed")

	if s.cfg.ExportFile != "" {
		s.dumpCSV(ctx, snap)
	}

	return snap, nil
}

// dumpCSV writes the full enriched collection to the configured path. The
// write is atomic so a concurrent reader never sees a torn file.
func (s *Service) dumpCSV(ctx context.Context, snap *pipeline.Snapshot) {
	logger := log.WithComponentFromContext(ctx, "view")

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, snap.Rows); err != nil {
		logger.Error().Err(err).Msg("csv encode failed")
		return
	}
	if err := renameio.WriteFile(s.cfg.ExportFile, buf.Bytes(), 0o644); err != nil {
		logger.Error().Err(err).Str("path", s.cfg.ExportFile).Msg("csv dump failed")
		return
	}
	logger.Debug().Str("path", s.cfg.ExportFile).Int("rows", len(snap.Rows)).Msg("csv dump written")
}
