// SPDX-License-Identifier: MIT

package view

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazlabs/kzrec/internal/kazoo"
	"github.com/kazlabs/kzrec/internal/pipeline"
)

type fakeClient struct {
	recordings []kazoo.Recording
	devices    []kazoo.Device
	users      []kazoo.User
	cdrs       []kazoo.CDR

	recordingsErr error
	devicesErr    error
	usersErr      error
	cdrsErr       error

	refreshes atomic.Int64
}

func (f *fakeClient) ListRecordings(ctx context.Context) ([]kazoo.Recording, error) {
	f.refreshes.Add(1)
	return f.recordings, f.recordingsErr
}

func (f *fakeClient) ListDevices(ctx context.Context) ([]kazoo.Device, error) {
	return f.devices, f.devicesErr
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]kazoo.User, error) {
	return f.users, f.usersErr
}

func (f *fakeClient) ListCDRs(ctx context.Context) ([]kazoo.CDR, error) {
	return f.cdrs, f.cdrsErr
}

func testClient() *fakeClient {
	return &fakeClient{
		recordings: []kazoo.Recording{
			{
				ID:                "rec-1",
				Start:             62167219200 + 1700000000,
				Duration:          45,
				OwnerID:           "user-1",
				CustomChannelVars: map[string]string{"Authorizing-ID": "dev-1"},
			},
			{ID: "rec-2", Start: 62167219200 + 1700003600, Duration: 10},
		},
		devices: []kazoo.Device{{ID: "dev-1", Name: "Desk A"}},
		users:   []kazoo.User{{ID: "user-1", FirstName: "Alice", LastName: "Smith"}},
	}
}

func TestSnapshotEnrichesRows(t *testing.T) {
	client := testClient()
	svc := NewService(client, Config{DateOrder: pipeline.DateOrderMDY})

	snap, err := svc.Snapshot(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, snap.Rows, 2)

	assert.Equal(t, "Alice Smith", snap.Rows[0].OwnerName)
	assert.Equal(t, "Desk A", snap.Rows[0].DeviceName)
	assert.Equal(t, pipeline.DirectionOutbound, snap.Rows[0].Direction)
	assert.Equal(t, pipeline.DirectionInbound, snap.Rows[1].Direction)
	assert.False(t, snap.Partial)
	assert.Equal(t, []string{"Alice Smith"}, snap.UserNames)
	assert.Equal(t, []string{"Desk A"}, snap.DeviceNames)
}

func TestSnapshotCachedUntilForced(t *testing.T) {
	client := testClient()
	svc := NewService(client, Config{DateOrder: pipeline.DateOrderMDY, SnapshotTTL: time.Hour})

	first, err := svc.Snapshot(context.Background(), false)
	require.NoError(t, err)
	second, err := svc.Snapshot(context.Background(), false)
	require.NoError(t, err)

	assert.Same(t, first, second, "second read must come from cache")
	assert.Equal(t, int64(1), client.refreshes.Load())

	third, err := svc.Snapshot(context.Background(), true)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int64(2), client.refreshes.Load())
}

func TestSnapshotPrimaryFetchFailureIsFatal(t *testing.T) {
	client := testClient()
	client.recordingsErr = &kazoo.FetchError{Resource: "Recordings", Err: kazoo.ErrUpstreamError}
	svc := NewService(client, Config{DateOrder: pipeline.DateOrderMDY})

	snap, err := svc.Snapshot(context.Background(), false)
	assert.Nil(t, snap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, kazoo.ErrUpstreamError))
	assert.Equal(t, "Recordings", kazoo.ResourceLabel(err))
}

func TestSnapshotReferenceFailureRendersUnenriched(t *testing.T) {
	client := testClient()
	client.devicesErr = &kazoo.FetchError{Resource: "Device", Err: kazoo.ErrTimeout}
	svc := NewService(client, Config{DateOrder: pipeline.DateOrderMDY})

	snap, err := svc.Snapshot(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, snap.Rows, 2)

	// Rows still render; only the device join is missing.
	assert.Empty(t, snap.Rows[0].DeviceName)
	assert.Equal(t, "Alice Smith", snap.Rows[0].OwnerName)
	assert.True(t, snap.Partial)
	assert.Equal(t, []string{"Device"}, snap.FailedResources)
}

func TestSnapshotCDRsOnlyWhenEnabled(t *testing.T) {
	client := testClient()
	client.cdrs = []kazoo.CDR{{ID: "cdr-1", CallID: "call-1", HangupCause: "NORMAL_CLEARING"}}
	client.recordings[0].CallID = "call-1"

	svc := NewService(client, Config{DateOrder: pipeline.DateOrderMDY})
	snap, err := svc.Snapshot(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, snap.Rows[0].HangupCause, "cdr join disabled by default")

	svc = NewService(client, Config{DateOrder: pipeline.DateOrderMDY, WithCDRs: true})
	snap, err = svc.Snapshot(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "NORMAL_CLEARING", snap.Rows[0].HangupCause)
}

func TestRefreshWritesExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recordings.csv")
	svc := NewService(testClient(), Config{DateOrder: pipeline.DateOrderMDY, ExportFile: path})

	_, err := svc.Snapshot(context.Background(), false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus both rows")
	assert.Equal(t, "rec-1", records[1][6])
}
