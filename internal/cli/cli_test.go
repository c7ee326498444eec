package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/app"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/mock"
	"github.com/MKhiriev/go-pos-offline/models"
)

func init() {
	color.NoColor = true
}

// run executes offlinectl with args against client and returns stdout.
func run(t *testing.T, client adapter.ControlClient, args ...string) (string, error) {
	t.Helper()

	var gotAddress string
	factory := func(address string, timeout time.Duration) (adapter.ControlClient, error) {
		gotAddress = address
		return client, nil
	}

	root := NewRootCmd(models.NewAppBuildInfo("1.2.3", "2026-10-01", "abc123"), factory, logger.Nop())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--gateway", "http://gw.test:8090"}, args...))

	err := root.ExecuteContext(context.Background())
	if err == nil && client != nil && len(args) > 0 && args[0] != "version" {
		assert.Equal(t, "http://gw.test:8090", gotAddress)
	}
	return out.String(), err
}

func TestRootCmd_Structure(t *testing.T) {
	root := NewRootCmd(models.AppBuildInfo{}, nil, logger.Nop())

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
		assert.NotEmpty(t, sub.Short, "%s needs a short description", sub.Name())
	}
	for _, want := range []string{"status", "queue", "sync", "install", "activate", "monitor", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_EnvDefaults(t *testing.T) {
	t.Setenv("OFFLINECTL_GATEWAY", "http://till-7:8090")
	t.Setenv("OFFLINECTL_TIMEOUT", "3s")

	root := NewRootCmd(models.AppBuildInfo{}, nil, logger.Nop())

	gateway, err := root.PersistentFlags().GetString("gateway")
	require.NoError(t, err)
	assert.Equal(t, "http://till-7:8090", gateway)

	timeout, err := root.PersistentFlags().GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, timeout)
}

func TestStatusCmd(t *testing.T) {
	oldest := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	status := models.GatewayStatus{
		Online:           false,
		ActiveGeneration: 2,
		Partitions:       []string{"api-v2", "static-v2"},
		Queue:            models.QueueStats{Total: 5, Unsynced: 2, Oldest: &oldest},
		Sync: models.SyncState{LastReport: &models.SyncReport{
			Attempted: 2, Synced: 1, Remaining: 2, StoppedAt: 4, Error: "server rejected request",
		}},
		Version: "1.2.3",
	}

	t.Run("text", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().Status(gomock.Any()).Return(status, nil)

		out, err := run(t, client, "status")
		require.NoError(t, err)

		assert.Contains(t, out, "OFFLINE")
		assert.Contains(t, out, app.MsgUpstreamOffline)
		assert.Contains(t, out, "Generation:  2")
		assert.Contains(t, out, "api-v2, static-v2")
		assert.Contains(t, out, "5 total, 2 unsynced")
		assert.Contains(t, out, "stopped at #4: server rejected request")
	})

	t.Run("json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().Status(gomock.Any()).Return(status, nil)

		out, err := run(t, client, "status", "-o", "json")
		require.NoError(t, err)

		var got models.GatewayStatus
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, int64(2), got.ActiveGeneration)
		assert.Equal(t, int64(2), got.Queue.Unsynced)
	})

	t.Run("yaml", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().Status(gomock.Any()).Return(status, nil)

		out, err := run(t, client, "status", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "active_generation: 2")
		assert.Contains(t, out, "online: false")
	})

	t.Run("unknown output", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().Status(gomock.Any()).Return(status, nil)

		_, err := run(t, client, "status", "-o", "xml")
		require.ErrorIs(t, err, errUnknownOutput)
	})

	t.Run("gateway down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().Status(gomock.Any()).Return(models.GatewayStatus{}, fmt.Errorf("status request: %w", adapter.ErrNetworkUnavailable))

		_, err := run(t, client, "status")
		require.ErrorIs(t, err, adapter.ErrNetworkUnavailable)
		assert.Contains(t, err.Error(), app.MsgGatewayUnreachable)
	})
}

func TestQueueCmd(t *testing.T) {
	created := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	writes := []models.QueuedWrite{
		{ID: 1, Kind: models.WriteKindTransaction, Method: "POST", Path: "/api/v1/pos/transactions", CreatedAt: created, Synced: true},
		{ID: 2, Kind: models.WriteKindTransaction, Method: "POST", Path: "/api/v1/pos/transactions", CreatedAt: created, Attempts: 1, LastError: "http 500"},
		{ID: 3, Kind: models.WriteKindReceipt, Method: "POST", Path: "/api/v1/pos/receipts", CreatedAt: created},
	}
	unsynced := false
	synced := true

	tests := []struct {
		name   string
		args   []string
		filter models.QueueFilter
	}{
		{name: "all", args: nil, filter: models.QueueFilter{}},
		{name: "unsynced", args: []string{"--unsynced"}, filter: models.QueueFilter{Synced: &unsynced}},
		{name: "synced", args: []string{"--synced"}, filter: models.QueueFilter{Synced: &synced}},
		{name: "kind and limit", args: []string{"-k", "receipt", "-n", "5"}, filter: models.QueueFilter{Kind: models.WriteKindReceipt, Limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock.NewMockControlClient(ctrl)
			client.EXPECT().Queue(gomock.Any(), tt.filter).Return(writes, nil)

			out, err := run(t, client, append([]string{"queue"}, tt.args...)...)
			require.NoError(t, err)

			assert.Contains(t, out, "ID")
			assert.Contains(t, out, "synced")
			assert.Contains(t, out, "failing: http 500")
			assert.Contains(t, out, "pending")
			assert.Contains(t, out, "POST /api/v1/pos/receipts")
		})
	}
}

func TestQueueCmd_Validation(t *testing.T) {
	_, err := run(t, nil, "queue", "--kind", "refund")
	require.ErrorIs(t, err, errInvalidKind)

	_, err = run(t, nil, "queue", "--synced", "--unsynced")
	require.Error(t, err)
}

func TestQueueCmd_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewMockControlClient(ctrl)
	client.EXPECT().Queue(gomock.Any(), gomock.Any()).Return(nil, nil)

	out, err := run(t, client, "queue")
	require.NoError(t, err)
	assert.Equal(t, "Queue is empty\n", out)
}

func TestSyncCmd(t *testing.T) {
	t.Run("report", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().TriggerSync(gomock.Any()).Return(models.SyncReport{Attempted: 3, Synced: 3}, nil)

		out, err := run(t, client, "sync")
		require.NoError(t, err)
		assert.Equal(t, "Sync pass: 3 attempted, 3 synced, 0 remaining\n", out)
	})

	t.Run("already running", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().TriggerSync(gomock.Any()).Return(models.SyncReport{}, fmt.Errorf("sync: %w", adapter.ErrConflict))

		_, err := run(t, client, "sync")
		require.Error(t, err)
		assert.Equal(t, app.MsgSyncInProgress, err.Error())
	})
}

func TestLifecycleCmds(t *testing.T) {
	generation := models.Generation{Generation: 4, ManifestHash: "0123456789abcdef0123", Status: models.GenerationInstalled}

	t.Run("install", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().Install(gomock.Any()).Return(generation, nil)

		out, err := run(t, client, "install")
		require.NoError(t, err)
		assert.Equal(t, "Generation 4 installed (manifest 0123456789ab)\n", out)
	})

	t.Run("activate", func(t *testing.T) {
		active := generation
		active.Status = models.GenerationActive

		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().Activate(gomock.Any()).Return(active, nil)

		out, err := run(t, client, "activate")
		require.NoError(t, err)
		assert.Contains(t, out, "Generation 4 active")
	})

	t.Run("activate without install", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock.NewMockControlClient(ctrl)
		client.EXPECT().Activate(gomock.Any()).Return(models.Generation{}, fmt.Errorf("activate: %w", adapter.ErrConflict))

		_, err := run(t, client, "activate")
		require.ErrorIs(t, err, adapter.ErrConflict)
	})
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version: 1.2.3")
	assert.Contains(t, out, "Build commit: abc123")
}

func TestClientFactoryError(t *testing.T) {
	errBad := errors.New("bad address")
	root := NewRootCmd(models.AppBuildInfo{}, func(string, time.Duration) (adapter.ControlClient, error) {
		return nil, errBad
	}, logger.Nop())
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"status"})

	require.ErrorIs(t, root.Execute(), errBad)
}
