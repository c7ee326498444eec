// Package tui implements offlinectl's live monitor: a bubbletea program
// polling a running gateway for connectivity, cache generation and the
// write queue, with a key to trigger a sync pass.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
)

const defaultRefreshInterval = 2 * time.Second

type TUI struct {
	client   adapter.ControlClient
	interval time.Duration
	logger   *logger.Logger
}

// New builds the monitor. A non-positive interval polls every two seconds.
func New(client adapter.ControlClient, interval time.Duration, logger *logger.Logger) (*TUI, error) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &TUI{client: client, interval: interval, logger: logger}, nil
}

// Run blocks until the operator quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	model := newMonitorModel(ctx, t.client, t.interval)
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		t.logger.Err(err).Msg("monitor stopped")
		return err
	}
	return nil
}
