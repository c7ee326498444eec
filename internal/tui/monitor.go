package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/app"
	"github.com/MKhiriev/go-pos-offline/models"
)

// queueListLimit bounds the rows fetched per refresh.
const queueListLimit = 200

type monitorModel struct {
	ctx      context.Context
	client   adapter.ControlClient
	interval time.Duration

	status       models.GatewayStatus
	writes       []models.QueuedWrite
	idx          int
	unsyncedOnly bool

	loading bool
	syncing bool
	spinner spinner.Model

	lastReport *models.SyncReport
	notice     string
	errMsg     string
	detail     bool
}

func newMonitorModel(ctx context.Context, client adapter.ControlClient, interval time.Duration) monitorModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return monitorModel{
		ctx:      ctx,
		client:   client,
		interval: interval,
		spinner:  s,
		loading:  true,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.cmdRefresh(), m.spinner.Tick, m.cmdTick())
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.loading {
			return m, m.cmdTick()
		}
		m.loading = true
		return m, tea.Batch(m.cmdRefresh(), m.cmdTick())

	case refreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = describeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = msg.status
		m.writes = msg.writes
		if m.idx >= len(m.writes) {
			m.idx = max(len(m.writes)-1, 0)
		}
		return m, nil

	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.errMsg = describeError(msg.err)
			return m, nil
		}
		report := msg.report
		m.lastReport = &report
		m.notice = fmt.Sprintf("sync: %d synced, %d remaining", report.Synced, report.Remaining)
		m.loading = true
		return m, m.cmdRefresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m monitorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.quit) {
		return m, tea.Quit
	}

	if m.detail {
		if key.Matches(msg, keys.esc) || key.Matches(msg, keys.enter) {
			m.detail = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.esc):
		m.errMsg = ""
		m.notice = ""
	case key.Matches(msg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(msg, keys.down):
		if m.idx < len(m.writes)-1 {
			m.idx++
		}
	case key.Matches(msg, keys.enter):
		if _, ok := m.current(); ok {
			m.detail = true
		}
	case key.Matches(msg, keys.refresh):
		if !m.loading {
			m.loading = true
			return m, m.cmdRefresh()
		}
	case key.Matches(msg, keys.unsynced):
		m.unsyncedOnly = !m.unsyncedOnly
		m.idx = 0
		m.loading = true
		return m, m.cmdRefresh()
	case key.Matches(msg, keys.sync):
		if !m.syncing {
			m.syncing = true
			m.notice = ""
			return m, m.cmdSync()
		}
	}

	return m, nil
}

func (m monitorModel) current() (models.QueuedWrite, bool) {
	if len(m.writes) == 0 || m.idx < 0 || m.idx >= len(m.writes) {
		return models.QueuedWrite{}, false
	}
	return m.writes[m.idx], true
}

func (m monitorModel) cmdRefresh() tea.Cmd {
	ctx, client := m.ctx, m.client
	filter := models.QueueFilter{Limit: queueListLimit}
	if m.unsyncedOnly {
		unsynced := false
		filter.Synced = &unsynced
	}

	return func() tea.Msg {
		status, err := client.Status(ctx)
		if err != nil {
			return refreshedMsg{err: err}
		}
		writes, err := client.Queue(ctx, filter)
		return refreshedMsg{status: status, writes: writes, err: err}
	}
}

func (m monitorModel) cmdSync() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		report, err := client.TriggerSync(ctx)
		return syncDoneMsg{report: report, err: err}
	}
}

func (m monitorModel) cmdTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func describeError(err error) string {
	switch {
	case errors.Is(err, adapter.ErrNetworkUnavailable):
		return app.MsgGatewayUnreachable
	case errors.Is(err, adapter.ErrConflict):
		return app.MsgSyncInProgress
	default:
		return err.Error()
	}
}
