package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-pos-offline/internal/app"
	"github.com/MKhiriev/go-pos-offline/models"
)

const (
	monitorHotKeys = "↑/↓ select  enter details  s sync  r refresh  u unsynced only  q quit"
	detailHotKeys  = "esc back  q quit"
)

func (m monitorModel) View() string {
	if m.detail {
		if w, ok := m.current(); ok {
			return appStyle.Render(renderWriteDetail(w))
		}
	}

	var b strings.Builder

	b.WriteString(m.renderSummary())
	b.WriteString("\n")
	b.WriteString(m.renderQueue())

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.notice)
		b.WriteString("\n")
	}

	title := titleStyle.Render("POS offline gateway") + "  " + m.connectivityBadge()
	if m.loading || m.syncing {
		title += "  " + m.spinner.View()
	}

	page := renderPage(title, b.String(), monitorHotKeys)
	if m.errMsg != "" {
		page += "\n" + overlayBoxStyle.Render(errorStyle.Render("Error")+"\n\n"+m.errMsg+"\n\nesc dismiss")
	}

	return appStyle.Render(page)
}

func (m monitorModel) connectivityBadge() string {
	if m.status.Online {
		return onlineStyle.Render("ONLINE")
	}
	return offlineStyle.Render("OFFLINE")
}

func (m monitorModel) renderSummary() string {
	var b strings.Builder

	if m.status.Online {
		b.WriteString(app.MsgUpstreamOnline)
	} else {
		b.WriteString(app.MsgUpstreamOffline)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Version:     %s\n", valueOrDash(m.status.Version))
	fmt.Fprintf(&b, "Generation:  %d (%s)\n", m.status.ActiveGeneration, valueOrDash(strings.Join(m.status.Partitions, ", ")))
	fmt.Fprintf(&b, "Queue:       %d total, %d unsynced, oldest %s\n",
		m.status.Queue.Total, m.status.Queue.Unsynced, timeOrDash(m.status.Queue.Oldest))

	report := m.status.Sync.LastReport
	if m.lastReport != nil {
		report = m.lastReport
	}
	switch {
	case m.status.Sync.Running || m.syncing:
		b.WriteString("Last sync:   running\n")
	case report == nil:
		b.WriteString("Last sync:   -\n")
	default:
		fmt.Fprintf(&b, "Last sync:   %d synced, %d remaining", report.Synced, report.Remaining)
		if report.StoppedAt != 0 {
			fmt.Fprintf(&b, ", stopped at #%d", report.StoppedAt)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m monitorModel) renderQueue() string {
	if len(m.writes) == 0 {
		if m.loading {
			return "Loading...\n"
		}
		return "Queue is empty\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %-6s %-12s %-6s %-36s %-4s %s\n", "ID", "KIND", "METHOD", "PATH", "TRY", "STATE")
	for i, w := range m.writes {
		row := fmt.Sprintf("%-6d %-12s %-6s %-36s %-4d %s",
			w.ID, w.Kind, w.Method, fitText(w.Path, 36), w.Attempts, writeState(w))
		if i == m.idx {
			b.WriteString("> " + selectedStyle.Render(row) + "\n")
			continue
		}
		b.WriteString("  " + row + "\n")
	}
	return b.String()
}

func writeState(w models.QueuedWrite) string {
	switch {
	case w.Synced:
		return "synced"
	case w.LastError != "":
		return "failing"
	default:
		return "pending"
	}
}

func renderWriteDetail(w models.QueuedWrite) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Kind:             %s\n", w.Kind)
	fmt.Fprintf(&b, "Request:          %s %s\n", w.Method, w.Path)
	fmt.Fprintf(&b, "Idempotency key:  %s\n", valueOrDash(w.IdempotencyKey))
	fmt.Fprintf(&b, "Created:          %s\n", timeOrDash(&w.CreatedAt))
	fmt.Fprintf(&b, "State:            %s\n", writeState(w))
	fmt.Fprintf(&b, "Synced at:        %s\n", timeOrDash(w.SyncedAt))
	fmt.Fprintf(&b, "Failed attempts:  %d\n", w.Attempts)
	fmt.Fprintf(&b, "Last error:       %s\n", valueOrDash(w.LastError))
	b.WriteString("\n")
	b.WriteString(fitText(string(w.Payload), 512))

	return renderPage(titleStyle.Render(fmt.Sprintf("Queued write #%d", w.ID)), b.String(), detailHotKeys)
}
