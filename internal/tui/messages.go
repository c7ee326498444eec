package tui

import (
	"time"

	"github.com/MKhiriev/go-pos-offline/models"
)

type refreshedMsg struct {
	status models.GatewayStatus
	writes []models.QueuedWrite
	err    error
}

type syncDoneMsg struct {
	report models.SyncReport
	err    error
}

type tickMsg time.Time
