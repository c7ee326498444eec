package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

func newTestNotificationService(publisher *recordingPublisher) *notificationService {
	svc := NewNotificationService(publisher, logger.Nop()).(*notificationService)
	svc.ids = &sequenceIDs{}

	tick := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc
}

func TestNotificationService_PushAppliesDefaults(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestNotificationService(publisher)

	intent, err := svc.Push(context.Background(), models.PushEvent{Title: "  "})
	require.NoError(t, err)
	assert.Equal(t, "id-1", intent.ID)
	assert.Equal(t, DefaultNotificationTitle, intent.Title)
	assert.Equal(t, DefaultNotificationBody, intent.Body)
	assert.Equal(t, []models.NotificationAction{models.ActionView, models.ActionPrint, models.ActionClose}, intent.Actions)

	events := publisher.ofType(models.EventNotification)
	require.Len(t, events, 1)
	assert.Equal(t, intent, events[0].Data)
	assert.Len(t, svc.Pending(), 1)
}

func TestNotificationService_Act(t *testing.T) {
	tests := []struct {
		name      string
		action    models.NotificationAction
		wantEvent *models.NotificationActionData
	}{
		{
			name:      "view opens the terminal",
			action:    models.ActionView,
			wantEvent: &models.NotificationActionData{Action: models.ActionView, URL: TerminalURL, Data: map[string]any{"order": "A-12"}},
		},
		{
			name:      "print forwards the data",
			action:    models.ActionPrint,
			wantEvent: &models.NotificationActionData{Action: models.ActionPrint, Data: map[string]any{"order": "A-12"}},
		},
		{
			name:   "close only dismisses",
			action: models.ActionClose,
		},
		{
			name:      "unknown action behaves as view",
			action:    "snooze",
			wantEvent: &models.NotificationActionData{Action: models.ActionView, URL: TerminalURL, Data: map[string]any{"order": "A-12"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &recordingPublisher{}
			svc := newTestNotificationService(publisher)
			ctx := context.Background()

			intent, err := svc.Push(ctx, models.PushEvent{Title: "Order ready", Data: map[string]any{"order": "A-12"}})
			require.NoError(t, err)

			require.NoError(t, svc.Act(ctx, intent.ID, tt.action))
			assert.Empty(t, svc.Pending(), "intent is consumed")

			events := publisher.ofType(models.EventNotificationAction)
			if tt.wantEvent == nil {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, *tt.wantEvent, events[0].Data)
		})
	}
}

func TestNotificationService_ActTwice(t *testing.T) {
	svc := newTestNotificationService(&recordingPublisher{})
	ctx := context.Background()

	intent, err := svc.Push(ctx, models.PushEvent{})
	require.NoError(t, err)

	require.NoError(t, svc.Act(ctx, intent.ID, models.ActionClose))
	assert.ErrorIs(t, svc.Act(ctx, intent.ID, models.ActionView), ErrIntentNotFound)
	assert.ErrorIs(t, svc.Act(ctx, "missing", models.ActionView), ErrIntentNotFound)
}

func TestNotificationService_EvictsOldest(t *testing.T) {
	svc := newTestNotificationService(&recordingPublisher{})
	ctx := context.Background()

	for range maxPendingIntents + 5 {
		_, err := svc.Push(ctx, models.PushEvent{})
		require.NoError(t, err)
	}

	pending := svc.Pending()
	require.Len(t, pending, maxPendingIntents)
	assert.Equal(t, "id-6", pending[0].ID)
	assert.Equal(t, "id-105", pending[len(pending)-1].ID)
}
