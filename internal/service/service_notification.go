package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/events"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

// Notification defaults applied to pushes without a title or body.
const (
	DefaultNotificationTitle = "POS Terminal"
	DefaultNotificationBody  = "New notification from POS system"

	// TerminalURL is opened by the view action.
	TerminalURL = "/pos/terminal"

	maxPendingIntents = 100
)

var defaultActions = []models.NotificationAction{models.ActionView, models.ActionPrint, models.ActionClose}

type notificationService struct {
	publisher events.Publisher
	ids       idGenerator
	now       func() time.Time

	mu      sync.Mutex
	intents map[string]models.NotificationIntent

	logger *logger.Logger
}

// NewNotificationService constructs the [NotificationService]. Intents are
// kept in memory only.
func NewNotificationService(publisher events.Publisher, logger *logger.Logger) NotificationService {
	return &notificationService{
		publisher: publisher,
		ids:       utils.NewUUIDGenerator(),
		now:       time.Now,
		intents:   make(map[string]models.NotificationIntent),
		logger:    logger,
	}
}

func (n *notificationService) Push(ctx context.Context, event models.PushEvent) (models.NotificationIntent, error) {
	intent := models.NotificationIntent{
		ID:        n.ids.Generate(),
		Title:     strings.TrimSpace(event.Title),
		Body:      strings.TrimSpace(event.Body),
		Data:      event.Data,
		Actions:   append([]models.NotificationAction(nil), defaultActions...),
		CreatedAt: n.now().UTC(),
	}
	if intent.Title == "" {
		intent.Title = DefaultNotificationTitle
	}
	if intent.Body == "" {
		intent.Body = DefaultNotificationBody
	}

	n.mu.Lock()
	if len(n.intents) >= maxPendingIntents {
		n.evictOldest()
	}
	n.intents[intent.ID] = intent
	n.mu.Unlock()

	n.publisher.Publish(models.EventNotification, intent)

	logger.FromContext(ctx).Info().
		Str("func", "notificationService.Push").
		Str("intent", intent.ID).
		Str("title", intent.Title).
		Msg("notification surfaced")

	return intent, nil
}

// evictOldest must be called with mu held.
func (n *notificationService) evictOldest() {
	var oldest models.NotificationIntent
	for _, intent := range n.intents {
		if oldest.ID == "" || intent.CreatedAt.Before(oldest.CreatedAt) {
			oldest = intent
		}
	}
	delete(n.intents, oldest.ID)
}

// Act consumes the intent. Unknown actions behave like view.
func (n *notificationService) Act(ctx context.Context, intentID string, action models.NotificationAction) error {
	n.mu.Lock()
	intent, ok := n.intents[intentID]
	delete(n.intents, intentID)
	n.mu.Unlock()

	if !ok {
		return ErrIntentNotFound
	}

	switch action {
	case models.ActionClose:
	case models.ActionPrint:
		n.publisher.Publish(models.EventNotificationAction, models.NotificationActionData{
			Action: models.ActionPrint,
			Data:   intent.Data,
		})
	default:
		n.publisher.Publish(models.EventNotificationAction, models.NotificationActionData{
			Action: models.ActionView,
			URL:    TerminalURL,
			Data:   intent.Data,
		})
	}

	logger.FromContext(ctx).Debug().
		Str("func", "notificationService.Act").
		Str("intent", intentID).
		Str("action", string(action)).
		Msg("notification consumed")

	return nil
}

func (n *notificationService) Pending() []models.NotificationIntent {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]models.NotificationIntent, 0, len(n.intents))
	for _, intent := range n.intents {
		out = append(out, intent)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}
