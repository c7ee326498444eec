package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/service"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

// push surfaces a server push as a notification. An empty body yields a
// notification with default title and body.
func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	var event models.PushEvent
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&event)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, "*Handler.push", fmt.Errorf("%w: %w", ErrInvalidJSON, err))
		return
	}

	result, err := h.services.Dispatcher.Dispatch(r.Context(), service.Event{Kind: service.EventPush, Push: event})
	if err != nil {
		writeError(w, r, "*Handler.push", err)
		return
	}

	if subject, ok := utils.GetPushSubjectFromContext(r.Context()); ok {
		logger.FromRequest(r).Debug().Str("subject", subject).Str("intent", result.Intent.ID).Msg("push accepted")
	}

	utils.WriteJSON(w, result.Intent, http.StatusCreated)
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.NotificationService.Pending(), http.StatusOK)
}

func (h *Handler) notificationAction(w http.ResponseWriter, r *http.Request) {
	_, err := h.services.Dispatcher.Dispatch(r.Context(), service.Event{
		Kind:     service.EventNotificationClick,
		IntentID: chi.URLParam(r, "id"),
		Action:   models.NotificationAction(chi.URLParam(r, "action")),
	})
	if err != nil {
		writeError(w, r, "*Handler.notificationAction", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
