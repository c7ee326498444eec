package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-pos-offline/internal/service"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.services.StatusService.Status(r.Context())
	if err != nil {
		writeError(w, r, "*Handler.getStatus", err)
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) listQueue(w http.ResponseWriter, r *http.Request) {
	filter, err := queueFilterFromQuery(r)
	if err != nil {
		writeError(w, r, "*Handler.listQueue", err)
		return
	}

	writes, err := h.services.QueueService.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, "*Handler.listQueue", err)
		return
	}
	if writes == nil {
		writes = []models.QueuedWrite{}
	}

	utils.WriteJSON(w, writes, http.StatusOK)
}

func queueFilterFromQuery(r *http.Request) (models.QueueFilter, error) {
	query := r.URL.Query()
	var filter models.QueueFilter

	if kind := query.Get("kind"); kind != "" {
		filter.Kind = models.WriteKind(kind)
		if !filter.Kind.Valid() {
			return models.QueueFilter{}, fmt.Errorf("%w: kind %q", ErrInvalidQueryParam, kind)
		}
	}
	if raw := query.Get("synced"); raw != "" {
		synced, err := strconv.ParseBool(raw)
		if err != nil {
			return models.QueueFilter{}, fmt.Errorf("%w: synced %q", ErrInvalidQueryParam, raw)
		}
		filter.Synced = &synced
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return models.QueueFilter{}, fmt.Errorf("%w: limit %q", ErrInvalidQueryParam, raw)
		}
		filter.Limit = limit
	}

	return filter, nil
}

func (h *Handler) getQueuedWrite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, "*Handler.getQueuedWrite", fmt.Errorf("%w: id", ErrInvalidQueryParam))
		return
	}

	write, err := h.services.QueueService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "*Handler.getQueuedWrite", err)
		return
	}

	utils.WriteJSON(w, write, http.StatusOK)
}

func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.services.Dispatcher.Dispatch(r.Context(), service.Event{Kind: service.EventSync})
	if err != nil {
		writeError(w, r, "*Handler.triggerSync", err)
		return
	}

	utils.WriteJSON(w, result.Report, http.StatusOK)
}

func (h *Handler) install(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, service.EventInstall, "*Handler.install")
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, service.EventActivate, "*Handler.activate")
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, kind service.EventKind, fn string) {
	result, err := h.services.Dispatcher.Dispatch(r.Context(), service.Event{Kind: kind})
	if err != nil {
		writeError(w, r, fn, err)
		return
	}

	utils.WriteJSON(w, result.Generation, http.StatusOK)
}
