package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-pos-offline/internal/service"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

type messageResponse struct {
	Accepted   bool               `json:"accepted"`
	Report     *models.SyncReport `json:"report,omitempty"`
	Generation *models.Generation `json:"generation,omitempty"`
}

// postMessage accepts a control message from the terminal UI.
func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	var msg models.ControlMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&msg); err != nil {
		writeError(w, r, "*Handler.postMessage", fmt.Errorf("%w: %w", ErrInvalidJSON, err))
		return
	}

	result, err := h.services.Dispatcher.Dispatch(r.Context(), service.Event{Kind: service.EventMessage, Message: msg})
	if err != nil {
		writeError(w, r, "*Handler.postMessage", err)
		return
	}

	utils.WriteJSON(w, messageResponse{
		Accepted:   true,
		Report:     result.Report,
		Generation: result.Generation,
	}, http.StatusOK)
}
