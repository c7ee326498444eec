package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-pos-offline/internal/app"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError logs err and answers with the mapped status. A request whose
// client went away gets no answer.
func writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	log := logger.FromRequest(r)

	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		log.Debug().Err(err).Str("func", fn).Msg("client went away")
		return
	}

	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("func", fn).Int("status", status).Send()
	} else {
		log.Warn().Err(err).Str("func", fn).Int("status", status).Send()
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = app.MsgInternalServerError
	}
	utils.WriteJSON(w, errorResponse{Error: msg}, status)
}

func (h *Handler) controlNotFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, errorResponse{Error: app.MsgNotFound}, http.StatusNotFound)
}
