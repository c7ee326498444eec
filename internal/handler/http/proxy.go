package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MKhiriev/go-pos-offline/internal/service"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

// proxy turns an intercepted request into a fetch event and writes back
// whatever the router resolved it to: the upstream answer, a cached copy or
// a synthetic offline response.
func (h *Handler) proxy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		} else {
			err = fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		writeError(w, r, "*Handler.proxy", err)
		return
	}

	req := models.Request{
		Method: r.Method,
		URL:    r.URL.RequestURI(),
		Header: r.Header.Clone(),
		Body:   body,
	}

	result, err := h.services.Dispatcher.Dispatch(r.Context(), service.Event{Kind: service.EventFetch, Request: req})
	if err != nil {
		writeError(w, r, "*Handler.proxy", err)
		return
	}

	resp := result.Response
	utils.WriteRaw(w, utils.EndToEndHeaders(resp.Header), resp.Body, resp.Status)
}
