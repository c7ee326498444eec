package adapter

import (
	"net/http"
	"strings"

	"github.com/MKhiriev/go-pos-offline/models"
)

const maxErrorBodyLen = 512

// CheckResponse returns nil for a 2xx response and a [*ServerRejectedError]
// otherwise.
func CheckResponse(resp models.Response) error {
	return mapHTTPError(resp.Status, resp.Body)
}

func mapHTTPError(status int, rawBody []byte) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(rawBody))
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}
	if body == "" {
		body = http.StatusText(status)
	}

	return &ServerRejectedError{Status: status, Body: body, kind: statusSentinel(status)}
}

func statusSentinel(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnprocessableEntity:
		return ErrUnprocessable
	case http.StatusInternalServerError:
		return ErrInternalServerError
	case http.StatusBadGateway:
		return ErrBadGateway
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	default:
		return nil
	}
}
