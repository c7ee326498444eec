package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON serializes data to JSON and writes it with statusCode. If
// marshaling fails it responds with 500 and returns the wrapped error.
//
// Example usage:
//
//	WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteRaw copies header into the response and writes body with
// statusCode.
func WriteRaw(w http.ResponseWriter, header http.Header, body []byte, statusCode int) (int, error) {
	dst := w.Header()
	for name, values := range header {
		dst[name] = append([]string(nil), values...)
	}
	dst.Del("Content-Length")

	w.WriteHeader(statusCode)
	if len(body) == 0 {
		return 0, nil
	}

	return w.Write(body)
}
