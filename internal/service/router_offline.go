package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

const (
	// RetryAfterSeconds is advertised on synthetic 503 responses.
	RetryAfterSeconds = 30

	// ProductsListPath is the cached product catalogue searched by offline
	// barcode lookups.
	ProductsListPath  = "/api/v1/pos/products"
	barcodePathPrefix = "/api/v1/pos/products/barcode/"

	offlineMessage = "No internet connection. Data will sync when online."
)

// OfflineReceipt is generated for a transaction queued while offline so the
// terminal can print a receipt right away.
type OfflineReceipt struct {
	TransactionID     string    `json:"transaction_id"`
	TransactionNumber string    `json:"transaction_number"`
	Timestamp         time.Time `json:"timestamp"`
	Items             []any     `json:"items"`
	Total             float64   `json:"total"`
	Offline           bool      `json:"offline"`
}

// OfflineAccepted is the body of the synthetic success returned for a
// queued write.
type OfflineAccepted struct {
	Success     bool            `json:"success"`
	Offline     bool            `json:"offline"`
	QueuedID    int64           `json:"queued_id"`
	Message     string          `json:"message"`
	ReceiptData *OfflineReceipt `json:"receipt_data,omitempty"`
}

func jsonResponse(status int, body any) models.Response {
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(`{"error":"failed to encode response"}`)
		status = http.StatusInternalServerError
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set(HeaderOffline, "true")

	return models.Response{
		Status:  status,
		Header:  header,
		Body:    data,
		Source:  models.SourceSynthetic,
		Offline: true,
	}
}

func offlineAcceptedResponse(write models.QueuedWrite, now time.Time) models.Response {
	body := OfflineAccepted{
		Success:  true,
		Offline:  true,
		QueuedID: write.ID,
	}

	switch write.Kind {
	case models.WriteKindTransaction:
		body.Message = "Transaction saved offline. Will sync when online."
		body.ReceiptData = offlineReceipt(write, now)
	case models.WriteKindReceipt:
		body.Message = "Receipt saved offline. Will sync when online."
	default:
		body.Message = "Saved offline. Will sync when online."
	}

	resp := jsonResponse(http.StatusOK, body)
	resp.QueuedID = write.ID
	return resp
}

// offlineReceipt reads the fields the UI sends under either snake or camel
// case names.
func offlineReceipt(write models.QueuedWrite, now time.Time) *OfflineReceipt {
	var payload map[string]any
	_ = json.Unmarshal(write.Payload, &payload)

	receipt := &OfflineReceipt{
		TransactionID:     "OFFLINE_" + strconv.FormatInt(write.ID, 10),
		TransactionNumber: "OFF-" + strconv.FormatInt(write.ID, 10),
		Timestamp:         now.UTC(),
		Items:             []any{},
		Offline:           true,
	}

	if number, ok := firstString(payload, "transaction_number", "transactionNumber"); ok {
		receipt.TransactionNumber = number
	}
	if items, ok := firstValue(payload, "items").([]any); ok {
		receipt.Items = items
	}
	if total, ok := firstValue(payload, "total_amount", "totalAmount", "total").(float64); ok {
		receipt.Total = total
	}

	return receipt
}

func firstValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) (string, bool) {
	s, ok := firstValue(m, keys...).(string)
	return s, ok && s != ""
}

func unavailableResponse() models.Response {
	resp := jsonResponse(http.StatusServiceUnavailable, map[string]any{
		"error":     "Offline",
		"message":   offlineMessage,
		"retryable": true,
	})
	resp.Header.Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	return resp
}

func offlineTextResponse() models.Response {
	header := http.Header{}
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set(HeaderOffline, "true")
	header.Set("Retry-After", strconv.Itoa(RetryAfterSeconds))

	return models.Response{
		Status:  http.StatusServiceUnavailable,
		Header:  header,
		Body:    []byte("Offline"),
		Source:  models.SourceSynthetic,
		Offline: true,
	}
}

func barcodeFromPath(path string) (string, bool) {
	if !strings.HasPrefix(path, barcodePathPrefix) {
		return "", false
	}

	code, err := url.PathUnescape(strings.Trim(strings.TrimPrefix(path, barcodePathPrefix), "/"))
	if err != nil || code == "" || strings.Contains(code, "/") {
		return "", false
	}
	return code, true
}

// offlineBarcodeLookup searches the cached product catalogue.
func (r *routerService) offlineBarcodeLookup(ctx context.Context, code string) (models.Response, error) {
	product, err := r.findCachedProduct(ctx, code)
	switch {
	case err == nil:
		return jsonResponse(http.StatusOK, map[string]any{
			"success": true,
			"product": product,
			"offline": true,
		}), nil
	case errors.Is(err, ErrCacheMiss):
		return jsonResponse(http.StatusNotFound, map[string]any{
			"success": false,
			"message": "Product not found in offline cache",
			"offline": true,
		}), nil
	default:
		return models.Response{}, err
	}
}

func (r *routerService) findCachedProduct(ctx context.Context, code string) (map[string]any, error) {
	entry, err := r.cache.Match(ctx, models.CacheKey(http.MethodGet, ProductsListPath))
	if err != nil {
		return nil, err
	}

	products, err := decodeProductList(entry.Body)
	if err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("func", "routerService.findCachedProduct").
			Msg("cached product list is not decodable")
		return nil, errNoProducts
	}

	for _, p := range products {
		if barcode, ok := p["barcode"]; ok && fmt.Sprint(barcode) == code {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: barcode %s", ErrCacheMiss, code)
}

// decodeProductList accepts a bare array or an object wrapping it under
// "products" or "data".
func decodeProductList(body []byte) ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Products []map[string]any `json:"products"`
		Data     []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Products != nil {
		return wrapped.Products, nil
	}
	return wrapped.Data, nil
}
