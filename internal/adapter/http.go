package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-pos-offline/internal/config"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

// stripOnForward are removed on top of hop-by-hop headers. Accept-Encoding
// is left to the transport so bodies arrive decoded and can be cached as is.
var stripOnForward = []string{"Accept-Encoding", "Content-Length", "Host"}

// stripOnReturn are removed from upstream responses before they are cached
// or handed back.
var stripOnReturn = []string{"Content-Length", "Content-Encoding"}

type httpUpstreamAdapter struct {
	client     *utils.HTTPClient
	healthPath string
	logger     *logger.Logger
}

// NewHTTPUpstreamAdapter constructs the resty-backed [UpstreamAdapter] for
// the API at cfg.HTTPAddress.
func NewHTTPUpstreamAdapter(cfg config.GatewayAdapter, log *logger.Logger) (UpstreamAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = config.DefaultHealthPath
	}

	return &httpUpstreamAdapter{
		client:     utils.NewProxyHTTPClient(baseURL, cfg.RequestTimeout),
		healthPath: healthPath,
		logger:     log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Do implements [UpstreamAdapter].
func (h *httpUpstreamAdapter) Do(ctx context.Context, req models.Request) (models.Response, error) {
	r := h.client.R().
		SetContext(ctx).
		SetHeaderMultiValues(utils.EndToEndHeaders(req.Header, stripOnForward...))
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(strings.ToUpper(req.Method), req.URL)
	if err != nil {
		if ctx.Err() != nil {
			return models.Response{}, fmt.Errorf("upstream %s %s: %w", req.Method, req.URL, ctx.Err())
		}
		logger.FromContext(ctx).Debug().
			Err(err).
			Str("func", "httpUpstreamAdapter.Do").
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("upstream unreachable")
		return models.Response{}, fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
	}

	return models.Response{
		Status: resp.StatusCode(),
		Header: utils.EndToEndHeaders(resp.Header(), stripOnReturn...),
		Body:   resp.Body(),
		Source: models.SourceNetwork,
	}, nil
}

// Ping implements [UpstreamAdapter]. Any answer below 500 means upstream is
// reachable.
func (h *httpUpstreamAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(h.healthPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
	}

	if resp.StatusCode() >= http.StatusInternalServerError {
		return mapHTTPError(resp.StatusCode(), resp.Body())
	}

	return nil
}
