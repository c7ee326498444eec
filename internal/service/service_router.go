package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

// Headers set on responses produced without reaching upstream.
const (
	HeaderOffline = "X-Offline"
	HeaderCache   = "X-Cache"
)

type connectivityReporter interface {
	ReportOnline(ctx context.Context)
	ReportOffline(ctx context.Context)
}

type routerService struct {
	classifier   *Classifier
	upstream     adapter.UpstreamAdapter
	cache        CacheService
	queue        QueueService
	connectivity connectivityReporter
	fallbackPage string
	ids          idGenerator
	now          func() time.Time

	logger *logger.Logger
}

// NewRouterService constructs the [RouterService]. connectivity may be nil.
func NewRouterService(
	classifier *Classifier,
	upstream adapter.UpstreamAdapter,
	cache CacheService,
	queue QueueService,
	connectivity connectivityReporter,
	fallbackPage string,
	logger *logger.Logger,
) RouterService {
	return &routerService{
		classifier:   classifier,
		upstream:     upstream,
		cache:        cache,
		queue:        queue,
		connectivity: connectivity,
		fallbackPage: fallbackPage,
		ids:          utils.NewUUIDGenerator(),
		now:          time.Now,
		logger:       logger,
	}
}

// Route implements [RouterService]. Upstream non-2xx answers are returned
// verbatim. Errors are storage failures or a cancelled ctx; a pass-through
// request also returns adapter.ErrNetworkUnavailable.
func (r *routerService) Route(ctx context.Context, req models.Request) (models.Response, error) {
	class := r.classifier.Classify(req)

	logger.FromContext(ctx).Debug().
		Str("func", "routerService.Route").
		Str("method", req.Method).
		Str("url", req.URL).
		Str("route", class.Route.String()).
		Msg("request classified")

	switch class.Route {
	case RouteTransactional:
		return r.networkFirstQueue(ctx, class.Kind, req)
	case RouteData:
		return r.networkFirstCache(ctx, req)
	case RouteDataWrite:
		return r.networkOrUnavailable(ctx, req)
	case RouteStatic:
		return r.cacheFirst(ctx, req)
	case RouteNavigation:
		return r.navigation(ctx, req)
	default:
		return r.fetch(ctx, req)
	}
}

// fetch forwards req and records the observed connectivity.
func (r *routerService) fetch(ctx context.Context, req models.Request) (models.Response, error) {
	resp, err := r.upstream.Do(ctx, req)
	switch {
	case err == nil:
		r.reportOnline(ctx)
		return resp, nil
	case errors.Is(err, adapter.ErrNetworkUnavailable):
		r.reportOffline(ctx)
	}
	return models.Response{}, err
}

func (r *routerService) networkFirstQueue(ctx context.Context, kind models.WriteKind, req models.Request) (models.Response, error) {
	// The key is fixed before the first attempt so a write that reached the
	// server but lost its response is deduplicated on replay.
	req.Header = req.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if strings.TrimSpace(req.Header.Get(IdempotencyKeyHeader)) == "" {
		req.Header.Set(IdempotencyKeyHeader, r.ids.Generate())
	}

	resp, err := r.fetch(ctx, req)
	if err == nil || !errors.Is(err, adapter.ErrNetworkUnavailable) {
		return resp, err
	}

	write, err := r.queue.Enqueue(ctx, kind, req)
	switch {
	case errors.Is(err, ErrInvalidPayload):
		return jsonResponse(http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"offline": true,
			"error":   err.Error(),
		}), nil
	case errors.Is(err, ErrAlreadyQueued):
		return jsonResponse(http.StatusConflict, map[string]any{
			"success": false,
			"offline": true,
			"error":   "write with this idempotency key is already queued",
		}), nil
	case err != nil:
		return models.Response{}, err
	}

	return offlineAcceptedResponse(write, r.now()), nil
}

func (r *routerService) networkFirstCache(ctx context.Context, req models.Request) (models.Response, error) {
	key := models.CacheKey(http.MethodGet, req.URL)

	resp, err := r.fetch(ctx, req)
	if err == nil {
		if resp.OK() && strings.EqualFold(req.Method, http.MethodGet) {
			r.mirror(ctx, models.BucketAPI, key, req, resp)
		}
		return resp, nil
	}
	if !errors.Is(err, adapter.ErrNetworkUnavailable) {
		return models.Response{}, err
	}

	entry, err := r.cache.Match(ctx, key)
	if err == nil {
		cached := responseFromEntry(entry)
		cached.Stale = true
		cached.Header.Set(HeaderCache, "stale")
		return headOnly(req, cached), nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return models.Response{}, err
	}

	if code, ok := barcodeFromPath(req.Path()); ok {
		return r.offlineBarcodeLookup(ctx, code)
	}

	return unavailableResponse(), nil
}

func (r *routerService) networkOrUnavailable(ctx context.Context, req models.Request) (models.Response, error) {
	resp, err := r.fetch(ctx, req)
	if errors.Is(err, adapter.ErrNetworkUnavailable) {
		return unavailableResponse(), nil
	}
	return resp, err
}

func (r *routerService) cacheFirst(ctx context.Context, req models.Request) (models.Response, error) {
	key := models.CacheKey(http.MethodGet, req.URL)

	entry, err := r.cache.Match(ctx, key)
	if err == nil {
		return headOnly(req, responseFromEntry(entry)), nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return models.Response{}, err
	}

	resp, err := r.fetch(ctx, req)
	if err == nil {
		if resp.OK() && strings.EqualFold(req.Method, http.MethodGet) {
			r.mirror(ctx, models.BucketStatic, key, req, resp)
		}
		return resp, nil
	}
	if !errors.Is(err, adapter.ErrNetworkUnavailable) {
		return models.Response{}, err
	}

	if req.AcceptsHTML() {
		return r.fallback(ctx)
	}
	return offlineTextResponse(), nil
}

func (r *routerService) navigation(ctx context.Context, req models.Request) (models.Response, error) {
	resp, err := r.fetch(ctx, req)
	if err == nil {
		return resp, nil
	}
	if !errors.Is(err, adapter.ErrNetworkUnavailable) {
		return models.Response{}, err
	}

	return r.fallback(ctx)
}

// fallback serves the offline page, or a plain 503 when it is not cached.
func (r *routerService) fallback(ctx context.Context) (models.Response, error) {
	if r.fallbackPage == "" {
		return offlineTextResponse(), nil
	}

	entry, err := r.cache.Get(ctx, models.BucketOffline, models.CacheKey(http.MethodGet, r.fallbackPage))
	if errors.Is(err, ErrCacheMiss) {
		return offlineTextResponse(), nil
	}
	if err != nil {
		return models.Response{}, err
	}

	resp := responseFromEntry(entry)
	resp.Offline = true
	resp.Header.Set(HeaderOffline, "true")
	return resp, nil
}

// mirror stores a network response. A failed mirror does not fail the
// request.
func (r *routerService) mirror(ctx context.Context, bucket models.Bucket, key string, req models.Request, resp models.Response) {
	err := r.cache.Put(ctx, bucket, key, entryFromResponse(models.Request{Method: http.MethodGet, URL: req.URL}, resp))
	if err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("func", "routerService.mirror").
			Str("bucket", string(bucket)).
			Str("key", key).
			Msg("failed to mirror response into cache")
	}
}

func (r *routerService) reportOnline(ctx context.Context) {
	if r.connectivity != nil {
		r.connectivity.ReportOnline(ctx)
	}
}

func (r *routerService) reportOffline(ctx context.Context) {
	if r.connectivity != nil {
		r.connectivity.ReportOffline(ctx)
	}
}

func headOnly(req models.Request, resp models.Response) models.Response {
	if strings.EqualFold(req.Method, http.MethodHead) {
		resp.Body = nil
	}
	return resp
}

var errNoProducts = fmt.Errorf("%w: no cached product list", ErrCacheMiss)
