package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

type lifecycleFixture struct {
	lifecycle *lifecycleService
	cache     CacheService
	upstream  *fakeUpstream
	publisher *recordingPublisher
	active    *ActiveGeneration
	manifest  models.Manifest
	version   string
}

func testManifest() models.Manifest {
	return models.Manifest{
		Version:      "pos-terminal-v1",
		StaticURLs:   []string{"/pos/static/js/main.js"},
		APIURLs:      []string{"/api/v1/pos/products"},
		FallbackPage: "/pos/offline.html",
	}
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	storages := newTestStorages(t)
	active := &ActiveGeneration{}
	cache := NewCacheService(storages.CacheRepository, storages.ErrorClassificator, active, logger.Nop())
	upstream := newFakeUpstream()
	publisher := &recordingPublisher{}
	manifest := testManifest()

	f := &lifecycleFixture{
		cache:     cache,
		upstream:  upstream,
		publisher: publisher,
		active:    active,
		manifest:  manifest,
		version:   "v1",
	}
	f.lifecycle = NewLifecycleService(storages.GenerationRepository, storages.ErrorClassificator, cache, upstream, publisher, active, manifest, logger.Nop()).(*lifecycleService)

	upstream.setHandler(func(req models.Request) (models.Response, error) {
		return okJSON(`{"url":"` + req.URL + `","version":"` + f.version + `"}`), nil
	})

	return f
}

func (f *lifecycleFixture) body(t *testing.T, bucket models.Bucket, url string) map[string]string {
	t.Helper()

	entry, err := f.cache.Get(context.Background(), bucket, models.CacheKey(http.MethodGet, url))
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, json.Unmarshal(entry.Body, &out))
	return out
}

func TestLifecycle_InstallThenActivate(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	generation, err := f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	assert.Equal(t, int64(1), generation.Generation)
	assert.Equal(t, models.GenerationInstalled, generation.Status)
	assert.Zero(t, f.lifecycle.Active(), "install does not activate")

	generation, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationActive, generation.Status)
	assert.Equal(t, int64(1), f.lifecycle.Active())

	assert.Equal(t, "v1", f.body(t, models.BucketStatic, "/pos/static/js/main.js")["version"])
	assert.Equal(t, "v1", f.body(t, models.BucketAPI, "/api/v1/pos/products")["version"])
	assert.Equal(t, "v1", f.body(t, models.BucketOffline, "/pos/offline.html")["version"])

	phases := []string{}
	for _, e := range f.publisher.ofType(models.EventLifecycle) {
		phases = append(phases, e.Data.(LifecycleEvent).Phase)
	}
	assert.Equal(t, []string{PhaseInstalling, PhaseInstalled, PhaseActivated}, phases)
}

func TestLifecycle_CutoverKeepsServingOldGeneration(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	_, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)

	f.version = "v2"
	next := f.manifest
	next.Version = "pos-terminal-v2"

	generation, err := f.lifecycle.Install(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, int64(2), generation.Generation)

	// Until activation, lookups still resolve through generation 1.
	assert.Equal(t, int64(1), f.lifecycle.Active())
	assert.Equal(t, "v1", f.body(t, models.BucketStatic, "/pos/static/js/main.js")["version"])

	_, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", f.body(t, models.BucketStatic, "/pos/static/js/main.js")["version"])

	partitions, err := f.cache.ListPartitions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"static-v2", "api-v2", "offline-v2"}, partitions)
}

func TestLifecycle_FailedInstallKeepsActiveGeneration(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	_, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)

	f.upstream.setHandler(func(req models.Request) (models.Response, error) {
		if req.URL == "/api/v1/pos/products" {
			return jsonStatus(http.StatusInternalServerError, `{}`), nil
		}
		return okJSON(`{"version":"v2"}`), nil
	})

	next := f.manifest
	next.Version = "pos-terminal-v2"
	_, err = f.lifecycle.Install(ctx, next)
	require.ErrorIs(t, err, ErrPrecacheFailed)
	assert.ErrorIs(t, err, adapter.ErrServerRejected)

	assert.Equal(t, int64(1), f.lifecycle.Active())
	assert.Equal(t, "v1", f.body(t, models.BucketStatic, "/pos/static/js/main.js")["version"])

	partitions, err := f.cache.ListPartitions(ctx)
	require.NoError(t, err)
	assert.NotContains(t, partitions, "static-v2", "abandoned generation leaves nothing behind")

	_, err = f.lifecycle.Activate(ctx)
	assert.ErrorIs(t, err, ErrNoInstalledGeneration)
}

func TestLifecycle_SameManifestIsNoOp(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	first, err := f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	requests := len(f.upstream.received())

	again, err := f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	assert.Equal(t, first.Generation, again.Generation)
	assert.Len(t, f.upstream.received(), requests, "nothing is fetched again")
}

func TestLifecycle_SkipWaiting(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.SkipWaiting(ctx)
	assert.ErrorIs(t, err, ErrNoActiveGeneration)

	_, err = f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)

	generation, err := f.lifecycle.SkipWaiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), generation.Generation)
	assert.Equal(t, int64(1), f.lifecycle.Active())

	generation, err = f.lifecycle.SkipWaiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), generation.Generation, "nothing waiting returns the active generation")
}

func TestLifecycle_Restore(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.Restore(ctx)
	assert.ErrorIs(t, err, ErrNoActiveGeneration)

	_, err = f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	_, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)

	// A leftover partition from an interrupted cutover.
	require.NoError(t, f.cache.PutPartition(ctx, "static-v7", "GET /x", models.CacheEntry{Method: http.MethodGet, URL: "/x", Status: http.StatusOK}))

	f.active.Store(0)
	generation, err := f.lifecycle.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), generation.Generation)
	assert.Equal(t, int64(1), f.lifecycle.Active())

	partitions, err := f.cache.ListPartitions(ctx)
	require.NoError(t, err)
	assert.NotContains(t, partitions, "static-v7")
}

func TestLifecycle_RestoreKeepsInstalledGeneration(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	_, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)

	f.version = "v2"
	next := f.manifest
	next.Version = "pos-terminal-v2"
	_, err = f.lifecycle.Install(ctx, next)
	require.NoError(t, err)

	// Restart between install and activation.
	f.active.Store(0)
	generation, err := f.lifecycle.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), generation.Generation)

	partitions, err := f.cache.ListPartitions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"static-v1", "api-v1", "offline-v1", "static-v2", "api-v2", "offline-v2"}, partitions)

	requests := len(f.upstream.received())
	again, err := f.lifecycle.Install(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Generation)
	assert.Len(t, f.upstream.received(), requests, "installed generation is reused")

	_, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.lifecycle.Active())
	assert.Equal(t, "v2", f.body(t, models.BucketStatic, "/pos/static/js/main.js")["version"])
	assert.Equal(t, "v2", f.body(t, models.BucketAPI, "/api/v1/pos/products")["version"])
	assert.Equal(t, "v2", f.body(t, models.BucketOffline, "/pos/offline.html")["version"])
}

func TestLifecycle_RefreshData(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.lifecycle.RefreshData(ctx), ErrNoActiveGeneration)

	_, err := f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	_, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)

	f.version = "v2"
	require.NoError(t, f.lifecycle.RefreshData(ctx))
	assert.Equal(t, "v2", f.body(t, models.BucketAPI, "/api/v1/pos/products")["version"])
	assert.Equal(t, "v1", f.body(t, models.BucketStatic, "/pos/static/js/main.js")["version"], "static assets are not refreshed")

	f.upstream.setOffline(true)
	err = f.lifecycle.RefreshData(ctx)
	assert.ErrorIs(t, err, adapter.ErrNetworkUnavailable)
	assert.Equal(t, "v2", f.body(t, models.BucketAPI, "/api/v1/pos/products")["version"], "stale data survives a failed refresh")
}

func TestLifecycle_CacheEntity(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.Install(ctx, f.manifest)
	require.NoError(t, err)
	_, err = f.lifecycle.Activate(ctx)
	require.NoError(t, err)

	err = f.lifecycle.CacheEntity(ctx, models.CacheEntityPayload{Entity: "product", ID: "17", Data: json.RawMessage(`{"id":17,"name":"Latte"}`)})
	require.NoError(t, err)

	entry, err := f.cache.Get(ctx, models.BucketAPI, "GET /api/v1/products/17")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":17,"name":"Latte"}`, string(entry.Body))

	tests := []struct {
		name    string
		payload models.CacheEntityPayload
		wantErr error
	}{
		{
			name:    "unknown entity",
			payload: models.CacheEntityPayload{Entity: "supplier", ID: "1", Data: json.RawMessage(`{}`)},
			wantErr: ErrUnknownEntity,
		},
		{
			name:    "missing id",
			payload: models.CacheEntityPayload{Entity: "customer", Data: json.RawMessage(`{}`)},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "id with slash",
			payload: models.CacheEntityPayload{Entity: "customer", ID: "1/2", Data: json.RawMessage(`{}`)},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "not json",
			payload: models.CacheEntityPayload{Entity: "customer", ID: "1", Data: json.RawMessage(`{`)},
			wantErr: ErrInvalidPayload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.lifecycle.CacheEntity(ctx, tt.payload), tt.wantErr)
		})
	}
}
