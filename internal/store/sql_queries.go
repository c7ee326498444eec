package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-pos-offline/models"
)

const (
	tableQueuedWrites     = "queued_writes"
	tableCacheEntries     = "cache_entries"
	tableCacheGenerations = "cache_generations"
)

var (
	queuedWriteColumns = []string{
		"id", "kind", "method", "path", "headers", "payload", "idempotency_key",
		"created_at", "synced", "synced_at", "attempts", "last_error",
	}
	cacheEntryColumns = []string{
		"partition_name", "cache_key", "method", "url", "status", "headers",
		"body", "digest", "stored_at",
	}
	generationColumns = []string{
		"generation", "manifest_hash", "status", "created_at", "activated_at",
	}
)

// ── queued_writes ─────────────────────────────────────────────────────────────

func buildEnqueueQuery(b sq.StatementBuilderType, w models.QueuedWrite) (string, []any, error) {
	headers, err := encodeHeaders(w.Headers)
	if err != nil {
		return "", nil, err
	}

	return b.Insert(tableQueuedWrites).
		Columns("kind", "method", "path", "headers", "payload", "idempotency_key",
			"created_at", "synced", "attempts", "last_error").
		Values(string(w.Kind), w.Method, w.Path, headers, w.Payload, w.IdempotencyKey,
			w.CreatedAt, false, 0, "").
		Suffix("RETURNING id").
		ToSql()
}

func buildListUnsyncedQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select(queuedWriteColumns...).
		From(tableQueuedWrites).
		Where(sq.Eq{"synced": false}).
		OrderBy("id ASC").
		ToSql()
}

func buildGetQueuedWriteQuery(b sq.StatementBuilderType, id int64) (string, []any, error) {
	return b.Select(queuedWriteColumns...).
		From(tableQueuedWrites).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildListQueuedWritesQuery(b sq.StatementBuilderType, filter models.QueueFilter) (string, []any, error) {
	query := b.Select(queuedWriteColumns...).
		From(tableQueuedWrites).
		OrderBy("id ASC")

	if filter.Kind != "" {
		query = query.Where(sq.Eq{"kind": string(filter.Kind)})
	}
	if filter.Synced != nil {
		query = query.Where(sq.Eq{"synced": *filter.Synced})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	return query.ToSql()
}

// buildMarkSyncedQuery only matches unsynced rows, so a repeated call
// affects nothing.
func buildMarkSyncedQuery(b sq.StatementBuilderType, id int64, at time.Time) (string, []any, error) {
	return b.Update(tableQueuedWrites).
		Set("synced", true).
		Set("synced_at", at).
		Set("last_error", "").
		Where(sq.Eq{"id": id, "synced": false}).
		ToSql()
}

func buildRecordAttemptQuery(b sq.StatementBuilderType, id int64, lastError string) (string, []any, error) {
	return b.Update(tableQueuedWrites).
		Set("attempts", sq.Expr("attempts + 1")).
		Set("last_error", lastError).
		Where(sq.Eq{"id": id, "synced": false}).
		ToSql()
}

func buildQueueCountsQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select("COUNT(*)", "COALESCE(SUM(CASE WHEN synced THEN 0 ELSE 1 END), 0)").
		From(tableQueuedWrites).
		ToSql()
}

func buildOldestUnsyncedQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select("created_at").
		From(tableQueuedWrites).
		Where(sq.Eq{"synced": false}).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
}

// ── cache_entries ─────────────────────────────────────────────────────────────

func buildGetCacheEntryQuery(b sq.StatementBuilderType, partition, key string) (string, []any, error) {
	return b.Select(cacheEntryColumns...).
		From(tableCacheEntries).
		Where(sq.Eq{"partition_name": partition, "cache_key": key}).
		ToSql()
}

func buildPutCacheEntryQuery(b sq.StatementBuilderType, e models.CacheEntry) (string, []any, error) {
	headers, err := encodeHeaders(e.Headers)
	if err != nil {
		return "", nil, err
	}

	return b.Insert(tableCacheEntries).
		Columns(cacheEntryColumns...).
		Values(e.Partition, e.Key, e.Method, e.URL, e.Status, headers, e.Body, e.Digest, e.StoredAt).
		Suffix(`ON CONFLICT (partition_name, cache_key) DO UPDATE SET
			method = excluded.method,
			url = excluded.url,
			status = excluded.status,
			headers = excluded.headers,
			body = excluded.body,
			digest = excluded.digest,
			stored_at = excluded.stored_at`).
		ToSql()
}

func buildDeletePartitionQuery(b sq.StatementBuilderType, partition string) (string, []any, error) {
	return b.Delete(tableCacheEntries).
		Where(sq.Eq{"partition_name": partition}).
		ToSql()
}

func buildListPartitionsQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select("partition_name").
		Distinct().
		From(tableCacheEntries).
		OrderBy("partition_name ASC").
		ToSql()
}

// ── cache_generations ─────────────────────────────────────────────────────────

func buildCreateGenerationQuery(b sq.StatementBuilderType, g models.Generation) (string, []any, error) {
	return b.Insert(tableCacheGenerations).
		Columns(generationColumns...).
		Values(g.Generation, g.ManifestHash, string(g.Status), g.CreatedAt, g.ActivatedAt).
		ToSql()
}

func buildGetGenerationQuery(b sq.StatementBuilderType, where sq.Sqlizer) (string, []any, error) {
	return b.Select(generationColumns...).
		From(tableCacheGenerations).
		Where(where).
		OrderBy("generation DESC").
		Limit(1).
		ToSql()
}

func buildLatestGenerationQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select(generationColumns...).
		From(tableCacheGenerations).
		OrderBy("generation DESC").
		Limit(1).
		ToSql()
}

func buildSetGenerationStatusQuery(b sq.StatementBuilderType, generation int64, status models.GenerationStatus) (string, []any, error) {
	return b.Update(tableCacheGenerations).
		Set("status", string(status)).
		Where(sq.Eq{"generation": generation}).
		ToSql()
}

func buildRetireActiveQuery(b sq.StatementBuilderType, except int64) (string, []any, error) {
	return b.Update(tableCacheGenerations).
		Set("status", string(models.GenerationRetired)).
		Where(sq.And{
			sq.Eq{"status": []string{string(models.GenerationActive), string(models.GenerationInstalled)}},
			sq.NotEq{"generation": except},
		}).
		ToSql()
}

func buildActivateGenerationQuery(b sq.StatementBuilderType, generation int64, at time.Time) (string, []any, error) {
	return b.Update(tableCacheGenerations).
		Set("status", string(models.GenerationActive)).
		Set("activated_at", at).
		Where(sq.Eq{"generation": generation}).
		ToSql()
}

// ── column codecs ─────────────────────────────────────────────────────────────

func encodeHeaders(h http.Header) (string, error) {
	if len(h) == 0 {
		return "{}", nil
	}

	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingColumn, err)
	}
	return string(data), nil
}

func decodeHeaders(s string) (http.Header, error) {
	h := http.Header{}
	if s == "" {
		return h, nil
	}

	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingColumn, err)
	}
	return h, nil
}
