// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

type queueRepository struct {
	*DB
	logger *logger.Logger
}

// NewQueueRepository constructs a [QueueRepository] over db.
func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

// Enqueue inserts w and returns its id once the row is committed.
func (q *queueRepository) Enqueue(ctx context.Context, w models.QueuedWrite) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildEnqueueQuery(q.builder(), w)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.Enqueue").Msg("failed to create query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	if err = q.DB.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("kind", string(w.Kind)).
			Str("idempotency_key", w.IdempotencyKey).
			Msg("failed to insert queued write")
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %w", ErrDuplicateIdempotencyKey, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return id, nil
}

// ListUnsynced returns every unsynced write in enqueue order.
func (q *queueRepository) ListUnsynced(ctx context.Context) ([]models.QueuedWrite, error) {
	query, args, err := buildListUnsyncedQuery(q.builder())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return q.queryWrites(ctx, "queueRepository.ListUnsynced", query, args)
}

// MarkSynced flips id to synced. It reports false when the row was already
// synced or does not exist.
func (q *queueRepository) MarkSynced(ctx context.Context, id int64, at time.Time) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildMarkSyncedQuery(q.builder(), id, at)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.MarkSynced").Int64("id", id).Msg("failed to mark write synced")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected > 0, nil
}

// RecordAttempt bumps the attempt counter of an unsynced write.
func (q *queueRepository) RecordAttempt(ctx context.Context, id int64, lastError string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildRecordAttemptQuery(q.builder(), id, lastError)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = q.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "queueRepository.RecordAttempt").Int64("id", id).Msg("failed to record attempt")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (q *queueRepository) Get(ctx context.Context, id int64) (models.QueuedWrite, error) {
	query, args, err := buildGetQueuedWriteQuery(q.builder(), id)
	if err != nil {
		return models.QueuedWrite{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	writes, err := q.queryWrites(ctx, "queueRepository.Get", query, args)
	if err != nil {
		return models.QueuedWrite{}, err
	}
	if len(writes) == 0 {
		return models.QueuedWrite{}, ErrQueuedWriteNotFound
	}

	return writes[0], nil
}

func (q *queueRepository) List(ctx context.Context, filter models.QueueFilter) ([]models.QueuedWrite, error) {
	query, args, err := buildListQueuedWritesQuery(q.builder(), filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return q.queryWrites(ctx, "queueRepository.List", query, args)
}

// Stats counts total and unsynced writes and finds the oldest unsynced one.
func (q *queueRepository) Stats(ctx context.Context) (models.QueueStats, error) {
	log := logger.FromContext(ctx)

	var stats models.QueueStats

	query, args, err := buildQueueCountsQuery(q.builder())
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if err = q.DB.QueryRowContext(ctx, query, args...).Scan(&stats.Total, &stats.Unsynced); err != nil {
		log.Err(err).Str("func", "queueRepository.Stats").Msg("failed to count queued writes")
		return stats, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	query, args, err = buildOldestUnsyncedQuery(q.builder())
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var oldest time.Time
	err = q.DB.QueryRowContext(ctx, query, args...).Scan(&oldest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		log.Err(err).Str("func", "queueRepository.Stats").Msg("failed to find oldest unsynced write")
		return stats, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	default:
		stats.Oldest = &oldest
	}

	return stats, nil
}

// queryWrites runs a select over queuedWriteColumns and reads every row
// before returning, so the single SQLite connection is free again.
func (q *queueRepository) queryWrites(ctx context.Context, funcName, query string, args []any) ([]models.QueuedWrite, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	writes := make([]models.QueuedWrite, 0)
	for rows.Next() {
		var (
			w        models.QueuedWrite
			kind     string
			headers  string
			syncedAt sql.NullTime
		)

		scanErr := rows.Scan(
			&w.ID,
			&kind,
			&w.Method,
			&w.Path,
			&headers,
			&w.Payload,
			&w.IdempotencyKey,
			&w.CreatedAt,
			&w.Synced,
			&syncedAt,
			&w.Attempts,
			&w.LastError,
		)
		if scanErr != nil {
			log.Err(scanErr).Str("func", funcName).Msg("failed to scan queued write row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		w.Kind = models.WriteKind(kind)
		if syncedAt.Valid {
			t := syncedAt.Time
			w.SyncedAt = &t
		}
		if w.Headers, err = decodeHeaders(headers); err != nil {
			log.Err(err).Str("func", funcName).Int64("id", w.ID).Msg("failed to decode headers")
			return nil, err
		}

		writes = append(writes, w)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", funcName).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return writes, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
