package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
)

// Storages groups the repositories of the gateway around one connection.
type Storages struct {
	CacheRepository      CacheRepository
	QueueRepository      QueueRepository
	GenerationRepository GenerationRepository

	// ErrorClassificator classifies errors of the underlying driver.
	ErrorClassificator ErrorClassificator

	db *DB
}

// NewStorages connects to dsn, applies pending migrations and wires every
// repository.
func NewStorages(ctx context.Context, dsn string, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnect(ctx, dsn, log)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewStoragesFromDB(db, log), nil
}

// NewStoragesFromDB wires the repositories over an already migrated db.
func NewStoragesFromDB(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		CacheRepository:      NewCacheRepository(db, log),
		QueueRepository:      NewQueueRepository(db, log),
		GenerationRepository: NewGenerationRepository(db, log),
		ErrorClassificator:   classifierFunc(db.Classify),
		db:                   db,
	}
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type classifierFunc func(error) ErrorClassification

func (f classifierFunc) Classify(err error) ErrorClassification {
	return f(err)
}
