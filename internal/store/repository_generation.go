package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

type generationRepository struct {
	*DB
	logger *logger.Logger
}

// NewGenerationRepository constructs a [GenerationRepository] over db.
func NewGenerationRepository(db *DB, logger *logger.Logger) GenerationRepository {
	return &generationRepository{
		DB:     db,
		logger: logger,
	}
}

func (g *generationRepository) Create(ctx context.Context, generation models.Generation) error {
	log := logger.FromContext(ctx)

	query, args, err := buildCreateGenerationQuery(g.builder(), generation)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = g.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "generationRepository.Create").
			Int64("generation", generation.Generation).
			Msg("failed to create generation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (g *generationRepository) Get(ctx context.Context, generation int64) (models.Generation, error) {
	return g.getOne(ctx, "generationRepository.Get", sq.Eq{"generation": generation})
}

// Active returns the generation currently serving requests.
func (g *generationRepository) Active(ctx context.Context) (models.Generation, error) {
	return g.getOne(ctx, "generationRepository.Active", sq.Eq{"status": string(models.GenerationActive)})
}

// Latest returns the generation with the highest number in any status.
func (g *generationRepository) Latest(ctx context.Context) (models.Generation, error) {
	query, args, err := buildLatestGenerationQuery(g.builder())
	if err != nil {
		return models.Generation{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return g.scanOne(ctx, "generationRepository.Latest", query, args)
}

func (g *generationRepository) SetStatus(ctx context.Context, generation int64, status models.GenerationStatus) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSetGenerationStatusQuery(g.builder(), generation, status)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := g.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "generationRepository.SetStatus").
			Int64("generation", generation).
			Str("status", string(status)).
			Msg("failed to update generation status")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrGenerationNotFound
	}

	return nil
}

// Activate makes generation the only active one in a single transaction.
// Every other active or installed generation becomes retired.
func (g *generationRepository) Activate(ctx context.Context, generation int64, at time.Time) error {
	log := logger.FromContext(ctx)

	retireQuery, retireArgs, err := buildRetireActiveQuery(g.builder(), generation)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	activateQuery, activateArgs, err := buildActivateGenerationQuery(g.builder(), generation, at)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	tx, err := g.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "generationRepository.Activate").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, activateQuery, activateArgs...)
	if err != nil {
		log.Err(err).Str("func", "generationRepository.Activate").Int64("generation", generation).Msg("failed to activate generation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrGenerationNotFound
	}

	if _, err = tx.ExecContext(ctx, retireQuery, retireArgs...); err != nil {
		log.Err(err).Str("func", "generationRepository.Activate").Int64("generation", generation).Msg("failed to retire old generations")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "generationRepository.Activate").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (g *generationRepository) getOne(ctx context.Context, funcName string, where sq.Sqlizer) (models.Generation, error) {
	query, args, err := buildGetGenerationQuery(g.builder(), where)
	if err != nil {
		return models.Generation{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return g.scanOne(ctx, funcName, query, args)
}

func (g *generationRepository) scanOne(ctx context.Context, funcName, query string, args []any) (models.Generation, error) {
	log := logger.FromContext(ctx)

	var (
		gen         models.Generation
		status      string
		activatedAt sql.NullTime
	)
	err := g.DB.QueryRowContext(ctx, query, args...).Scan(
		&gen.Generation,
		&gen.ManifestHash,
		&status,
		&gen.CreatedAt,
		&activatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Generation{}, ErrGenerationNotFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to read generation")
		return models.Generation{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	gen.Status = models.GenerationStatus(status)
	if activatedAt.Valid {
		t := activatedAt.Time
		gen.ActivatedAt = &t
	}

	return gen, nil
}
