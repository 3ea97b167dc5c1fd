package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/database"
	"github.com/hpcl-dt/be-procurement/internal/model"
)

// ExceptionStore persists exception records in exception_records.
type ExceptionStore struct {
	db *database.DB
}

// NewExceptionStore creates a new ExceptionStore.
func NewExceptionStore(db *database.DB) *ExceptionStore {
	return &ExceptionStore{db: db}
}

const exceptionColumns = `
	id, exception_id, pr_id, description, severity, status,
	resolution, resolved_by, resolved_at, created_at`

func (s *ExceptionStore) FindAll(ctx context.Context) ([]model.ExceptionRecord, error) {
	return s.list(ctx, `SELECT `+exceptionColumns+` FROM exception_records ORDER BY id`)
}

func (s *ExceptionStore) FindByExceptionID(ctx context.Context, exceptionID string) (*model.ExceptionRecord, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+exceptionColumns+` FROM exception_records WHERE exception_id = $1`, exceptionID)
	rec, err := scanException(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("exception", exceptionID)
	}
	return rec, err
}

func (s *ExceptionStore) FindByPrID(ctx context.Context, prID string) ([]model.ExceptionRecord, error) {
	return s.list(ctx,
		`SELECT `+exceptionColumns+` FROM exception_records WHERE pr_id = $1 ORDER BY id`, prID)
}

func (s *ExceptionStore) FindByStatus(ctx context.Context, status string) ([]model.ExceptionRecord, error) {
	return s.list(ctx,
		`SELECT `+exceptionColumns+` FROM exception_records WHERE status = $1 ORDER BY id`, status)
}

func (s *ExceptionStore) FindBySeverity(ctx context.Context, severity string) ([]model.ExceptionRecord, error) {
	return s.list(ctx,
		`SELECT `+exceptionColumns+` FROM exception_records WHERE severity = $1 ORDER BY id`, severity)
}

func (s *ExceptionStore) Save(ctx context.Context, rec *model.ExceptionRecord) error {
	if rec.ID == 0 {
		query := `
			INSERT INTO exception_records
			    (exception_id, pr_id, description, severity, status,
			     resolution, resolved_by, resolved_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		return s.db.QueryRow(ctx, query,
			rec.ExceptionID, rec.PrID, rec.Description, rec.Severity, rec.Status,
			rec.Resolution, rec.ResolvedBy, rec.ResolvedAt, rec.CreatedAt,
		).Scan(&rec.ID)
	}

	query := `
		UPDATE exception_records
		SET severity    = $2,
		    status      = $3,
		    resolution  = $4,
		    resolved_by = $5,
		    resolved_at = $6
		WHERE id = $1
		RETURNING id
	`
	var returnedID int64
	err := s.db.QueryRow(ctx, query,
		rec.ID, rec.Severity, rec.Status, rec.Resolution, rec.ResolvedBy, rec.ResolvedAt,
	).Scan(&returnedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound("exception", rec.ExceptionID)
	}
	return err
}

func (s *ExceptionStore) list(ctx context.Context, query string, args ...any) ([]model.ExceptionRecord, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list exceptions")
	}
	defer rows.Close()

	var records []model.ExceptionRecord
	for rows.Next() {
		rec, err := scanException(rows)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to scan exception")
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanException(row rowScanner) (*model.ExceptionRecord, error) {
	rec := &model.ExceptionRecord{}
	err := row.Scan(
		&rec.ID, &rec.ExceptionID, &rec.PrID, &rec.Description, &rec.Severity,
		&rec.Status, &rec.Resolution, &rec.ResolvedBy, &rec.ResolvedAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
