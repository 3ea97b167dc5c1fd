package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/database"
	"github.com/hpcl-dt/be-procurement/internal/model"
)

// PurchaseRequestStore persists purchase requests in pr_records.
type PurchaseRequestStore struct {
	db *database.DB
}

// NewPurchaseRequestStore creates a new PurchaseRequestStore.
func NewPurchaseRequestStore(db *database.DB) *PurchaseRequestStore {
	return &PurchaseRequestStore{db: db}
}

const prColumns = `
	id, pr_id, description, category, dept, estimated_value_inr,
	currency, required_by_date, status, justification, created_at`

func (s *PurchaseRequestStore) FindAll(ctx context.Context) ([]model.PurchaseRequest, error) {
	rows, err := s.db.Query(ctx, `SELECT `+prColumns+` FROM pr_records ORDER BY id`)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list purchase requests")
	}
	defer rows.Close()

	var prs []model.PurchaseRequest
	for rows.Next() {
		pr, err := scanPR(rows)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to scan purchase request")
		}
		prs = append(prs, *pr)
	}
	return prs, rows.Err()
}

func (s *PurchaseRequestStore) FindByBusinessID(ctx context.Context, prID string) (*model.PurchaseRequest, error) {
	row := s.db.QueryRow(ctx, `SELECT `+prColumns+` FROM pr_records WHERE pr_id = $1`, prID)
	pr, err := scanPR(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("purchase request", prID)
	}
	return pr, err
}

func (s *PurchaseRequestStore) Save(ctx context.Context, pr *model.PurchaseRequest) error {
	if pr.ID == 0 {
		query := `
			INSERT INTO pr_records
			    (pr_id, description, category, dept, estimated_value_inr,
			     currency, required_by_date, status, justification, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`
		return s.db.QueryRow(ctx, query,
			pr.PrID, pr.Description, pr.Category, pr.Department, pr.EstimatedValueInr,
			pr.Currency, pr.RequiredByDate, pr.Status, pr.Justification, pr.CreatedAt,
		).Scan(&pr.ID)
	}

	query := `
		UPDATE pr_records
		SET description         = $2,
		    category            = $3,
		    dept                = $4,
		    estimated_value_inr = $5,
		    required_by_date    = $6,
		    status              = $7,
		    justification       = $8
		WHERE id = $1
		RETURNING id
	`
	var returnedID int64
	err := s.db.QueryRow(ctx, query,
		pr.ID, pr.Description, pr.Category, pr.Department, pr.EstimatedValueInr,
		pr.RequiredByDate, pr.Status, pr.Justification,
	).Scan(&returnedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound("purchase request", pr.PrID)
	}
	return err
}

func scanPR(row rowScanner) (*model.PurchaseRequest, error) {
	pr := &model.PurchaseRequest{}
	err := row.Scan(
		&pr.ID, &pr.PrID, &pr.Description, &pr.Category, &pr.Department,
		&pr.EstimatedValueInr, &pr.Currency, &pr.RequiredByDate, &pr.Status,
		&pr.Justification, &pr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pr, nil
}
