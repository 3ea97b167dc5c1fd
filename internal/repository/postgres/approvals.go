package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/hpcl-dt/be-procurement/internal/apperror"
	"github.com/hpcl-dt/be-procurement/internal/database"
	"github.com/hpcl-dt/be-procurement/internal/model"
)

// ApprovalStore persists approval workflow steps in approvals.
type ApprovalStore struct {
	db *database.DB
}

// NewApprovalStore creates a new ApprovalStore.
func NewApprovalStore(db *database.DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

const approvalColumns = `
	id, pr_id, approval_level, approver_id, approver_name,
	status, comments, acted_by, approved_at, created_at`

const approvalInsert = `
	INSERT INTO approvals
	    (pr_id, approval_level, approver_id, approver_name,
	     status, comments, acted_by, approved_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id
`

// CreateBatch inserts all steps of a workflow instance in one transaction,
// so a failure part-way leaves no partial workflow behind.
func (s *ApprovalStore) CreateBatch(ctx context.Context, approvals []*model.Approval) error {
	return s.db.InTransaction(ctx, func(tx pgx.Tx) error {
		for _, a := range approvals {
			err := tx.QueryRow(ctx, approvalInsert,
				a.PrID, a.ApprovalLevel, a.ApproverID, a.ApproverName,
				a.Status, a.Comments, a.ActedBy, a.ApprovedAt, a.CreatedAt,
			).Scan(&a.ID)
			if err != nil {
				return apperror.Wrap(err, apperror.CodeInternal, "failed to create approval step")
			}
		}
		return nil
	})
}

func (s *ApprovalStore) Save(ctx context.Context, a *model.Approval) error {
	if a.ID == 0 {
		return s.db.QueryRow(ctx, approvalInsert,
			a.PrID, a.ApprovalLevel, a.ApproverID, a.ApproverName,
			a.Status, a.Comments, a.ActedBy, a.ApprovedAt, a.CreatedAt,
		).Scan(&a.ID)
	}

	query := `
		UPDATE approvals
		SET status      = $2,
		    comments    = $3,
		    acted_by    = $4,
		    approved_at = $5
		WHERE id = $1
		RETURNING id
	`
	var returnedID int64
	err := s.db.QueryRow(ctx, query, a.ID, a.Status, a.Comments, a.ActedBy, a.ApprovedAt).Scan(&returnedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound("approval", strconv.FormatInt(a.ID, 10))
	}
	return err
}

func (s *ApprovalStore) FindAll(ctx context.Context) ([]model.Approval, error) {
	return s.list(ctx, `SELECT `+approvalColumns+` FROM approvals ORDER BY id`)
}

func (s *ApprovalStore) FindByID(ctx context.Context, id int64) (*model.Approval, error) {
	row := s.db.QueryRow(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE id = $1`, id)
	a, err := scanApproval(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("approval", strconv.FormatInt(id, 10))
	}
	return a, err
}

func (s *ApprovalStore) FindByPrID(ctx context.Context, prID string) ([]model.Approval, error) {
	return s.list(ctx,
		`SELECT `+approvalColumns+` FROM approvals WHERE pr_id = $1 ORDER BY approval_level`, prID)
}

func (s *ApprovalStore) FindByApproverIDAndStatus(ctx context.Context, approverID, status string) ([]model.Approval, error) {
	return s.list(ctx,
		`SELECT `+approvalColumns+` FROM approvals WHERE approver_id = $1 AND status = $2 ORDER BY id`,
		approverID, status)
}

func (s *ApprovalStore) FindByStatus(ctx context.Context, status string) ([]model.Approval, error) {
	return s.list(ctx,
		`SELECT `+approvalColumns+` FROM approvals WHERE status = $1 ORDER BY id`, status)
}

func (s *ApprovalStore) list(ctx context.Context, query string, args ...any) ([]model.Approval, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list approvals")
	}
	defer rows.Close()

	var approvals []model.Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to scan approval")
		}
		approvals = append(approvals, *a)
	}
	return approvals, rows.Err()
}

func scanApproval(row rowScanner) (*model.Approval, error) {
	a := &model.Approval{}
	err := row.Scan(
		&a.ID, &a.PrID, &a.ApprovalLevel, &a.ApproverID, &a.ApproverName,
		&a.Status, &a.Comments, &a.ActedBy, &a.ApprovedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}
