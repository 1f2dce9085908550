package repository

import (
	"context"
	"fmt"

	"reqflow/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository is the persistence boundary for request rows. The
// guarded transition update and the advisory-locked ID sequence are the two
// pieces the state machine's correctness leans on.
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id string) (*model.Request, error)
	// FindByIDForUpdate locks the row (SELECT ... FOR UPDATE) for the
	// duration of the ambient transaction.
	FindByIDForUpdate(ctx context.Context, id string) (*model.Request, error)
	ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]model.Request, error)
	ListPendingForApprover(ctx context.Context, role model.Role, groupIDs []int64, anyGroup bool) ([]model.Request, error)
	// ListTouchedBy returns requests the user created or appears in the
	// approval history of.
	ListTouchedBy(ctx context.Context, userID uuid.UUID, userName string) ([]model.Request, error)
	// NextID allocates the next sequential human-readable id ("req-NNN").
	// Must run inside a transaction; the advisory lock serializes
	// concurrent creators.
	NextID(ctx context.Context) (string, error)
	// UpdateTransition persists the outcome of an approve/reject guarded by
	// the previously observed (PENDING, approver) pair and reports how many
	// rows matched. Zero means a concurrent writer got there first.
	UpdateTransition(ctx context.Context, req *model.Request, expectedApprover model.Role) (int64, error)
	UpdatePayload(ctx context.Context, req *model.Request) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).Preload("Requester").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	// Requester is loaded separately so the row lock stays on requests only.
	var requester model.User
	if err := GetDB(ctx, r.db).First(&requester, "id = ?", req.RequesterID).Error; err == nil {
		req.Requester = &requester
	}
	return &req, nil
}

func (r *requestRepository) ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]model.Request, error) {
	var requests []model.Request
	if err := GetDB(ctx, r.db).Preload("Requester").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListPendingForApprover(ctx context.Context, role model.Role, groupIDs []int64, anyGroup bool) ([]model.Request, error) {
	db := GetDB(ctx, r.db)
	query := db.Preload("Requester").
		Joins("LEFT JOIN users u ON u.id = requests.requester_id").
		Where("requests.status = ? AND requests.current_approver = ?", model.StatusPending, role)

	if !anyGroup {
		if len(groupIDs) == 0 {
			// An approver without any group sees nothing.
			query = query.Where("1 = 0")
		} else {
			// Overlap with the requester's groups, or the requester has no
			// groups recorded at all (permissive default).
			query = query.Where(
				"(u.group_ids && ?::integer[] OR u.group_ids IS NULL OR array_length(u.group_ids, 1) IS NULL)",
				pq.Int64Array(groupIDs),
			)
		}
	}

	var requests []model.Request
	if err := query.Order("requests.created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListTouchedBy(ctx context.Context, userID uuid.UUID, userName string) ([]model.Request, error) {
	var requests []model.Request
	err := GetDB(ctx, r.db).Preload("Requester").
		Where(`requester_id = ? OR EXISTS (
			SELECT 1 FROM jsonb_array_elements(approval_history) AS elem
			WHERE elem->>'approverName' = ?
		)`, userID, userName).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) NextID(ctx context.Context) (string, error) {
	db := GetDB(ctx, r.db)

	// Serialize concurrent creators; the lock releases on commit/rollback.
	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "requests_id_seq").Error; err != nil {
		return "", err
	}

	var maxSuffix int64
	if err := db.Model(&model.Request{}).
		Select("COALESCE(MAX(CAST(SUBSTRING(id FROM 5) AS INTEGER)), 0)").
		Scan(&maxSuffix).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("req-%03d", maxSuffix+1), nil
}

func (r *requestRepository) UpdateTransition(ctx context.Context, req *model.Request, expectedApprover model.Role) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Request{}).
		Where("id = ? AND status = ? AND current_approver = ?", req.ID, model.StatusPending, expectedApprover).
		Select("Status", "CurrentApprover", "ApprovalHistory", "RejectionReason").
		Updates(req)
	return res.RowsAffected, res.Error
}

func (r *requestRepository) UpdatePayload(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Model(&model.Request{}).
		Where("id = ?", req.ID).
		Update("payload", req.Payload).Error
}
