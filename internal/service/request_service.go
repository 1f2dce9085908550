package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"reqflow/internal/model"
	"reqflow/internal/repository"
	ws "reqflow/internal/websocket"
	"reqflow/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRequestDTO struct {
	RequestType model.RequestType `json:"request_type" binding:"required,oneof=FILE_TRANSFER BACKUP VDI"`
	Payload     json.RawMessage   `json:"payload" binding:"required"`
}

type RejectRequestDTO struct {
	Reason string `json:"reason"`
}

type SetLetterNumberDTO struct {
	LetterNumber string `json:"letter_number" binding:"required"`
}

type ApprovalEntry struct {
	ApproverRole    model.Role   `json:"approver_role"`
	ApproverName    string       `json:"approver_name"`
	Status          model.Status `json:"status"`
	Date            string       `json:"date"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
}

type RequestResponse struct {
	ID                string            `json:"id"`
	RequesterID       string            `json:"requester_id"`
	RequesterName     string            `json:"requester_name"`
	RequesterGroupIDs []int64           `json:"requester_group_ids"`
	Department        string            `json:"department"`
	RequestType       model.RequestType `json:"request_type"`
	Payload           json.RawMessage   `json:"payload"`
	Status            model.Status      `json:"status"`
	CurrentApprover   *model.Role       `json:"current_approver"`
	ApprovalHistory   []ApprovalEntry   `json:"approval_history"`
	RejectionReason   string            `json:"rejection_reason,omitempty"`
	CreatedAt         string            `json:"created_at"`
}

// --- Interface ---

type RequestService interface {
	CreateRequest(ctx context.Context, actorID string, req CreateRequestDTO) (RequestResponse, error)
	// ListRequests returns the role-scoped working view: a requester's own
	// requests, or the pending items awaiting the approver's role within
	// their group scope.
	ListRequests(ctx context.Context, actorID string) ([]RequestResponse, error)
	// ListHistory returns every request the user created or acted on.
	ListHistory(ctx context.Context, actorID string) ([]RequestResponse, error)
	ApproveRequest(ctx context.Context, id string, actorID string) (RequestResponse, error)
	RejectRequest(ctx context.Context, id string, actorID string, reason string) (RequestResponse, error)
	SetLetterNumber(ctx context.Context, id, fileID, actorID, letterNumber string) (RequestResponse, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub // optional, nil in tests
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *requestService) CreateRequest(ctx context.Context, actorID string, req CreateRequestDTO) (RequestResponse, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return RequestResponse{}, err
	}

	payload, err := model.ParsePayload(req.RequestType, datatypes.JSON(req.Payload))
	if err != nil {
		return RequestResponse{}, fmt.Errorf("%w: %s", workflow.ErrValidation, err)
	}
	if err := payload.Validate(); err != nil {
		return RequestResponse{}, fmt.Errorf("%w: %s", workflow.ErrValidation, err)
	}

	firstApprover := workflow.FirstApprover(req.RequestType)
	request := model.Request{
		RequesterID:     actor.ID,
		RequesterName:   actor.Name,
		Department:      actor.Department,
		RequestType:     req.RequestType,
		Payload:         datatypes.JSON(req.Payload),
		Status:          model.StatusPending,
		CurrentApprover: &firstApprover,
		ApprovalHistory: model.ApprovalLog{},
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		id, idErr := s.requestRepo.NextID(txCtx)
		if idErr != nil {
			return fmt.Errorf("failed to allocate request id: %w", idErr)
		}
		request.ID = id

		if createErr := s.requestRepo.Create(txCtx, &request); createErr != nil {
			return fmt.Errorf("failed to create request: %w", createErr)
		}

		return s.audit(txCtx, actor, model.ActionCreateRequest, request.ID, string(request.RequestType), map[string]interface{}{
			"request_type": request.RequestType,
		})
	})
	if err != nil {
		return RequestResponse{}, err
	}

	s.publish("REQUEST_CREATED", &request)
	return s.toResponse(&request, actor.GroupIDs), nil
}

func (s *requestService) ListRequests(ctx context.Context, actorID string) ([]RequestResponse, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var requests []model.Request
	if actor.Role == model.RoleRequester {
		requests, err = s.requestRepo.ListForRequester(ctx, actor.ID)
	} else {
		requests, err = s.requestRepo.ListPendingForApprover(ctx, actor.Role, actor.GroupIDs, actor.IsAdminGroup())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return s.toResponses(requests), nil
}

func (s *requestService) ListHistory(ctx context.Context, actorID string) ([]RequestResponse, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.ListTouchedBy(ctx, actor.ID, actor.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	return s.toResponses(requests), nil
}

func (s *requestService) ApproveRequest(ctx context.Context, id string, actorID string) (RequestResponse, error) {
	return s.transition(ctx, id, actorID, model.ActionApproveRequest,
		func(req *model.Request, actor *model.User, groups []int64) error {
			return workflow.ApplyApproval(req, actor, groups, time.Now())
		})
}

func (s *requestService) RejectRequest(ctx context.Context, id string, actorID string, reason string) (RequestResponse, error) {
	return s.transition(ctx, id, actorID, model.ActionRejectRequest,
		func(req *model.Request, actor *model.User, groups []int64) error {
			return workflow.ApplyRejection(req, actor, groups, reason, time.Now())
		})
}

// transition runs one approve/reject as a single transaction: lock the row,
// run the pure state machine, persist with the guarded update, audit. A
// guarded update matching zero rows means a concurrent writer won the race.
func (s *requestService) transition(
	ctx context.Context,
	id, actorID, auditAction string,
	apply func(req *model.Request, actor *model.User, groups []int64) error,
) (RequestResponse, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return RequestResponse{}, err
	}

	var updated *model.Request
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requestRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("request %s: %w", id, workflow.ErrNotFound)
			}
			return fmt.Errorf("failed to load request: %w", findErr)
		}

		var requesterGroups []int64
		if req.Requester != nil {
			requesterGroups = req.Requester.GroupIDs
		}

		// CanAct inside apply guarantees CurrentApprover is non-nil past
		// this point; capture it before the state machine moves it.
		observedApprover := req.CurrentApprover

		if applyErr := apply(req, actor, requesterGroups); applyErr != nil {
			return applyErr
		}

		rows, updateErr := s.requestRepo.UpdateTransition(txCtx, req, *observedApprover)
		if updateErr != nil {
			return fmt.Errorf("failed to persist transition: %w", updateErr)
		}
		if rows == 0 {
			return fmt.Errorf("request %s: %w", id, workflow.ErrConflict)
		}

		details := map[string]interface{}{
			"request_type": req.RequestType,
			"status":       req.Status,
		}
		if req.Status == model.StatusRejected {
			details["reason"] = req.RejectionReason
		}
		if auditErr := s.audit(txCtx, actor, auditAction, req.ID, string(req.RequestType), details); auditErr != nil {
			return auditErr
		}

		updated = req
		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}

	event := "REQUEST_APPROVED"
	if updated.Status == model.StatusRejected {
		event = "REQUEST_REJECTED"
	}
	s.publish(event, updated)

	var groups []int64
	if updated.Requester != nil {
		groups = updated.Requester.GroupIDs
	}
	return s.toResponse(updated, groups), nil
}

func (s *requestService) SetLetterNumber(ctx context.Context, id, fileID, actorID, letterNumber string) (RequestResponse, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return RequestResponse{}, err
	}

	letterNumber = strings.TrimSpace(letterNumber)
	if letterNumber == "" {
		return RequestResponse{}, fmt.Errorf("%w: letter number is required", workflow.ErrValidation)
	}

	var updated *model.Request
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requestRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("request %s: %w", id, workflow.ErrNotFound)
			}
			return fmt.Errorf("failed to load request: %w", findErr)
		}

		if req.RequesterID != actor.ID {
			return fmt.Errorf("%w: only the requester may set a letter number", workflow.ErrAuthorization)
		}
		if req.RequestType != model.RequestTypeFileTransfer {
			return fmt.Errorf("%w: letter numbers only apply to file transfer requests", workflow.ErrValidation)
		}

		payload, parseErr := model.ParsePayload(req.RequestType, req.Payload)
		if parseErr != nil {
			return fmt.Errorf("failed to decode payload: %w", parseErr)
		}
		files := payload.(model.FileTransferPayload)

		idx := -1
		for i, f := range files {
			if f.ID == fileID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("file %s: %w", fileID, workflow.ErrNotFound)
		}
		if strings.TrimSpace(files[idx].LetterNumber) != "" {
			return fmt.Errorf("%w: letter number is already set and cannot be changed", workflow.ErrValidation)
		}
		files[idx].LetterNumber = letterNumber

		raw, marshalErr := json.Marshal(files)
		if marshalErr != nil {
			return fmt.Errorf("failed to encode payload: %w", marshalErr)
		}
		req.Payload = datatypes.JSON(raw)

		if updateErr := s.requestRepo.UpdatePayload(txCtx, req); updateErr != nil {
			return fmt.Errorf("failed to persist payload: %w", updateErr)
		}

		if auditErr := s.audit(txCtx, actor, model.ActionSetLetterNumber, req.ID, fileID, map[string]interface{}{
			"file_id":       fileID,
			"letter_number": letterNumber,
		}); auditErr != nil {
			return auditErr
		}

		updated = req
		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}

	var groups []int64
	if updated.Requester != nil {
		groups = updated.Requester.GroupIDs
	}
	return s.toResponse(updated, groups), nil
}

// --- Helpers ---

func (s *requestService) loadUser(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid user id: %w", workflow.ErrValidation)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, workflow.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *requestService) audit(ctx context.Context, actor *model.User, action, entityID, entityName string, details map[string]interface{}) error {
	raw, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(raw),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *requestService) publish(event string, req *model.Request) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(ws.Event{
		Type:      event,
		RequestID: req.ID,
		Status:    req.Status,
		Approver:  req.CurrentApprover,
	})
}

func (s *requestService) toResponses(requests []model.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		var groups []int64
		if requests[i].Requester != nil {
			groups = requests[i].Requester.GroupIDs
		}
		out = append(out, s.toResponse(&requests[i], groups))
	}
	return out
}

func (s *requestService) toResponse(req *model.Request, requesterGroups []int64) RequestResponse {
	history := make([]ApprovalEntry, 0, len(req.ApprovalHistory))
	for _, a := range req.ApprovalHistory {
		history = append(history, ApprovalEntry{
			ApproverRole:    a.ApproverRole,
			ApproverName:    a.ApproverName,
			Status:          a.Status,
			Date:            a.Date.Format(time.RFC3339),
			RejectionReason: a.RejectionReason,
		})
	}

	if requesterGroups == nil {
		requesterGroups = []int64{}
	}

	return RequestResponse{
		ID:                req.ID,
		RequesterID:       req.RequesterID.String(),
		RequesterName:     req.RequesterName,
		RequesterGroupIDs: requesterGroups,
		Department:        req.Department,
		RequestType:       req.RequestType,
		Payload:           json.RawMessage(req.Payload),
		Status:            req.Status,
		CurrentApprover:   req.CurrentApprover,
		ApprovalHistory:   history,
		RejectionReason:   req.RejectionReason,
		CreatedAt:         req.CreatedAt.Format(time.RFC3339),
	}
}
