package workflow

import (
	"testing"

	"reqflow/internal/model"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func pendingRequest(rt model.RequestType) *model.Request {
	first := FirstApprover(rt)
	return &model.Request{
		ID:              "req-001",
		RequesterName:   "Alice",
		RequestType:     rt,
		Status:          model.StatusPending,
		CurrentApprover: &first,
		ApprovalHistory: model.ApprovalLog{},
	}
}

func approver(role model.Role, groups ...int64) *model.User {
	return &model.User{Name: "Bob", Role: role, GroupIDs: pq.Int64Array(groups)}
}

func TestCanAct(t *testing.T) {
	t.Run("Matching role and shared group", func(t *testing.T) {
		req := pendingRequest(model.RequestTypeFileTransfer)
		err := CanAct(approver(model.RoleGroupLead, 1, 2), req, []int64{2, 3})
		assert.NoError(t, err)
	})

	t.Run("Wrong role is rejected", func(t *testing.T) {
		req := pendingRequest(model.RequestTypeFileTransfer)
		err := CanAct(approver(model.RoleDeputy, 1), req, []int64{1})
		assert.ErrorIs(t, err, ErrAuthorization)
	})

	t.Run("Disjoint groups are rejected", func(t *testing.T) {
		req := pendingRequest(model.RequestTypeFileTransfer)
		err := CanAct(approver(model.RoleGroupLead, 5, 6), req, []int64{1, 2})
		assert.ErrorIs(t, err, ErrAuthorization)
	})

	t.Run("Admin group overrides group scoping", func(t *testing.T) {
		req := pendingRequest(model.RequestTypeFileTransfer)
		err := CanAct(approver(model.RoleGroupLead, model.AdminGroupID), req, []int64{42})
		assert.NoError(t, err)
	})

	t.Run("Requester without groups is visible to any approver of the role", func(t *testing.T) {
		req := pendingRequest(model.RequestTypeFileTransfer)
		err := CanAct(approver(model.RoleGroupLead, 7), req, nil)
		assert.NoError(t, err)
	})

	t.Run("Terminal request cannot be acted on", func(t *testing.T) {
		req := pendingRequest(model.RequestTypeFileTransfer)
		req.Status = model.StatusRejected
		req.CurrentApprover = nil
		err := CanAct(approver(model.RoleGroupLead, 1), req, []int64{1})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("Pending request with no approver is invalid state", func(t *testing.T) {
		req := pendingRequest(model.RequestTypeFileTransfer)
		req.CurrentApprover = nil
		err := CanAct(approver(model.RoleGroupLead, 1), req, []int64{1})
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}
