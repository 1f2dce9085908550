package workflow

import (
	"fmt"
	"strings"
	"time"

	"reqflow/internal/model"
)

// MaxRejectionReasonLen bounds the trimmed rejection reason.
const MaxRejectionReasonLen = 500

// ApplyApproval advances req one step along its hierarchy on behalf of
// actor. On the last step the request becomes COMPLETED and loses its
// current approver; otherwise it stays PENDING and moves to the next role.
// The request is only mutated after all preconditions pass; on error the
// caller's copy is untouched.
func ApplyApproval(req *model.Request, actor *model.User, requesterGroupIDs []int64, now time.Time) error {
	if err := CanAct(actor, req, requesterGroupIDs); err != nil {
		return err
	}

	chain := HierarchyFor(req.RequestType)
	idx := roleIndex(chain, actor.Role)
	if idx < 0 {
		// CanAct already matched actor.Role against CurrentApprover, so the
		// role must sit somewhere in the chain.
		return fmt.Errorf("%w: role %s is not part of the %s chain", ErrInvalidState, actor.Role, req.RequestType)
	}
	isLast := idx == len(chain)-1

	entryStatus := model.StatusApproved
	if isLast {
		entryStatus = model.StatusCompleted
	}
	req.ApprovalHistory = append(req.ApprovalHistory, model.Approval{
		ApproverRole: actor.Role,
		ApproverName: actor.Name,
		Status:       entryStatus,
		Date:         now,
	})

	if isLast {
		req.Status = model.StatusCompleted
		req.CurrentApprover = nil
	} else {
		next := chain[idx+1]
		req.Status = model.StatusPending
		req.CurrentApprover = &next
	}
	return nil
}

// ApplyRejection terminates req with a REJECTED status on behalf of actor.
// The reason is trimmed and must be 1..MaxRejectionReasonLen characters.
// Rejection short-circuits the remaining hierarchy; the request is immutable
// afterwards.
func ApplyRejection(req *model.Request, actor *model.User, requesterGroupIDs []int64, reason string, now time.Time) error {
	if err := CanAct(actor, req, requesterGroupIDs); err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Validationf("rejection reason is required")
	}
	if len(reason) > MaxRejectionReasonLen {
		return Validationf("rejection reason must be at most %d characters", MaxRejectionReasonLen)
	}

	req.ApprovalHistory = append(req.ApprovalHistory, model.Approval{
		ApproverRole:    actor.Role,
		ApproverName:    actor.Name,
		Status:          model.StatusRejected,
		Date:            now,
		RejectionReason: reason,
	})
	req.Status = model.StatusRejected
	req.CurrentApprover = nil
	req.RejectionReason = reason
	return nil
}
