package workflow

import (
	"fmt"

	"reqflow/internal/model"
)

// CanAct decides whether actor may approve or reject the request right now.
// requesterGroupIDs are the groups of the request's requester, loaded
// alongside the request row. Read-only; returns nil when allowed, otherwise
// ErrInvalidState (request not pending), ErrAuthorization (wrong role or
// disjoint groups).
func CanAct(actor *model.User, req *model.Request, requesterGroupIDs []int64) error {
	if req.Status != model.StatusPending || req.CurrentApprover == nil {
		return fmt.Errorf("%w: request %s is %s", ErrInvalidState, req.ID, req.Status)
	}
	if *req.CurrentApprover != actor.Role {
		return fmt.Errorf("%w: request %s awaits %s", ErrAuthorization, req.ID, *req.CurrentApprover)
	}

	// Group 0 overrides the overlap check entirely.
	if actor.IsAdminGroup() {
		return nil
	}

	// Permissive default when the requester has no groups recorded.
	if len(requesterGroupIDs) == 0 {
		return nil
	}

	for _, gid := range requesterGroupIDs {
		for _, own := range actor.GroupIDs {
			if gid == own {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: no shared group with requester of %s", ErrAuthorization, req.ID)
}
