package workflow

import "reqflow/internal/model"

// hierarchies maps each request type to its ordered approval chain. Each
// role appears at most once per chain; the first entry is the initial
// approver of a newly created request.
var hierarchies = map[model.RequestType][]model.Role{
	model.RequestTypeFileTransfer: {
		model.RoleGroupLead,
		model.RoleDeputy,
		model.RoleNetworkHead,
		model.RoleNetworkAdmin,
	},
	model.RequestTypeBackup: {
		model.RoleGroupLead,
		model.RoleNetworkHead,
		model.RoleNetworkAdmin,
	},
	model.RequestTypeVDI: {
		model.RoleDeputy,
		model.RoleNetworkHead,
		model.RoleNetworkAdmin,
	},
}

// HierarchyFor returns the ordered approver chain for a request type.
// An unknown type falls back to the full file-transfer chain, the longest
// and safest default. The returned slice is a copy.
func HierarchyFor(requestType model.RequestType) []model.Role {
	chain, ok := hierarchies[requestType]
	if !ok {
		chain = hierarchies[model.RequestTypeFileTransfer]
	}
	out := make([]model.Role, len(chain))
	copy(out, chain)
	return out
}

// FirstApprover returns hierarchy[0] for the type.
func FirstApprover(requestType model.RequestType) model.Role {
	return HierarchyFor(requestType)[0]
}

// roleIndex returns the position of role in the chain, or -1.
func roleIndex(chain []model.Role, role model.Role) int {
	for i, r := range chain {
		if r == role {
			return i
		}
	}
	return -1
}
