package workflow

import (
	"testing"

	"reqflow/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestHierarchyFor(t *testing.T) {
	t.Run("FileTransfer", func(t *testing.T) {
		chain := HierarchyFor(model.RequestTypeFileTransfer)
		assert.Equal(t, []model.Role{
			model.RoleGroupLead,
			model.RoleDeputy,
			model.RoleNetworkHead,
			model.RoleNetworkAdmin,
		}, chain)
	})

	t.Run("Backup skips deputy", func(t *testing.T) {
		chain := HierarchyFor(model.RequestTypeBackup)
		assert.Equal(t, []model.Role{
			model.RoleGroupLead,
			model.RoleNetworkHead,
			model.RoleNetworkAdmin,
		}, chain)
		assert.NotContains(t, chain, model.RoleDeputy)
	})

	t.Run("VDI skips group lead", func(t *testing.T) {
		chain := HierarchyFor(model.RequestTypeVDI)
		assert.Equal(t, []model.Role{
			model.RoleDeputy,
			model.RoleNetworkHead,
			model.RoleNetworkAdmin,
		}, chain)
		assert.NotContains(t, chain, model.RoleGroupLead)
	})

	t.Run("Unknown type falls back to file transfer chain", func(t *testing.T) {
		chain := HierarchyFor(model.RequestType("SOMETHING_ELSE"))
		assert.Equal(t, HierarchyFor(model.RequestTypeFileTransfer), chain)
	})

	t.Run("Returned slice is a copy", func(t *testing.T) {
		chain := HierarchyFor(model.RequestTypeBackup)
		chain[0] = model.RoleRequester
		assert.Equal(t, model.RoleGroupLead, HierarchyFor(model.RequestTypeBackup)[0])
	})

	t.Run("Every chain is non-empty, unique and never contains requester", func(t *testing.T) {
		for _, rt := range []model.RequestType{model.RequestTypeFileTransfer, model.RequestTypeBackup, model.RequestTypeVDI} {
			chain := HierarchyFor(rt)
			assert.NotEmpty(t, chain)
			seen := map[model.Role]bool{}
			for _, role := range chain {
				assert.NotEqual(t, model.RoleRequester, role)
				assert.False(t, seen[role], "role %s appears twice in %s chain", role, rt)
				seen[role] = true
			}
		}
	})
}

func TestFirstApprover(t *testing.T) {
	assert.Equal(t, model.RoleGroupLead, FirstApprover(model.RequestTypeFileTransfer))
	assert.Equal(t, model.RoleGroupLead, FirstApprover(model.RequestTypeBackup))
	assert.Equal(t, model.RoleDeputy, FirstApprover(model.RequestTypeVDI))
}
