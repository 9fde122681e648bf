package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librarium/librarium/auth"
	"github.com/librarium/librarium/core"
)

func Test_Gate_CapabilitySets(t *testing.T) {
	gate := auth.NewGate()

	testCases := []struct {
		role      core.Role
		action    auth.Action
		permitted bool
	}{
		{core.RoleMember, auth.ActionReadCatalog, true},
		{core.RoleMember, auth.ActionBorrow, true},
		{core.RoleMember, auth.ActionViewOwnLoans, true},
		{core.RoleMember, auth.ActionManageCatalog, false},
		{core.RoleMember, auth.ActionManageLoans, false},
		{core.RoleMember, auth.ActionManageMembers, false},
		{core.RoleMember, auth.ActionManageStaff, false},

		{core.RoleLibrarian, auth.ActionManageCatalog, true},
		{core.RoleLibrarian, auth.ActionManageLoans, true},
		{core.RoleLibrarian, auth.ActionManageMembers, true},
		{core.RoleLibrarian, auth.ActionManageStaff, false},

		{core.RoleAdmin, auth.ActionManageCatalog, true},
		{core.RoleAdmin, auth.ActionManageStaff, true},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.permitted, gate.Allows(tc.role, tc.action),
			"%s / %s", tc.role, tc.action)
	}
}

func Test_Gate_UnauthenticatedMayOnlyReadCatalog(t *testing.T) {
	gate := auth.NewGate()

	assert.NoError(t, gate.Authorize(nil, auth.ActionReadCatalog))

	err := gate.Authorize(nil, auth.ActionBorrow)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func Test_Gate_DeniedActionIsForbiddenNotUnauthorized(t *testing.T) {
	gate := auth.NewGate()
	member := core.User{ID: "u1", Role: core.RoleMember}

	err := gate.Authorize(&member, auth.ActionManageCatalog)

	assert.ErrorIs(t, err, core.ErrForbidden)
}

func Test_Gate_UserAdmin_StaffAccountsAreAdminTerritory(t *testing.T) {
	gate := auth.NewGate()

	librarian := core.User{Role: core.RoleLibrarian}
	admin := core.User{Role: core.RoleAdmin}

	// librarians manage member accounts
	assert.NoError(t, gate.AuthorizeUserAdmin(librarian, core.RoleMember))

	// but anything touching staff accounts requires admin
	assert.ErrorIs(t, gate.AuthorizeUserAdmin(librarian, core.RoleLibrarian), core.ErrForbidden)
	assert.ErrorIs(t, gate.AuthorizeUserAdmin(librarian, core.RoleAdmin), core.ErrForbidden)

	assert.NoError(t, gate.AuthorizeUserAdmin(admin, core.RoleLibrarian))
	assert.NoError(t, gate.AuthorizeUserAdmin(admin, core.RoleAdmin))

	// members manage nobody
	member := core.User{Role: core.RoleMember}
	assert.ErrorIs(t, gate.AuthorizeUserAdmin(member, core.RoleMember), core.ErrForbidden)
}
