package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/core"
)

func Test_ParseRole(t *testing.T) {
	for _, valid := range []string{"member", "librarian", "admin"} {
		role, err := core.ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, core.Role(valid), role)
	}

	_, err := core.ParseRole("superuser")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func Test_Role_IsStaff(t *testing.T) {
	assert.False(t, core.RoleMember.IsStaff())
	assert.True(t, core.RoleLibrarian.IsStaff())
	assert.True(t, core.RoleAdmin.IsStaff())
}

func Test_User_Validate(t *testing.T) {
	valid := core.User{Name: "Ada", Email: "ada@example.com", Role: core.RoleMember}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = " "
	assert.ErrorIs(t, noName.Validate(), core.ErrValidation)

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.ErrorIs(t, badEmail.Validate(), core.ErrValidation)

	badRole := valid
	badRole.Role = "owner"
	assert.ErrorIs(t, badRole.Validate(), core.ErrValidation)
}
