package auth

import (
	"fmt"

	"github.com/librarium/librarium/core"
)

// Action is a named capability a role may hold.
type Action string

const (
	// ActionReadCatalog covers the public catalog read paths.
	ActionReadCatalog Action = "read_catalog"

	// ActionBorrow covers creating a loan for oneself.
	ActionBorrow Action = "borrow"

	// ActionViewOwnLoans covers reading one's own borrow history.
	ActionViewOwnLoans Action = "view_own_loans"

	// ActionManageCatalog covers create/update/delete of books, authors and
	// categories, including imports.
	ActionManageCatalog Action = "manage_catalog"

	// ActionManageLoans covers acting on any member's loans: borrowing on
	// behalf, returning, and the unreturned-loans view.
	ActionManageLoans Action = "manage_loans"

	// ActionManageMembers covers administration of member accounts.
	ActionManageMembers Action = "manage_members"

	// ActionManageStaff covers administration of librarian and admin accounts,
	// including promoting and demoting.
	ActionManageStaff Action = "manage_staff"
)

// Roles form an ordered capability set: admin covers librarian covers member.
var capabilities = map[core.Role][]Action{
	core.RoleMember: {
		ActionReadCatalog,
		ActionBorrow,
		ActionViewOwnLoans,
	},
	core.RoleLibrarian: {
		ActionReadCatalog,
		ActionBorrow,
		ActionViewOwnLoans,
		ActionManageCatalog,
		ActionManageLoans,
		ActionManageMembers,
	},
	core.RoleAdmin: {
		ActionReadCatalog,
		ActionBorrow,
		ActionViewOwnLoans,
		ActionManageCatalog,
		ActionManageLoans,
		ActionManageMembers,
		ActionManageStaff,
	},
}

// Gate is the access control gate mapping principals to permitted actions.
type Gate struct {
	permitted map[core.Role]map[Action]struct{}
}

// NewGate creates the gate with the built-in capability sets.
func NewGate() *Gate {
	permitted := make(map[core.Role]map[Action]struct{}, len(capabilities))

	for role, actions := range capabilities {
		set := make(map[Action]struct{}, len(actions))
		for _, action := range actions {
			set[action] = struct{}{}
		}

		permitted[role] = set
	}

	return &Gate{permitted: permitted}
}

// Allows reports whether a role holds a capability.
func (g *Gate) Allows(role core.Role, action Action) bool {
	_, ok := g.permitted[role][action]
	return ok
}

// Authorize resolves an action for a principal. A nil principal is an
// unauthenticated caller, permitted only to read the catalog. No resource
// state is inspected or changed on denial.
func (g *Gate) Authorize(principal *core.User, action Action) error {
	if principal == nil {
		if action == ActionReadCatalog {
			return nil
		}

		return core.ErrUnauthorized
	}

	if !g.Allows(principal.Role, action) {
		return fmt.Errorf("%w: %s may not %s", core.ErrForbidden, principal.Role, action)
	}

	return nil
}

// AuthorizeUserAdmin resolves user administration against a target role.
// Librarians administer member accounts only; anything touching librarian or
// admin accounts - including promoting a member - is admin territory.
func (g *Gate) AuthorizeUserAdmin(actor core.User, targetRole core.Role) error {
	if targetRole.IsStaff() {
		if !g.Allows(actor.Role, ActionManageStaff) {
			return fmt.Errorf("%w: managing %s accounts requires admin", core.ErrForbidden, targetRole)
		}

		return nil
	}

	if !g.Allows(actor.Role, ActionManageMembers) {
		return fmt.Errorf("%w: %s may not manage user accounts", core.ErrForbidden, actor.Role)
	}

	return nil
}
