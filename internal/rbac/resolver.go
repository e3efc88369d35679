// AngelaMos | 2026
// resolver.go

package rbac

// Role is an operator role on the admin dashboard.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// Resource is a managed account category.
type Resource string

const (
	ResourceCustomers   Resource = "customers"
	ResourceTechnicians Resource = "technicians"
	ResourcePartners    Resource = "partners"
	ResourceAdmins      Resource = "admins"
)

func (r Resource) IsValid() bool {
	switch r {
	case ResourceCustomers, ResourceTechnicians, ResourcePartners,
		ResourceAdmins:
		return true
	}
	return false
}

type Action string

const (
	ActionCreate             Action = "create"
	ActionRead               Action = "read"
	ActionUpdate             Action = "update"
	ActionDelete             Action = "delete"
	ActionManagePremium      Action = "manage_premium"
	ActionManageRatings      Action = "manage_ratings"
	ActionManageAvailability Action = "manage_availability"
	ActionManageContracts    Action = "manage_contracts"
	ActionManageBilling      Action = "manage_billing"
	ActionManagePermissions  Action = "manage_permissions"
)

// PermissionAll is the universal-grant sentinel. An actor whose permission
// list contains it bypasses the matrix entirely.
const PermissionAll = "all"

type actionSet map[Action]struct{}

func actions(as ...Action) actionSet {
	set := make(actionSet, len(as))
	for _, a := range as {
		set[a] = struct{}{}
	}
	return set
}

// matrix enumerates every role's action set per resource independently.
// There is no implicit hierarchy: super_admin does not inherit from admin,
// each cell is spelled out. Unlisted pairs deny.
var matrix = map[Role]map[Resource]actionSet{
	RoleSuperAdmin: {
		ResourceCustomers: actions(
			ActionCreate, ActionRead, ActionUpdate, ActionDelete,
			ActionManagePremium,
		),
		ResourceTechnicians: actions(
			ActionCreate, ActionRead, ActionUpdate, ActionDelete,
			ActionManageRatings, ActionManageAvailability,
		),
		ResourcePartners: actions(
			ActionCreate, ActionRead, ActionUpdate, ActionDelete,
			ActionManageContracts, ActionManageBilling,
		),
		ResourceAdmins: actions(
			ActionCreate, ActionRead, ActionUpdate, ActionDelete,
			ActionManagePermissions,
		),
	},
	RoleAdmin: {
		ResourceCustomers: actions(
			ActionCreate, ActionRead, ActionUpdate, ActionDelete,
			ActionManagePremium,
		),
		ResourceTechnicians: actions(
			ActionCreate, ActionRead, ActionUpdate, ActionDelete,
			ActionManageAvailability,
		),
		ResourcePartners: actions(
			ActionRead, ActionUpdate,
		),
		ResourceAdmins: actions(
			ActionRead, ActionManagePermissions,
		),
	},
	RoleModerator: {
		ResourceCustomers: actions(
			ActionRead, ActionUpdate,
		),
		ResourceTechnicians: actions(
			ActionRead,
		),
		ResourcePartners: actions(
			ActionRead,
		),
		ResourceAdmins: actions(),
	},
}

// Actor is the authenticated operator performing a check, as supplied by
// the session layer (JWT claims).
type Actor struct {
	ID          string
	Role        Role
	Permissions []string
}

// HasUniversalGrant reports whether the actor's permission list carries the
// "all" sentinel.
func (a Actor) HasUniversalGrant() bool {
	for _, p := range a.Permissions {
		if p == PermissionAll {
			return true
		}
	}
	return false
}

// Can answers whether the actor may perform action on resource. Pure and
// total: unknown roles, resources, or actions deny rather than error.
func Can(actor Actor, resource Resource, action Action) bool {
	if actor.HasUniversalGrant() {
		return true
	}

	byResource, ok := matrix[actor.Role]
	if !ok {
		return false
	}

	set, ok := byResource[resource]
	if !ok {
		return false
	}

	_, allowed := set[action]
	return allowed
}

// Allowed returns the full action set for a (role, resource) pair, empty for
// unlisted pairs. Used by the dashboard to decide which buttons to render.
func Allowed(role Role, resource Resource) []Action {
	byResource, ok := matrix[role]
	if !ok {
		return nil
	}

	set, ok := byResource[resource]
	if !ok {
		return nil
	}

	out := make([]Action, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	return out
}

// Roles lists every role the matrix knows about.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleModerator}
}

// Resources lists every resource the matrix knows about.
func Resources() []Resource {
	return []Resource{
		ResourceCustomers,
		ResourceTechnicians,
		ResourcePartners,
		ResourceAdmins,
	}
}

// Actions lists every action the matrix can grant.
func Actions() []Action {
	return []Action{
		ActionCreate,
		ActionRead,
		ActionUpdate,
		ActionDelete,
		ActionManagePremium,
		ActionManageRatings,
		ActionManageAvailability,
		ActionManageContracts,
		ActionManageBilling,
		ActionManagePermissions,
	}
}
