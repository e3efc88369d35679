// AngelaMos | 2026
// resolver_test.go

package rbac

import (
	"testing"
)

func TestCan_Totality(t *testing.T) {
	// Every (role, resource, action) triple must resolve without panicking,
	// and listed pairs must agree with Allowed.
	for _, role := range Roles() {
		for _, resource := range Resources() {
			allowed := make(map[Action]bool)
			for _, a := range Allowed(role, resource) {
				allowed[a] = true
			}

			for _, action := range Actions() {
				actor := Actor{ID: "op-1", Role: role}
				got := Can(actor, resource, action)
				if got != allowed[action] {
					t.Errorf(
						"Can(%s, %s, %s) = %v, Allowed says %v",
						role, resource, action, got, allowed[action],
					)
				}
			}
		}
	}
}

func TestCan_FailClosed(t *testing.T) {
	tests := []struct {
		name     string
		actor    Actor
		resource Resource
		action   Action
	}{
		{
			name:     "unknown role",
			actor:    Actor{Role: Role("intern")},
			resource: ResourceCustomers,
			action:   ActionRead,
		},
		{
			name:     "unknown resource",
			actor:    Actor{Role: RoleSuperAdmin},
			resource: Resource("vehicles"),
			action:   ActionRead,
		},
		{
			name:     "unknown action",
			actor:    Actor{Role: RoleSuperAdmin},
			resource: ResourceCustomers,
			action:   Action("export_everything"),
		},
		{
			name:     "empty actor",
			actor:    Actor{},
			resource: ResourceAdmins,
			action:   ActionDelete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Can(tt.actor, tt.resource, tt.action) {
				t.Errorf("expected deny for %s", tt.name)
			}
		})
	}
}

func TestCan_ModeratorCannotDeletePartners(t *testing.T) {
	actor := Actor{ID: "op-2", Role: RoleModerator}

	if Can(actor, ResourcePartners, ActionDelete) {
		t.Error("moderator must not delete partners")
	}
	if !Can(actor, ResourcePartners, ActionRead) {
		t.Error("moderator should read partners")
	}
}

func TestCan_NoImplicitHierarchy(t *testing.T) {
	// admin holds manage_permissions on admins while moderator holds
	// nothing there; super_admin's grants come from its own row, not from
	// subsuming admin's.
	admin := Actor{Role: RoleAdmin}
	if Can(admin, ResourceAdmins, ActionDelete) {
		t.Error("admin must not delete admins")
	}
	if !Can(admin, ResourceAdmins, ActionManagePermissions) {
		t.Error("admin should hold manage_permissions on admins")
	}

	super := Actor{Role: RoleSuperAdmin}
	if !Can(super, ResourceAdmins, ActionDelete) {
		t.Error("super_admin should delete admins")
	}
}

func TestCan_UniversalGrantSentinel(t *testing.T) {
	actor := Actor{
		ID:          "op-3",
		Role:        RoleModerator,
		Permissions: []string{"manage_users", PermissionAll},
	}

	for _, resource := range Resources() {
		for _, action := range Actions() {
			if !Can(actor, resource, action) {
				t.Errorf(
					"universal grant must allow %s on %s",
					action, resource,
				)
			}
		}
	}

	// Sentinel applies even with an unknown role.
	ghost := Actor{Role: Role("ghost"), Permissions: []string{PermissionAll}}
	if !Can(ghost, ResourceCustomers, ActionDelete) {
		t.Error("universal grant must bypass the matrix entirely")
	}
}

func TestCan_Deterministic(t *testing.T) {
	actor := Actor{Role: RoleAdmin}
	first := Can(actor, ResourceTechnicians, ActionManageAvailability)
	for i := 0; i < 100; i++ {
		if Can(actor, ResourceTechnicians, ActionManageAvailability) != first {
			t.Fatal("resolver must be deterministic")
		}
	}
}

func TestAllowed_UnlistedPairEmpty(t *testing.T) {
	if got := Allowed(Role("contractor"), ResourceCustomers); len(got) != 0 {
		t.Errorf("unknown role should yield empty set, got %v", got)
	}
	if got := Allowed(RoleModerator, ResourceAdmins); len(got) != 0 {
		t.Errorf("moderator on admins should be empty, got %v", got)
	}
}
