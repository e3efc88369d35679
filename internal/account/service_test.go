// AngelaMos | 2026
// service_test.go

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

// fakeRepo is an in-memory Repository with per-method failure injection.
type fakeRepo struct {
	byID        map[string]*Account
	failCreate  error
	failUpdate  error
	failContact error
	failDelete  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]*Account)}
}

func (f *fakeRepo) Create(_ context.Context, a *Account) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	clone := a.Clone()
	f.byID[a.ID] = &clone
	return nil
}

func (f *fakeRepo) Update(_ context.Context, a *Account) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	if _, ok := f.byID[a.ID]; !ok {
		return fmt.Errorf("update: %w", core.ErrNotFound)
	}
	clone := a.Clone()
	f.byID[a.ID] = &clone
	return nil
}

func (f *fakeRepo) UpdateContact(
	_ context.Context,
	id, name, email, phone string,
) error {
	if f.failContact != nil {
		return f.failContact
	}
	a, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("update contact: %w", core.ErrNotFound)
	}
	a.Name, a.Email, a.Phone = name, email, phone
	return nil
}

func (f *fakeRepo) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	a, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	a.PasswordHash = passwordHash
	return nil
}

func (f *fakeRepo) IncrementTokenVersion(_ context.Context, id string) error {
	a, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	a.TokenVersion++
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("delete: %w", core.ErrNotFound)
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("get: %w", core.ErrNotFound)
	}
	clone := a.Clone()
	return &clone, nil
}

func (f *fakeRepo) GetByEmail(
	_ context.Context,
	email string,
) (*Account, error) {
	for _, a := range f.byID {
		if a.Email == email {
			clone := a.Clone()
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("get by email: %w", core.ErrNotFound)
}

func (f *fakeRepo) LoadAll(_ context.Context) ([]Account, error) {
	out := make([]Account, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a.Clone())
	}
	return out, nil
}

// rotatorSpy records rotation calls.
type rotatorSpy struct {
	calls []string
	err   error
}

func (r *rotatorSpy) RotatePassword(
	_ context.Context,
	accountID, _ string,
) error {
	r.calls = append(r.calls, accountID)
	return r.err
}

func superAdmin() rbac.Actor {
	return rbac.Actor{
		ID:          "admin-0",
		Role:        rbac.RoleSuperAdmin,
		Permissions: []string{rbac.PermissionAll},
	}
}

func moderator() rbac.Actor {
	return rbac.Actor{ID: "admin-9", Role: rbac.RoleModerator}
}

func newTestService(t *testing.T, seed []Account) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	for i := range seed {
		clone := seed[i].Clone()
		repo.byID[clone.ID] = &clone
	}
	return NewService(NewStore(seed), repo), repo
}

func TestCreate_MintsTypedID(t *testing.T) {
	svc, repo := newTestService(t, nil)

	created, err := svc.Create(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		CreateAccountRequest{Name: "Test Person", Email: "tp@email.com"},
	)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !strings.HasPrefix(created.ID, "customer-") {
		t.Errorf("id %q should carry the customer- prefix", created.ID)
	}
	if created.Status != StatusActive {
		t.Errorf("default status should be active, got %s", created.Status)
	}
	if created.LastActive != "Just now" {
		t.Errorf("new accounts report %q, got %q", "Just now", created.LastActive)
	}
	if created.Customer == nil ||
		created.Customer.MembershipType != MembershipStandard {
		t.Error("customer profile should default to Standard membership")
	}
	if _, ok := repo.byID[created.ID]; !ok {
		t.Error("create did not write through to the repository")
	}
}

func TestCreate_RapidIDsNeverCollide(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	actor := superAdmin()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		a, err := svc.Create(ctx, actor, rbac.ResourceTechnicians,
			CreateAccountRequest{
				Name:  fmt.Sprintf("Tech %d", i),
				Email: fmt.Sprintf("tech%d@roadassist.com", i),
			})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[a.ID] {
			t.Fatalf("duplicate id %s", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestCreate_DeniedLeavesCollectionUntouched(t *testing.T) {
	svc, repo := newTestService(t, nil)

	_, err := svc.Create(
		context.Background(),
		moderator(),
		rbac.ResourceCustomers,
		CreateAccountRequest{Name: "Nope", Email: "nope@email.com"},
	)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if svc.store.Len() != 0 || len(repo.byID) != 0 {
		t.Error("denied create must not touch the collection")
	}
}

func TestCreate_RequiresNameAndEmail(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Create(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		CreateAccountRequest{Name: "   ", Email: "x@email.com"},
	)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("blank name should be invalid input, got %v", err)
	}
}

func TestCreate_RejectsMismatchedProfile(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Create(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		CreateAccountRequest{
			Name:    "Wrong Variant",
			Email:   "wv@email.com",
			Partner: &PartnerProfile{CompanyName: "X"},
		},
	)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("partner profile on customer should fail, got %v", err)
	}
}

func TestCreate_PersistenceFailureNotMirrored(t *testing.T) {
	svc, repo := newTestService(t, nil)
	repo.failCreate = errors.New("connection refused")

	_, err := svc.Create(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		CreateAccountRequest{Name: "Ghost", Email: "ghost@email.com"},
	)
	if err == nil {
		t.Fatal("expected repo failure to surface")
	}
	if svc.store.Len() != 0 {
		t.Error("failed create must not appear in the in-memory collection")
	}
}

func TestUpdate_MergesAndPreservesIdentity(t *testing.T) {
	seed := sampleDirectory()
	svc, _ := newTestService(t, seed)

	name := "Sarah Mitchell-Okafor"
	membership := MembershipStandard
	updated, err := svc.Update(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		"customer-1",
		UpdateAccountRequest{
			Name:     &name,
			Customer: &CustomerPatch{MembershipType: &membership},
		},
	)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != name {
		t.Errorf("name not merged, got %q", updated.Name)
	}
	if updated.Customer.MembershipType != MembershipStandard {
		t.Errorf("membership not merged, got %q", updated.Customer.MembershipType)
	}
	if updated.ID != "customer-1" || updated.Type != TypeCustomer {
		t.Error("identity fields must never change on update")
	}
	if !updated.CreatedAt.Equal(seed[0].CreatedAt) {
		t.Error("created_at must never change on update")
	}
	if updated.Customer.Location != seed[0].Customer.Location {
		t.Error("unpatched profile fields must survive the merge")
	}
}

func TestUpdate_CrossCategoryIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, sampleDirectory())

	name := "Renamed"
	_, err := svc.Update(
		context.Background(),
		superAdmin(),
		rbac.ResourceTechnicians,
		"customer-1",
		UpdateAccountRequest{Name: &name},
	)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("customer id under technicians should be not found, got %v", err)
	}
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	svc, repo := newTestService(t, sampleDirectory())

	err := svc.Delete(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		"customer-1",
		false,
	)
	if !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected confirmation gate, got %v", err)
	}
	if !svc.store.Has("customer-1") {
		t.Error("unconfirmed delete removed the record")
	}
	if _, ok := repo.byID["customer-1"]; !ok {
		t.Error("unconfirmed delete reached the repository")
	}
}

func TestDelete_ConfirmedRemovesEverywhere(t *testing.T) {
	svc, repo := newTestService(t, sampleDirectory())

	err := svc.Delete(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		"customer-1",
		true,
	)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if svc.store.Has("customer-1") {
		t.Error("record still in the in-memory collection")
	}
	if _, ok := repo.byID["customer-1"]; ok {
		t.Error("record still in the repository")
	}
}

func TestDelete_DeniedForModerator(t *testing.T) {
	svc, _ := newTestService(t, sampleDirectory())
	before := svc.store.Len()

	err := svc.Delete(
		context.Background(),
		moderator(),
		rbac.ResourceCustomers,
		"customer-1",
		true,
	)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if svc.store.Len() != before {
		t.Error("denied delete changed the collection")
	}
}

func TestUpdateProfile_PersistFirst(t *testing.T) {
	svc, repo := newTestService(t, sampleDirectory())
	repo.failContact = errors.New("network partition")

	_, err := svc.UpdateProfile(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		"customer-1",
		UpdateProfileRequest{Name: "New Name", Email: "new@email.com"},
	)
	if err == nil {
		t.Fatal("expected persistence failure to surface")
	}

	current, _ := svc.store.Get("customer-1")
	if current.Name != "Sarah Mitchell" {
		t.Errorf("failed persist leaked into the collection: %q", current.Name)
	}
}

func TestUpdateProfile_Success(t *testing.T) {
	svc, repo := newTestService(t, sampleDirectory())

	updated, err := svc.UpdateProfile(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		"customer-1",
		UpdateProfileRequest{
			Name:  "Sarah M",
			Email: "Sarah.M@Email.com",
			Phone: "+1 555-9999",
		},
	)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}

	if updated.Email != "sarah.m@email.com" {
		t.Errorf("email should be lowercased, got %q", updated.Email)
	}
	if repo.byID["customer-1"].Phone != "+1 555-9999" {
		t.Error("contact change did not persist")
	}
}

func TestUpdateProfile_CrossCategoryIDIsNotFound(t *testing.T) {
	svc, repo := newTestService(t, sampleDirectory())

	// admin-1 exists, but it is not a customer; browsing the customer
	// category must not reach it.
	_, err := svc.UpdateProfile(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		"admin-1",
		UpdateProfileRequest{Name: "New Name", Email: "new@email.com"},
	)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-category id should be not found, got %v", err)
	}
	if repo.byID["admin-1"].Name != "Priya Sharma" {
		t.Error("cross-category miss must not touch the record")
	}
}

func TestChangePassword_CrossCategoryIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, sampleDirectory())
	spy := &rotatorSpy{}
	svc.SetPasswordRotator(spy)

	err := svc.ChangePassword(
		context.Background(),
		superAdmin(),
		rbac.ResourceCustomers,
		"admin-1",
		ChangePasswordRequest{
			CurrentPassword: "whatever",
			NewPassword:     "newsecret",
			ConfirmPassword: "newsecret",
		},
	)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-category id should be not found, got %v", err)
	}
	if len(spy.calls) != 0 {
		t.Errorf("cross-category miss must not reach the rotator, got %v",
			spy.calls)
	}
}

func TestChangePassword_RuleOrder(t *testing.T) {
	svc, _ := newTestService(t, sampleDirectory())
	spy := &rotatorSpy{}
	svc.SetPasswordRotator(spy)
	ctx := context.Background()
	actor := superAdmin()

	tests := []struct {
		name string
		req  ChangePasswordRequest
		want error
	}{
		{"missing fields", ChangePasswordRequest{
			NewPassword: "secret1", ConfirmPassword: "secret1",
		}, ErrPasswordFieldsRequired},
		{"mismatch", ChangePasswordRequest{
			CurrentPassword: "old", NewPassword: "secret1",
			ConfirmPassword: "secret2",
		}, ErrPasswordMismatch},
		{"too short", ChangePasswordRequest{
			CurrentPassword: "old", NewPassword: "abc",
			ConfirmPassword: "abc",
		}, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(
				ctx, actor, rbac.ResourceAdmins, "admin-1", tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	if len(spy.calls) != 0 {
		t.Errorf("rule violations must not reach the rotator, got %d calls",
			len(spy.calls))
	}
}

func TestChangePassword_DelegatesToRotator(t *testing.T) {
	svc, _ := newTestService(t, sampleDirectory())
	spy := &rotatorSpy{}
	svc.SetPasswordRotator(spy)

	err := svc.ChangePassword(
		context.Background(),
		superAdmin(),
		rbac.ResourceAdmins,
		"admin-1",
		ChangePasswordRequest{
			CurrentPassword: "whatever",
			NewPassword:     "newsecret",
			ConfirmPassword: "newsecret",
		},
	)
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if len(spy.calls) != 1 || spy.calls[0] != "admin-1" {
		t.Fatalf("expected one rotation for admin-1, got %v", spy.calls)
	}
}

func TestAssignRole_AdminCannotGrantSuperAdmin(t *testing.T) {
	svc, _ := newTestService(t, sampleDirectory())

	// Even the universal-grant sentinel does not lift this restriction.
	actor := rbac.Actor{
		ID:          "admin-2",
		Role:        rbac.RoleAdmin,
		Permissions: []string{rbac.PermissionAll},
	}

	_, err := svc.AssignRole(
		context.Background(),
		actor,
		"admin-1",
		AssignRoleRequest{Role: rbac.RoleSuperAdmin},
	)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("admin granting super_admin must be forbidden, got %v", err)
	}
}

func TestAssignRole_SuperAdminGrants(t *testing.T) {
	svc, _ := newTestService(t, sampleDirectory())

	updated, err := svc.AssignRole(
		context.Background(),
		superAdmin(),
		"admin-1",
		AssignRoleRequest{
			Role:        rbac.RoleModerator,
			Permissions: []string{"read"},
		},
	)
	if err != nil {
		t.Fatalf("assign role: %v", err)
	}
	if updated.Admin.Role != rbac.RoleModerator {
		t.Errorf("role not applied, got %s", updated.Admin.Role)
	}
	if len(updated.Admin.Permissions) != 1 ||
		updated.Admin.Permissions[0] != "read" {
		t.Errorf("permissions not applied, got %v", updated.Admin.Permissions)
	}
}

func TestList_DeniedForUnknownRole(t *testing.T) {
	svc, _ := newTestService(t, sampleDirectory())

	_, err := svc.List(
		rbac.Actor{ID: "x", Role: "intern"},
		ListParams{Category: rbac.ResourceCustomers},
	)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("unknown role should fail closed, got %v", err)
	}
}
