// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

var (
	// ErrConfirmationRequired gates destructive mutations: deletion without
	// the explicit confirmation flag performs nothing.
	ErrConfirmationRequired = errors.New("confirmation required")

	ErrPasswordFieldsRequired = fmt.Errorf(
		"all password fields are required: %w", core.ErrInvalidInput)
	ErrPasswordMismatch = fmt.Errorf(
		"new password and confirmation do not match: %w", core.ErrInvalidInput)
	ErrPasswordTooShort = fmt.Errorf(
		"new password must be at least %d characters: %w",
		minPasswordLength, core.ErrInvalidInput)
)

const minPasswordLength = 6

// PasswordRotator is the auth collaborator behind the change-password flow.
type PasswordRotator interface {
	RotatePassword(ctx context.Context, accountID, newPassword string) error
}

// Service owns the directory collection and applies every mutation through
// the permission resolver. Confirmed mutations write through to the
// repository before the in-memory store is touched, so the store never
// shows unpersisted state.
type Service struct {
	store   *Store
	repo    Repository
	rotator PasswordRotator
}

func NewService(store *Store, repo Repository) *Service {
	return &Service{store: store, repo: repo}
}

// SetPasswordRotator wires the auth collaborator after both services exist.
func (s *Service) SetPasswordRotator(rotator PasswordRotator) {
	s.rotator = rotator
}

func denied(action rbac.Action, category rbac.Resource) error {
	return fmt.Errorf("%s on %s: %w", action, category, core.ErrForbidden)
}

func (s *Service) List(
	actor rbac.Actor,
	params ListParams,
) ([]Account, error) {
	if !rbac.Can(actor, params.Category, rbac.ActionRead) {
		return nil, denied(rbac.ActionRead, params.Category)
	}

	return Apply(s.store.Snapshot(), params), nil
}

func (s *Service) Get(
	actor rbac.Actor,
	category rbac.Resource,
	id string,
) (*Account, error) {
	if !rbac.Can(actor, category, rbac.ActionRead) {
		return nil, denied(rbac.ActionRead, category)
	}

	account, err := s.find(category, id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) Create(
	ctx context.Context,
	actor rbac.Actor,
	category rbac.Resource,
	req CreateAccountRequest,
) (*Account, error) {
	if !rbac.Can(actor, category, rbac.ActionCreate) {
		return nil, denied(rbac.ActionCreate, category)
	}

	typ, ok := TypeForResource(category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q: %w", category, core.ErrInvalidInput)
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("name and email are required: %w", core.ErrInvalidInput)
	}

	status := Status(req.Status)
	if req.Status == "" {
		status = StatusActive
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status %q: %w", req.Status, core.ErrInvalidInput)
	}

	account := Account{
		ID:         s.newID(typ),
		Type:       typ,
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      req.Phone,
		Status:     status,
		CreatedAt:  time.Now(),
		LastActive: "Just now",
	}

	if err := attachProfile(&account, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &account); err != nil {
		return nil, err
	}

	s.store.Add(account)
	return &account, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor rbac.Actor,
	category rbac.Resource,
	id string,
	req UpdateAccountRequest,
) (*Account, error) {
	if !rbac.Can(actor, category, rbac.ActionUpdate) {
		return nil, denied(rbac.ActionUpdate, category)
	}

	account, err := s.find(category, id)
	if err != nil {
		return nil, err
	}

	// id, type and created_at never change on update.
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", core.ErrInvalidInput)
		}
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, fmt.Errorf("email cannot be empty: %w", core.ErrInvalidInput)
		}
		account.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		account.Phone = *req.Phone
	}
	if req.Status != nil {
		status := Status(*req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("invalid status %q: %w", *req.Status, core.ErrInvalidInput)
		}
		account.Status = status
	}
	if req.LastActive != nil {
		account.LastActive = *req.LastActive
	}

	if err := mergePatches(account, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}

	s.store.Replace(*account)
	return account, nil
}

// Delete removes the record permanently. The confirmed flag is the server
// side of the dashboard's confirmation dialog: without it nothing happens.
func (s *Service) Delete(
	ctx context.Context,
	actor rbac.Actor,
	category rbac.Resource,
	id string,
	confirmed bool,
) error {
	if !rbac.Can(actor, category, rbac.ActionDelete) {
		return denied(rbac.ActionDelete, category)
	}

	if !confirmed {
		return ErrConfirmationRequired
	}

	if _, err := s.find(category, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return err
	}

	s.store.Remove(id)
	return nil
}

// UpdateProfile is the self-service contact edit. The repository write goes
// first; a persistence failure leaves the in-memory record untouched so the
// list never shows unconfirmed remote state.
func (s *Service) UpdateProfile(
	ctx context.Context,
	actor rbac.Actor,
	category rbac.Resource,
	id string,
	req UpdateProfileRequest,
) (*Account, error) {
	current, err := s.find(category, id)
	if err != nil {
		return nil, err
	}

	if !rbac.Can(actor, category, rbac.ActionRead) {
		return nil, denied(rbac.ActionRead, category)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required: %w", core.ErrInvalidInput)
	}

	if err := s.repo.UpdateContact(ctx, id, name, email, req.Phone); err != nil {
		return nil, err
	}

	current.Name = name
	current.Email = email
	current.Phone = req.Phone
	s.store.Replace(*current)

	return current, nil
}

// ChangePassword validates locally, then delegates the rotation to the auth
// collaborator. Each rule violation is reported specifically and no
// collaborator call is made. The current password is collected but not
// re-verified here; the observed dashboard flow never did.
func (s *Service) ChangePassword(
	ctx context.Context,
	actor rbac.Actor,
	category rbac.Resource,
	id string,
	req ChangePasswordRequest,
) error {
	if _, err := s.find(category, id); err != nil {
		return err
	}

	if !rbac.Can(actor, category, rbac.ActionUpdate) {
		return denied(rbac.ActionUpdate, category)
	}

	if req.CurrentPassword == "" || req.NewPassword == "" ||
		req.ConfirmPassword == "" {
		return ErrPasswordFieldsRequired
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(req.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	if s.rotator == nil {
		return fmt.Errorf("change password: no auth collaborator configured")
	}

	return s.rotator.RotatePassword(ctx, id, req.NewPassword)
}

// AssignRole changes an admin account's role and permission list. Beyond the
// manage_permissions grant, an actor whose own role is admin can never hand
// out super_admin; that restriction holds even under the universal-grant
// sentinel.
func (s *Service) AssignRole(
	ctx context.Context,
	actor rbac.Actor,
	id string,
	req AssignRoleRequest,
) (*Account, error) {
	if !rbac.Can(actor, rbac.ResourceAdmins, rbac.ActionManagePermissions) {
		return nil, denied(rbac.ActionManagePermissions, rbac.ResourceAdmins)
	}

	if actor.Role == rbac.RoleAdmin && req.Role == rbac.RoleSuperAdmin {
		return nil, fmt.Errorf(
			"admins cannot assign super_admin: %w", core.ErrForbidden)
	}

	if !req.Role.IsValid() {
		return nil, fmt.Errorf("invalid role %q: %w", req.Role, core.ErrInvalidInput)
	}

	account, err := s.find(rbac.ResourceAdmins, id)
	if err != nil {
		return nil, err
	}

	account.Admin.Role = req.Role
	if req.Permissions != nil {
		account.Admin.Permissions = req.Permissions
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}

	s.store.Replace(*account)
	return account, nil
}

// find fetches by id and checks the record belongs to the category being
// browsed; a cross-category id behaves as missing.
func (s *Service) find(
	category rbac.Resource,
	id string,
) (*Account, error) {
	account, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}

	if account.Type.Resource() != category {
		return nil, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}

	return &account, nil
}

// newID mints `{type}-{nanos}` ids, bumping on the rare collision so two
// rapid creates never collide.
func (s *Service) newID(typ Type) string {
	nanos := time.Now().UnixNano()
	for {
		id := fmt.Sprintf("%s-%d", typ, nanos)
		if !s.store.Has(id) {
			return id
		}
		nanos++
	}
}

func attachProfile(account *Account, req CreateAccountRequest) error {
	mismatch := func(got string) error {
		return fmt.Errorf(
			"%s profile supplied for %s account: %w",
			got, account.Type, core.ErrInvalidInput,
		)
	}

	if req.Customer != nil && account.Type != TypeCustomer {
		return mismatch("customer")
	}
	if req.Technician != nil && account.Type != TypeTechnician {
		return mismatch("technician")
	}
	if req.Partner != nil && account.Type != TypePartner {
		return mismatch("partner")
	}
	if req.Admin != nil && account.Type != TypeAdmin {
		return mismatch("admin")
	}

	switch account.Type {
	case TypeCustomer:
		account.Customer = req.Customer
		if account.Customer == nil {
			account.Customer = &CustomerProfile{
				MembershipType: MembershipStandard,
			}
		}
	case TypeTechnician:
		account.Technician = req.Technician
		if account.Technician == nil {
			account.Technician = &TechnicianProfile{}
		}
	case TypePartner:
		account.Partner = req.Partner
		if account.Partner == nil {
			account.Partner = &PartnerProfile{Plan: PlanStarter}
		}
	case TypeAdmin:
		account.Admin = req.Admin
		if account.Admin == nil {
			account.Admin = &AdminProfile{Role: rbac.RoleModerator}
		}
	}

	return account.Validate()
}

func mergePatches(account *Account, req UpdateAccountRequest) error {
	if req.Customer != nil {
		if account.Customer == nil {
			return fmt.Errorf(
				"customer patch on %s account: %w",
				account.Type, core.ErrInvalidInput,
			)
		}
		if req.Customer.MembershipType != nil {
			account.Customer.MembershipType = *req.Customer.MembershipType
		}
		if req.Customer.Location != nil {
			account.Customer.Location = *req.Customer.Location
		}
	}

	if req.Technician != nil {
		if account.Technician == nil {
			return fmt.Errorf(
				"technician patch on %s account: %w",
				account.Type, core.ErrInvalidInput,
			)
		}
		if req.Technician.Rating != nil {
			account.Technician.Rating = *req.Technician.Rating
		}
		if req.Technician.Specialties != nil {
			account.Technician.Specialties = *req.Technician.Specialties
		}
		if req.Technician.IsOnline != nil {
			account.Technician.IsOnline = *req.Technician.IsOnline
		}
	}

	if req.Partner != nil {
		if account.Partner == nil {
			return fmt.Errorf(
				"partner patch on %s account: %w",
				account.Type, core.ErrInvalidInput,
			)
		}
		if req.Partner.CompanyName != nil {
			account.Partner.CompanyName = *req.Partner.CompanyName
		}
		if req.Partner.Domain != nil {
			account.Partner.Domain = *req.Partner.Domain
		}
		if req.Partner.Plan != nil {
			account.Partner.Plan = *req.Partner.Plan
		}
	}

	return nil
}
