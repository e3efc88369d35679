// AngelaMos | 2026
// dto.go

package account

import (
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

type CreateAccountRequest struct {
	Name   string `json:"name"   validate:"required,min=1,max=100"`
	Email  string `json:"email"  validate:"required,email,max=255"`
	Phone  string `json:"phone"  validate:"omitempty,max=32"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive suspended"`

	Customer   *CustomerProfile   `json:"customer,omitempty"`
	Technician *TechnicianProfile `json:"technician,omitempty"`
	Partner    *PartnerProfile    `json:"partner,omitempty"`
	Admin      *AdminProfile      `json:"admin,omitempty"`
}

type UpdateAccountRequest struct {
	Name       *string `json:"name,omitempty"        validate:"omitempty,min=1,max=100"`
	Email      *string `json:"email,omitempty"       validate:"omitempty,email,max=255"`
	Phone      *string `json:"phone,omitempty"       validate:"omitempty,max=32"`
	Status     *string `json:"status,omitempty"      validate:"omitempty,oneof=active inactive suspended"`
	LastActive *string `json:"last_active,omitempty" validate:"omitempty,max=64"`

	Customer   *CustomerPatch   `json:"customer,omitempty"`
	Technician *TechnicianPatch `json:"technician,omitempty"`
	Partner    *PartnerPatch    `json:"partner,omitempty"`
}

type CustomerPatch struct {
	MembershipType *string `json:"membership_type,omitempty" validate:"omitempty,oneof=Premium Standard"`
	Location       *string `json:"location,omitempty"        validate:"omitempty,max=255"`
}

type TechnicianPatch struct {
	Rating      *string   `json:"rating,omitempty"      validate:"omitempty,max=8"`
	Specialties *[]string `json:"specialties,omitempty"`
	IsOnline    *bool     `json:"is_online,omitempty"`
}

type PartnerPatch struct {
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Domain      *string `json:"domain,omitempty"       validate:"omitempty,max=255"`
	Plan        *string `json:"plan,omitempty"         validate:"omitempty,oneof=starter pro enterprise"`
}

// UpdateProfileRequest is the self-service subset: contact fields only,
// persisted remotely before the local collection is touched.
type UpdateProfileRequest struct {
	Name  string `json:"name"  validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type AssignRoleRequest struct {
	Role        rbac.Role `json:"role"        validate:"required,oneof=super_admin admin moderator"`
	Permissions []string  `json:"permissions" validate:"omitempty,dive,min=1,max=64"`
}

type AccountResponse struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive string    `json:"last_active"`

	Customer   *CustomerProfile   `json:"customer,omitempty"`
	Technician *TechnicianProfile `json:"technician,omitempty"`
	Partner    *PartnerProfile    `json:"partner,omitempty"`
	Admin      *AdminProfile      `json:"admin,omitempty"`
}

type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Total    int               `json:"total"`
}

func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		Type:       a.Type,
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
		LastActive: a.LastActive,
		Customer:   a.Customer,
		Technician: a.Technician,
		Partner:    a.Partner,
		Admin:      a.Admin,
	}
}

func ToAccountResponseList(accounts []Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, ToAccountResponse(&accounts[i]))
	}
	return responses
}
