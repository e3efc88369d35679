// AngelaMos | 2026
// entity.go

package account

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

type Type string

const (
	TypeCustomer   Type = "customer"
	TypeTechnician Type = "technician"
	TypePartner    Type = "partner"
	TypeAdmin      Type = "admin"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeCustomer, TypeTechnician, TypePartner, TypeAdmin:
		return true
	}
	return false
}

// Resource maps an account type to its rbac resource category.
func (t Type) Resource() rbac.Resource {
	switch t {
	case TypeCustomer:
		return rbac.ResourceCustomers
	case TypeTechnician:
		return rbac.ResourceTechnicians
	case TypePartner:
		return rbac.ResourcePartners
	case TypeAdmin:
		return rbac.ResourceAdmins
	}
	return ""
}

// TypeForResource is the inverse mapping (customers -> customer, ...).
func TypeForResource(r rbac.Resource) (Type, bool) {
	switch r {
	case rbac.ResourceCustomers:
		return TypeCustomer, true
	case rbac.ResourceTechnicians:
		return TypeTechnician, true
	case rbac.ResourcePartners:
		return TypePartner, true
	case rbac.ResourceAdmins:
		return TypeAdmin, true
	}
	return "", false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Account is one record in the managed directory. Type discriminates which
// profile pointer is set; exactly one profile is non-nil and the pairing
// never changes after creation.
type Account struct {
	ID         string
	Type       Type
	Name       string
	Email      string
	Phone      string
	Status     Status
	CreatedAt  time.Time
	LastActive string

	Customer   *CustomerProfile
	Technician *TechnicianProfile
	Partner    *PartnerProfile
	Admin      *AdminProfile

	// Operator credentials, populated for admin-type accounts only.
	PasswordHash string
	TokenVersion int
}

type CustomerProfile struct {
	MembershipType string `json:"membership_type"`
	Location       string `json:"location"`
	TotalServices  int    `json:"total_services"`
	TotalSpent     string `json:"total_spent"`
}

type TechnicianProfile struct {
	TechID        string   `json:"tech_id"`
	Rating        string   `json:"rating"`
	Specialties   []string `json:"specialties"`
	IsOnline      bool     `json:"is_online"`
	CompletedJobs int      `json:"completed_jobs"`
	Earnings      string   `json:"earnings"`
}

type PartnerProfile struct {
	CompanyName    string `json:"company_name"`
	Domain         string `json:"domain"`
	Plan           string `json:"plan"`
	ActiveUsers    int    `json:"active_users"`
	MonthlyRevenue string `json:"monthly_revenue"`
}

type AdminProfile struct {
	Role        rbac.Role `json:"role"`
	Permissions []string  `json:"permissions"`
	LastLogin   string    `json:"last_login"`
}

const (
	MembershipPremium  = "Premium"
	MembershipStandard = "Standard"
)

const (
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// planOrdinal orders partner plans for sorting.
var planOrdinal = map[string]int{
	PlanStarter:    1,
	PlanPro:        2,
	PlanEnterprise: 3,
}

// roleOrdinal orders admin roles for sorting.
var roleOrdinal = map[rbac.Role]int{
	rbac.RoleModerator:  1,
	rbac.RoleAdmin:      2,
	rbac.RoleSuperAdmin: 3,
}

// Validate checks the tagged-union invariant: the profile matching Type is
// set and all others are nil.
func (a *Account) Validate() error {
	if !a.Type.IsValid() {
		return fmt.Errorf("invalid account type %q", a.Type)
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("invalid account status %q", a.Status)
	}

	set := 0
	if a.Customer != nil {
		set++
	}
	if a.Technician != nil {
		set++
	}
	if a.Partner != nil {
		set++
	}
	if a.Admin != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("account %s: expected exactly one profile, got %d", a.ID, set)
	}

	var matched bool
	switch a.Type {
	case TypeCustomer:
		matched = a.Customer != nil
	case TypeTechnician:
		matched = a.Technician != nil
	case TypePartner:
		matched = a.Partner != nil
	case TypeAdmin:
		matched = a.Admin != nil
	}
	if !matched {
		return fmt.Errorf("account %s: profile does not match type %s", a.ID, a.Type)
	}

	return nil
}

// Clone returns a deep copy so the store can hand out snapshots without
// aliasing profile pointers.
func (a Account) Clone() Account {
	out := a
	if a.Customer != nil {
		c := *a.Customer
		out.Customer = &c
	}
	if a.Technician != nil {
		tp := *a.Technician
		tp.Specialties = append([]string(nil), a.Technician.Specialties...)
		out.Technician = &tp
	}
	if a.Partner != nil {
		p := *a.Partner
		out.Partner = &p
	}
	if a.Admin != nil {
		ap := *a.Admin
		ap.Permissions = append([]string(nil), a.Admin.Permissions...)
		out.Admin = &ap
	}
	return out
}
