// AngelaMos | 2026
// query_test.go

package account

import (
	"testing"
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

func sampleDirectory() []Account {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	return []Account{
		{
			ID: "customer-1", Type: TypeCustomer,
			Name: "Sarah Mitchell", Email: "sarah.m@email.com",
			Phone: "+1 555-0101", Status: StatusActive,
			CreatedAt: base, LastActive: "2 hours ago",
			Customer: &CustomerProfile{
				MembershipType: MembershipPremium, Location: "San Francisco, CA",
				TotalServices: 12, TotalSpent: "$1,450",
			},
		},
		{
			ID: "customer-2", Type: TypeCustomer,
			Name: "James Wong", Email: "jwong@email.com",
			Phone: "+1 555-0102", Status: StatusActive,
			CreatedAt: base.Add(24 * time.Hour), LastActive: "Just now",
			Customer: &CustomerProfile{
				MembershipType: MembershipStandard, Location: "Oakland, CA",
				TotalServices: 3, TotalSpent: "$210",
			},
		},
		{
			ID: "customer-3", Type: TypeCustomer,
			Name: "Amara Diallo", Email: "amara.d@email.com",
			Phone: "+1 555-0103", Status: StatusSuspended,
			CreatedAt: base.Add(48 * time.Hour), LastActive: "1 day ago",
			Customer: &CustomerProfile{
				MembershipType: MembershipPremium, Location: "San Jose, CA",
				TotalServices: 7, TotalSpent: "$820",
			},
		},
		{
			ID: "tech-1", Type: TypeTechnician,
			Name: "Mike Rodriguez", Email: "mike.r@roadassist.com",
			Phone: "+1 555-0201", Status: StatusActive,
			CreatedAt: base, LastActive: "Online now",
			Technician: &TechnicianProfile{
				TechID: "T-4401", Rating: "4.9",
				Specialties: []string{"towing", "battery"},
				IsOnline:    true, CompletedJobs: 310, Earnings: "$12,300",
			},
		},
		{
			ID: "tech-2", Type: TypeTechnician,
			Name: "Dana Mitchellson", Email: "dana.m@roadassist.com",
			Phone: "+1 555-0202", Status: StatusActive,
			CreatedAt: base.Add(time.Hour), LastActive: "3 hours ago",
			Technician: &TechnicianProfile{
				TechID: "T-4402", Rating: "4.2",
				Specialties: []string{"lockout"},
				IsOnline:    false, CompletedJobs: 87, Earnings: "$3,900",
			},
		},
		{
			ID: "partner-1", Type: TypePartner,
			Name: "Elena Petrova", Email: "elena@fleetco.com",
			Phone: "+1 555-0301", Status: StatusActive,
			CreatedAt: base, LastActive: "5 minutes ago",
			Partner: &PartnerProfile{
				CompanyName: "FleetCo", Domain: "fleetco.com",
				Plan: PlanEnterprise, ActiveUsers: 1200, MonthlyRevenue: "$8,400",
			},
		},
		{
			ID: "partner-2", Type: TypePartner,
			Name: "Omar Haddad", Email: "omar@quickhaul.io",
			Phone: "+1 555-0302", Status: StatusInactive,
			CreatedAt: base.Add(2 * time.Hour), LastActive: "4 days ago",
			Partner: &PartnerProfile{
				CompanyName: "QuickHaul", Domain: "quickhaul.io",
				Plan: PlanStarter, ActiveUsers: 45, MonthlyRevenue: "$600",
			},
		},
		{
			ID: "admin-1", Type: TypeAdmin,
			Name: "Priya Sharma", Email: "priya@roadassist.com",
			Phone: "+1 555-0401", Status: StatusActive,
			CreatedAt: base, LastActive: "Just now",
			Admin: &AdminProfile{
				Role:        rbac.RoleSuperAdmin,
				Permissions: []string{"all"},
			},
		},
	}
}

func ids(accounts []Account) []string {
	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply_CategoryFilter(t *testing.T) {
	dir := sampleDirectory()

	got := Apply(dir, ListParams{Category: rbac.ResourceTechnicians})
	if len(got) != 2 {
		t.Fatalf("expected 2 technicians, got %d", len(got))
	}
	for _, a := range got {
		if a.Type != TypeTechnician {
			t.Errorf("category filter leaked %s account %s", a.Type, a.ID)
		}
	}
}

func TestApply_UnknownCategoryEmpty(t *testing.T) {
	got := Apply(sampleDirectory(), ListParams{Category: "drivers"})
	if len(got) != 0 {
		t.Fatalf("unknown category should match nothing, got %d", len(got))
	}
}

func TestApply_SearchCaseInsensitive(t *testing.T) {
	dir := sampleDirectory()

	// "mitchell" hits Sarah Mitchell by name; Dana Mitchellson is a
	// substring hit too, but she is a technician.
	got := Apply(dir, ListParams{
		Category: rbac.ResourceCustomers,
		Search:   "MITCHELL",
	})
	if len(got) != 1 || got[0].ID != "customer-1" {
		t.Fatalf("expected [customer-1], got %v", ids(got))
	}

	got = Apply(dir, ListParams{
		Category: rbac.ResourceTechnicians,
		Search:   "mitchell",
	})
	if len(got) != 1 || got[0].ID != "tech-2" {
		t.Fatalf("expected [tech-2], got %v", ids(got))
	}
}

func TestApply_SearchMatchesEmailAndPhone(t *testing.T) {
	dir := sampleDirectory()

	got := Apply(dir, ListParams{
		Category: rbac.ResourcePartners,
		Search:   "quickhaul.io",
	})
	if len(got) != 1 || got[0].ID != "partner-2" {
		t.Fatalf("email search: expected [partner-2], got %v", ids(got))
	}

	got = Apply(dir, ListParams{
		Category: rbac.ResourceCustomers,
		Search:   "555-0103",
	})
	if len(got) != 1 || got[0].ID != "customer-3" {
		t.Fatalf("phone search: expected [customer-3], got %v", ids(got))
	}
}

func TestApply_StatusFilter(t *testing.T) {
	dir := sampleDirectory()

	got := Apply(dir, ListParams{
		Category: rbac.ResourceCustomers,
		Status:   "suspended",
	})
	if len(got) != 1 || got[0].ID != "customer-3" {
		t.Fatalf("expected [customer-3], got %v", ids(got))
	}

	got = Apply(dir, ListParams{
		Category: rbac.ResourceCustomers,
		Status:   FilterAll,
	})
	if len(got) != 3 {
		t.Fatalf("status=all should keep all 3 customers, got %d", len(got))
	}
}

func TestApply_FacetFilters(t *testing.T) {
	dir := sampleDirectory()

	tests := []struct {
		name     string
		category rbac.Resource
		facet    string
		want     []string
	}{
		{"premium customers", rbac.ResourceCustomers, MembershipPremium,
			[]string{"customer-3", "customer-1"}},
		{"online technicians", rbac.ResourceTechnicians, "online",
			[]string{"tech-1"}},
		{"offline technicians", rbac.ResourceTechnicians, "offline",
			[]string{"tech-2"}},
		{"enterprise partners", rbac.ResourcePartners, PlanEnterprise,
			[]string{"partner-1"}},
		{"super_admin admins", rbac.ResourceAdmins, "super_admin",
			[]string{"admin-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(dir, ListParams{
				Category: tt.category,
				Facet:    tt.facet,
			}))
			if !equalIDs(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_FiltersAreConjunctive(t *testing.T) {
	dir := sampleDirectory()

	got := Apply(dir, ListParams{
		Category: rbac.ResourceCustomers,
		Search:   "email.com",
		Status:   "active",
		Facet:    MembershipPremium,
	})
	if len(got) != 1 || got[0].ID != "customer-1" {
		t.Fatalf("expected [customer-1], got %v", ids(got))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	dir := sampleDirectory()
	before := ids(dir)

	Apply(dir, ListParams{
		Category: rbac.ResourceCustomers,
		SortBy:   SortByName,
		SortDir:  SortDesc,
	})

	if !equalIDs(ids(dir), before) {
		t.Fatal("Apply reordered the input slice")
	}
}

func TestApply_SortByNameDesc(t *testing.T) {
	got := ids(Apply(sampleDirectory(), ListParams{
		Category: rbac.ResourceCustomers,
		SortBy:   SortByName,
		SortDir:  SortDesc,
	}))
	want := []string{"customer-1", "customer-2", "customer-3"}
	if !equalIDs(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestApply_SortByLastActive(t *testing.T) {
	// "4 days ago" is outside the recency heuristic and parks at the zero
	// instant, so partner-2 sorts oldest.
	got := ids(Apply(sampleDirectory(), ListParams{
		Category: rbac.ResourcePartners,
		SortBy:   SortByLastActive,
		SortDir:  SortAsc,
	}))
	want := []string{"partner-2", "partner-1"}
	if !equalIDs(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestApply_VariantKeyOnMismatchedCategoryIsNoOp(t *testing.T) {
	// Sorting customers by a technician-only key compares everything
	// equal; the stable sort preserves insertion order.
	got := ids(Apply(sampleDirectory(), ListParams{
		Category: rbac.ResourceCustomers,
		SortBy:   SortByRating,
	}))
	want := []string{"customer-1", "customer-2", "customer-3"}
	if !equalIDs(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestApply_VariantSortKeys(t *testing.T) {
	dir := []Account{
		{ID: "tech-veteran", Type: TypeTechnician, Name: "Vera Okafor",
			Technician: &TechnicianProfile{Rating: "9.5", CompletedJobs: 412}},
		{ID: "tech-top", Type: TypeTechnician, Name: "Theo Lindqvist",
			Technician: &TechnicianProfile{Rating: "10.0", CompletedJobs: 38}},
		{ID: "tech-new", Type: TypeTechnician, Name: "Nina Castillo",
			Technician: &TechnicianProfile{Rating: "4.2", CompletedJobs: 87}},
		{ID: "partner-pro", Type: TypePartner, Name: "Midtown Towing",
			Partner: &PartnerProfile{Plan: PlanPro, ActiveUsers: 80}},
		{ID: "partner-ent", Type: TypePartner, Name: "FleetWorks",
			Partner: &PartnerProfile{Plan: PlanEnterprise, ActiveUsers: 12}},
		{ID: "partner-starter", Type: TypePartner, Name: "HaulQuick",
			Partner: &PartnerProfile{Plan: PlanStarter, ActiveUsers: 500}},
		{ID: "admin-super", Type: TypeAdmin, Name: "Sana Qureshi",
			Admin: &AdminProfile{Role: rbac.RoleSuperAdmin}},
		{ID: "admin-mod", Type: TypeAdmin, Name: "Marcus Bell",
			Admin: &AdminProfile{Role: rbac.RoleModerator}},
		{ID: "admin-plain", Type: TypeAdmin, Name: "Ada Nwosu",
			Admin: &AdminProfile{Role: rbac.RoleAdmin}},
		{ID: "cust-std", Type: TypeCustomer, Name: "Stan Petrov",
			Customer: &CustomerProfile{MembershipType: MembershipStandard}},
		{ID: "cust-prem", Type: TypeCustomer, Name: "Pria Venkat",
			Customer: &CustomerProfile{MembershipType: MembershipPremium}},
	}

	tests := []struct {
		name     string
		category rbac.Resource
		sortBy   SortKey
		dir      string
		want     []string
	}{
		// Ratings are decimal strings; "10.0" must outrank "9.5", which a
		// lexical compare would invert.
		{"rating desc is numeric", rbac.ResourceTechnicians,
			SortByRating, SortDesc,
			[]string{"tech-top", "tech-veteran", "tech-new"}},
		{"completed jobs asc", rbac.ResourceTechnicians,
			SortByCompletedJobs, SortAsc,
			[]string{"tech-top", "tech-new", "tech-veteran"}},
		{"plan ordinal asc", rbac.ResourcePartners,
			SortByPlan, SortAsc,
			[]string{"partner-starter", "partner-pro", "partner-ent"}},
		{"plan ordinal desc", rbac.ResourcePartners,
			SortByPlan, SortDesc,
			[]string{"partner-ent", "partner-pro", "partner-starter"}},
		{"active users asc", rbac.ResourcePartners,
			SortByActiveUsers, SortAsc,
			[]string{"partner-ent", "partner-pro", "partner-starter"}},
		{"admin role ordinal asc", rbac.ResourceAdmins,
			SortByRole, SortAsc,
			[]string{"admin-mod", "admin-plain", "admin-super"}},
		{"admin role ordinal desc", rbac.ResourceAdmins,
			SortByRole, SortDesc,
			[]string{"admin-super", "admin-plain", "admin-mod"}},
		{"membership asc", rbac.ResourceCustomers,
			SortByMembership, SortAsc,
			[]string{"cust-prem", "cust-std"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(dir, ListParams{
				Category: tt.category,
				SortBy:   tt.sortBy,
				SortDir:  tt.dir,
			}))
			if !equalIDs(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	params := ListParams{
		Category: rbac.ResourceCustomers,
		SortBy:   SortByCreatedAt,
		SortDir:  SortDesc,
	}
	first := ids(Apply(sampleDirectory(), params))
	second := ids(Apply(sampleDirectory(), params))
	if !equalIDs(first, second) {
		t.Fatalf("same params, different orders: %v vs %v", first, second)
	}
}

func TestToggle(t *testing.T) {
	p := ListParams{SortBy: SortByName, SortDir: SortAsc}

	flipped := p.Toggle(SortByName)
	if flipped.SortDir != SortDesc {
		t.Errorf("re-selecting active key should flip to desc, got %s",
			flipped.SortDir)
	}

	back := flipped.Toggle(SortByName)
	if back.SortDir != SortAsc {
		t.Errorf("double toggle should restore asc, got %s", back.SortDir)
	}

	switched := flipped.Toggle(SortByEmail)
	if switched.SortBy != SortByEmail || switched.SortDir != SortAsc {
		t.Errorf("new key should reset to asc, got %s/%s",
			switched.SortBy, switched.SortDir)
	}
}

func TestToggle_DoubleToggleRestoresOrder(t *testing.T) {
	dir := sampleDirectory()
	p := ListParams{Category: rbac.ResourceCustomers, SortBy: SortByName}

	original := ids(Apply(dir, p))
	twice := p.Toggle(SortByName).Toggle(SortByName)
	restored := ids(Apply(dir, twice))

	if !equalIDs(original, restored) {
		t.Fatalf("double toggle changed order: %v vs %v", original, restored)
	}
}

func TestLastActiveInstant(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"Online now", now},
		{"Just now", now},
		{"5 minutes ago", now.Add(-5 * time.Minute)},
		{"1 minute ago", now.Add(-time.Minute)},
		{"2 hours ago", now.Add(-2 * time.Hour)},
		{"1 day ago", now.Add(-24 * time.Hour)},
		// Plural days and anything unrecognized park at the zero instant.
		{"3 days ago", time.Time{}},
		{"last week", time.Time{}},
		{"", time.Time{}},
	}

	for _, tt := range tests {
		if got := lastActiveInstant(now, tt.in); !got.Equal(tt.want) {
			t.Errorf("lastActiveInstant(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
