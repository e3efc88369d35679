// AngelaMos | 2026
// query.go

package account

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

// FilterAll is the wildcard value for the status and facet dimensions.
const FilterAll = "all"

type SortKey string

const (
	SortByName          SortKey = "name"
	SortByEmail         SortKey = "email"
	SortByStatus        SortKey = "status"
	SortByCreatedAt     SortKey = "created_at"
	SortByLastActive    SortKey = "last_active"
	SortByMembership    SortKey = "membership_type"
	SortByRating        SortKey = "rating"
	SortByCompletedJobs SortKey = "completed_jobs"
	SortByPlan          SortKey = "plan"
	SortByActiveUsers   SortKey = "active_users"
	SortByRole          SortKey = "role"
)

func (k SortKey) IsValid() bool {
	switch k {
	case SortByName, SortByEmail, SortByStatus, SortByCreatedAt,
		SortByLastActive, SortByMembership, SortByRating,
		SortByCompletedJobs, SortByPlan, SortByActiveUsers, SortByRole:
		return true
	}
	return false
}

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListParams drives one recomputation of the visible list. The zero values
// of Search, Status and Facet match everything.
type ListParams struct {
	Category rbac.Resource
	Search   string
	Status   string
	Facet    string
	SortBy   SortKey
	SortDir  string
}

func (p *ListParams) Normalize() {
	if p.Status == "" {
		p.Status = FilterAll
	}
	if p.Facet == "" {
		p.Facet = FilterAll
	}
	if p.SortBy == "" || !p.SortBy.IsValid() {
		p.SortBy = SortByName
	}
	if p.SortDir != SortDesc {
		p.SortDir = SortAsc
	}
}

// Toggle returns the params after the caller selects key: re-selecting the
// active key flips direction, a new key resets to ascending. It is a helper
// for clients that track their own sort state; the list endpoint itself
// takes the direction explicitly and never calls it.
func (p ListParams) Toggle(key SortKey) ListParams {
	next := p
	if p.SortBy == key {
		if p.SortDir == SortAsc {
			next.SortDir = SortDesc
		} else {
			next.SortDir = SortAsc
		}
		return next
	}
	next.SortBy = key
	next.SortDir = SortAsc
	return next
}

// Apply runs the full pipeline: type filter, search, status, facet, then a
// stable sort. Pure: the input slice is not modified and the result is a
// fresh slice. All four filter stages are conjunctive.
func Apply(accounts []Account, params ListParams) []Account {
	params.Normalize()

	typ, ok := TypeForResource(params.Category)
	if !ok {
		return []Account{}
	}

	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Type != typ {
			continue
		}
		if !matchesSearch(a, params.Search) {
			continue
		}
		if !matchesStatus(a, params.Status) {
			continue
		}
		if !matchesFacet(a, params.Category, params.Facet) {
			continue
		}
		out = append(out, a)
	}

	sortAccounts(out, params.SortBy, params.SortDir)
	return out
}

func matchesSearch(a Account, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.Email), q) ||
		strings.Contains(strings.ToLower(a.Phone), q)
}

func matchesStatus(a Account, status string) bool {
	if status == FilterAll {
		return true
	}
	return string(a.Status) == status
}

func matchesFacet(a Account, category rbac.Resource, facet string) bool {
	if facet == FilterAll {
		return true
	}

	switch category {
	case rbac.ResourceCustomers:
		return a.Customer != nil && a.Customer.MembershipType == facet
	case rbac.ResourceTechnicians:
		if a.Technician == nil {
			return false
		}
		switch facet {
		case "online":
			return a.Technician.IsOnline
		case "offline":
			return !a.Technician.IsOnline
		}
		return false
	case rbac.ResourcePartners:
		return a.Partner != nil && a.Partner.Plan == facet
	case rbac.ResourceAdmins:
		return a.Admin != nil && string(a.Admin.Role) == facet
	}
	return false
}

func sortAccounts(accounts []Account, key SortKey, dir string) {
	cmp := comparator(key)
	sort.SliceStable(accounts, func(i, j int) bool {
		c := cmp(accounts[i], accounts[j])
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})
}

// comparator returns a three-way compare for the key. Variant keys compare
// equal when the profile is absent, so selecting one against a mismatched
// category leaves the existing order untouched.
func comparator(key SortKey) func(a, b Account) int {
	switch key {
	case SortByName:
		return func(a, b Account) int {
			return strings.Compare(
				strings.ToLower(a.Name),
				strings.ToLower(b.Name),
			)
		}
	case SortByEmail:
		return func(a, b Account) int {
			return strings.Compare(
				strings.ToLower(a.Email),
				strings.ToLower(b.Email),
			)
		}
	case SortByStatus:
		return func(a, b Account) int {
			return strings.Compare(string(a.Status), string(b.Status))
		}
	case SortByCreatedAt:
		return func(a, b Account) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	case SortByLastActive:
		return func(a, b Account) int {
			now := time.Now()
			return lastActiveInstant(now, a.LastActive).
				Compare(lastActiveInstant(now, b.LastActive))
		}
	case SortByMembership:
		return func(a, b Account) int {
			if a.Customer == nil || b.Customer == nil {
				return 0
			}
			return strings.Compare(
				a.Customer.MembershipType,
				b.Customer.MembershipType,
			)
		}
	case SortByRating:
		return func(a, b Account) int {
			if a.Technician == nil || b.Technician == nil {
				return 0
			}
			return compareFloat(a.Technician.Rating, b.Technician.Rating)
		}
	case SortByCompletedJobs:
		return func(a, b Account) int {
			if a.Technician == nil || b.Technician == nil {
				return 0
			}
			return compareInt(
				a.Technician.CompletedJobs,
				b.Technician.CompletedJobs,
			)
		}
	case SortByPlan:
		return func(a, b Account) int {
			if a.Partner == nil || b.Partner == nil {
				return 0
			}
			return compareInt(
				planOrdinal[a.Partner.Plan],
				planOrdinal[b.Partner.Plan],
			)
		}
	case SortByActiveUsers:
		return func(a, b Account) int {
			if a.Partner == nil || b.Partner == nil {
				return 0
			}
			return compareInt(a.Partner.ActiveUsers, b.Partner.ActiveUsers)
		}
	case SortByRole:
		return func(a, b Account) int {
			if a.Admin == nil || b.Admin == nil {
				return 0
			}
			return compareInt(
				roleOrdinal[a.Admin.Role],
				roleOrdinal[b.Admin.Role],
			)
		}
	}

	return func(a, b Account) int { return 0 }
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b string) int {
	fa, _ := strconv.ParseFloat(a, 64)
	fb, _ := strconv.ParseFloat(b, 64)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}

// lastActiveInstant turns a relative-recency string into an approximate
// timestamp for ordering. The heuristic is deliberately lossy: it covers
// the strings the dashboard renders ("Online now", "Just now", "N minutes
// ago", "N hours ago", "N day ago") and parks anything else, including the
// plural "N days ago", at the zero instant.
func lastActiveInstant(now time.Time, s string) time.Time {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "online now", "just now":
		return now
	}

	fields := strings.Fields(strings.ToLower(s))
	if len(fields) != 3 || fields[2] != "ago" {
		return time.Time{}
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}
	}

	switch fields[1] {
	case "minute", "minutes":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour", "hours":
		return now.Add(-time.Duration(n) * time.Hour)
	case "day":
		return now.Add(-time.Duration(n) * 24 * time.Hour)
	}

	return time.Time{}
}
