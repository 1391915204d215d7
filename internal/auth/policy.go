package auth

import (
	"sort"
	"strings"

	"github.com/spec-kit/claims-console/internal/domain"
)

// Named role sets. Each call returns a fresh copy so callers cannot mutate the policy.
// The boss is listed explicitly wherever it should pass: roles carry no hierarchy.

// EngineerOnly admits the boss and engineers.
func EngineerOnly() domain.RoleSet {
	return domain.NewRoleSet(domain.RoleBoss, domain.RoleEngineer)
}

// AdminOnly admits the boss, directors and branch managers.
func AdminOnly() domain.RoleSet {
	return domain.NewRoleSet(domain.RoleBoss, domain.RoleDirector, domain.RoleBranchManager)
}

// All admits every registered role.
func All() domain.RoleSet {
	return domain.NewRoleSet(domain.AllRoles()...)
}

// BAUOnly admits business-as-usual operators.
func BAUOnly() domain.RoleSet {
	return domain.NewRoleSet(domain.RoleBoss, domain.RoleDirector, domain.RoleBranchManager, domain.RoleEngineer)
}

// NotHR admits everyone but human resources.
func NotHR() domain.RoleSet {
	return domain.NewRoleSet(domain.RoleBoss, domain.RoleDirector, domain.RoleFinance, domain.RoleBranchManager, domain.RoleEngineer)
}

func set(roles ...domain.Role) domain.RoleSet {
	return domain.NewRoleSet(roles...)
}

// Route gates a console page path.
type Route struct {
	Path  string
	Name  string
	Roles domain.RoleSet
}

// Routes returns the console page table. A nil Roles entry has no per-page restriction;
// the console layout itself still requires All.
func Routes() []Route {
	people := set(domain.RoleBoss, domain.RoleDirector, domain.RoleBranchManager, domain.RoleHR)
	hrDesk := set(domain.RoleBoss, domain.RoleDirector, domain.RoleHR)
	finance := set(domain.RoleBoss, domain.RoleDirector, domain.RoleFinance)

	return []Route{
		{Path: "/overview", Name: "overview"},
		{Path: "/branch", Name: "branch.listing", Roles: people},
		{Path: "/branch/create", Name: "branch.create", Roles: hrDesk.Clone()},
		{Path: "/team", Name: "team.listing", Roles: hrDesk.Clone()},
		{Path: "/team/create", Name: "team.create", Roles: hrDesk.Clone()},
		{Path: "/website", Name: "website.listing", Roles: hrDesk.Clone()},
		{Path: "/website/create", Name: "website.create", Roles: hrDesk.Clone()},
		{Path: "/user", Name: "user.listing", Roles: people.Clone()},
		{Path: "/user/create", Name: "user.create", Roles: set(domain.RoleBoss, domain.RoleHR, domain.RoleDirector)},
		{Path: "/leave", Name: "leave.listing"},
		{Path: "/leave/create", Name: "leave.create"},
		{Path: "/claim", Name: "claim.listing"},
		{Path: "/claim/create", Name: "claim.create"},
		{Path: "/claim-types", Name: "claim_types.listing", Roles: finance},
		{Path: "/claim-types/create", Name: "claim_types.create", Roles: finance.Clone()},
		{Path: "/marketing", Name: "marketing.listing"},
		{Path: "/marketing/create", Name: "marketing.create"},
		{Path: "/marketing-types", Name: "marketing_types.listing", Roles: finance.Clone()},
		{Path: "/marketing-types/create", Name: "marketing_types.create", Roles: finance.Clone()},
		{Path: "/agency", Name: "agency.listing", Roles: finance.Clone()},
		{Path: "/agency/create", Name: "agency.create", Roles: finance.Clone()},
		{Path: "/reports/leave", Name: "reports.leave", Roles: hrDesk.Clone()},
		{Path: "/reports/claims", Name: "reports.claims", Roles: finance.Clone()},
		{Path: "/reports/marketing-claims", Name: "reports.marketing_claims", Roles: finance.Clone()},
	}
}

// LookupRoute finds the route for a console path. Trailing slashes are ignored.
func LookupRoute(path string) (Route, bool) {
	path = "/" + strings.Trim(path, "/")
	for _, route := range Routes() {
		if route.Path == path {
			return route, true
		}
	}
	return Route{}, false
}

// Inline action capabilities rendered inside console pages.
const (
	ActionOverviewPendingClaims = "overview.pending_claims"
	ActionOverviewClaimApprove  = "overview.claim.approve"
	ActionClaimStatusUpdate     = "claim.status.update"
	ActionClaimStatusView       = "claim.status.view"
	ActionClaimListingTeam      = "claim.listing.team"
	ActionClaimListingOwn       = "claim.listing.own"
	ActionMarketingStatusUpdate = "marketing.status.update"
	ActionMarketingStatusView   = "marketing.status.view"
	ActionMarketingListingTeam  = "marketing.listing.team"
	ActionMarketingListingOwn   = "marketing.listing.own"
	ActionLeaveStatusView       = "leave.status.view"
	ActionLeaveStatusRevoke     = "leave.status.revoke"
	ActionLeaveStatusApprove    = "leave.status.approve"
)

// Actions returns the inline action table.
func Actions() map[string]domain.RoleSet {
	return map[string]domain.RoleSet{
		ActionOverviewPendingClaims: set(domain.RoleDirector, domain.RoleHR),
		ActionOverviewClaimApprove:  set(domain.RoleBoss, domain.RoleDirector),
		ActionClaimStatusUpdate:     set(domain.RoleBoss, domain.RoleDirector, domain.RoleHR),
		ActionClaimStatusView:       set(domain.RoleBranchManager, domain.RoleFinance),
		ActionClaimListingTeam:      set(domain.RoleBoss, domain.RoleDirector, domain.RoleHR, domain.RoleBranchManager),
		ActionClaimListingOwn:       set(domain.RoleEngineer, domain.RoleFinance),
		ActionMarketingStatusUpdate: set(domain.RoleBoss, domain.RoleDirector, domain.RoleHR),
		ActionMarketingStatusView:   set(domain.RoleBranchManager),
		ActionMarketingListingTeam:  set(domain.RoleBoss, domain.RoleDirector, domain.RoleHR, domain.RoleBranchManager),
		ActionMarketingListingOwn:   set(domain.RoleEngineer, domain.RoleFinance),
		ActionLeaveStatusView:       NotHR(),
		ActionLeaveStatusRevoke:     set(domain.RoleHR),
		ActionLeaveStatusApprove:    set(domain.RoleBoss, domain.RoleDirector),
	}
}

// ActionNames returns the action table keys sorted.
func ActionNames() []string {
	actions := Actions()
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
