package menu

import (
	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/domain"
)

// DefaultTree returns the console navigation.
func DefaultTree() []Node {
	finance := domain.NewRoleSet(domain.RoleBoss, domain.RoleDirector, domain.RoleFinance)
	hrDesk := domain.NewRoleSet(domain.RoleBoss, domain.RoleDirector, domain.RoleHR)
	people := domain.NewRoleSet(domain.RoleBoss, domain.RoleDirector, domain.RoleBranchManager, domain.RoleHR)

	return []Node{
		Leaf{ID: 1, Title: "Overview", Path: "/overview", Roles: auth.All()},
		Leaf{ID: 4, Title: "Leave", Path: "/leave", Roles: auth.All()},
		Group{
			ID:    5,
			Title: "Claims",
			Roles: auth.All(),
			Children: []Node{
				Leaf{ID: 5, Title: "General Claims", Description: "Manage your general claims here.", Path: "/claim", Roles: auth.All()},
				Leaf{ID: 6, Title: "Marketing Claims", Description: "Manage your marketing claims here.", Path: "/marketing", Roles: auth.All()},
			},
		},
		Group{
			ID:    6,
			Title: "Reports",
			Roles: domain.NewRoleSet(domain.RoleBoss, domain.RoleDirector, domain.RoleHR, domain.RoleFinance),
			Children: []Node{
				Leaf{ID: 5, Title: "Claim Reports", Description: "Export Claims Reports here.", Path: "/reports/claims", Roles: finance.Clone()},
				Leaf{ID: 6, Title: "Marketing Claim Reports", Description: "Export Marketing Claims Reports here.", Path: "/reports/marketing-claims", Roles: finance.Clone()},
				Leaf{ID: 7, Title: "Leave Reports", Description: "Export leave Reports here.", Path: "/reports/leave", Roles: hrDesk.Clone()},
			},
		},
		Group{
			ID:    7,
			Title: "Settings",
			Roles: domain.NewRoleSet(domain.RoleBoss, domain.RoleDirector, domain.RoleBranchManager, domain.RoleHR, domain.RoleFinance),
			Children: []Node{
				Leaf{ID: 8, Title: "User", Description: "Manage your system users here.", Path: "/user", Roles: people.Clone()},
				Leaf{ID: 10, Title: "Branch", Description: "Manage your branch here.", Path: "/branch", Roles: people.Clone()},
				Leaf{ID: 5, Title: "Claim Types", Description: "Update or add new claim types here.", Path: "/claim-types", Roles: finance.Clone()},
				Leaf{ID: 6, Title: "Marketing Claims Types", Description: "Update or add new marketing types here.", Path: "/marketing-types", Roles: finance.Clone()},
				Leaf{ID: 7, Title: "Marketing Agencies", Description: "Add new agencies here", Path: "/agency", Roles: finance.Clone()},
				Leaf{ID: 9, Title: "Teams", Description: "Manage your team here", Path: "/team", Roles: hrDesk.Clone()},
				Leaf{ID: 11, Title: "Websites", Description: "Manage your website here", Path: "/website", Roles: hrDesk.Clone()},
			},
		},
	}
}
