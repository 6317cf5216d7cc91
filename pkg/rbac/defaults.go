package rbac

import (
	"sync"

	"github.com/dmitrymomot/estatecrm/pkg/permission"
)

// CRM resources referenced by the default catalog.
const (
	ResourceUsers         = "users"
	ResourceCompanies     = "companies"
	ResourceProperties    = "properties"
	ResourceLeads         = "leads"
	ResourceDeals         = "deals"
	ResourceActivities    = "activities"
	ResourceNotifications = "notifications"
	ResourceTasks         = "tasks"
	ResourceDevelopers    = "developers"
	ResourceProjects      = "projects"
	ResourceCampaigns     = "campaigns"
	ResourceAnalytics     = "analytics"
	ResourceReports       = "reports"
	ResourceAI            = "ai"
	ResourceSettings      = "settings"
	ResourceAudit         = "audit"
)

// Resources lists every resource of the default catalog.
func Resources() []string {
	return []string{
		ResourceUsers,
		ResourceCompanies,
		ResourceProperties,
		ResourceLeads,
		ResourceDeals,
		ResourceActivities,
		ResourceNotifications,
		ResourceTasks,
		ResourceDevelopers,
		ResourceProjects,
		ResourceCampaigns,
		ResourceAnalytics,
		ResourceReports,
		ResourceAI,
		ResourceSettings,
		ResourceAudit,
	}
}

// Business actions outside plain CRUD.
var (
	PermLeadsAssign  = permission.New(ResourceLeads, permission.ActionAssign)
	PermDealsApprove = permission.New(ResourceDeals, permission.ActionApprove)
	PermAuditRead    = permission.New(ResourceAudit, permission.ActionRead)
)

func read(resources ...string) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, permission.New(r, permission.ActionRead))
	}
	return out
}

func all(resources ...string) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, permission.All(r))
	}
	return out
}

// createReadUpdate grants every CRUD verb except delete.
func createReadUpdate(resources ...string) []string {
	out := make([]string, 0, len(resources)*3)
	for _, r := range resources {
		out = append(out,
			permission.New(r, permission.ActionCreate),
			permission.New(r, permission.ActionRead),
			permission.New(r, permission.ActionUpdate),
		)
	}
	return out
}

func join(sets ...[]string) []string {
	var out []string
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// DefaultDefinitions returns the built-in role definitions of the CRM.
func DefaultDefinitions() map[Role]Definition {
	crmResources := []string{
		ResourceProperties,
		ResourceLeads,
		ResourceDeals,
		ResourceActivities,
		ResourceNotifications,
		ResourceTasks,
		ResourceDevelopers,
		ResourceProjects,
		ResourceCampaigns,
		ResourceAnalytics,
		ResourceReports,
		ResourceAI,
		ResourceSettings,
	}
	crud := permission.CRUD(ResourceUsers)

	return map[Role]Definition{
		RoleSuperAdmin: {
			Permissions: join(
				all(ResourceUsers, ResourceCompanies, ResourceAudit),
				all(crmResources...),
				[]string{PermLeadsAssign, PermDealsApprove, PermAuditRead},
			),
		},
		RoleCompanyAdmin: {
			Permissions: join(
				crud[:],
				[]string{
					permission.New(ResourceCompanies, permission.ActionRead),
					permission.New(ResourceCompanies, permission.ActionUpdate),
				},
				all(crmResources...),
				[]string{PermLeadsAssign, PermDealsApprove, PermAuditRead},
			),
		},
		RoleSalesManager: {
			Permissions: join(
				all(ResourceLeads, ResourceProperties, ResourceDeals, ResourceActivities),
				read(ResourceDevelopers, ResourceProjects, ResourceAnalytics, ResourceReports, ResourceAI),
				[]string{PermLeadsAssign, PermDealsApprove},
			),
		},
		RoleSalesAgent: {
			Permissions: join(
				createReadUpdate(ResourceLeads, ResourceProperties, ResourceDeals, ResourceActivities),
				read(ResourceDevelopers, ResourceProjects),
			),
		},
		RoleMarketing: {
			Permissions: join(
				createReadUpdate(ResourceLeads),
				read(ResourceProperties, ResourceAnalytics, ResourceReports),
				all(ResourceCampaigns),
				read(ResourceAI),
			),
		},
		RoleSupport: {
			Permissions: read(
				ResourceUsers,
				ResourceDevelopers,
				ResourceProjects,
				ResourceProperties,
				ResourceLeads,
				ResourceDeals,
				ResourceActivities,
			),
		},
	}
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := newCatalog(DefaultDefinitions())
	if err != nil {
		panic("rbac: invalid default catalog: " + err.Error())
	}
	return c
})

// DefaultCatalog returns the built-in catalog. It is constructed once and
// shared by every caller.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}
