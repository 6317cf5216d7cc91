package app

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/gate"
	"github.com/dmitrymomot/estatecrm/pkg/guard"
	"github.com/dmitrymomot/estatecrm/pkg/permission"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

type navItem struct {
	label    string
	href     string
	resource string
}

var navItems = []navItem{
	{"Leads", "/leads", rbac.ResourceLeads},
	{"Properties", "/properties", rbac.ResourceProperties},
	{"Deals", "/deals", rbac.ResourceDeals},
	{"Tasks", "/tasks", rbac.ResourceTasks},
	{"Projects", "/projects", rbac.ResourceProjects},
	{"Developers", "/developers", rbac.ResourceDevelopers},
	{"Campaigns", "/ui/campaigns", rbac.ResourceCampaigns},
	{"Analytics", "/analytics", rbac.ResourceAnalytics},
	{"Reports", "/reports", rbac.ResourceReports},
}

func html(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func link(label, href string) templ.Component {
	return html(`<li><a href="` + templ.EscapeString(href) + `">` + templ.EscapeString(label) + `</a></li>`)
}

// navigation renders the main menu. Each entry is gated on read access to its
// resource; the admin section needs user management rights.
func navigation() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav id="main-nav"><ul>`); err != nil {
			return err
		}
		for _, item := range navItems {
			c := gate.Can(permission.New(item.resource, permission.ActionRead), link(item.label, item.href))
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}

		admin := gate.Permission(
			guard.Any(
				permission.New(rbac.ResourceUsers, permission.ActionUpdate),
				permission.New(rbac.ResourceSettings, permission.ActionUpdate),
			),
			link("Administration", "/admin"),
		)
		if err := admin.Render(ctx, w); err != nil {
			return err
		}
		if err := gate.IsSuperAdmin(link("Companies", "/admin/companies")).Render(ctx, w); err != nil {
			return err
		}

		signIn := gate.Roles(rbac.Roles(), rbac.ModeAny, templ.NopComponent,
			gate.WithFallback(link("Sign in", gate.DefaultLoginURL)),
			gate.WithLoading(html(`<li class="loading">Loading…</li>`)),
		)
		if err := signIn.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</ul></nav>`)
		return err
	})
}

func navPage(*http.Request) handler.Response {
	return handler.Templ(navigation())
}

// campaignsPage is only reachable through routeGate, so the create button
// is the only element that needs its own gate.
func campaignsPage(*http.Request) handler.Response {
	return handler.Templ(templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section id="campaigns"><h1>Campaigns</h1>`); err != nil {
			return err
		}
		create := gate.Can(
			permission.New(rbac.ResourceCampaigns, permission.ActionCreate),
			html(`<button hx-post="/api/campaigns">New campaign</button>`),
		)
		if err := create.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	}))
}

// routeGate protects a page on read access to resource.
func routeGate(resource string) func(http.Handler) http.Handler {
	return gate.Route(guard.Any(permission.New(resource, permission.ActionRead)))
}
