package service

import "github.com/spec-kit/citizen-portal/internal/domain"

var (
	adminMenu = domain.Menu{
		Label: "Administration",
		Items: []domain.MenuItem{
			{Title: "Users", URL: "/dashboard/users", Icon: "users"},
			{Title: "Settings", URL: "/dashboard/settings", Icon: "settings"},
			{Title: "Notifications", URL: "/dashboard/notifications", Icon: "bell"},
		},
	}
	citizenMenu = domain.Menu{
		Label: "Main Menu",
		Items: []domain.MenuItem{
			{Title: "Dashboard", URL: "/dashboard", Icon: "home"},
			{Title: "Services", URL: "/services", Icon: "file-text"},
			{Title: "Profile", URL: "/profile", Icon: "user"},
			{Title: "Appointments", URL: "/dashboard/appointments", Icon: "calendar"},
			{Title: "Queue Management", URL: "/dashboard/queue", Icon: "clock"},
			{Title: "Locations", URL: "/dashboard/locations", Icon: "map-pin"},
			{Title: "Transport", URL: "/dashboard/transport", Icon: "bus"},
			{Title: "Analytics", URL: "/dashboard/analytics", Icon: "bar-chart"},
		},
	}
)

// DashboardFor selects the dashboard view for a role.
func DashboardFor(role domain.Role) domain.DashboardView {
	if role == domain.RoleAdmin {
		return domain.DashboardAdmin
	}
	return domain.DashboardCitizen
}

// MenuFor returns a copy of the navigation menu for a role.
func MenuFor(role domain.Role) domain.Menu {
	src := citizenMenu
	if role == domain.RoleAdmin {
		src = adminMenu
	}
	items := make([]domain.MenuItem, len(src.Items))
	copy(items, src.Items)
	return domain.Menu{Label: src.Label, Items: items}
}
