package domain

// DashboardView names one of the two dashboard rendering branches.
type DashboardView string

const (
	DashboardAdmin   DashboardView = "admin-dashboard"
	DashboardCitizen DashboardView = "citizen-dashboard"
)

// MenuItem is a navigation entry in the sidebar.
type MenuItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
}

// Menu is a labelled set of navigation entries.
type Menu struct {
	Label string     `json:"label"`
	Items []MenuItem `json:"items"`
}
