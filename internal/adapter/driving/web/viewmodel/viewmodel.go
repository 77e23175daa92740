// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// RepoCardViewModel holds presentation-ready data for one entry of the repository list.
type RepoCardViewModel struct {
	FullName    string
	Description string
	OwnerLogin  string
	AvatarURL   string
	DetailPath  string
}

// DashboardViewModel holds everything the dashboard page renders.
type DashboardViewModel struct {
	Input     string // text shown in the identifier input
	Error     string // shown in the error area when non-empty
	Notice    string // transient message that is not part of the collection state
	CSRFToken string
	Repos     []RepoCardViewModel
}

// HasError reports whether the error area and error styling should render.
func (d DashboardViewModel) HasError() bool {
	return d.Error != ""
}

// RepoDetailViewModel holds presentation-ready data for the repository details view.
type RepoDetailViewModel struct {
	RepoCardViewModel

	Owner           string
	Name            string
	DescriptionHTML string // sanitized HTML rendered from the description
	GitHubURL       string
}
