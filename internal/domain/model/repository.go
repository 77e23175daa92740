package model

import "strings"

// RepositoryOwner identifies the account that owns a looked-up repository.
type RepositoryOwner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// RepositorySummary is the minimal record kept for each repository the user
// looked up. JSON field names follow the GitHub REST payload so a stored
// collection keeps the same shape the API returned.
type RepositorySummary struct {
	FullName    string          `json:"full_name"`
	Description string          `json:"description"`
	Owner       RepositoryOwner `json:"owner"`
}

// OwnerName returns the owner half of FullName ("octocat" for "octocat/Hello-World").
func (r RepositorySummary) OwnerName() string {
	owner, _, _ := strings.Cut(r.FullName, "/")
	return owner
}

// Name returns the repository half of FullName. Returns FullName unchanged when
// it carries no slash.
func (r RepositorySummary) Name() string {
	_, name, found := strings.Cut(r.FullName, "/")
	if !found {
		return r.FullName
	}
	return name
}

// DetailPath returns the navigation target of the repository details view.
func (r RepositorySummary) DetailPath() string {
	return "/repositories/" + r.FullName
}
