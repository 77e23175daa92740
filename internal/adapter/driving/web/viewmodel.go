package web

import (
	vm "github.com/ericfisherdev/gitcollection/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/gitcollection/internal/application"
	"github.com/ericfisherdev/gitcollection/internal/domain/model"
)

const githubWebURL = "https://github.com/"

// toRepoCardViewModel converts a single domain RepositorySummary to a RepoCardViewModel.
func toRepoCardViewModel(r model.RepositorySummary) vm.RepoCardViewModel {
	return vm.RepoCardViewModel{
		FullName:    r.FullName,
		Description: r.Description,
		OwnerLogin:  r.Owner.Login,
		AvatarURL:   r.Owner.AvatarURL,
		DetailPath:  r.DetailPath(),
	}
}

// toDashboardViewModel converts a manager snapshot into the dashboard view model.
func toDashboardViewModel(snap application.CollectionSnapshot, csrf, notice string) vm.DashboardViewModel {
	cards := make([]vm.RepoCardViewModel, 0, len(snap.Repositories))
	for _, r := range snap.Repositories {
		cards = append(cards, toRepoCardViewModel(r))
	}

	return vm.DashboardViewModel{
		Input:     snap.PendingInput,
		Error:     snap.LastError,
		Notice:    notice,
		CSRFToken: csrf,
		Repos:     cards,
	}
}

// toRepoDetailViewModel converts a domain RepositorySummary into the details view model.
func toRepoDetailViewModel(r model.RepositorySummary) vm.RepoDetailViewModel {
	return vm.RepoDetailViewModel{
		RepoCardViewModel: toRepoCardViewModel(r),
		Owner:             r.OwnerName(),
		Name:              r.Name(),
		DescriptionHTML:   RenderMarkdown(r.Description),
		GitHubURL:         githubWebURL + r.FullName,
	}
}
