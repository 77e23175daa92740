package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/gitcollection/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AddRepoRequest is the JSON body for POST /api/v1/repos.
type AddRepoRequest struct {
	Identifier string `json:"identifier"`
}

// RepoResponse is the JSON representation of a collected repository.
type RepoResponse struct {
	FullName    string        `json:"full_name"`
	Description string        `json:"description"`
	Owner       OwnerResponse `json:"owner"`
	DetailPath  string        `json:"detail_path"`
}

// OwnerResponse is the JSON representation of a repository owner.
type OwnerResponse struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status       string `json:"status"`
	Repositories int    `json:"repositories"`
	Time         string `json:"time"`
}

func toRepoResponse(r model.RepositorySummary) RepoResponse {
	return RepoResponse{
		FullName:    r.FullName,
		Description: r.Description,
		Owner: OwnerResponse{
			Login:     r.Owner.Login,
			AvatarURL: r.Owner.AvatarURL,
		},
		DetailPath: r.DetailPath(),
	}
}
