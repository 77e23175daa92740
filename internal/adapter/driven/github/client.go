// Package github implements the RepositoryLookup port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/gitcollection/internal/domain/model"
	"github.com/ericfisherdev/gitcollection/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepositoryLookup = (*Client)(nil)

// Client implements the driven.RepositoryLookup port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when token is non-empty)
//
// baseURL may be empty for api.github.com; otherwise it must point at a
// GitHub-compatible REST root (GitHub Enterprise "https://host/api/v3/").
func NewClient(token, baseURL string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	if baseURL != "" {
		u, err := parseBaseURL(baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = u
	}

	return &Client{gh: client}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchRepository resolves an "owner/name" identifier to a RepositorySummary.
// Malformed identifiers and 404 responses return driven.ErrRepoNotFound.
// A payload lacking full_name or owner.login returns driven.ErrResponseShape.
func (c *Client) FetchRepository(ctx context.Context, identifier string) (*model.RepositorySummary, error) {
	owner, name, err := splitRepo(identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driven.ErrRepoNotFound, err)
	}

	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("fetching repository %s: %w", identifier, driven.ErrRepoNotFound)
		}
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("fetching repository %s: %w", identifier, driven.ErrRepoNotFound)
		}
		return nil, fmt.Errorf("fetching repository %s: %w", identifier, err)
	}

	logRateLimit(resp, owner+"/"+name)

	summary, err := mapRepository(repo)
	if err != nil {
		return nil, fmt.Errorf("fetching repository %s: %w", identifier, err)
	}

	return summary, nil
}

// mapRepository converts a go-github Repository to a domain RepositorySummary.
// Description is optional; full_name and owner.login are not.
func mapRepository(r *gh.Repository) (*model.RepositorySummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: empty body", driven.ErrResponseShape)
	}
	if r.GetFullName() == "" {
		return nil, fmt.Errorf("%w: missing full_name", driven.ErrResponseShape)
	}
	if r.GetOwner().GetLogin() == "" {
		return nil, fmt.Errorf("%w: missing owner.login", driven.ErrResponseShape)
	}

	return &model.RepositorySummary{
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Owner: model.RepositoryOwner{
			Login:     r.GetOwner().GetLogin(),
			AvatarURL: r.GetOwner().GetAvatarURL(),
		},
	}, nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// parseBaseURL parses a REST root URL, appending the trailing slash go-github requires.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	return u, nil
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(fullName), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
