// Package github fetches issue and pull-request metadata from the GitHub
// REST API for release collection. Lookups are best-effort: a failed lookup
// leaves the commit un-enriched rather than failing the run.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAPIURL is the public GitHub API base URL.
const DefaultAPIURL = "https://api.github.com"

// DefaultTimeout is the per-request timeout for API lookups.
const DefaultTimeout = 10 * time.Second

// Client is a minimal GitHub REST API client scoped to one repository.
type Client struct {
	// BaseURL is the API base URL, DefaultAPIURL unless overridden
	// (GHE setups, tests).
	BaseURL string
	// Repo is the "owner/name" repository identifier.
	Repo string
	// Token is the bearer token; anonymous requests are made when empty.
	Token string
	// HTTPClient is the client used for requests; http.DefaultClient
	// with DefaultTimeout when nil.
	HTTPClient *http.Client
}

// NewClient creates a client for the given "owner/name" repository.
func NewClient(repo, token string) *Client {
	return &Client{
		BaseURL: DefaultAPIURL,
		Repo:    repo,
		Token:   token,
	}
}

// StatusError is returned for non-200 API responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status code %d", e.URL, e.StatusCode)
}

// IssueInfo is the subset of issue/PR metadata relnotes renders, plus the
// issue labels used for category mapping.
type IssueInfo struct {
	Number         int
	Title          string
	HTMLURL        string
	PullRequestURL string
	AuthorLogin    string
	AuthorURL      string
	Labels         []string
}

// issueResponse mirrors the GitHub issues endpoint payload.
type issueResponse struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	HTMLURL     string `json:"html_url"`
	PullRequest *struct {
		HTMLURL string `json:"html_url"`
	} `json:"pull_request"`
	User *struct {
		Login   string `json:"login"`
		HTMLURL string `json:"html_url"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

// Issue fetches metadata for an issue or pull request by number.
func (c *Client) Issue(ctx context.Context, number int) (*IssueInfo, error) {
	url := fmt.Sprintf("%s/repos/%s/issues/%d", c.baseURL(), c.Repo, number)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp issueResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing issue #%d response: %w", number, err)
	}

	info := &IssueInfo{
		Number:  resp.Number,
		Title:   resp.Title,
		HTMLURL: resp.HTMLURL,
	}
	if resp.PullRequest != nil {
		info.PullRequestURL = resp.PullRequest.HTMLURL
	}
	if resp.User != nil {
		info.AuthorLogin = resp.User.Login
		info.AuthorURL = resp.User.HTMLURL
	}
	for _, l := range resp.Labels {
		info.Labels = append(info.Labels, l.Name)
	}

	return info, nil
}

// userResponse mirrors the GitHub users endpoint payload.
type userResponse struct {
	Login   string `json:"login"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// UserInfo is the contributor profile subset relnotes credits.
type UserInfo struct {
	Login string
	Name  string
	URL   string
}

// User fetches a user profile by login, used to resolve contributor
// display names.
func (c *Client) User(ctx context.Context, login string) (*UserInfo, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL(), login)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp userResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing user %s response: %w", login, err)
	}

	return &UserInfo{Login: resp.Login, Name: resp.Name, URL: resp.HTMLURL}, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultAPIURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return body, nil
}
