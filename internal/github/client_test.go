package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIssue(t *testing.T) {
	var gotPath, gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, `{
			"number": 30,
			"title": "add preview command",
			"html_url": "https://github.com/octo/widgets/issues/30",
			"pull_request": {"html_url": "https://github.com/octo/widgets/pull/30"},
			"user": {"login": "alice", "html_url": "https://github.com/alice"},
			"labels": [{"name": "enhancement"}, {"name": "docs"}]
		}`)
	}))
	defer srv.Close()

	c := NewClient("octo/widgets", "tok123")
	c.BaseURL = srv.URL

	info, err := c.Issue(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, "/repos/octo/widgets/issues/30", gotPath)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "application/vnd.github+json", gotAccept)

	assert.Equal(t, 30, info.Number)
	assert.Equal(t, "add preview command", info.Title)
	assert.Equal(t, "https://github.com/octo/widgets/issues/30", info.HTMLURL)
	assert.Equal(t, "https://github.com/octo/widgets/pull/30", info.PullRequestURL)
	assert.Equal(t, "alice", info.AuthorLogin)
	assert.Equal(t, "https://github.com/alice", info.AuthorURL)
	assert.Equal(t, []string{"enhancement", "docs"}, info.Labels)
}

func TestClientIssuePlainIssue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 7, "title": "flaky test", "html_url": "https://github.com/octo/widgets/issues/7"}`)
	}))
	defer srv.Close()

	c := NewClient("octo/widgets", "")
	c.BaseURL = srv.URL

	info, err := c.Issue(context.Background(), 7)
	require.NoError(t, err)

	// Not a pull request, no user block: both stay empty.
	assert.Empty(t, info.PullRequestURL)
	assert.Empty(t, info.AuthorLogin)
	assert.Empty(t, info.Labels)
}

func TestClientAnonymousOmitsAuthorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"number": 1}`)
	}))
	defer srv.Close()

	c := NewClient("octo/widgets", "")
	c.BaseURL = srv.URL

	_, err := c.Issue(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientIssueNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("octo/widgets", "")
	c.BaseURL = srv.URL

	_, err := c.Issue(context.Background(), 999)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.URL, "/issues/999")
}

func TestClientUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/alice", r.URL.Path)
		fmt.Fprint(w, `{"login": "alice", "name": "Alice Doe", "html_url": "https://github.com/alice"}`)
	}))
	defer srv.Close()

	c := NewClient("octo/widgets", "")
	c.BaseURL = srv.URL

	user, err := c.User(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.Equal(t, "Alice Doe", user.Name)
	assert.Equal(t, "https://github.com/alice", user.URL)
}

func TestClientMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	c := NewClient("octo/widgets", "")
	c.BaseURL = srv.URL

	_, err := c.Issue(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing issue #1")
}
