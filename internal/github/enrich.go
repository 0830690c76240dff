package github

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ariel-frischer/relnotes/internal/changelog"
)

// IssueFetcher is the lookup surface Enricher needs; satisfied by Client
// and by test fakes.
type IssueFetcher interface {
	Issue(ctx context.Context, number int) (*IssueInfo, error)
}

// Enricher attaches issue metadata and label-derived categories to
// collected commits.
type Enricher struct {
	Client IssueFetcher
	// Labels maps a GitHub label name to a category heading. Labels with
	// no mapping are ignored.
	Labels map[string]string
	// Concurrency bounds parallel lookups; 1 when unset.
	Concurrency int
}

// Target pairs a commit with the pull-request number to look up for it.
// Commits with a zero PRNumber are skipped.
type Target struct {
	Commit   *changelog.Commit
	PRNumber int
}

// Enrich fills in Issue and Categories for every target with a known
// pull-request number, fetching metadata concurrently. Lookup failures are
// collected and returned but leave the run intact: failed targets simply
// stay un-enriched. A cancelled context aborts outstanding lookups.
func (e *Enricher) Enrich(ctx context.Context, targets []Target) []error {
	limit := e.Concurrency
	if limit < 1 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	lookupErrs := make([]error, len(targets))
	for i, t := range targets {
		if t.PRNumber == 0 || t.Commit == nil {
			continue
		}

		g.Go(func() error {
			info, err := e.Client.Issue(ctx, t.PRNumber)
			if err != nil {
				lookupErrs[i] = fmt.Errorf("commit %s: %w", t.Commit.SHA, err)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}

			t.Commit.Issue = &changelog.Issue{
				Number:         info.Number,
				Title:          info.Title,
				HTMLURL:        info.HTMLURL,
				PullRequestURL: info.PullRequestURL,
			}
			if info.AuthorLogin != "" {
				t.Commit.Issue.Author = &changelog.User{
					Login: info.AuthorLogin,
					URL:   info.AuthorURL,
				}
			}
			t.Commit.Categories = e.categoriesFor(info.Labels)
			return nil
		})
	}

	_ = g.Wait()

	var errs []error
	for _, err := range lookupErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// categoriesFor maps issue labels to category headings, preserving label
// order and dropping duplicates.
func (e *Enricher) categoriesFor(labels []string) []string {
	var categories []string
	seen := make(map[string]bool)
	for _, label := range labels {
		cat, ok := e.Labels[label]
		if !ok || seen[cat] {
			continue
		}
		seen[cat] = true
		categories = append(categories, cat)
	}
	return categories
}
