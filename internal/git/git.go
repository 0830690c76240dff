// Package git provides repository access for relnotes collection: release
// tag discovery and commit-range walking. It uses the go-git library, so no
// git CLI installation is required.
package git

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Tag is a release tag resolved to its commit.
type Tag struct {
	Name string
	SHA  string
	When time.Time
}

// Commit is a single commit collected from a repository range.
type Commit struct {
	SHA      string
	Subject  string
	Author   string
	Email    string
	When     time.Time
	PRNumber int
}

// Range describes the commit span backing one release.
type Range struct {
	// Name is the release name: the tag name, or "unreleased" for the span
	// between the newest tag and HEAD.
	Name string
	// Date is the tag commit date (YYYY-MM-DD); empty for unreleased.
	Date string
	// From is the exclusive lower bound ref; empty means repository root.
	From string
	// To is the inclusive upper bound ref.
	To string
}

// openRepo opens a git repository at the specified path or current working
// directory, traversing up the directory tree to find the repository root.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return repo, nil
}

// semverTagPattern matches release tags like "v1.2.3" or "0.4.0-rc.1".
var semverTagPattern = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

// IsReleaseTag reports whether a tag name looks like a semver release tag.
func IsReleaseTag(name string) bool {
	return semverTagPattern.MatchString(name)
}

// ListReleaseTags returns the repository's semver tags, newest first by
// commit time. Non-semver tags are skipped.
func ListReleaseTags(path string) ([]Tag, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !IsReleaseTag(name) {
			logDebug("[git] skipping non-release tag %s", name)
			return nil
		}

		commit, err := resolveTagCommit(repo, ref)
		if err != nil {
			return fmt.Errorf("resolving tag %s: %w", name, err)
		}

		tags = append(tags, Tag{
			Name: name,
			SHA:  commit.Hash.String(),
			When: commit.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortTagsNewestFirst(tags)
	return tags, nil
}

// SortTagsNewestFirst orders tags by commit time descending, breaking ties
// by name so the order is deterministic.
func SortTagsNewestFirst(tags []Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		if !tags[i].When.Equal(tags[j].When) {
			return tags[i].When.After(tags[j].When)
		}
		return tags[i].Name > tags[j].Name
	})
}

// resolveTagCommit resolves both lightweight and annotated tags to a commit.
func resolveTagCommit(repo *git.Repository, ref *plumbing.Reference) (*object.Commit, error) {
	if tagObj, err := repo.TagObject(ref.Hash()); err == nil {
		return tagObj.Commit()
	}
	return repo.CommitObject(ref.Hash())
}

// CommitsBetween walks commits reachable from the "to" ref down to, but not
// including, the "from" ref. An empty "from" walks to the repository root.
// Commits are returned newest first.
func CommitsBetween(path, from, to string) ([]Commit, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	toHash, err := repo.ResolveRevision(plumbing.Revision(to))
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", to, err)
	}

	var fromHash plumbing.Hash
	if from != "" {
		h, err := repo.ResolveRevision(plumbing.Revision(from))
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", from, err)
		}
		fromHash = *h
	}

	logDebug("[git] walking %s..%s", from, to)

	iter, err := repo.Log(&git.LogOptions{From: *toHash})
	if err != nil {
		return nil, fmt.Errorf("walking history from %q: %w", to, err)
	}

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if from != "" && c.Hash == fromHash {
			return storer.ErrStop
		}

		subject := commitSubject(c.Message)
		commits = append(commits, Commit{
			SHA:      c.Hash.String(),
			Subject:  subject,
			Author:   c.Author.Name,
			Email:    c.Author.Email,
			When:     c.Author.When,
			PRNumber: ParsePRNumber(subject),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return commits, nil
}

// ReleaseRanges maps the repository's release tags to commit ranges, newest
// first. When HEAD has commits past the newest tag, an "unreleased" range
// covering them comes first.
func ReleaseRanges(path string) ([]Range, error) {
	tags, err := ListReleaseTags(path)
	if err != nil {
		return nil, err
	}

	var ranges []Range

	head := "HEAD"
	if len(tags) > 0 {
		unreleased, err := CommitsBetween(path, tags[0].Name, head)
		if err != nil {
			return nil, err
		}
		if len(unreleased) > 0 {
			ranges = append(ranges, Range{Name: "unreleased", From: tags[0].Name, To: head})
		}
	} else {
		ranges = append(ranges, Range{Name: "unreleased", To: head})
	}

	for i, tag := range tags {
		r := Range{
			Name: tag.Name,
			Date: tag.When.Format("2006-01-02"),
			To:   tag.Name,
		}
		if i+1 < len(tags) {
			r.From = tags[i+1].Name
		}
		ranges = append(ranges, r)
	}

	return ranges, nil
}

var (
	// squashPRPattern matches the "(#123)" suffix GitHub appends to
	// squash-merge subjects.
	squashPRPattern = regexp.MustCompile(`\(#(\d+)\)`)
	// mergePRPattern matches classic merge-commit subjects.
	mergePRPattern = regexp.MustCompile(`^Merge pull request #(\d+)`)
)

// ParsePRNumber extracts the pull-request number from a commit subject.
// Returns 0 when no PR reference is found.
func ParsePRNumber(subject string) int {
	if m := mergePRPattern.FindStringSubmatch(subject); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}

	matches := squashPRPattern.FindAllStringSubmatch(subject, -1)
	if len(matches) == 0 {
		return 0
	}
	// The PR reference is the last one on the line; earlier ones may be
	// issue mentions inside the subject text.
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0
	}
	return n
}

// commitSubject returns the first line of a commit message.
func commitSubject(message string) string {
	for i := 0; i < len(message); i++ {
		if message[i] == '\n' {
			return message[:i]
		}
	}
	return message
}
