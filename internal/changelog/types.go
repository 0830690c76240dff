package changelog

// UnreleasedName is the reserved release name for commits that are not yet
// attached to a tagged release. Rendered as the literal heading "Unreleased".
const UnreleasedName = "unreleased"

// User identifies the account that authored an issue or pull request.
type User struct {
	Login string `yaml:"login"`
	URL   string `yaml:"url,omitempty"`
}

// Issue carries the issue or pull-request metadata linked to a commit.
// All fields are optional; absent fields suppress the corresponding output
// fragment when rendering.
type Issue struct {
	Number         int    `yaml:"number,omitempty"`
	Title          string `yaml:"title,omitempty"`
	HTMLURL        string `yaml:"html_url,omitempty"`
	PullRequestURL string `yaml:"pull_request_url,omitempty"`
	Author         *User  `yaml:"author,omitempty"`
}

// Commit represents a single change entry in a release. Categories holds the
// label buckets the commit belongs to; a commit may carry several and appears
// under every configured category heading it matches. Packages optionally
// scopes the change to one or more packages for grouped rendering.
type Commit struct {
	SHA        string   `yaml:"sha,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	Packages   []string `yaml:"packages,omitempty"`
	Issue      *Issue   `yaml:"issue,omitempty"`
}

// Contributor is a person credited in a release's committers section.
type Contributor struct {
	Login string `yaml:"login"`
	Name  string `yaml:"name,omitempty"`
	URL   string `yaml:"url,omitempty"`
}

// Release represents a single release entry with its commits and credits.
// The Name field should be a tag name (e.g., "v0.6.0") or the special
// identifier "unreleased". The Date field is required for released entries
// (format: YYYY-MM-DD).
type Release struct {
	Name         string        `yaml:"name"`
	Date         string        `yaml:"date,omitempty"`
	Commits      []Commit      `yaml:"commits,omitempty"`
	Contributors []Contributor `yaml:"contributors,omitempty"`
}

// Changelog is the root structure of a releases.yaml manifest.
// Releases are ordered newest first.
type Changelog struct {
	Project  string    `yaml:"project,omitempty"`
	Releases []Release `yaml:"releases"`
}

// IsUnreleased returns true if this release represents unreleased commits.
// The name is matched case-insensitively.
func (r *Release) IsUnreleased() bool {
	return NormalizeName(r.Name) == UnreleasedName
}

// DisplayName returns the heading text for the release.
func (r *Release) DisplayName() string {
	if r.IsUnreleased() {
		return "Unreleased"
	}
	return r.Name
}

// HasCategory reports whether the commit carries the given category label.
func (c *Commit) HasCategory(name string) bool {
	for _, cat := range c.Categories {
		if cat == name {
			return true
		}
	}
	return false
}
