package changelog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ariel-frischer/relnotes/internal/progress"
)

// Options configures the markdown renderer.
type Options struct {
	// Categories is the ordered list of category headings. Output sections
	// always follow this order, regardless of input commit order. Commits
	// carrying none of these labels are dropped from the output entirely.
	Categories []string

	// BaseIssueURL is prepended to issue numbers when rewriting
	// "fixes #N" style references in issue titles into links.
	BaseIssueURL string
}

// Renderer produces markdown from release metadata. Rendering is a pure
// function of its inputs: input records are never mutated, so rendering the
// same releases twice yields identical output.
type Renderer struct {
	opts Options
	ind  progress.Indicator
}

// NewRenderer creates a Renderer with the given options. A nil indicator is
// replaced with a no-op.
func NewRenderer(opts Options, ind progress.Indicator) *Renderer {
	if ind == nil {
		ind = progress.Noop{}
	}
	return &Renderer{opts: opts, ind: ind}
}

// closesPattern matches issue references like "fixes #42", tolerant of tense
// and plural (fix/fixes/fixed, close, resolve) and of Phabricator-style "T42"
// task numbers.
var closesPattern = regexp.MustCompile(`(?i)(fix|close|resolve)(e?s|e?d)? [T#](\d+)`)

// RenderAll renders every release, skipping releases that render to empty,
// and joins the rest separated by two blank lines with one leading newline.
func (r *Renderer) RenderAll(releases []Release) string {
	r.ind.Init(r.countSteps(releases))
	defer r.ind.Terminate()

	var parts []string
	for i := range releases {
		if md := r.RenderRelease(&releases[i]); md != "" {
			parts = append(parts, md)
		}
	}
	return "\n" + strings.Join(parts, "\n\n\n")
}

// RenderRelease renders a single release section. Returns the empty string
// when no commit matches any configured category; such releases are omitted
// from RenderAll output.
func (r *Renderer) RenderRelease(rel *Release) string {
	buckets := r.partition(rel.Commits)

	hasCommits := false
	for _, commits := range buckets {
		if len(commits) > 0 {
			hasCommits = true
			break
		}
	}
	if !hasCommits {
		return ""
	}

	blocks := []string{fmt.Sprintf("## %s (%s)", rel.DisplayName(), rel.Date)}

	for _, cat := range r.opts.Categories {
		commits := buckets[cat]
		if len(commits) == 0 {
			continue
		}

		r.ind.SetTitle(cat)
		blocks = append(blocks, "#### "+cat+"\n"+r.renderCategory(commits))
		r.ind.Tick()
	}

	if len(rel.Contributors) > 0 {
		blocks = append(blocks, renderContributorList(rel.Contributors))
	}

	return strings.Join(blocks, "\n\n")
}

// partition buckets commits by configured category. A commit appears in every
// bucket whose label it carries; input order is preserved within each bucket.
func (r *Renderer) partition(commits []Commit) map[string][]Commit {
	buckets := make(map[string][]Commit, len(r.opts.Categories))
	for _, cat := range r.opts.Categories {
		for i := range commits {
			if commits[i].HasCategory(cat) {
				buckets[cat] = append(buckets[cat], commits[i])
			}
		}
	}
	return buckets
}

// countSteps returns the number of category sections RenderAll will emit,
// one progress tick each.
func (r *Renderer) countSteps(releases []Release) int {
	n := 0
	for i := range releases {
		buckets := r.partition(releases[i].Commits)
		for _, cat := range r.opts.Categories {
			if len(buckets[cat]) > 0 {
				n++
			}
		}
	}
	return n
}

// renderCategory renders one category bucket: grouped by package when any
// commit in the bucket is scoped to packages, flat otherwise.
func (r *Renderer) renderCategory(commits []Commit) string {
	for i := range commits {
		if len(commits[i].Packages) > 0 {
			return r.renderByPackage(commits)
		}
	}
	return r.renderContributionList(commits, "")
}

// packageGroup is one package heading with the commits that share its exact
// package set.
type packageGroup struct {
	label   string
	commits []Commit
}

// groupByPackage buckets commits by their sorted package-name set, preserving
// first-seen order of distinct sets. The grouping key is the name set itself,
// not the display label, so package names containing commas cannot collide.
// Commits with no packages fall into a bucket labeled "Other".
func groupByPackage(commits []Commit) []packageGroup {
	index := make(map[string]int)
	var groups []packageGroup

	for i := range commits {
		names := append([]string(nil), commits[i].Packages...)
		sort.Strings(names)
		key := strings.Join(names, "\x00")

		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, packageGroup{label: packageLabel(names)})
		}
		groups[gi].commits = append(groups[gi].commits, commits[i])
	}

	return groups
}

// packageLabel formats a sorted package-name set as a display label:
// each name in inline code markers, comma-joined. Empty sets label "Other".
func packageLabel(names []string) string {
	if len(names) == 0 {
		return "Other"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}

// renderByPackage emits one bullet per package label, each followed by an
// indented nested bullet list of that bucket's commits.
func (r *Renderer) renderByPackage(commits []Commit) string {
	var sb strings.Builder
	for i, g := range groupByPackage(commits) {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("* " + g.label)
		if body := r.renderContributionList(g.commits, "  "); body != "" {
			sb.WriteString("\n" + body)
		}
	}
	return sb.String()
}

// renderContributionList renders one bullet per commit. Commits with no
// linked issue render nothing and are silently dropped from the list.
func (r *Renderer) renderContributionList(commits []Commit, indent string) string {
	var lines []string
	for i := range commits {
		if line := r.renderContribution(commits[i].Issue); line != "" {
			lines = append(lines, indent+"* "+line)
		}
	}
	return strings.Join(lines, "\n")
}

// renderContribution renders a single commit line from its linked issue.
// The [#N](pr-url) prefix appears only when both the issue number and the
// pull-request URL are present.
func (r *Renderer) renderContribution(issue *Issue) string {
	if issue == nil {
		return ""
	}

	var sb strings.Builder
	if issue.Number != 0 && issue.PullRequestURL != "" {
		fmt.Fprintf(&sb, "[#%d](%s) ", issue.Number, issue.PullRequestURL)
	}

	sb.WriteString(r.rewriteFixedIssues(issue.Title))
	sb.WriteString(".")

	if issue.Author != nil && issue.Author.Login != "" {
		fmt.Fprintf(&sb, " ([@%s](%s))", issue.Author.Login, issue.Author.URL)
	}

	return sb.String()
}

// rewriteFixedIssues replaces "fixes #42" style references with a canonical
// "Closes [#42](<base>42)" link. Works on a copy of the title; the input
// record is left untouched.
func (r *Renderer) rewriteFixedIssues(title string) string {
	return closesPattern.ReplaceAllString(title, "Closes [#$3]("+r.opts.BaseIssueURL+"$3)")
}

// renderContributorList renders the committers section: a heading stating the
// contributor count, then one bullet per contributor sorted by login.
func renderContributorList(contributors []Contributor) string {
	sorted := append([]Contributor(nil), contributors...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Login < sorted[j].Login })

	lines := make([]string, 0, len(sorted)+1)
	lines = append(lines, fmt.Sprintf("#### Committers: %d", len(sorted)))
	for _, c := range sorted {
		link := fmt.Sprintf("[%s](%s)", c.Login, c.URL)
		if c.Name != "" {
			lines = append(lines, fmt.Sprintf("- %s (%s)", c.Name, link))
		} else {
			lines = append(lines, "- "+link)
		}
	}
	return strings.Join(lines, "\n")
}
