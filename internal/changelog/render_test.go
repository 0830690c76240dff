package changelog

import (
	"strings"
	"testing"
)

func testOptions() Options {
	return Options{
		Categories:   []string{"New Feature", "Bug Fix", "Documentation"},
		BaseIssueURL: "https://example.com/issues/",
	}
}

func featureCommit() Commit {
	return Commit{
		Categories: []string{"New Feature"},
		Issue: &Issue{
			Number:         12,
			Title:          "add streaming output",
			PullRequestURL: "https://github.com/o/r/pull/12",
			Author:         &User{Login: "alice", URL: "https://github.com/alice"},
		},
	}
}

func TestRenderRelease(t *testing.T) {
	tests := map[string]struct {
		release     Release
		contains    []string
		notContains []string
	}{
		"single categorized commit": {
			release: Release{
				Name:    "v1.0.0",
				Date:    "2026-01-15",
				Commits: []Commit{featureCommit()},
			},
			contains: []string{
				"## v1.0.0 (2026-01-15)",
				"#### New Feature",
				"* [#12](https://github.com/o/r/pull/12) add streaming output. ([@alice](https://github.com/alice))",
			},
			notContains: []string{"#### Bug Fix", "#### Documentation"},
		},
		"unreleased sentinel renders literal heading": {
			release: Release{
				Name:    UnreleasedName,
				Date:    "2026-08-25",
				Commits: []Commit{featureCommit()},
			},
			contains:    []string{"## Unreleased (2026-08-25)"},
			notContains: []string{"## unreleased"},
		},
		"commit without matching category is dropped": {
			release: Release{
				Name: "v1.0.0",
				Date: "2026-01-15",
				Commits: []Commit{
					featureCommit(),
					{Categories: []string{"Breaking Change"}, Issue: &Issue{Title: "drop old API"}},
				},
			},
			contains:    []string{"#### New Feature"},
			notContains: []string{"drop old API", "Breaking Change", "uncategorized"},
		},
		"commit without linked issue renders no bullet": {
			release: Release{
				Name: "v1.0.0",
				Date: "2026-01-15",
				Commits: []Commit{
					{Categories: []string{"New Feature"}, SHA: "abc1234"},
				},
			},
			contains:    []string{"#### New Feature"},
			notContains: []string{"* "},
		},
		"pr prefix requires both number and pull request url": {
			release: Release{
				Name: "v1.0.0",
				Date: "2026-01-15",
				Commits: []Commit{
					{Categories: []string{"Bug Fix"}, Issue: &Issue{
						Title:  "repair pagination",
						Author: &User{Login: "bob", URL: "https://github.com/bob"},
					}},
				},
			},
			contains:    []string{"* repair pagination. ([@bob](https://github.com/bob))"},
			notContains: []string{"[#"},
		},
		"missing author omits the credit fragment": {
			release: Release{
				Name: "v1.0.0",
				Date: "2026-01-15",
				Commits: []Commit{
					{Categories: []string{"Bug Fix"}, Issue: &Issue{Title: "repair pagination"}},
				},
			},
			contains:    []string{"* repair pagination."},
			notContains: []string{"([@"},
		},
		"contributor section states the count": {
			release: Release{
				Name:    "v1.0.0",
				Date:    "2026-01-15",
				Commits: []Commit{featureCommit()},
				Contributors: []Contributor{
					{Login: "bob", URL: "https://github.com/bob"},
					{Login: "alice", Name: "Alice Doe", URL: "https://github.com/alice"},
				},
			},
			contains: []string{
				"#### Committers: 2",
				"- Alice Doe ([alice](https://github.com/alice))",
				"- [bob](https://github.com/bob)",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRenderer(testOptions(), nil)
			result := r.RenderRelease(&tt.release)

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, result)
				}
			}
			for _, notExpected := range tt.notContains {
				if strings.Contains(result, notExpected) {
					t.Errorf("expected output NOT to contain %q, got:\n%s", notExpected, result)
				}
			}
		})
	}
}

func TestRenderReleaseEmptyWhenNoCommitMatches(t *testing.T) {
	r := NewRenderer(testOptions(), nil)

	tests := map[string]Release{
		"no commits at all": {Name: "v1.0.0", Date: "2026-01-15"},
		"only unmatched categories": {
			Name: "v1.0.0",
			Date: "2026-01-15",
			Commits: []Commit{
				{Categories: []string{"Breaking Change"}, Issue: &Issue{Title: "x"}},
			},
		},
		"contributors but no commits": {
			Name:         "v1.0.0",
			Date:         "2026-01-15",
			Contributors: []Contributor{{Login: "alice"}},
		},
	}

	for name, release := range tests {
		t.Run(name, func(t *testing.T) {
			if got := r.RenderRelease(&release); got != "" {
				t.Errorf("expected empty output, got:\n%s", got)
			}
		})
	}
}

func TestRenderAllSkipsEmptyReleases(t *testing.T) {
	r := NewRenderer(testOptions(), nil)

	empty := Release{Name: "v0.9.0", Date: "2026-01-01"}
	full := Release{Name: "v1.0.0", Date: "2026-01-15", Commits: []Commit{featureCommit()}}

	got := r.RenderAll([]Release{empty, full})
	want := "\n" + r.RenderRelease(&full)

	if got != want {
		t.Errorf("expected empty release to be excluded from join:\ngot:\n%q\nwant:\n%q", got, want)
	}
	if strings.Contains(got, "v0.9.0") {
		t.Errorf("empty release leaked into output:\n%s", got)
	}
}

func TestRenderAllSeparatesReleasesWithTwoBlankLines(t *testing.T) {
	r := NewRenderer(testOptions(), nil)

	a := Release{Name: "v1.1.0", Date: "2026-02-01", Commits: []Commit{featureCommit()}}
	b := Release{Name: "v1.0.0", Date: "2026-01-15", Commits: []Commit{featureCommit()}}

	got := r.RenderAll([]Release{a, b})

	if !strings.HasPrefix(got, "\n## v1.1.0") {
		t.Errorf("expected one leading newline before the first release, got:\n%q", got)
	}
	if !strings.Contains(got, ")\n\n\n## v1.0.0 (2026-01-15)") {
		t.Errorf("expected two blank lines between releases, got:\n%q", got)
	}
}

func TestRenderCategoryOrderFollowsConfiguration(t *testing.T) {
	// The commit lists categories in the opposite order of the configured
	// list; output order must follow the configuration.
	r := NewRenderer(Options{Categories: []string{"Bug Fix", "New Feature"}}, nil)

	release := Release{
		Name: "v1.0.0",
		Date: "2026-01-15",
		Commits: []Commit{
			{Categories: []string{"New Feature", "Bug Fix"}, Issue: &Issue{Title: "dual change"}},
		},
	}

	result := r.RenderRelease(&release)

	bugPos := strings.Index(result, "#### Bug Fix")
	featurePos := strings.Index(result, "#### New Feature")
	if bugPos == -1 || featurePos == -1 {
		t.Fatalf("multi-category commit should appear under both headings, got:\n%s", result)
	}
	if bugPos > featurePos {
		t.Errorf("expected Bug Fix before New Feature, got:\n%s", result)
	}
	if strings.Count(result, "dual change") != 2 {
		t.Errorf("expected the commit under both headings, got:\n%s", result)
	}
}

func TestRenderGroupsByPackage(t *testing.T) {
	r := NewRenderer(testOptions(), nil)

	release := Release{
		Name: "v1.0.0",
		Date: "2026-01-15",
		Commits: []Commit{
			{Categories: []string{"New Feature"}, Packages: []string{"core"},
				Issue: &Issue{Title: "core change"}},
			{Categories: []string{"New Feature"}, Packages: []string{"core", "utils"},
				Issue: &Issue{Title: "cross-package change"}},
			{Categories: []string{"New Feature"},
				Issue: &Issue{Title: "repo-wide change"}},
		},
	}

	result := r.RenderRelease(&release)

	want := "#### New Feature\n" +
		"* `core`\n" +
		"  * core change.\n" +
		"* `core`, `utils`\n" +
		"  * cross-package change.\n" +
		"* Other\n" +
		"  * repo-wide change."
	if !strings.Contains(result, want) {
		t.Errorf("expected package groups in first-seen order:\nwant fragment:\n%s\ngot:\n%s", want, result)
	}
}

func TestRenderGroupsIdenticalPackageSetsTogether(t *testing.T) {
	r := NewRenderer(testOptions(), nil)

	release := Release{
		Name: "v1.0.0",
		Date: "2026-01-15",
		Commits: []Commit{
			{Categories: []string{"New Feature"}, Packages: []string{"utils", "core"},
				Issue: &Issue{Title: "first"}},
			{Categories: []string{"New Feature"}, Packages: []string{"core", "utils"},
				Issue: &Issue{Title: "second"}},
		},
	}

	result := r.RenderRelease(&release)

	if strings.Count(result, "* `core`, `utils`") != 1 {
		t.Errorf("expected one group for the shared package set, got:\n%s", result)
	}
	if !strings.Contains(result, "  * first.\n  * second.") {
		t.Errorf("expected both commits under the shared group in input order, got:\n%s", result)
	}
}

func TestRenderRewritesFixedIssueReferences(t *testing.T) {
	tests := map[string]struct {
		title string
		want  string
	}{
		"fixes":        {"fixes #42", "Closes [#42](https://example.com/issues/42)"},
		"fix":          {"fix #42 in parser", "Closes [#42](https://example.com/issues/42) in parser"},
		"fixed upper":  {"Fixed #7", "Closes [#7](https://example.com/issues/7)"},
		"closes":       {"closes #99", "Closes [#99](https://example.com/issues/99)"},
		"resolved":     {"resolved #3", "Closes [#3](https://example.com/issues/3)"},
		"task number":  {"fixes T15", "Closes [#15](https://example.com/issues/15)"},
		"mid sentence": {"guard nil map, fixes #8", "guard nil map, Closes [#8](https://example.com/issues/8)"},
		"no reference": {"improve docs", "improve docs"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRenderer(testOptions(), nil)
			release := Release{
				Name: "v1.0.0",
				Date: "2026-01-15",
				Commits: []Commit{
					{Categories: []string{"Bug Fix"}, Issue: &Issue{Title: tt.title}},
				},
			}

			result := r.RenderRelease(&release)
			if !strings.Contains(result, "* "+tt.want+".") {
				t.Errorf("title %q: expected %q in output, got:\n%s", tt.title, tt.want, result)
			}
		})
	}
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	r := NewRenderer(testOptions(), nil)

	release := Release{
		Name: "v1.0.0",
		Date: "2026-01-15",
		Commits: []Commit{
			{Categories: []string{"Bug Fix"}, Issue: &Issue{Title: "fixes #42"}},
		},
	}

	first := r.RenderRelease(&release)
	second := r.RenderRelease(&release)

	if first != second {
		t.Errorf("repeated rendering diverged:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	if release.Commits[0].Issue.Title != "fixes #42" {
		t.Errorf("input issue title was mutated to %q", release.Commits[0].Issue.Title)
	}
	if strings.Count(first, "Closes [#42]") != 1 {
		t.Errorf("expected exactly one rewrite, got:\n%s", first)
	}
}

func TestRenderContributorListSortedByLogin(t *testing.T) {
	got := renderContributorList([]Contributor{
		{Login: "zed", URL: "https://github.com/zed"},
		{Login: "alice", Name: "Alice Doe", URL: "https://github.com/alice"},
		{Login: "bob", Name: "Bob", URL: "https://github.com/bob"},
	})

	want := "#### Committers: 3\n" +
		"- Alice Doe ([alice](https://github.com/alice))\n" +
		"- Bob ([bob](https://github.com/bob))\n" +
		"- [zed](https://github.com/zed)"
	if got != want {
		t.Errorf("contributor list mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// countingIndicator records progress notifications for assertions.
type countingIndicator struct {
	initTotal  int
	titles     []string
	ticks      int
	terminated bool
}

func (c *countingIndicator) Init(total int)        { c.initTotal = total }
func (c *countingIndicator) SetTitle(title string) { c.titles = append(c.titles, title) }
func (c *countingIndicator) Tick()                 { c.ticks++ }
func (c *countingIndicator) Terminate()            { c.terminated = true }

func TestRenderAllNotifiesProgressPerCategory(t *testing.T) {
	ind := &countingIndicator{}
	r := NewRenderer(testOptions(), ind)

	releases := []Release{
		{Name: "v1.1.0", Date: "2026-02-01", Commits: []Commit{
			{Categories: []string{"New Feature"}, Issue: &Issue{Title: "a"}},
			{Categories: []string{"Bug Fix"}, Issue: &Issue{Title: "b"}},
		}},
		{Name: "v1.0.0", Date: "2026-01-15", Commits: []Commit{
			{Categories: []string{"Bug Fix"}, Issue: &Issue{Title: "c"}},
		}},
		{Name: "v0.9.0", Date: "2026-01-01"}, // renders empty, no ticks
	}

	withProgress := r.RenderAll(releases)

	if ind.initTotal != 3 {
		t.Errorf("expected Init(3), got Init(%d)", ind.initTotal)
	}
	if ind.ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", ind.ticks)
	}
	wantTitles := []string{"New Feature", "Bug Fix", "Bug Fix"}
	if len(ind.titles) != len(wantTitles) {
		t.Fatalf("expected titles %v, got %v", wantTitles, ind.titles)
	}
	for i, title := range wantTitles {
		if ind.titles[i] != title {
			t.Errorf("title[%d]: expected %q, got %q", i, title, ind.titles[i])
		}
	}
	if !ind.terminated {
		t.Error("expected Terminate to be called")
	}

	// The indicator has no bearing on output.
	silent := NewRenderer(testOptions(), nil).RenderAll(releases)
	if withProgress != silent {
		t.Errorf("progress indicator changed the output:\nwith:\n%s\nwithout:\n%s", withProgress, silent)
	}
}
