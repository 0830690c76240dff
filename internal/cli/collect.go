package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/config"
	apperrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/github"
)

var (
	collectRepoPathFlag   string
	collectFromFlag       string
	collectToFlag         string
	collectReleaseFlag    string
	collectNoMetadataFlag bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Build the release manifest from git history",
	Long: `Build or rebuild the releases.yaml manifest from git history.

Release tags (semver) are mapped to releases, newest first; commits past the
newest tag become the "unreleased" entry. Each commit's pull-request number is
parsed from its subject and, unless --no-fetch-metadata is given, resolved
against the GitHub API to fill in titles, links, labels, and authors. Labels
are mapped to categories via the "labels" config table.

Examples:
  relnotes collect                          # All tagged releases plus unreleased
  relnotes collect --from v0.5.0 --to HEAD  # A single explicit range
  relnotes collect --no-fetch-metadata      # Offline, commit subjects only`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollect(cmd)
	},
}

func init() {
	collectCmd.GroupID = GroupWorkflows
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectRepoPathFlag, "repo-path", "", "Path to the git repository (default: current directory)")
	collectCmd.Flags().StringVar(&collectFromFlag, "from", "", "Exclusive lower bound ref for a single range")
	collectCmd.Flags().StringVar(&collectToFlag, "to", "", "Inclusive upper bound ref for a single range (default: HEAD)")
	collectCmd.Flags().StringVar(&collectReleaseFlag, "release", "", "Release name for a single range (default: unreleased)")
	collectCmd.Flags().BoolVar(&collectNoMetadataFlag, "no-fetch-metadata", false, "Skip GitHub metadata lookups")
}

func runCollect(cmd *cobra.Command) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	ranges, err := collectRanges()
	if err != nil {
		return apperrors.Wrap(err, apperrors.Prerequisite,
			"Run relnotes inside a git repository, or pass --repo-path")
	}

	enricher := newEnricher(cfg, cmd)

	log := &changelog.Changelog{Project: cfg.Repo}
	for _, r := range ranges {
		rel, err := collectRelease(cmd, r, enricher)
		if err != nil {
			return err
		}
		if len(rel.Commits) == 0 {
			continue
		}
		log.Releases = append(log.Releases, *rel)
	}

	if err := changelog.Save(cfg.ManifestPath, log); err != nil {
		return apperrors.Wrap(err, apperrors.Runtime)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d releases, %d commits)\n",
		cfg.ManifestPath, len(log.Releases), log.CommitCount())
	return nil
}

// collectRanges resolves the ranges to collect: one explicit --from/--to
// range, or every release tag in the repository.
func collectRanges() ([]git.Range, error) {
	if collectFromFlag == "" && collectToFlag == "" {
		return git.ReleaseRanges(collectRepoPathFlag)
	}

	name := collectReleaseFlag
	if name == "" {
		name = changelog.UnreleasedName
	}
	to := collectToFlag
	if to == "" {
		to = "HEAD"
	}

	r := git.Range{Name: name, From: collectFromFlag, To: to}
	if name != changelog.UnreleasedName {
		r.Date = time.Now().Format("2006-01-02")
	}
	return []git.Range{r}, nil
}

// newEnricher builds the GitHub enricher, or returns nil when metadata
// lookups are disabled or unconfigured.
func newEnricher(cfg *config.Configuration, cmd *cobra.Command) *github.Enricher {
	if collectNoMetadataFlag {
		return nil
	}
	if cfg.Repo == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Note: no repo configured, skipping GitHub metadata (set 'repo' in .relnotes/config.yml)")
		return nil
	}

	client := github.NewClient(cfg.Repo, os.Getenv(cfg.GithubTokenEnv))
	client.BaseURL = cfg.GithubAPIURL

	return &github.Enricher{
		Client:      client,
		Labels:      cfg.Labels,
		Concurrency: cfg.Concurrency,
	}
}

// collectRelease walks one range and assembles a manifest release entry.
func collectRelease(cmd *cobra.Command, r git.Range, enricher *github.Enricher) (*changelog.Release, error) {
	commits, err := git.CommitsBetween(collectRepoPathFlag, r.From, r.To)
	if err != nil {
		return nil, apperrors.WrapWithMessage(err, apperrors.Runtime,
			fmt.Sprintf("collecting %s", r.Name))
	}

	rel := &changelog.Release{Name: r.Name, Date: r.Date}
	if rel.IsUnreleased() {
		rel.Date = time.Now().Format("2006-01-02")
	}

	rel.Commits = make([]changelog.Commit, len(commits))
	targets := make([]github.Target, len(commits))
	for i, c := range commits {
		rel.Commits[i] = changelog.Commit{SHA: c.SHA}
		targets[i] = github.Target{Commit: &rel.Commits[i], PRNumber: c.PRNumber}
	}

	if enricher != nil {
		for _, lookupErr := range enricher.Enrich(cmd.Context(), targets) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: metadata lookup failed: %v\n", lookupErr)
		}
	}

	rel.Contributors = contributorsOf(rel.Commits)
	return rel, nil
}

// contributorsOf derives the release's contributor list from the enriched
// issue authors, deduplicated by login.
func contributorsOf(commits []changelog.Commit) []changelog.Contributor {
	seen := make(map[string]bool)
	var contributors []changelog.Contributor
	for i := range commits {
		issue := commits[i].Issue
		if issue == nil || issue.Author == nil || seen[issue.Author.Login] {
			continue
		}
		seen[issue.Author.Login] = true
		contributors = append(contributors, changelog.Contributor{
			Login: issue.Author.Login,
			URL:   issue.Author.URL,
		})
	}
	return contributors
}
