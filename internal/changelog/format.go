package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// FormatOptions controls the terminal preview formatting.
type FormatOptions struct {
	Plain    bool // Disable colors
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// categoryPalette is cycled through for category headings; categories are
// configured by the user so colors are assigned by position.
var categoryPalette = []*color.Color{
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
	color.New(color.FgRed),
}

// FormatTerminal writes a terminal preview of every release that has at
// least one commit in a configured category. This is a display aid for the
// preview command; the markdown renderer is unaffected by it.
func FormatTerminal(releases []Release, categories []string, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	first := true
	for i := range releases {
		if !hasAnyCategory(&releases[i], categories) {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false

		if err := formatRelease(&releases[i], categories, w, opts, width); err != nil {
			return fmt.Errorf("formatting release %s: %w", releases[i].Name, err)
		}
	}

	return nil
}

// FormatRelease writes a terminal preview of a single release.
func FormatRelease(rel *Release, categories []string, w io.Writer, opts FormatOptions) error {
	return formatRelease(rel, categories, w, opts, resolveWidth(opts.MaxWidth))
}

func formatRelease(rel *Release, categories []string, w io.Writer, opts FormatOptions, width int) error {
	if err := writeReleaseHeader(rel, w, opts); err != nil {
		return err
	}

	for i, cat := range categories {
		var matching []Commit
		for j := range rel.Commits {
			if rel.Commits[j].HasCategory(cat) {
				matching = append(matching, rel.Commits[j])
			}
		}
		if len(matching) == 0 {
			continue
		}

		style := categoryPalette[i%len(categoryPalette)]
		if err := writeCategorySection(cat, matching, style, w, opts, width); err != nil {
			return err
		}
	}

	return nil
}

func hasAnyCategory(rel *Release, categories []string) bool {
	for _, cat := range categories {
		for i := range rel.Commits {
			if rel.Commits[i].HasCategory(cat) {
				return true
			}
		}
	}
	return false
}

// writeReleaseHeader writes the release heading line.
func writeReleaseHeader(rel *Release, w io.Writer, opts FormatOptions) error {
	header := rel.DisplayName()
	if rel.Date != "" {
		header = fmt.Sprintf("%s (%s)", header, rel.Date)
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeCategorySection writes a single category heading with its commits.
func writeCategorySection(category string, commits []Commit, style *color.Color, w io.Writer, opts FormatOptions, width int) error {
	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", category); err != nil {
			return err
		}
	} else {
		colored := style.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s\n", colored(category)); err != nil {
			return err
		}
	}

	for i := range commits {
		if err := writeCommitLine(&commits[i], style, w, opts, width); err != nil {
			return err
		}
	}

	return nil
}

// writeCommitLine writes one commit entry with optional wrapping.
func writeCommitLine(c *Commit, style *color.Color, w io.Writer, opts FormatOptions, width int) error {
	text := commitSummary(c)
	if text == "" {
		return nil
	}

	prefix := "  - "
	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(text, width-len(prefix), "    ")
	colored := style.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// commitSummary returns the preview text for a commit: the issue title with
// its number, falling back to an abbreviated SHA.
func commitSummary(c *Commit) string {
	if c.Issue != nil && c.Issue.Title != "" {
		if c.Issue.Number != 0 {
			return fmt.Sprintf("%s (#%d)", c.Issue.Title, c.Issue.Number)
		}
		return c.Issue.Title
	}
	if len(c.SHA) >= 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
