package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/mvp-joe/refaudit/internal/audit"
	"github.com/mvp-joe/refaudit/internal/diff"
)

// Renderer writes a human-readable audit report.
type Renderer struct {
	w io.Writer

	// Detailed includes per-definition line diffs when the comparison
	// carried them.
	Detailed bool
}

// NewRenderer creates a renderer writing to w. Color is controlled
// globally through the color package (disabled automatically when the
// output is not a terminal).
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes the full report for one audit run.
func (r *Renderer) Render(result *audit.RunResult) {
	r.renderHeader(result)

	for _, lang := range sortedLanguages(result) {
		r.renderLanguage(result.Languages[lang])
	}

	r.renderVerdict(result)
}

func (r *Renderer) renderHeader(result *audit.RunResult) {
	if result.BaseCommit != "" {
		fmt.Fprintf(r.w, "Auditing %s against %s (%s)\n",
			result.Branch, result.BaseRef, shortCommit(result.BaseCommit))
	} else {
		fmt.Fprintf(r.w, "Auditing %s against %s\n", result.RepoRoot, result.BaseRef)
	}
	if result.SkippedFiles > 0 {
		fmt.Fprintf(r.w, "  (%d unsupported files skipped)\n", result.SkippedFiles)
	}
	fmt.Fprintln(r.w)
}

func (r *Renderer) renderLanguage(lr *audit.LanguageResult) {
	if lr.BackendErr != nil {
		color.New(color.FgRed).Fprintf(r.w, "%s: backend unavailable: %v\n", lr.Language, lr.BackendErr)
		fmt.Fprintln(r.w)
		return
	}

	cmp := lr.Comparison
	fmt.Fprintf(r.w, "%s: %s\n", lr.Language, cmp.Summary())

	for _, name := range cmp.Removed {
		color.New(color.FgRed).Fprintf(r.w, "  - removed  %s\n", name)
	}
	for _, name := range cmp.Added {
		color.New(color.FgGreen).Fprintf(r.w, "  + added    %s\n", name)
	}
	for _, m := range cmp.Modified {
		label := m.Name
		if m.RenamedFrom != "" {
			label = fmt.Sprintf("%s (was %s)", m.Name, m.RenamedFrom)
		}
		color.New(color.FgYellow).Fprintf(r.w, "  ~ modified %s  %s -> %s\n",
			label, diff.ShortFingerprint(m.OldFingerprint), diff.ShortFingerprint(m.NewFingerprint))
		if r.Detailed && m.Diff != "" {
			r.renderDiff(m.Diff)
		}
	}
	for _, m := range cmp.Matching {
		if m.RenamedFrom != "" {
			color.New(color.FgCyan).Fprintf(r.w, "  = renamed  %s (was %s)\n", m.Name, m.RenamedFrom)
		}
	}

	r.renderProblems(lr)
	fmt.Fprintln(r.w)
}

func (r *Renderer) renderDiff(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "-"):
			color.New(color.FgRed).Fprintf(r.w, "      %s\n", line)
		case strings.HasPrefix(line, "+"):
			color.New(color.FgGreen).Fprintf(r.w, "      %s\n", line)
		default:
			fmt.Fprintf(r.w, "      %s\n", line)
		}
	}
}

func (r *Renderer) renderProblems(lr *audit.LanguageResult) {
	for _, f := range lr.OldFailures {
		color.New(color.FgMagenta).Fprintf(r.w, "  ! parse failure (base) %s\n", f.Error())
	}
	for _, f := range lr.NewFailures {
		color.New(color.FgMagenta).Fprintf(r.w, "  ! parse failure %s\n", f.Error())
	}
	for _, c := range lr.OldCollisions {
		color.New(color.FgYellow).Fprintf(r.w, "  ! collision (base) %s\n", c.String())
	}
	for _, c := range lr.NewCollisions {
		color.New(color.FgYellow).Fprintf(r.w, "  ! collision %s\n", c.String())
	}
}

func (r *Renderer) renderVerdict(result *audit.RunResult) {
	if failed := result.BackendFailures(); len(failed) > 0 {
		color.New(color.FgRed).Fprintf(r.w, "INCOMPLETE: no result for %s (parser backend unavailable)\n",
			strings.Join(failed, ", "))
	}
	if result.Identical() {
		color.New(color.FgGreen).Fprintln(r.w, "IDENTICAL: every definition matches")
		return
	}
	removed, added, modified, matching := result.Counts()
	if removed+added+modified == 0 {
		return
	}
	color.New(color.FgYellow).Fprintf(r.w, "DIFFERENT: %d removed, %d added, %d modified (%d matching)\n",
		removed, added, modified, matching)
}

func sortedLanguages(result *audit.RunResult) []string {
	langs := make([]string, 0, len(result.Languages))
	for lang := range result.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func shortCommit(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
