package audit

import (
	"sort"
	"time"

	"github.com/mvp-joe/refaudit/internal/diff"
	"github.com/mvp-joe/refaudit/internal/extract"
)

// LanguageResult is the outcome of one language's comparison.
type LanguageResult struct {
	Language   string
	Comparison *diff.ComparisonResult

	// BackendErr is set when the language's parser backend could not run
	// at all. Comparison is nil in that case; the other languages'
	// results are unaffected.
	BackendErr error

	// OldFailures and NewFailures are per-file parse failures in the
	// base and current revisions. Failed files contribute no
	// definitions but never abort the audit.
	OldFailures []*extract.ParseError
	NewFailures []*extract.ParseError

	// Collisions from both revisions, resolved last-write-wins.
	OldCollisions []extract.Collision
	NewCollisions []extract.Collision
}

// RunResult is a complete audit outcome across all languages.
type RunResult struct {
	RepoRoot   string
	Branch     string
	BaseRef    string
	BaseCommit string
	StartedAt  time.Time
	Duration   time.Duration

	// Languages holds per-language results, keyed by language name.
	// Only languages with at least one audited file appear.
	Languages map[string]*LanguageResult

	// SkippedFiles counts changed files that no extractor claims.
	SkippedFiles int
}

// Identical reports whether every language compared identical: no
// removed, added, or modified definitions anywhere. Parse failures do
// not affect this verdict; they are reported separately. A language
// whose backend never ran cannot be certified identical.
func (r *RunResult) Identical() bool {
	for _, lr := range r.Languages {
		if lr.Comparison == nil || !lr.Comparison.Identical() {
			return false
		}
	}
	return true
}

// BackendFailures lists the languages whose parser backend could not
// run, in sorted order.
func (r *RunResult) BackendFailures() []string {
	var langs []string
	for lang, lr := range r.Languages {
		if lr.BackendErr != nil {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// Counts sums the category sizes across languages.
func (r *RunResult) Counts() (removed, added, modified, matching int) {
	for _, lr := range r.Languages {
		if lr.Comparison == nil {
			continue
		}
		removed += len(lr.Comparison.Removed)
		added += len(lr.Comparison.Added)
		modified += len(lr.Comparison.Modified)
		matching += len(lr.Comparison.Matching)
	}
	return
}

// FailureCount sums parse failures across languages and revisions.
func (r *RunResult) FailureCount() int {
	n := 0
	for _, lr := range r.Languages {
		n += len(lr.OldFailures) + len(lr.NewFailures)
	}
	return n
}

// CollisionCount sums name collisions across languages and revisions.
func (r *RunResult) CollisionCount() int {
	n := 0
	for _, lr := range r.Languages {
		n += len(lr.OldCollisions) + len(lr.NewCollisions)
	}
	return n
}
