package audit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mvp-joe/refaudit/internal/config"
	"github.com/mvp-joe/refaudit/internal/diff"
	"github.com/mvp-joe/refaudit/internal/extract"
	"github.com/mvp-joe/refaudit/internal/git"
)

// ErrNoBaseRef means no base revision was configured and none could be
// auto-detected.
var ErrNoBaseRef = errors.New("no base ref configured and no main/master ancestor found")

// ErrNameCollision is returned when duplicate definition names are found
// and the collision policy is "fail".
var ErrNameCollision = errors.New("duplicate definition names")

// ProgressFunc receives coarse progress updates during a run.
type ProgressFunc func(stage string, done, total int)

// Runner orchestrates one audit: it resolves the two revisions, extracts
// definitions from both, and compares them per language.
type Runner struct {
	cfg      *config.Config
	gitOps   git.Operations
	registry *extract.Registry
	cache    *extract.ResultCache
	filter   *PathFilter
	progress ProgressFunc
}

// NewRunner builds a runner from configuration and collaborators.
func NewRunner(cfg *config.Config, gitOps git.Operations, registry *extract.Registry, cache *extract.ResultCache) (*Runner, error) {
	filter, err := NewPathFilter(cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("compiling path patterns: %w", err)
	}
	return &Runner{
		cfg:      cfg,
		gitOps:   gitOps,
		registry: registry,
		cache:    cache,
		filter:   filter,
	}, nil
}

// WithOverrides returns a runner whose base ref and detailed-diff
// settings are replaced for one run. Zero values keep the configured
// behavior; the receiver and its configuration are left untouched.
func (r *Runner) WithOverrides(baseRef string, detailed bool) *Runner {
	cfg := *r.cfg
	if baseRef != "" {
		cfg.Compare.BaseRef = baseRef
	}
	if detailed {
		cfg.Compare.Detailed = true
	}
	clone := *r
	clone.cfg = &cfg
	return &clone
}

// SetProgress installs a progress callback. Nil disables reporting.
func (r *Runner) SetProgress(fn ProgressFunc) {
	r.progress = fn
}

func (r *Runner) report(stage string, done, total int) {
	if r.progress != nil {
		r.progress(stage, done, total)
	}
}

// revisionFiles groups file contents by language for one revision.
type revisionFiles map[string][]extract.FileContent

func (rf revisionFiles) add(lang string, file extract.FileContent) {
	rf[lang] = append(rf[lang], file)
}

// RunAgainstBase audits the worktree at repoPath against the merge base
// with the configured (or auto-detected) base ref.
func (r *Runner) RunAgainstBase(ctx context.Context, repoPath string) (*RunResult, error) {
	started := time.Now()

	root := r.gitOps.GetWorktreeRoot(repoPath)
	branch := r.gitOps.GetCurrentBranch(root)

	baseRef := r.cfg.Compare.BaseRef
	if baseRef == "" {
		baseRef = r.gitOps.FindAncestorBranch(root, branch)
		if baseRef == "" {
			return nil, ErrNoBaseRef
		}
	}

	baseCommit, err := r.gitOps.MergeBase(root, baseRef)
	if err != nil {
		return nil, err
	}

	changed, err := r.gitOps.ChangedFiles(root, baseCommit)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RepoRoot:   root,
		Branch:     branch,
		BaseRef:    baseRef,
		BaseCommit: baseCommit,
		StartedAt:  started,
		Languages:  make(map[string]*LanguageResult),
	}

	oldFiles := revisionFiles{}
	newFiles := revisionFiles{}

	r.report("collecting", 0, len(changed))
	for i, cf := range changed {
		if err := r.collectChanged(root, baseCommit, cf, oldFiles, newFiles, result); err != nil {
			return nil, err
		}
		r.report("collecting", i+1, len(changed))
	}

	if err := r.compareAll(ctx, oldFiles, newFiles, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)
	return result, nil
}

// collectChanged loads the base and worktree sides of one changed file
// and routes each side to its language bucket.
func (r *Runner) collectChanged(root, baseCommit string, cf git.ChangedFile, oldFiles, newFiles revisionFiles, result *RunResult) error {
	oldPath := cf.Path
	if cf.Status == git.StatusRenamed {
		oldPath = cf.OldPath
	}

	hasOld := cf.Status != git.StatusAdded
	hasNew := cf.Status != git.StatusDeleted

	routed := false

	if hasOld && r.filter.Matches(oldPath) {
		content, err := r.gitOps.ShowFile(root, baseCommit, oldPath)
		if err != nil {
			return err
		}
		if ex, ok := r.registry.ForFile(oldPath, content); ok {
			oldFiles.add(ex.Language(), extract.FileContent{Path: oldPath, Source: content})
			routed = true
		}
	}

	if hasNew && r.filter.Matches(cf.Path) {
		content, err := os.ReadFile(filepath.Join(root, cf.Path))
		if err != nil {
			return fmt.Errorf("reading worktree file %s: %w", cf.Path, err)
		}
		if ex, ok := r.registry.ForFile(cf.Path, content); ok {
			newFiles.add(ex.Language(), extract.FileContent{Path: cf.Path, Source: content})
			routed = true
		}
	}

	if !routed {
		result.SkippedFiles++
	}
	return nil
}

// RunDirs audits two directory trees: oldDir is the before revision,
// newDir the after revision.
func (r *Runner) RunDirs(ctx context.Context, oldDir, newDir string) (*RunResult, error) {
	started := time.Now()

	result := &RunResult{
		RepoRoot:  newDir,
		BaseRef:   oldDir,
		StartedAt: started,
		Languages: make(map[string]*LanguageResult),
	}

	oldFiles, err := r.collectTree(oldDir, result)
	if err != nil {
		return nil, err
	}
	newFiles, err := r.collectTree(newDir, result)
	if err != nil {
		return nil, err
	}

	if err := r.compareAll(ctx, oldFiles, newFiles, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)
	return result, nil
}

// collectTree walks a directory and routes every included file to its
// language bucket. Paths are recorded relative to the tree root so the
// two revisions line up.
func (r *Runner) collectTree(rootDir string, result *RunResult) (revisionFiles, error) {
	files := revisionFiles{}

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if !r.filter.Matches(relPath) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		ex, ok := r.registry.ForFile(relPath, content)
		if !ok {
			result.SkippedFiles++
			return nil
		}

		files.add(ex.Language(), extract.FileContent{Path: relPath, Source: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", rootDir, err)
	}
	return files, nil
}

// compareAll extracts and compares each language present in either
// revision, in deterministic language order.
func (r *Runner) compareAll(ctx context.Context, oldFiles, newFiles revisionFiles, result *RunResult) error {
	langs := make(map[string]bool)
	for lang := range oldFiles {
		langs[lang] = true
	}
	for lang := range newFiles {
		langs[lang] = true
	}

	ordered := make([]string, 0, len(langs))
	for lang := range langs {
		ordered = append(ordered, lang)
	}
	sort.Strings(ordered)

	for i, lang := range ordered {
		r.report("comparing "+lang, i, len(ordered))

		ex, ok := r.registry.ForLanguage(lang)
		if !ok {
			return fmt.Errorf("no extractor registered for %s", lang)
		}
		agg := extract.NewAggregator(ex, r.cache)

		var newRev *extract.RevisionResult
		oldRev, err := agg.Aggregate(ctx, oldFiles[lang])
		if err != nil {
			err = fmt.Errorf("extracting %s (base): %w", lang, err)
		} else {
			var newErr error
			if newRev, newErr = agg.Aggregate(ctx, newFiles[lang]); newErr != nil {
				err = fmt.Errorf("extracting %s: %w", lang, newErr)
			}
		}
		if err != nil {
			// A dead backend is fatal for this language only; the
			// remaining languages still get their comparison.
			if errors.Is(err, extract.ErrBackendUnavailable) {
				result.Languages[lang] = &LanguageResult{Language: lang, BackendErr: err}
				continue
			}
			return err
		}

		if r.cfg.Compare.CollisionPolicy == config.CollisionFail {
			if n := len(oldRev.Collisions) + len(newRev.Collisions); n > 0 {
				return fmt.Errorf("%w: %d in %s", ErrNameCollision, n, lang)
			}
		}

		cmp := diff.Compare(oldRev.Definitions, newRev.Definitions, r.cfg.Aliases[lang], diff.CompareOptions{
			Detailed: r.cfg.Compare.Detailed,
		})

		result.Languages[lang] = &LanguageResult{
			Language:      lang,
			Comparison:    cmp,
			OldFailures:   oldRev.Failures,
			NewFailures:   newRev.Failures,
			OldCollisions: oldRev.Collisions,
			NewCollisions: newRev.Collisions,
		}
	}

	r.report("comparing", len(ordered), len(ordered))
	return nil
}
