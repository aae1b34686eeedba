package extract

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/mvp-joe/refaudit/internal/diff"
)

// FileContent is one file's full source text for a single revision.
type FileContent struct {
	Path   string
	Source []byte
}

// Collision records two files in the same revision producing the same
// qualified name. The later path's definition wins, but the event is
// surfaced so a human can judge whether that is acceptable.
type Collision struct {
	QualifiedName string
	KeptPath      string
	ShadowedPath  string
}

func (c Collision) String() string {
	return fmt.Sprintf("%s defined in both %s and %s (kept %s)",
		c.QualifiedName, c.ShadowedPath, c.KeptPath, c.KeptPath)
}

// RevisionResult is the aggregate of extracting every file of one revision.
// Files that failed to parse are excluded from Definitions and listed in
// Failures; they are never conflated with deleted files.
type RevisionResult struct {
	Definitions diff.DefinitionSet
	Failures    []*ParseError
	Collisions  []Collision
}

// Aggregator extracts a revision's files through one extractor and merges
// the per-file definition sets into a revision-level set. Per-file
// extraction runs in parallel; the merge happens afterwards in
// lexicographic path order so last-write-wins collision resolution is
// deterministic regardless of scheduling.
type Aggregator struct {
	extractor Extractor
	cache     *ResultCache
	workers   int
}

// NewAggregator creates an aggregator for one language. cache may be nil
// to disable extraction memoization.
func NewAggregator(extractor Extractor, cache *ResultCache) *Aggregator {
	return &Aggregator{
		extractor: extractor,
		cache:     cache,
		workers:   runtime.NumCPU(),
	}
}

// Aggregate extracts all files and unions their definitions.
//
// ParseErrors are collected per file, not returned: a syntactically broken
// file must not abort the revision. Any other extraction error — notably
// ErrBackendUnavailable — aborts the whole aggregation, because it means
// an unknown number of files could not be examined at all.
func (a *Aggregator) Aggregate(ctx context.Context, files []FileContent) (*RevisionResult, error) {
	type outcome struct {
		defs []diff.Definition
		fail *ParseError
	}

	sorted := make([]FileContent, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	outcomes := make([]outcome, len(sorted))
	jobs := make(chan int)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		fatalMu  sync.Mutex
		fatalErr error
	)

	workers := a.workers
	if workers > len(sorted) {
		workers = len(sorted)
	}
	if workers < 1 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				file := sorted[idx]
				defs, err := a.extractFile(ctx, file)
				if err != nil {
					var parseErr *ParseError
					if errors.As(err, &parseErr) {
						outcomes[idx] = outcome{fail: parseErr}
						continue
					}
					fatalMu.Lock()
					if fatalErr == nil {
						fatalErr = fmt.Errorf("extract %s: %w", file.Path, err)
					}
					fatalMu.Unlock()
					cancel()
					return
				}
				outcomes[idx] = outcome{defs: defs}
			}
		}()
	}

	for idx := range sorted {
		select {
		case jobs <- idx:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Sequential merge in path order: collision resolution stays
	// deterministic no matter how extraction was scheduled.
	result := &RevisionResult{Definitions: make(diff.DefinitionSet)}
	for idx, out := range outcomes {
		if out.fail != nil {
			result.Failures = append(result.Failures, out.fail)
			continue
		}
		for _, def := range out.defs {
			if prev, collided := result.Definitions.Add(def); collided {
				result.Collisions = append(result.Collisions, Collision{
					QualifiedName: def.QualifiedName,
					KeptPath:      sorted[idx].Path,
					ShadowedPath:  prev.FilePath,
				})
			}
		}
	}
	return result, nil
}

// extractFile runs one file through the extractor, consulting the cache.
// Cached definitions are re-pathed since the same content can appear under
// a different file name (the pure-split case).
func (a *Aggregator) extractFile(ctx context.Context, file FileContent) ([]diff.Definition, error) {
	lang := a.extractor.Language()
	if a.cache != nil {
		if cached, ok := a.cache.Get(lang, file.Source); ok {
			return repath(cached, file.Path), nil
		}
	}

	defs, err := a.extractor.Extract(ctx, file.Path, file.Source)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Put(lang, file.Source, defs)
	}
	return defs, nil
}

func repath(defs []diff.Definition, path string) []diff.Definition {
	out := make([]diff.Definition, len(defs))
	copy(out, defs)
	for i := range out {
		out[i].FilePath = path
	}
	return out
}
