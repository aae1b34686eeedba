package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/refaudit/internal/diff"
)

// fakeExtractor treats each non-empty line of a file as "name=body" and
// emits a function definition per line. A line reading "ERROR" produces a
// ParseError; "FATAL" produces a backend failure.
type fakeExtractor struct{}

func (fakeExtractor) Language() string     { return "fake" }
func (fakeExtractor) Extensions() []string { return []string{".fake"} }

func (fakeExtractor) Extract(_ context.Context, path string, source []byte) ([]diff.Definition, error) {
	var defs []diff.Definition
	for i, line := range strings.Split(string(source), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "ERROR" {
			return nil, &ParseError{Path: path, Lang: "fake", Message: "bad line", Line: i + 1}
		}
		if line == "FATAL" {
			return nil, fmt.Errorf("%w: runtime gone", ErrBackendUnavailable)
		}
		name, body, _ := strings.Cut(line, "=")
		defs = append(defs, diff.Definition{
			QualifiedName:  diff.QualifiedName(diff.KindFunction, name),
			Name:           name,
			Kind:           diff.KindFunction,
			FilePath:       path,
			StartLine:      i + 1,
			EndLine:        i + 1,
			NormalizedBody: body,
			Fingerprint:    diff.Fingerprint(body),
		})
	}
	return defs, nil
}

func TestAggregator_MergesFiles(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(fakeExtractor{}, nil)
	result, err := agg.Aggregate(context.Background(), []FileContent{
		{Path: "a.fake", Source: []byte("one=1\ntwo=2")},
		{Path: "b.fake", Source: []byte("three=3")},
	})

	require.NoError(t, err)
	assert.Len(t, result.Definitions, 3)
	assert.Empty(t, result.Failures)
	assert.Empty(t, result.Collisions)
	assert.Equal(t, "a.fake", result.Definitions["function:one"].FilePath)
}

func TestAggregator_ParseFailureExcludesFileOnly(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(fakeExtractor{}, nil)
	result, err := agg.Aggregate(context.Background(), []FileContent{
		{Path: "good.fake", Source: []byte("ok=1")},
		{Path: "bad.fake", Source: []byte("ERROR")},
	})

	require.NoError(t, err)

	// The broken file contributes nothing; the failure is reported, not
	// swallowed, and does not abort the revision.
	assert.Len(t, result.Definitions, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad.fake", result.Failures[0].Path)
}

func TestAggregator_BackendFailureAborts(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(fakeExtractor{}, nil)
	_, err := agg.Aggregate(context.Background(), []FileContent{
		{Path: "ok.fake", Source: []byte("a=1")},
		{Path: "doomed.fake", Source: []byte("FATAL")},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestAggregator_CollisionIsLastWriteWinsInPathOrder(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(fakeExtractor{}, nil)

	// Input order is scrambled on purpose: merge order must follow
	// lexicographic path order, so zz.fake wins regardless.
	result, err := agg.Aggregate(context.Background(), []FileContent{
		{Path: "zz.fake", Source: []byte("dup=new")},
		{Path: "aa.fake", Source: []byte("dup=old")},
	})

	require.NoError(t, err)
	require.Len(t, result.Collisions, 1)
	assert.Equal(t, "function:dup", result.Collisions[0].QualifiedName)
	assert.Equal(t, "zz.fake", result.Collisions[0].KeptPath)
	assert.Equal(t, "aa.fake", result.Collisions[0].ShadowedPath)
	assert.Equal(t, "zz.fake", result.Definitions["function:dup"].FilePath)
}

func TestAggregator_EmptyInput(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(fakeExtractor{}, nil)
	result, err := agg.Aggregate(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, result.Definitions)
	assert.Empty(t, result.Failures)
}

func TestAggregator_CacheRepathsHits(t *testing.T) {
	t.Parallel()

	cache, err := NewResultCache()
	require.NoError(t, err)
	defer cache.Close()

	agg := NewAggregator(fakeExtractor{}, cache)

	// Same content under two paths (the pure-split case): the cached
	// definitions must come back with the second file's path.
	first, err := agg.Aggregate(context.Background(), []FileContent{
		{Path: "orig.fake", Source: []byte("shared=x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "orig.fake", first.Definitions["function:shared"].FilePath)

	second, err := agg.Aggregate(context.Background(), []FileContent{
		{Path: "moved.fake", Source: []byte("shared=x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "moved.fake", second.Definitions["function:shared"].FilePath)
	assert.Equal(t,
		first.Definitions["function:shared"].Fingerprint,
		second.Definitions["function:shared"].Fingerprint)
}
