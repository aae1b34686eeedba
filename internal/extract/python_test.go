package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/refaudit/internal/diff"
)

// Test Plan for pythonExtractor:
// - Extract top-level functions, async functions, classes, constants, and
//   annotated type aliases
// - Methods and nested defs fold into their enclosing definition's body
// - Normalization makes comments, docstring-free formatting, and quote
//   style irrelevant to fingerprints
// - Decorators are part of a definition's body and span
// - Syntax errors fail closed with a ParseError carrying the line
// - Bootstrap runs once; subsequent Extract calls reuse the runtime
//
// These tests bootstrap the embedded interpreter, so they are skipped in
// short mode and run against a shared extractor.

func newTestPythonExtractor(t *testing.T) Extractor {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping embedded python tests in short mode")
	}
	ex, err := NewPythonExtractor(t.TempDir())
	if err != nil {
		if errors.Is(err, ErrBackendUnavailable) {
			t.Skipf("python runtime unavailable: %v", err)
		}
		t.Fatalf("bootstrap: %v", err)
	}
	return ex
}

func TestPythonExtractor_TopLevelKinds(t *testing.T) {
	ex := newTestPythonExtractor(t)

	source := []byte(`MAX_RETRIES = 3

UserId: TypeAlias = int

def fetch(url):
    return get(url)

async def poll(url):
    return await aget(url)

class Worker:
    def run(self):
        return fetch(self.url)
`)

	defs, err := ex.Extract(context.Background(), "svc/worker.py", source)
	require.NoError(t, err)

	byName := make(map[string]diff.Definition)
	for _, d := range defs {
		byName[d.QualifiedName] = d
	}

	require.Len(t, byName, 5)
	assert.Equal(t, diff.KindConstant, byName["constant:MAX_RETRIES"].Kind)
	assert.Equal(t, diff.KindTypeAlias, byName["type-alias:UserId"].Kind)
	assert.Equal(t, diff.KindFunction, byName["function:fetch"].Kind)
	assert.Equal(t, diff.KindFunction, byName["function:poll"].Kind)
	assert.Equal(t, diff.KindClass, byName["class:Worker"].Kind)

	// run is a method, not a top-level definition, but its body is part
	// of the class fingerprint.
	assert.NotContains(t, byName, "function:run")
	assert.Contains(t, byName["class:Worker"].NormalizedBody, "def run")
}

func TestPythonExtractor_NormalizationIsPrecise(t *testing.T) {
	ex := newTestPythonExtractor(t)

	messy := []byte(`def area( r ):
    # circle area
    return   3.14 * r*r
`)
	clean := []byte(`def area(r):
    return 3.14 * r * r
`)

	a, err := ex.Extract(context.Background(), "a.py", messy)
	require.NoError(t, err)
	b, err := ex.Extract(context.Background(), "b.py", clean)
	require.NoError(t, err)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].Fingerprint, b[0].Fingerprint,
		"comments and spacing must not affect the fingerprint")
}

func TestPythonExtractor_DecoratorsInSpanAndBody(t *testing.T) {
	ex := newTestPythonExtractor(t)

	source := []byte(`import functools

@functools.cache
def slow(n):
    return n * n
`)

	defs, err := ex.Extract(context.Background(), "cached.py", source)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	assert.Equal(t, "function:slow", defs[0].QualifiedName)
	assert.Equal(t, 3, defs[0].StartLine, "span starts at the decorator")
	assert.Equal(t, 5, defs[0].EndLine)
	assert.Contains(t, defs[0].NormalizedBody, "functools.cache")

	bare, err := ex.Extract(context.Background(), "bare.py", []byte("def slow(n):\n    return n * n\n"))
	require.NoError(t, err)
	require.Len(t, bare, 1)
	assert.NotEqual(t, bare[0].Fingerprint, defs[0].Fingerprint,
		"decorators are semantic and must change the fingerprint")
}

func TestPythonExtractor_SyntaxErrorFailsClosed(t *testing.T) {
	ex := newTestPythonExtractor(t)

	defs, err := ex.Extract(context.Background(), "broken.py", []byte("def broken(:\n    pass\n"))

	require.Error(t, err)
	assert.Nil(t, defs)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken.py", perr.Path)
	assert.Equal(t, "python", perr.Lang)
	assert.Equal(t, 1, perr.Line)
}

func TestPythonExtractor_EmptyFile(t *testing.T) {
	ex := newTestPythonExtractor(t)

	defs, err := ex.Extract(context.Background(), "empty.py", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, defs)
}
