package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/mvp-joe/refaudit/internal/diff"
)

// ErrBackendUnavailable signals that the external parser runtime for a
// language could not be started. Fatal for that language's comparison only;
// other languages proceed independently.
var ErrBackendUnavailable = errors.New("parser backend unavailable")

// ParseError means the source text does not parse under the file's declared
// language grammar. Parsing fails closed: no partial definitions are
// returned for the file. A parse failure is never the same thing as a
// deleted file — a deleted file legitimately yields zero definitions, a
// parse failure yields an unknown set and must say so.
type ParseError struct {
	Path    string
	Lang    string
	Message string
	Line    int // 1-based, 0 when unknown
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s syntax error at line %d: %s", e.Path, e.Lang, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s syntax error: %s", e.Path, e.Lang, e.Message)
}

// Extractor is the per-language extraction capability. Implementations
// parse one file's full source text into its top-level definitions, with
// normalized bodies and fingerprints already computed. Nested definitions
// (closures, inner classes, methods) are part of their enclosing
// definition's body, never separate entries.
//
// Extract returns a *ParseError for unparseable input and
// ErrBackendUnavailable (possibly wrapped) when the language's parser
// runtime cannot run at all. Implementations must be safe for concurrent
// use and deterministic: the same source always yields the same
// definitions within one process run.
type Extractor interface {
	// Language returns the canonical language name ("python", "typescript").
	Language() string

	// Extensions returns the file extensions this extractor handles.
	Extensions() []string

	// Extract parses source and returns the file's top-level definitions.
	Extract(ctx context.Context, path string, source []byte) ([]diff.Definition, error)
}
