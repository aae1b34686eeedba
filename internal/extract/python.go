package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kluctl/go-embed-python/python"

	"github.com/mvp-joe/refaudit/internal/diff"
)

// pythonExtractor extracts top-level definitions from Python sources by
// invoking the embedded CPython runtime: parsing and normalization happen
// in the helper script (ast.parse + ast.unparse), keeping the canonical
// pretty-printer behind the same extractor capability as the in-process
// languages. The subprocess boundary never leaks out of this type: helper
// failures surface as ErrBackendUnavailable, syntax errors as *ParseError.
type pythonExtractor struct {
	ep         *python.EmbeddedPython
	scriptPath string
}

// NewPythonExtractor bootstraps the embedded Python runtime under
// runtimeDir (created if needed) and writes the helper script next to it.
// Any bootstrap failure is ErrBackendUnavailable: Python comparisons
// cannot run, but other languages are unaffected.
func NewPythonExtractor(runtimeDir string) (Extractor, error) {
	if runtimeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		runtimeDir = filepath.Join(home, ".refaudit", "python")
	}

	// The runtime extraction is cached across runs; the hash suffix keeps
	// it safe to upgrade the embedded interpreter.
	ep, err := python.NewEmbeddedPythonWithTmpDir(filepath.Join(runtimeDir, "runtime"), true)
	if err != nil {
		return nil, fmt.Errorf("%w: embedded python: %v", ErrBackendUnavailable, err)
	}

	scriptPath := filepath.Join(runtimeDir, "extract_defs.py")
	if err := os.MkdirAll(runtimeDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := os.WriteFile(scriptPath, []byte(pythonHelperScript), 0644); err != nil {
		return nil, fmt.Errorf("%w: write helper script: %v", ErrBackendUnavailable, err)
	}

	return &pythonExtractor{ep: ep, scriptPath: scriptPath}, nil
}

func (e *pythonExtractor) Language() string {
	return "python"
}

func (e *pythonExtractor) Extensions() []string {
	return []string{".py"}
}

// lazyPythonExtractor defers interpreter bootstrap until the first file
// actually needs it, so audits that touch no Python pay nothing.
type lazyPythonExtractor struct {
	runtimeDir string
	once       sync.Once
	inner      Extractor
	err        error
}

// NewLazyPythonExtractor wraps NewPythonExtractor with on-demand
// bootstrap. Bootstrap failures surface from Extract as
// ErrBackendUnavailable.
func NewLazyPythonExtractor(runtimeDir string) Extractor {
	return &lazyPythonExtractor{runtimeDir: runtimeDir}
}

func (l *lazyPythonExtractor) Language() string {
	return "python"
}

func (l *lazyPythonExtractor) Extensions() []string {
	return []string{".py"}
}

func (l *lazyPythonExtractor) Extract(ctx context.Context, path string, source []byte) ([]diff.Definition, error) {
	l.once.Do(func() {
		l.inner, l.err = NewPythonExtractor(l.runtimeDir)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.inner.Extract(ctx, path, source)
}

// helperResult mirrors the helper script's JSON output.
type helperResult struct {
	Definitions []helperDefinition `json:"definitions"`
	Error       *helperError       `json:"error"`
}

type helperDefinition struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Body      string `json:"body"`
}

type helperError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
}

// Extract runs the helper over one file's source. Fails closed on syntax
// errors: no partial definitions.
func (e *pythonExtractor) Extract(ctx context.Context, path string, source []byte) ([]diff.Definition, error) {
	cmd, err := e.ep.PythonCmd(e.scriptPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start helper: %v", ErrBackendUnavailable, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("%w: helper exited: %v (stderr: %s)",
				ErrBackendUnavailable, err, bytes.TrimSpace(stderr.Bytes()))
		}
	}

	var result helperResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("%w: decode helper output: %v", ErrBackendUnavailable, err)
	}
	if result.Error != nil {
		return nil, &ParseError{
			Path:    path,
			Lang:    "python",
			Message: result.Error.Message,
			Line:    result.Error.Line,
		}
	}

	defs := make([]diff.Definition, 0, len(result.Definitions))
	for _, d := range result.Definitions {
		kind := diff.Kind(d.Kind)
		defs = append(defs, diff.Definition{
			QualifiedName:  diff.QualifiedName(kind, d.Name),
			Name:           d.Name,
			Kind:           kind,
			FilePath:       path,
			StartLine:      d.StartLine,
			EndLine:        d.EndLine,
			NormalizedBody: d.Body,
			Fingerprint:    diff.Fingerprint(d.Body),
		})
	}
	return defs, nil
}
