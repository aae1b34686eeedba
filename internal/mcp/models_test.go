package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/refaudit/internal/audit"
	"github.com/mvp-joe/refaudit/internal/diff"
	"github.com/mvp-joe/refaudit/internal/extract"
)

func TestBuildResponse(t *testing.T) {
	t.Parallel()

	result := &audit.RunResult{
		Branch:     "feature/x",
		BaseRef:    "main",
		BaseCommit: "abc123",
		Languages: map[string]*audit.LanguageResult{
			"typescript": {
				Language: "typescript",
				Comparison: &diff.ComparisonResult{
					Matching: []diff.MatchEntry{{Name: "function:same"}},
				},
			},
			"python": {
				Language: "python",
				Comparison: &diff.ComparisonResult{
					Removed: []string{"function:gone"},
					Matching: []diff.MatchEntry{
						{Name: "function:kept"},
						{Name: "function:moved", RenamedFrom: "function:old_moved"},
					},
				},
				NewFailures: []*extract.ParseError{
					{Path: "bad.py", Lang: "python", Message: "invalid syntax", Line: 2},
				},
			},
		},
	}

	resp := buildResponse(result)

	assert.False(t, resp.Identical)
	require.Len(t, resp.Languages, 2)

	// Deterministic order: python before typescript.
	assert.Equal(t, "python", resp.Languages[0].Language)
	assert.Equal(t, "typescript", resp.Languages[1].Language)

	py := resp.Languages[0]
	assert.Equal(t, []string{"function:gone"}, py.Removed)
	assert.Equal(t, 2, py.Matching)
	require.Len(t, py.Renamed, 1)
	assert.Equal(t, "function:moved", py.Renamed[0].Name)
	require.Len(t, py.Failures, 1)
	assert.Contains(t, py.Failures[0], "bad.py")

	// The response must marshal cleanly; the tool returns it as JSON text.
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"identical":false`)
}

func TestBuildResponse_Identical(t *testing.T) {
	t.Parallel()

	result := &audit.RunResult{
		BaseRef: "main",
		Languages: map[string]*audit.LanguageResult{
			"python": {
				Language:   "python",
				Comparison: &diff.ComparisonResult{},
			},
		},
	}

	resp := buildResponse(result)
	assert.True(t, resp.Identical)
}

func TestBuildResponse_BackendFailure(t *testing.T) {
	t.Parallel()

	result := &audit.RunResult{
		BaseRef: "main",
		Languages: map[string]*audit.LanguageResult{
			"python": {
				Language:   "python",
				BackendErr: extract.ErrBackendUnavailable,
			},
			"typescript": {
				Language: "typescript",
				Comparison: &diff.ComparisonResult{
					Matching: []diff.MatchEntry{{Name: "function:same"}},
				},
			},
		},
	}

	resp := buildResponse(result)
	assert.False(t, resp.Identical, "an unexamined language is never certified identical")
	require.Len(t, resp.Languages, 2)
	assert.Equal(t, "parser backend unavailable", resp.Languages[0].BackendError)
	assert.Empty(t, resp.Languages[1].BackendError)
	assert.Equal(t, 1, resp.Languages[1].Matching)
}
