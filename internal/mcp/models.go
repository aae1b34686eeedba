package mcp

import (
	"sort"

	"github.com/mvp-joe/refaudit/internal/audit"
	"github.com/mvp-joe/refaudit/internal/diff"
)

// CheckRequest is the parsed argument set for the refaudit_check tool.
type CheckRequest struct {
	BaseRef  string `json:"base_ref,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
	OldDir   string `json:"old_dir,omitempty"`
	NewDir   string `json:"new_dir,omitempty"`
}

// LanguageReport is the per-language slice of a CheckResponse.
type LanguageReport struct {
	Language string `json:"language"`

	// BackendError is set when the language's parser backend never ran;
	// all counts are absent in that case.
	BackendError string `json:"backend_error,omitempty"`

	Removed   []string             `json:"removed,omitempty"`
	Added     []string             `json:"added,omitempty"`
	Modified  []diff.ModifiedEntry `json:"modified,omitempty"`
	Renamed   []diff.MatchEntry    `json:"renamed,omitempty"`
	Matching  int                  `json:"matching"`
	Failures  []string             `json:"failures,omitempty"`
	Collision []string             `json:"collisions,omitempty"`
}

// CheckResponse is the JSON payload returned by refaudit_check.
type CheckResponse struct {
	Identical  bool             `json:"identical"`
	Branch     string           `json:"branch,omitempty"`
	BaseRef    string           `json:"base_ref"`
	BaseCommit string           `json:"base_commit,omitempty"`
	Skipped    int              `json:"skipped_files,omitempty"`
	Languages  []LanguageReport `json:"languages"`
}

// buildResponse flattens a RunResult into the wire shape.
func buildResponse(result *audit.RunResult) *CheckResponse {
	resp := &CheckResponse{
		Identical:  result.Identical(),
		Branch:     result.Branch,
		BaseRef:    result.BaseRef,
		BaseCommit: result.BaseCommit,
		Skipped:    result.SkippedFiles,
	}

	langs := make([]string, 0, len(result.Languages))
	for lang := range result.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		lr := result.Languages[lang]
		if lr.BackendErr != nil {
			resp.Languages = append(resp.Languages, LanguageReport{
				Language:     lr.Language,
				BackendError: lr.BackendErr.Error(),
			})
			continue
		}
		report := LanguageReport{
			Language: lr.Language,
			Removed:  lr.Comparison.Removed,
			Added:    lr.Comparison.Added,
			Modified: lr.Comparison.Modified,
			Matching: len(lr.Comparison.Matching),
		}
		for _, m := range lr.Comparison.Matching {
			if m.RenamedFrom != "" {
				report.Renamed = append(report.Renamed, m)
			}
		}
		for _, f := range lr.OldFailures {
			report.Failures = append(report.Failures, f.Error())
		}
		for _, f := range lr.NewFailures {
			report.Failures = append(report.Failures, f.Error())
		}
		for _, c := range lr.OldCollisions {
			report.Collision = append(report.Collision, c.String())
		}
		for _, c := range lr.NewCollisions {
			report.Collision = append(report.Collision, c.String())
		}
		resp.Languages = append(resp.Languages, report)
	}
	return resp
}
