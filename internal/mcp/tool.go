package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/refaudit/internal/audit"
)

// AuditRunner is the part of the audit runner the tool handler needs.
type AuditRunner interface {
	RunAgainstBase(ctx context.Context, repoPath string) (*audit.RunResult, error)
	RunDirs(ctx context.Context, oldDir, newDir string) (*audit.RunResult, error)
	WithOverrides(baseRef string, detailed bool) *audit.Runner
}

// AddCheckTool registers the refaudit_check tool with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddCheckTool(s *server.MCPServer, runner AuditRunner, repoPath string) {
	tool := mcp.NewTool(
		"refaudit_check",
		mcp.WithDescription("Compare the current worktree's named definitions (functions, classes, constants) against the merge base with the main branch. Reports which definitions were removed, added, modified, or match exactly, so a refactor can be verified as behavior-preserving."),
		mcp.WithString("base_ref",
			mcp.Description("Git ref to compare against instead of the configured or auto-detected base. Ignored in directory mode.")),
		mcp.WithBoolean("detailed",
			mcp.Description("Attach line-level diffs of the normalized bodies to modified definitions.")),
		mcp.WithString("old_dir",
			mcp.Description("Compare two directory trees instead of git revisions: the 'before' tree. Requires new_dir.")),
		mcp.WithString("new_dir",
			mcp.Description("The 'after' tree when comparing directories. Requires old_dir.")),
	)

	s.AddTool(tool, createCheckHandler(runner, repoPath))
}

// createCheckHandler creates the handler function for the refaudit_check tool.
func createCheckHandler(runner AuditRunner, repoPath string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args CheckRequest
		if argsMap, ok := request.Params.Arguments.(map[string]interface{}); ok {
			if v, ok := argsMap["base_ref"].(string); ok {
				args.BaseRef = v
			}
			if v, ok := argsMap["detailed"].(bool); ok {
				args.Detailed = v
			}
			if v, ok := argsMap["old_dir"].(string); ok {
				args.OldDir = v
			}
			if v, ok := argsMap["new_dir"].(string); ok {
				args.NewDir = v
			}
		}

		if (args.OldDir == "") != (args.NewDir == "") {
			return mcp.NewToolResultError("old_dir and new_dir must be given together"), nil
		}

		run := runner
		if args.BaseRef != "" || args.Detailed {
			run = runner.WithOverrides(args.BaseRef, args.Detailed)
		}

		var result *audit.RunResult
		var err error
		if args.OldDir != "" {
			result, err = run.RunDirs(ctx, args.OldDir, args.NewDir)
		} else {
			result, err = run.RunAgainstBase(ctx, repoPath)
		}
		if err != nil {
			return nil, fmt.Errorf("audit failed: %w", err)
		}

		jsonData, err := json.Marshal(buildResponse(result))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		// Return as text result (mcp-go convention)
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
