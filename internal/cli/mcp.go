package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/refaudit/internal/mcp"
)

// mcpCmd runs the MCP server on stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server on stdio",
	Long: `Mcp exposes the audit as an MCP tool (refaudit_check) over stdio, so
coding agents can verify their own refactors against the base revision.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	runner, _, err := buildRunner()
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	server, err := mcp.NewMCPServer(runner, wd, Version)
	if err != nil {
		return err
	}
	return server.Serve(cmd.Context())
}
