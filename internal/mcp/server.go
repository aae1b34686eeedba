package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
)

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	runner AuditRunner
	mcp    *server.MCPServer
}

// NewMCPServer creates a stdio MCP server exposing the audit as a tool.
// repoPath is the repository the git-mode tool calls operate on.
func NewMCPServer(runner AuditRunner, repoPath, version string) (*MCPServer, error) {
	if runner == nil {
		return nil, fmt.Errorf("audit runner is required")
	}

	mcpServer := server.NewMCPServer(
		"refaudit-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	AddCheckTool(mcpServer, runner, repoPath)

	return &MCPServer{
		runner: runner,
		mcp:    mcpServer,
	}, nil
}

// Serve starts the MCP server and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
