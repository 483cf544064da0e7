package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kazz187/taskbounty/internal/client"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := NewConfig()
	if err != nil {
		logger.ErrorContext(ctx, "failed to create config", "error", err)
		os.Exit(1)
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mcp-taskbounty",
			Title:   "TaskBounty MCP Server",
			Version: "v1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "MCP server for TaskBounty, an on-chain task bounty board. Workflow: 1) taskbounty_connect to connect the wallet, 2) taskbounty_list_views to see open bounties and your own tasks, 3) taskbounty_register or taskbounty_create_task to act, 4) taskbounty_complete_task to pay a participant of one of your tasks.",
		},
	)
	NewTools(client.NewSessionClient(cfg.ServerURL, cfg.APIKey)).Register(server)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.ErrorContext(ctx, "failed to run server", "error", err)
		os.Exit(1)
	}
}
