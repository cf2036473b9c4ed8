package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/canopy"
	mcpAdapter "github.com/aretw0/canopy/pkg/adapters/mcp"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts Canopy as an MCP Server.
This allows AI agents to run survey passes and read report panes as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		workspacePath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			workspacePath = args[0]
		}

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")

		// Configure logger on Stderr; Stdout carries JSON-RPC.
		opts := &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		surveyorOpts := []canopy.Option{canopy.WithLogger(logger)}
		var adapterOpts []mcpAdapter.Option

		// Never let the default stdout sink corrupt the stdio transport:
		// reports go to Redis when configured, otherwise to an in-process
		// sink readable through the read_pane tool.
		if redisAddr != "" {
			sink := redisAdapter.New(redisAddr, redisPassword, redisDB)
			defer sink.Close()
			surveyorOpts = append(surveyorOpts, canopy.WithSink(sink))
			adapterOpts = append(adapterOpts, mcpAdapter.WithPaneReader(sink))
		} else {
			sink := memory.NewSink()
			surveyorOpts = append(surveyorOpts, canopy.WithSink(sink))
			adapterOpts = append(adapterOpts, mcpAdapter.WithPaneReader(sink))
		}

		surveyor, err := canopy.New(workspacePath, surveyorOpts...)
		if err != nil {
			log.Fatalf("Error initializing canopy: %v", err)
		}
		defer surveyor.Close()

		srv := mcpAdapter.NewServer(surveyor, adapterOpts...)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			slog.Info("Starting Canopy MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("Starting Canopy MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				// Ignore server closed error if it was caused by context cancellation
				if err != http.ErrServerClosed {
					slog.Error("MCP Server execution failed", "error", err)
					os.Exit(1)
				}
			}
			slog.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("redis", "", "Redis address for a shared output sink (host:port)")
	mcpCmd.Flags().String("redis-password", "", "Redis password")
	mcpCmd.Flags().Int("redis-db", 0, "Redis database number")
}
