package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	httpAdapter "github.com/aretw0/canopy/pkg/adapters/http"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP survey server",
	Long: `Starts Canopy in server mode, exposing survey passes, project listings,
pane contents and Prometheus metrics over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")

		logger := logging.New(slog.LevelInfo)

		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		surveyorOpts := []canopy.Option{
			canopy.WithLogger(logger),
			canopy.WithLifecycleHooks(metrics.Hooks()),
		}
		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithMetrics(registry),
			httpAdapter.WithLogger(logger),
		}

		// Reports go to Redis when configured, otherwise to an in-process
		// sink. Either way the pane stays readable over the API.
		if redisAddr != "" {
			sink := redisAdapter.New(redisAddr, redisPassword, redisDB)
			defer sink.Close()
			surveyorOpts = append(surveyorOpts, canopy.WithSink(sink))
			handlerOpts = append(handlerOpts, httpAdapter.WithPaneReader(sink))
		} else {
			sink := memory.NewSink()
			surveyorOpts = append(surveyorOpts, canopy.WithSink(sink))
			handlerOpts = append(handlerOpts, httpAdapter.WithPaneReader(sink))
		}

		srv, err := canopy.New(dir, surveyorOpts...)
		if err != nil {
			fmt.Printf("Error initializing canopy: %v\n", err)
			os.Exit(1)
		}
		defer srv.Close()

		server := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(srv, handlerOpts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Canopy Server on %s\n", server.Addr)
			fmt.Printf("Surveying workspace: %s\n", srv.Name)
			serverErrors <- server.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := server.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := server.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Canopy Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for a shared output sink (host:port)")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database number")
}
