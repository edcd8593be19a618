package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	travelassistant "github.com/LamiKaan/travel-assistant"
	"github.com/LamiKaan/travel-assistant/internal/adapters/httpapi"
	"github.com/LamiKaan/travel-assistant/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the assistant in server mode, exposing session management and conversation turns as a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Listen = listen
		}
		logger := newLogger(cfg)

		reasoner, err := newReasoner(cfg, logger)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		reg := prometheus.NewRegistry()
		metrics := observability.New(reg)

		opts := append(buildOptions(cfg, logger),
			travelassistant.WithLifecycleHooks(metrics.Hooks()),
		)
		assistant, err := travelassistant.New(reasoner, opts...)
		if err != nil {
			fmt.Printf("Error initializing assistant: %v\n", err)
			os.Exit(1)
		}

		handler := httpapi.NewHandler(assistant,
			httpapi.WithLogger(logger),
			httpapi.WithMetrics(reg),
		)

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Travel Assistant Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
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
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Travel Assistant Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (overrides the config file)")
}
