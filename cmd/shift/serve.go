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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/shift"
	httpAdapter "github.com/aretw0/shift/pkg/adapters/http"
	"github.com/aretw0/shift/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/shift/pkg/adapters/redis"
	"github.com/aretw0/shift/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve element state, triggers and events over HTTP",
	Long: `Runs the trigger engine against the page definition and exposes it over a
JSON API: element status, manual trigger injection, an SSE event stream and
Prometheus metrics. With --redis, state changes also cascade through Redis
pub/sub to other processes serving the same page.`,
	Run: func(cmd *cobra.Command, args []string) {
		pagePath, _ := cmd.Flags().GetString("page")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")

		logger := newLogger(cmd)

		spec, err := memory.LoadPage(pagePath)
		if err != nil {
			fmt.Printf("Error loading page: %v\n", err)
			os.Exit(1)
		}
		host := memory.NewHost(*spec)

		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		opts := []shift.Option{
			shift.WithLogger(logger),
			shift.WithHooks(metrics.Hooks()),
		}
		if redisAddr != "" {
			bus := redisAdapter.New(redisAddr, "", 0)
			defer bus.Close()
			opts = append(opts, shift.WithBus(bus))
		}

		ctrl, err := shift.New(host, opts...)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}
		defer ctrl.Close()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		mux.Handle("/", httpAdapter.NewHandler(ctrl, logger))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting shift server on %s\n", srv.Addr)
			fmt.Printf("Serving page: %s\n", pagePath)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
		}
	},
}

func init() {
	serveCmd.Flags().String("port", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for cross-process cascade (optional)")
	rootCmd.AddCommand(serveCmd)
}
