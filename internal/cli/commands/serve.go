package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openfga-dslc/openfga-dslc/internal/api"
	"github.com/openfga-dslc/openfga-dslc/internal/cli/config"
	"github.com/openfga-dslc/openfga-dslc/internal/store"
	"github.com/openfga-dslc/openfga-dslc/internal/web/server"
)

var servePort int

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fgac compile API",
		Long: `Start an HTTP server exposing the compile API:

  POST /v1/compile       compile DSL source, return JSON without persisting
  POST /v1/models        compile and persist DSL source under a name
  GET  /v1/models        list persisted models (JSON:API, paginated)
  GET  /v1/models/{id}   fetch a previously compiled model
  GET  /v1/ws/compile    live-compile over a WebSocket connection`,
		RunE: runServe,
	}

	cmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	modelStore, err := store.Open(ctx, store.Options{
		Driver: cfg.Store.Driver,
		URL:    cfg.Store.URL,
	})
	if err != nil {
		return fmt.Errorf("failed to open model store: %w", err)
	}
	defer modelStore.Close()

	handler := api.NewHandler(api.Config{
		Store:          modelStore,
		AuthMode:       cfg.Server.Auth,
		JWTSecret:      os.Getenv("FGAC_JWT_SECRET"),
		LocalTokenHash: os.Getenv("FGAC_LOCAL_TOKEN_HASH"),
		Logger:         logger,
	})

	srvConfig := server.DefaultConfig(handler)
	srvConfig.Address = fmt.Sprintf(":%d", port)

	srv, err := server.New(srvConfig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	banner := color.New(color.FgCyan, color.Bold)
	info := color.New(color.FgWhite)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	fmt.Println()
	banner.Println("fgac serve")
	info.Printf("  listening on http://localhost:%d\n", port)
	info.Printf("  store: %s\n", cfg.Store.Driver)
	fmt.Println()
	color.New(color.FgYellow).Println("Press Ctrl+C to stop")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-sigChan:
		fmt.Println("\nShutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	color.New(color.FgGreen).Println("Goodbye!")
	return nil
}
