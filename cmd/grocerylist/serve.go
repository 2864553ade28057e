package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/grocerylist/internal/database"
	"github.com/dukerupert/grocerylist/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var port string
	var writeLimit int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API and change feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			shopCfg, err := opts.shoppingConfig()
			if err != nil {
				return err
			}

			db, err := database.Open(opts.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			srv := server.New(db, server.Config{Shopping: shopCfg, WriteLimit: writeLimit}, logger)

			httpServer := &http.Server{
				Addr:         ":" + port,
				Handler:      srv.Router(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go srv.RateLimiter().RunCleanup(ctx)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("grocerylist running", "addr", "http://localhost:"+port, "db", opts.dbPath, "grace", opts.grace)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", envOr("GROCERY_PORT", "8080"), "listen port (env GROCERY_PORT)")
	cmd.Flags().IntVar(&writeLimit, "write-limit", 120, "mutating requests allowed per client per minute")
	return cmd
}
