package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nyayadrishti/casemetrics/internal/metrics"
	transporthttp "nyayadrishti/casemetrics/internal/transport/http"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the case metrics as a JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		store, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer store.Close()

		cache := metrics.NewCache(cfg.CacheSize)
		server := transporthttp.NewServer(metrics.NewPipeline(logger, cache), ds, store, cfg.Params, logger)
		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", addr), zap.Int("cases", ds.Cases.Len()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		hits, misses := cache.Stats()
		logger.Info("shutting down",
			zap.Int("cache_hits", hits),
			zap.Int("cache_misses", misses),
			zap.Int("cache_entries", cache.Len()),
		)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
