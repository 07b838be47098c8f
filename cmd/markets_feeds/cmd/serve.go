package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/api"
	"github.com/gcbaptista/markets-feeds/store"
)

var watchDataDir bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API over the article corpus in the data directory.

The corpus is loaded and indexed in the background; search answers 503
INDEX_NOT_READY until the first build completes.

With --watch, new or changed article files in the data directory clear the
caches and reload the corpus.

Example:
  markets-feeds serve --port 9000 --data-dir /var/lib/markets-feeds --watch`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "8080", "port to listen on")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	serveCmd.Flags().BoolVar(&watchDataDir, "watch", false, "reload the corpus when article files change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, logger, err := newEngine()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eng.Start()
	defer eng.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := eng.Warm(ctx); err != nil {
			logger.Warn("Initial corpus load failed", zap.Error(err))
		}
	}()

	if watchDataDir {
		watcher, err := store.NewDirWatcher(cfg.DataDir, 0, logger.Named("watcher"))
		if err != nil {
			return err
		}
		go watcher.Run(ctx, func() {
			if _, err := eng.Refresh(ctx); err != nil {
				logger.Warn("Corpus refresh after file change failed", zap.Error(err))
			}
		})
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(),
		api.RequestIDMiddleware(),
		api.LoggerMiddleware(logger.Named("http")),
		api.RequestSizeLimitMiddleware(cfg.Server.MaxBodyBytes),
		api.CORSMiddleware())
	api.SetupRoutes(router, eng, logger.Named("api"))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr), zap.String("data_dir", cfg.DataDir))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
