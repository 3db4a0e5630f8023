package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/webheroes-dev/insightful/internal/config"
	"github.com/webheroes-dev/insightful/internal/content"
	"github.com/webheroes-dev/insightful/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		address    string
		contentDir string
		noWatch    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the content server",
		Long: `Start the content server.

Loads articles from the content directory, watches it for changes,
and serves pages plus the /live WebSocket endpoint.

Examples:
  insightful serve
  insightful serve --address=:9000
  insightful serve --content=./articles --no-watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(address, contentDir, noWatch)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from insightful.json)")
	cmd.Flags().StringVarP(&contentDir, "content", "c", "", "Content directory (default from insightful.json)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable content hot reloading")

	return cmd
}

func runServe(address, contentDir string, noWatch bool) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Address = address
	}
	if contentDir != "" {
		cfg.ContentDir = contentDir
	}
	if noWatch {
		cfg.Watch = false
	}

	store := content.NewStore(cfg.ContentDir, logger)
	if err := store.Load(); err != nil {
		return err
	}
	logger.Info("content loaded", "dir", cfg.ContentDir, "articles", store.Count())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		watcher, err := content.NewWatcher(store, logger)
		if err != nil {
			logger.Warn("content watcher unavailable", "error", err)
		} else {
			go watcher.Run(ctx)
		}
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Address = cfg.Address
	srvCfg.DefaultTab = cfg.UI.DefaultTab
	srvCfg.ManagedFilters = cfg.UI.Filters
	srvCfg.DefaultFilters = cfg.UI.DefaultFilters
	srvCfg.Logger = logger

	srv := server.New(store, srvCfg)

	if cfg.Assets.Bucket != "" {
		client := s3.New(s3.Options{Region: cfg.Assets.Region})
		srv.SetAssets(content.NewAssetStore(client, cfg.Assets.Bucket, cfg.Assets.Prefix))
		logger.Info("asset store enabled", "bucket", cfg.Assets.Bucket, "prefix", cfg.Assets.Prefix)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
