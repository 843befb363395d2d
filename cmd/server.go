package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/viktsys/tradestore/api"
	"github.com/viktsys/tradestore/config"
	"github.com/viktsys/tradestore/logger"
)

var (
	serverPort      int
	serverTradesDir string
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  `Start the HTTP API server that stores and serves trade records.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = serverPort
		}
		if cmd.Flags().Changed("trades-dir") {
			cfg.TradesDir = serverTradesDir
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		log, err := logger.New(cfg.Log)
		if err != nil {
			logrus.Fatalf("Failed to set up logging: %v", err)
		}

		if err := runServer(cmd.Context(), cfg, log); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	},
}

func init() {
	serverCMD.Flags().IntVarP(&serverPort, "port", "p", 5000, "port to listen on (overrides PORT)")
	serverCMD.Flags().StringVar(&serverTradesDir, "trades-dir", "trades", "directory for trade files (overrides TRADES_DIR)")
}

func runServer(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("Failed to close store")
		}
	}()

	publisher, err := openPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	router := api.SetupRoutes(api.NewHandler(store, publisher, log), log)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"backend": cfg.StorageBackend,
			"env":     cfg.Env,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}
