package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/app/auth"
	"postboard/app/config"
	"postboard/app/repositories"
	"postboard/app/routes"
	"postboard/app/services"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RunAppServer loads the configuration and serves the API until SIGINT or
// SIGTERM. It returns the process exit code.
func RunAppServer(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "--addr" {
			cfg.Addr = args[i+1]
		}
	}

	logger := NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("server stopped with an error")
		return 1
	}
	return 0
}

// Run opens the configured store, wires the application and serves until
// ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.WithError(err).Warn("failed to close store")
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, cfg.TrustedIssuers)
	handler := routes.SetupRoutes(routes.Options{
		Posts:        services.NewPostService(store.Posts),
		Users:        services.NewUserService(store.Users, tokens, cfg.BcryptCost),
		Tokens:       tokens,
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.Addr)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.WithFields(logrus.Fields{
		"addr":  listener.Addr().String(),
		"store": cfg.StoreDriver,
	}).Info("starting postboard API")

	return serve(ctx, srv, listener, cfg.ShutdownTimeout)
}

// OpenStore opens the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*repositories.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverBadger:
		return repositories.OpenBadgerStore(cfg.BadgerPath, logger.WithField("component", "badger"))
	case config.DriverMongo:
		return repositories.OpenMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, errors.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// serve runs srv on listener and shuts it down gracefully once ctx is done.
func serve(ctx context.Context, srv *http.Server, listener net.Listener, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown")
	}
	return nil
}
