package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/anonto42/effisocial/backend/internal/realtime"
	"github.com/anonto42/effisocial/backend/internal/router"
	"github.com/anonto42/effisocial/backend/internal/services"
	"github.com/anonto42/effisocial/backend/internal/uploads"
	"github.com/anonto42/effisocial/backend/pkg/config"
	"github.com/anonto42/effisocial/backend/pkg/firebase"
	"github.com/anonto42/effisocial/backend/pkg/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}
	defer db.CloseDB()

	if err := migrate(ctx, db); err != nil {
		return err
	}

	// Firebase is optional; without it /api/auth/firebase answers 400
	var verifier services.IDTokenVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase: %w", err)
	}
	if firebaseApp != nil {
		verifier = firebaseApp.AuthClient
	}

	store, err := uploads.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	var relay realtime.Relay
	if db.Redis != nil {
		relay = realtime.NewRedisRelay(db.Redis, realtime.DefaultChannel)
	}
	hub := realtime.NewHub(relay)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("realtime relay stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, cfg)

	repos := router.NewRepositories(db.Postgres, db.MongoDB)
	svc := router.NewServices(cfg, repos, hub, store, verifier)
	router.SetupRoutes(e, cfg, svc, hub)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
