package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	adapterHTTP "github.com/ecoquest/ecoquest-engine/internal/adapters/handler/http"
	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
	"github.com/ecoquest/ecoquest-engine/internal/core/workers"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Run the HTTP API and the day rollover worker",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	startTime := time.Now()

	a, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cfg.RequireServing(); err != nil {
		return WrapExitError(ExitCommandError, "cannot serve", err)
	}

	gin.SetMode(a.cfg.Server.GinMode)

	// The process starts as a guest until a client opens a session.
	a.svc.StartSession(ctx, domain.GuestUserID)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	workers.NewRolloverWorker(a.svc, a.clock, a.cfg.Rollover.Interval, a.logger).Start(workerCtx)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		DailyHandler:   adapterHTTP.NewDailyHandler(a.svc),
		SessionHandler: adapterHTTP.NewSessionHandler(a.svc),
		TokenService:   a.tokens,
		Ping:           a.backend.Ping,
		Redis:          a.backend.Redis,
		StartTime:      startTime,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		TrustedProxies: a.cfg.Server.TrustedProxies,
		RateLimit: adapterHTTP.RateLimit{
			Requests: a.cfg.RateLimit.Requests,
			Window:   a.cfg.RateLimit.Window,
		},
		Logger: a.logger,
	})

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("ecoquest engine listening", zap.String("addr", "http://localhost:"+a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		a.logger.Info("stop signal received, shutting down")
	case <-ctx.Done():
	case err := <-serverErr:
		return WrapExitError(ExitFailure, "server error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "forced shutdown", err)
	}

	a.logger.Info("server stopped gracefully")
	return nil
}
