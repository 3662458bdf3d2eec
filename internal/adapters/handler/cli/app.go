package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecoquest/ecoquest-engine/internal/adapters/clock"
	"github.com/ecoquest/ecoquest-engine/internal/adapters/logging"
	"github.com/ecoquest/ecoquest-engine/internal/adapters/reward"
	"github.com/ecoquest/ecoquest-engine/internal/adapters/storage"
	"github.com/ecoquest/ecoquest-engine/internal/config"
	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
	"github.com/ecoquest/ecoquest-engine/internal/core/services"
	"github.com/ecoquest/ecoquest-engine/internal/core/tracker"
)

// app is the wired object graph every command works on.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	backend *storage.Backend
	clock   *clock.SystemClock
	svc     *services.CompletionService
	// tokens is nil when no JWT secret is configured.
	tokens *services.TokenService
}

func bootstrap(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to init logger", err)
	}

	clk, err := clock.NewSystemClockFromName(cfg.Timezone)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load timezone", err)
	}

	var rewardClient domain.RewardClient = rewardNotConfigured{}
	if cfg.Reward.BaseURL != "" {
		rc, err := reward.NewHTTPClient(reward.Options{
			BaseURL:       cfg.Reward.BaseURL,
			Timeout:       cfg.Reward.Timeout,
			RatePerSecond: cfg.Reward.RatePerSecond,
			Burst:         cfg.Reward.Burst,
		})
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to init reward client", err)
		}
		rewardClient = rc
	}

	backend, err := storage.NewByEngine(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace, err = storage.EnsureInstallationID(ctx, backend.Store)
		if err != nil {
			_ = backend.Close()
			return nil, WrapExitError(ExitCommandError, "failed to resolve installation id", err)
		}
	}

	logger.Debug("storage ready",
		zap.String("engine", cfg.Storage.Engine),
		zap.String("namespace", namespace),
		zap.String("timezone", clk.Location().String()),
	)

	trackers := make([]*tracker.Tracker, 0, len(domain.AllFeatures()))
	for _, feature := range domain.AllFeatures() {
		trackers = append(trackers, tracker.New(feature, backend.Store, clk,
			tracker.WithNamespace(namespace),
			tracker.WithLogger(logger),
		))
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		clock:   clk,
		svc:     services.NewCompletionService(trackers, rewardClient, clk, logger),
	}
	if cfg.Auth.JWTSecret != "" {
		a.tokens = services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("storage close failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// identityFlags selects who a one-shot command acts for. A token wins over a
// plain user id; neither means guest.
type identityFlags struct {
	User  string
	Token string
}

func (a *app) resolveIdentity(f identityFlags) (userID, token string, err error) {
	if f.Token == "" {
		return f.User, "", nil
	}
	if a.tokens == nil {
		return "", "", NewExitError(ExitCommandError, "--token requires JWT_SECRET to be set")
	}
	userID, err = a.tokens.ValidateToken(f.Token)
	if err != nil {
		return "", "", WrapExitError(ExitCommandError, "invalid token", err)
	}
	return userID, f.Token, nil
}

type rewardNotConfigured struct{}

func (rewardNotConfigured) CompleteItem(context.Context, domain.Feature, string, string) (*domain.Reward, error) {
	return nil, fmt.Errorf("%w: REWARD_API_BASE_URL is not set", domain.ErrRewardFailed)
}

func parseFeatureArg(raw string) (domain.Feature, error) {
	feature, err := domain.ParseFeature(raw)
	if err != nil {
		return "", WrapExitError(ExitCommandError, fmt.Sprintf("invalid feature %q", raw), err)
	}
	return feature, nil
}
