package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
	"github.com/ecoquest/ecoquest-engine/internal/core/tracker"
)

// CompletionService runs the claim flow of the daily features: check the
// tracker, claim the reward, then record the completion. One session (one
// user, guest included) is active at a time; a request from another user
// switches the session and resets every tracker.
type CompletionService struct {
	trackers map[domain.Feature]*tracker.Tracker
	reward   domain.RewardClient
	clock    domain.Clock
	logger   *zap.Logger

	// mu is held exclusively for session switches and claims, shared for reads.
	mu      sync.RWMutex
	started bool
	userID  string
}

func NewCompletionService(trackers []*tracker.Tracker, reward domain.RewardClient, clock domain.Clock, logger *zap.Logger) *CompletionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	byFeature := make(map[domain.Feature]*tracker.Tracker, len(trackers))
	for _, t := range trackers {
		byFeature[t.Feature()] = t
	}

	return &CompletionService{
		trackers: byFeature,
		reward:   reward,
		clock:    clock,
		logger:   logger.With(zap.String("component", "completion_service")),
	}
}

type CompleteInput struct {
	Feature domain.Feature
	ItemID  string
	UserID  string
	Token   string
}

// StartSession initializes every tracker for userID, even when it is already
// the active user.
func (s *CompletionService) StartSession(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startLocked(ctx, userID)
}

func (s *CompletionService) startLocked(ctx context.Context, userID string) {
	for _, t := range s.trackers {
		t.Initialize(ctx, userID)
	}
	s.started = true
	s.userID = userID

	s.logger.Info("session started", zap.Bool("guest", userID == domain.GuestUserID))
}

// Refresh re-initializes the active session, dropping state left over from a
// previous day. It does nothing before the first session.
func (s *CompletionService) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.startLocked(ctx, s.userID)
}

func (s *CompletionService) CurrentUser() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.started
}

func (s *CompletionService) staleLocked(userID string) bool {
	if !s.started || s.userID != userID {
		return true
	}

	today := s.clock.Today()
	for _, t := range s.trackers {
		if t.Day() != today {
			return true
		}
	}
	return false
}

// ensureLocked requires s.mu held exclusively.
func (s *CompletionService) ensureLocked(ctx context.Context, userID string) {
	if s.staleLocked(userID) {
		s.startLocked(ctx, userID)
	}
}

// readSession runs fn with the session for userID active. The shared lock is
// enough unless the session has to be switched first.
func (s *CompletionService) readSession(ctx context.Context, userID string, fn func()) {
	s.mu.RLock()
	if !s.staleLocked(userID) {
		defer s.mu.RUnlock()
		fn()
		return
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked(ctx, userID)
	fn()
}

func (s *CompletionService) tracker(feature domain.Feature) (*tracker.Tracker, error) {
	t, ok := s.trackers[feature]
	if !ok {
		return nil, domain.ErrUnknownFeature
	}
	return t, nil
}

// Complete claims the reward for an item at most once per user per day. The
// tracker is only updated after the reward call succeeded.
func (s *CompletionService) Complete(ctx context.Context, input CompleteInput) (*domain.Reward, error) {
	t, err := s.tracker(input.Feature)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateItemID(input.ItemID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLocked(ctx, input.UserID)

	if t.IsCompleted(input.ItemID) {
		return nil, domain.ErrAlreadyCompleted
	}

	reward, err := s.reward.CompleteItem(ctx, input.Feature, input.ItemID, input.Token)
	if err != nil {
		s.logger.Warn("reward claim failed",
			zap.String("feature", input.Feature.String()),
			zap.String("item_id", input.ItemID),
			zap.Error(err),
		)
		if errors.Is(err, domain.ErrRewardFailed) {
			return nil, fmt.Errorf("completion service: %w", err)
		}
		return nil, fmt.Errorf("completion service: %w: %v", domain.ErrRewardFailed, err)
	}

	// The reward is granted: record it even if the caller went away meanwhile.
	t.MarkCompleted(context.WithoutCancel(ctx), input.ItemID)

	s.logger.Info("item completed",
		zap.String("feature", input.Feature.String()),
		zap.String("item_id", input.ItemID),
		zap.Int("points", reward.PointsAwarded),
	)

	return reward, nil
}

func (s *CompletionService) Status(ctx context.Context, feature domain.Feature, itemID, userID string) (bool, error) {
	t, err := s.tracker(feature)
	if err != nil {
		return false, err
	}

	var completed bool
	s.readSession(ctx, userID, func() {
		completed = t.IsCompleted(itemID)
	})
	return completed, nil
}

func (s *CompletionService) Summary(ctx context.Context, feature domain.Feature, userID string) (*domain.DailySummary, error) {
	t, err := s.tracker(feature)
	if err != nil {
		return nil, err
	}

	var summary *domain.DailySummary
	s.readSession(ctx, userID, func() {
		summary = &domain.DailySummary{
			Feature:      feature,
			UserID:       t.UserID(),
			Guest:        t.UserID() == domain.GuestUserID,
			Date:         t.Day(),
			CompletedIDs: t.CompletedIDs(),
		}
	})
	return summary, nil
}

func (s *CompletionService) Clear(ctx context.Context, feature domain.Feature, userID string) error {
	t, err := s.tracker(feature)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLocked(ctx, userID)
	t.Clear(ctx)

	s.logger.Info("feature cleared", zap.String("feature", feature.String()))
	return nil
}
