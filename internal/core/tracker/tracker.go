// Package tracker implements the daily completion gate shared by the tips and
// quizzes features.
//
// A Tracker answers whether an item was already credited to the active user
// today. State lives in memory and is mirrored to a single record in a
// domain.KeyValueStore. The record is discarded whenever it belongs to another
// user or another day.
//
// A Tracker never returns errors. Storage failures degrade to "nothing is
// completed"; the reward server stays the authority on double credit.
package tracker

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

type Option func(*Tracker)

// WithNamespace scopes the storage key to one installation.
func WithNamespace(namespace string) Option {
	return func(t *Tracker) {
		t.key = domain.CompletionKey(namespace, t.feature)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

type Tracker struct {
	feature domain.Feature
	key     string
	store   domain.KeyValueStore
	clock   domain.Clock
	logger  *zap.Logger

	// gate serializes every operation that touches the store, so a
	// get-modify-put sequence never interleaves with another one.
	gate sync.Mutex

	mu          sync.RWMutex
	initialized bool
	userID      string
	day         string
	completed   map[string]struct{}
}

func New(feature domain.Feature, store domain.KeyValueStore, clock domain.Clock, opts ...Option) *Tracker {
	t := &Tracker{
		feature:   feature,
		key:       domain.CompletionKey("", feature),
		store:     store,
		clock:     clock,
		logger:    zap.NewNop(),
		completed: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	t.logger = t.logger.With(zap.String("component", "tracker"), zap.String("feature", feature.String()))
	return t
}

// Initialize loads the persisted record for userID. Pass domain.GuestUserID for
// a session without an authenticated user.
func (t *Tracker) Initialize(ctx context.Context, userID string) {
	t.gate.Lock()
	defer t.gate.Unlock()

	today := t.clock.Today()
	ids := t.load(ctx, userID, today)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.initialized = true
	t.userID = userID
	t.day = today
	t.completed = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		t.completed[id] = struct{}{}
	}
}

func (t *Tracker) load(ctx context.Context, userID, today string) []string {
	raw, err := t.store.Get(ctx, t.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		t.logger.Warn("storage read failed, starting empty", zap.Error(err))
		return nil
	}

	record, err := domain.DecodeCompletionRecord(raw)
	if err != nil {
		t.logger.Warn("discarding corrupt record", zap.Error(err))
		t.remove(ctx)
		return nil
	}

	if !record.MatchesSession(userID, today) {
		t.logger.Debug("discarding stale record",
			zap.String("record_day", record.Date),
			zap.String("today", today),
			zap.Bool("same_user", record.UserID == userID),
		)
		t.remove(ctx)
		return nil
	}

	return record.IDs
}

func (t *Tracker) IsCompleted(itemID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.initialized {
		return false
	}
	_, ok := t.completed[itemID]
	return ok
}

// MarkCompleted records itemID as credited today. Call it only after the reward
// was granted. Guest sessions keep the mark in memory and never write.
func (t *Tracker) MarkCompleted(ctx context.Context, itemID string) {
	if strings.TrimSpace(itemID) == "" {
		t.logger.Warn("ignoring empty item id")
		return
	}

	t.gate.Lock()
	defer t.gate.Unlock()

	today := t.clock.Today()

	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		t.logger.Warn("mark before initialize ignored", zap.String("item_id", itemID))
		return
	}

	// A record never mixes days: state loaded yesterday is dropped first.
	if t.day != today {
		t.completed = make(map[string]struct{})
		t.day = today
	}
	t.completed[itemID] = struct{}{}

	userID := t.userID
	ids := t.sortedIDsLocked()
	t.mu.Unlock()

	if userID == domain.GuestUserID {
		return
	}

	raw, err := domain.NewCompletionRecord(userID, today, ids).Encode()
	if err != nil {
		t.logger.Error("encode record failed", zap.Error(err))
		return
	}

	if err := t.store.Set(ctx, t.key, raw); err != nil {
		t.logger.Warn("storage write failed, completion kept in memory only",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
	}
}

// Clear forgets every completion of the current session and drops the
// persisted record.
func (t *Tracker) Clear(ctx context.Context) {
	t.gate.Lock()
	defer t.gate.Unlock()

	t.mu.Lock()
	t.completed = make(map[string]struct{})
	userID := t.userID
	t.mu.Unlock()

	if userID != domain.GuestUserID {
		t.remove(ctx)
	}
}

func (t *Tracker) remove(ctx context.Context) {
	if err := t.store.Remove(ctx, t.key); err != nil {
		t.logger.Warn("storage remove failed", zap.Error(err))
	}
}

func (t *Tracker) Feature() domain.Feature {
	return t.feature
}

func (t *Tracker) Initialized() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.initialized
}

func (t *Tracker) UserID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.userID
}

// Day is the calendar day the in-memory state belongs to.
func (t *Tracker) Day() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.day
}

func (t *Tracker) CompletedIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sortedIDsLocked()
}

func (t *Tracker) sortedIDsLocked() []string {
	ids := make([]string, 0, len(t.completed))
	for id := range t.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
