package domain

import (
	"context"
	"errors"
)

var (
	ErrRewardFailed     = errors.New("reward claim failed")
	ErrAlreadyCompleted = errors.New("item already completed today")
	ErrUnauthorized     = errors.New("unauthorized")
)

type Reward struct {
	ItemID        string  `json:"itemId"`
	Feature       Feature `json:"feature"`
	PointsAwarded int     `json:"pointsAwarded"`
}

// RewardClient credits points for a completed item on the remote API.
// Calls are not idempotent: each successful call credits again.
type RewardClient interface {
	CompleteItem(ctx context.Context, feature Feature, itemID, token string) (*Reward, error)
}
