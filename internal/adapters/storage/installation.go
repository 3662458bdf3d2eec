package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

const installationKey = "ecoquest:installation"

// EnsureInstallationID returns the id of this installation, generating and
// persisting one on first use.
func EnsureInstallationID(ctx context.Context, store domain.KeyValueStore) (string, error) {
	id, err := store.Get(ctx, installationKey)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		return "", fmt.Errorf("installation id: read failed: %w", err)
	}

	id = uuid.NewString()
	if err := store.Set(ctx, installationKey, id); err != nil {
		return "", fmt.Errorf("installation id: write failed: %w", err)
	}
	return id, nil
}
