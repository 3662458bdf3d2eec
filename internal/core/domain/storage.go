package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrStoreUnavailable = errors.New("key-value store unavailable")
)

// KeyValueStore is a durable, string-keyed storage facility.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// CompletionKey is the storage key owned by one feature tracker. Namespace
// separates installations sharing a backend.
func CompletionKey(namespace string, feature Feature) string {
	if namespace == "" {
		return fmt.Sprintf("ecoquest:daily:%s", feature)
	}
	return fmt.Sprintf("ecoquest:daily:%s:%s", namespace, feature)
}
