// Package blob provides the durable string key-value media the dashboard
// state is written to.
package blob

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Store is a durable key-value medium holding one string per key.
type Store interface {
	// Get returns the stored value; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Timestamped is implemented by media that know when a key was last written.
type Timestamped interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateKey rejects keys that cannot be used as a file name.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
