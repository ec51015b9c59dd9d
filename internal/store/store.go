// Package store defines the secret store the browser reads from and the
// in-memory implementation used by tests and the demo backend.
package store

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound indicates a requested secret or version does not exist.
var ErrNotFound = errors.New("store: not found")

// Secret is the summary of a secret as listed by the store.
type Secret struct {
	Name        string
	Enabled     bool
	ContentType string
	Created     time.Time
	Updated     time.Time
	Tags        map[string]string
}

// Version is one version of a secret and its attributes.
type Version struct {
	Name            string
	ID              string
	Enabled         bool
	ContentType     string
	Created         time.Time
	Updated         time.Time
	Expires         time.Time
	NotBefore       time.Time
	KeyID           string
	RecoverableDays int
	RecoveryLevel   string
	Tags            map[string]string
}

// Store is the read side of a secret store.
type Store interface {
	ListSecrets(ctx context.Context) ([]Secret, error)
	// ListVersions returns the versions of name, newest first by Created.
	ListVersions(ctx context.Context, name string) ([]Version, error)
	GetValue(ctx context.Context, name, version string) (string, error)
}

// Names returns the secret names in list order.
func Names(secrets []Secret) []string {
	out := make([]string, len(secrets))
	for i, s := range secrets {
		out[i] = s.Name
	}
	return out
}

// SortNewestFirst orders versions by Created descending. Ties keep their
// relative order.
func SortNewestFirst(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].Created.After(versions[j].Created)
	})
}
