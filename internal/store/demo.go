package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewVersionID returns a 32 character hex version identifier, the shape Key
// Vault uses.
func NewVersionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Demo returns a Memory store seeded with sample secrets, each with a few
// versions a day apart ending at now.
func Demo(now time.Time) *Memory {
	m := NewMemory()
	seed := []struct {
		name     string
		versions int
		ctype    string
		tags     map[string]string
	}{
		{"api-key", 2, "text/plain", map[string]string{"team": "platform"}},
		{"db-password", 3, "", map[string]string{"env": "prod"}},
		{"db-password-backup", 1, "", nil},
		{"service-bus-connection-string", 2, "text/plain", nil},
		{"storage-account-key", 4, "", map[string]string{"env": "prod", "rotation": "90d"}},
		{"tls-certificate", 1, "application/x-pem-file", nil},
	}
	for _, s := range seed {
		for i := 0; i < s.versions; i++ {
			created := now.Add(-time.Duration(s.versions-i) * 24 * time.Hour).Truncate(time.Second)
			m.Add(Version{
				Name:            s.name,
				ID:              NewVersionID(),
				Enabled:         true,
				ContentType:     s.ctype,
				Created:         created,
				Updated:         created,
				RecoverableDays: 90,
				RecoveryLevel:   "Recoverable+Purgeable",
				Tags:            s.tags,
			}, s.name+"-value-"+created.Format("20060102"))
		}
	}
	return m
}
