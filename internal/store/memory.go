package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is a Store held in process memory.
type Memory struct {
	mu       sync.RWMutex
	order    []string
	secrets  map[string]Secret
	versions map[string][]Version
	values   map[string]map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		secrets:  make(map[string]Secret),
		versions: make(map[string][]Version),
		values:   make(map[string]map[string]string),
	}
}

// Add records version v of secret name with value. The secret summary
// follows the newest version.
func (m *Memory) Add(v Version, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.secrets[v.Name]; !ok {
		m.order = append(m.order, v.Name)
		m.values[v.Name] = make(map[string]string)
	}
	m.versions[v.Name] = append(m.versions[v.Name], v)
	SortNewestFirst(m.versions[v.Name])
	m.values[v.Name][v.ID] = value

	newest := m.versions[v.Name][0]
	m.secrets[v.Name] = Secret{
		Name:        v.Name,
		Enabled:     newest.Enabled,
		ContentType: newest.ContentType,
		Created:     newest.Created,
		Updated:     newest.Updated,
		Tags:        newest.Tags,
	}
}

// ListSecrets returns every secret sorted by name.
func (m *Memory) ListSecrets(_ context.Context) ([]Secret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Secret, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.secrets[name])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) ListVersions(_ context.Context, name string) ([]Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vs, ok := m.versions[name]
	if !ok {
		return nil, fmt.Errorf("secret %q: %w", name, ErrNotFound)
	}
	out := make([]Version, len(vs))
	copy(out, vs)
	return out, nil
}

func (m *Memory) GetValue(_ context.Context, name, version string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[name][version]
	if !ok {
		return "", fmt.Errorf("secret %q version %q: %w", name, version, ErrNotFound)
	}
	return v, nil
}
