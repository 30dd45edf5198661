package store

import (
	"sort"
	"sync"

	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// MemoryStore implements Store using in-memory data structures. Used for
// tests and ":memory:" runs where nothing should touch disk.
type MemoryStore struct {
	mu          sync.RWMutex
	repos       map[string]*types.RepoTally    // keyed by repo name
	extractions []*types.ExtractionRecord      // insertion order
	modules     map[string]*types.ModuleRecord // keyed by ModuleID.Hex()
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		repos:       make(map[string]*types.RepoTally),
		extractions: make([]*types.ExtractionRecord, 0),
		modules:     make(map[string]*types.ModuleRecord),
	}
}

// AddRepoTally records a repository's scan result, replacing any earlier row.
func (m *MemoryStore) AddRepoTally(t *types.RepoTally) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.repos[t.Repo] = t
	return nil
}

// AddExtraction appends one candidate's terminal record.
func (m *MemoryStore) AddExtraction(r *types.ExtractionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.extractions = append(m.extractions, r)
	return nil
}

// AddModule records a distinct accepted module. The first record for a
// content hash wins; later duplicates are ignored.
func (m *MemoryStore) AddModule(mod *types.ModuleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mod.ID.Hex()
	if _, exists := m.modules[key]; exists {
		return nil
	}
	m.modules[key] = mod
	return nil
}

// ModuleExists checks whether module content was accepted before.
func (m *MemoryStore) ModuleExists(id types.ModuleID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.modules[id.Hex()]
	return exists, nil
}

// GetRepoTallies retrieves all repository rows, ordered by name.
func (m *MemoryStore) GetRepoTallies() ([]*types.RepoTally, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.RepoTally, 0, len(m.repos))
	for _, t := range m.repos {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Repo < result[j].Repo })
	return result, nil
}

// GetExtractions retrieves all extraction records in insertion order.
func (m *MemoryStore) GetExtractions() ([]*types.ExtractionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to avoid external modifications
	result := make([]*types.ExtractionRecord, len(m.extractions))
	copy(result, m.extractions)
	return result, nil
}

// GetModules retrieves the distinct accepted modules, ordered by output file.
func (m *MemoryStore) GetModules() ([]*types.ModuleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.ModuleRecord, 0, len(m.modules))
	for _, mod := range m.modules {
		result = append(result, mod)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].File < result[j].File })
	return result, nil
}

// RunTally sums all repository tallies.
func (m *MemoryStore) RunTally() (types.Tally, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var t types.Tally
	for _, rt := range m.repos {
		t.Merge(rt.Tally)
	}
	return t, nil
}

// ReasonCounts histograms the non-accepted records by reason tag.
func (m *MemoryStore) ReasonCounts() (map[types.Reason]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[types.Reason]int)
	for _, r := range m.extractions {
		if r.Outcome != types.OutcomeAccepted && r.Reason != "" {
			counts[r.Reason]++
		}
	}
	return counts, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
