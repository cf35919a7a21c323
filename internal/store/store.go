package store

import (
	"context"
	"sort"
	"sync"

	"github.com/scan-io-git/portal-lens/internal/findings"
)

// Persister saves the finding list between runs.
type Persister interface {
	Findings(ctx context.Context) ([]findings.Finding, int, error)
	SetFindings(ctx context.Context, list []findings.Finding, count int) error
}

// Groups maps a finding file path to the findings of that file, in list order.
type Groups map[string][]findings.Finding

// Paths returns the group keys sorted lexically.
func (g Groups) Paths() []string {
	paths := make([]string, 0, len(g))
	for p := range g {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// BuildGroups groups list by file path. Findings without a path are left out.
func BuildGroups(list []findings.Finding) Groups {
	groups := make(Groups)
	for _, f := range list {
		if f.FilePath == nil {
			continue
		}
		groups[*f.FilePath] = append(groups[*f.FilePath], f)
	}
	return groups
}

// FindingStore holds the last reconciled findings and their per-file grouping.
// Writers are the reconciliation pass and the reject path; readers get copies.
type FindingStore struct {
	mu      sync.RWMutex
	list    []findings.Finding
	groups  Groups
	count   int
	persist Persister
}

// New returns an empty store. A nil persister keeps the store in memory only.
func New(persist Persister) *FindingStore {
	return &FindingStore{groups: Groups{}, persist: persist}
}

// Load hydrates the store from the persister.
func (s *FindingStore) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	list, count, err := s.persist.Findings(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(list, count)
	return nil
}

// Replace persists list and then swaps it in with freshly built groups.
// On a persistence error the store keeps its previous content.
func (s *FindingStore) Replace(ctx context.Context, list []findings.Finding, count int) error {
	list = findings.CloneAll(list)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SetFindings(ctx, list, count); err != nil {
			return err
		}
	}
	s.swap(list, count)
	return nil
}

// Clear drops every finding.
func (s *FindingStore) Clear(ctx context.Context) error {
	return s.Replace(ctx, nil, 0)
}

// Remove deletes one finding locally and reports whether it was present.
func (s *FindingStore) Remove(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, f := range s.list {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	next := make([]findings.Finding, 0, len(s.list)-1)
	next = append(next, s.list[:idx]...)
	next = append(next, s.list[idx+1:]...)

	if s.persist != nil {
		if err := s.persist.SetFindings(ctx, next, s.count); err != nil {
			return false, err
		}
	}
	s.swap(next, s.count)
	return true, nil
}

func (s *FindingStore) swap(list []findings.Finding, count int) {
	s.list = list
	s.count = count
	s.groups = BuildGroups(list)
}

// List returns a copy of the flat finding list.
func (s *FindingStore) List() []findings.Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findings.CloneAll(s.list)
}

// Len returns the number of findings held, including those without a path.
func (s *FindingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}

// Count returns the total the portal reported on the last pass.
func (s *FindingStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Get returns a copy of the finding with id.
func (s *FindingStore) Get(id int) (findings.Finding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.list {
		if f.ID == id {
			return f.Clone(), true
		}
	}
	return findings.Finding{}, false
}

// Group returns a copy of the findings of one file.
func (s *FindingStore) Group(path string) []findings.Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findings.CloneAll(s.groups[path])
}

// Groups returns a copy of the whole grouping.
func (s *FindingStore) Groups() Groups {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Groups, len(s.groups))
	for p, list := range s.groups {
		out[p] = findings.CloneAll(list)
	}
	return out
}
