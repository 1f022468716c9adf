package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/confadmin/core/audit"
)

type auditRepository struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

var _ audit.Repository = (*auditRepository)(nil)

func NewAuditRepository() audit.Repository {
	return &auditRepository{}
}

func (repo *auditRepository) CreateEntry(_ context.Context, e audit.Entry) (audit.Entry, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.entries = append(repo.entries, e)
	return e, nil
}

func (repo *auditRepository) QueryEntries(_ context.Context, filter audit.QueryFilter) ([]audit.Entry, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	entries := make([]audit.Entry, 0)
	for _, e := range repo.entries {
		if filter.Match(e) {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

func (repo *auditRepository) GetEntry(_ context.Context, id string) (audit.Entry, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, e := range repo.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return audit.Entry{}, audit.ErrNotFound
}
