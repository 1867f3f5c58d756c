package store

import (
	"sync"
	"time"

	"dc-harden/pkg/model"
)

// Per-host report cap; older entries are dropped first.
const maxReportsPerHost = 200

// MemoryStore is a simple in-memory implementation, intended for dev/demo
// and single-controller deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string][]model.RemediationReport
	audit   []model.AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[string][]model.RemediationReport),
	}
}

func (m *MemoryStore) SaveReport(r model.RemediationReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	list := append(m.reports[r.Host], r)
	if len(list) > maxReportsPerHost {
		list = list[len(list)-maxReportsPerHost:]
	}
	m.reports[r.Host] = list
	return nil
}

func (m *MemoryStore) ListReports(host string, limit int) ([]model.RemediationReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.RemediationReport
	if host != "" {
		out = append(out, m.reports[host]...)
	} else {
		for _, list := range m.reports {
			out = append(out, list...)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *MemoryStore) AppendAudit(entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

func (m *MemoryStore) ListAudit(limit int) ([]model.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.audit) {
		limit = len(m.audit)
	}
	out := make([]model.AuditEntry, 0, limit)
	for i := len(m.audit) - limit; i < len(m.audit); i++ {
		out = append(out, m.audit[i])
	}
	return out, nil
}

// Ping reports readiness for health endpoints.
func (m *MemoryStore) Ping() error { return nil }
