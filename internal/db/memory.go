package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"crisis-service/internal/models"
)

// MemoryStore is an in-memory Store implementation used by tests and the
// memory store driver. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	alerts   map[string]models.SafetyAlert
	audit    []models.AuditEvent
	contacts map[string]models.ContactPoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alerts:   make(map[string]models.SafetyAlert),
		contacts: make(map[string]models.ContactPoint),
	}
}

func copyAlert(a models.SafetyAlert) models.SafetyAlert {
	out := a
	out.Indicators = append([]models.Indicator(nil), a.Indicators...)
	out.Actions = append([]string(nil), a.Actions...)
	return out
}

func (m *MemoryStore) CreateAlert(_ context.Context, alert *models.SafetyAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[alert.ID] = copyAlert(*alert)
	return nil
}

func (m *MemoryStore) GetAlert(_ context.Context, id string) (*models.SafetyAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	alert, ok := m.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	out := copyAlert(alert)
	return &out, nil
}

func (m *MemoryStore) UpdateAlert(_ context.Context, alert *models.SafetyAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alerts[alert.ID]; !ok {
		return ErrAlertNotFound
	}
	m.alerts[alert.ID] = copyAlert(*alert)
	return nil
}

func (m *MemoryStore) AlertsBySubjectSince(_ context.Context, subjectID string, since time.Time) ([]models.SafetyAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []models.SafetyAlert
	for _, alert := range m.alerts {
		if alert.SubjectID == subjectID && !alert.CreatedAt.Before(since) {
			list = append(list, copyAlert(alert))
		}
	}
	sortNewestFirst(list)
	return list, nil
}

func (m *MemoryStore) AlertsBySubject(_ context.Context, subjectID string, limit, offset int) ([]models.SafetyAlert, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []models.SafetyAlert
	for _, alert := range m.alerts {
		if alert.SubjectID == subjectID {
			list = append(list, copyAlert(alert))
		}
	}
	sortNewestFirst(list)
	total := len(list)
	if offset >= total {
		return nil, total, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, total, nil
}

func (m *MemoryStore) UnhandledAlerts(_ context.Context) ([]models.SafetyAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []models.SafetyAlert
	for _, alert := range m.alerts {
		if !alert.Handled {
			list = append(list, copyAlert(alert))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (m *MemoryStore) CreateAuditEvent(_ context.Context, event models.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, event)
	return nil
}

func (m *MemoryStore) AuditEventsByAlert(_ context.Context, alertID string) ([]models.AuditEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []models.AuditEvent
	for _, event := range m.audit {
		if event.AlertID == alertID {
			list = append(list, event)
		}
	}
	return list, nil
}

func (m *MemoryStore) CreateContactPoint(_ context.Context, cp models.ContactPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[cp.ID] = cp
	return nil
}

func (m *MemoryStore) GetContactPoint(_ context.Context, id string) (models.ContactPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.contacts[id]
	if !ok {
		return models.ContactPoint{}, ErrContactNotFound
	}
	return cp, nil
}

func (m *MemoryStore) ContactPointsByRole(_ context.Context, role string) ([]models.ContactPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []models.ContactPoint
	for _, cp := range m.contacts {
		if cp.Role == role && cp.Status == "active" {
			list = append(list, cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (m *MemoryStore) DeleteContactPoint(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return ErrContactNotFound
	}
	delete(m.contacts, id)
	return nil
}

func sortNewestFirst(list []models.SafetyAlert) {
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}
