package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisis-service/internal/models"
)

func storedAlert(id, subjectID string, createdAt time.Time, handled bool) *models.SafetyAlert {
	return &models.SafetyAlert{
		ID:        id,
		SubjectID: subjectID,
		Severity:  models.SeverityMedium,
		Handled:   handled,
		CreatedAt: createdAt,
	}
}

func TestMemoryStore_AlertCRUD(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	alert := storedAlert("a1", "s1", time.Now(), false)
	alert.Indicators = []models.Indicator{{Pattern: "hopeless", Tier: models.SeverityHigh, Source: models.IndicatorSourceKeyword}}
	require.NoError(t, store.CreateAlert(ctx, alert))

	got, err := store.GetAlert(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SubjectID)
	require.Len(t, got.Indicators, 1)

	got.Handled = true
	got.Actions = append(got.Actions, "resolved_by:h1")
	require.NoError(t, store.UpdateAlert(ctx, got))

	updated, err := store.GetAlert(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, updated.Handled)
	assert.Equal(t, []string{"resolved_by:h1"}, updated.Actions)
}

func TestMemoryStore_GetAlertNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetAlert(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAlertNotFound)

	err = store.UpdateAlert(context.Background(), storedAlert("missing", "s1", time.Now(), false))
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	alert := storedAlert("a1", "s1", time.Now(), false)
	require.NoError(t, store.CreateAlert(ctx, alert))

	first, err := store.GetAlert(ctx, "a1")
	require.NoError(t, err)
	first.Actions = append(first.Actions, "mutated")
	first.SubjectID = "other"

	second, err := store.GetAlert(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "s1", second.SubjectID)
	assert.Empty(t, second.Actions)
}

func TestMemoryStore_AlertsBySubjectSince(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateAlert(ctx, storedAlert("old", "s1", now.Add(-40*24*time.Hour), true)))
	require.NoError(t, store.CreateAlert(ctx, storedAlert("recent", "s1", now.Add(-time.Hour), true)))
	require.NoError(t, store.CreateAlert(ctx, storedAlert("newest", "s1", now, false)))
	require.NoError(t, store.CreateAlert(ctx, storedAlert("other", "s2", now, false)))

	list, err := store.AlertsBySubjectSince(ctx, "s1", now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newest", list[0].ID)
	assert.Equal(t, "recent", list[1].ID)
}

func TestMemoryStore_AlertsBySubjectPagination(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		id := []string{"a", "b", "c", "d", "e"}[i]
		require.NoError(t, store.CreateAlert(ctx, storedAlert(id, "s1", now.Add(time.Duration(i)*time.Minute), true)))
	}

	page, total, err := store.AlertsBySubject(ctx, "s1", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "d", page[0].ID)
	assert.Equal(t, "c", page[1].ID)

	empty, total, err := store.AlertsBySubject(ctx, "s1", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, empty)
}

func TestMemoryStore_UnhandledAlerts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateAlert(ctx, storedAlert("done", "s1", now.Add(-2*time.Hour), true)))
	require.NoError(t, store.CreateAlert(ctx, storedAlert("open-late", "s1", now, false)))
	require.NoError(t, store.CreateAlert(ctx, storedAlert("open-early", "s2", now.Add(-time.Hour), false)))

	list, err := store.UnhandledAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "open-early", list[0].ID)
	assert.Equal(t, "open-late", list[1].ID)
}

func TestMemoryStore_AuditEvents(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateAuditEvent(ctx, models.AuditEvent{ID: "e1", Kind: models.AuditDetection, AlertID: "a1"}))
	require.NoError(t, store.CreateAuditEvent(ctx, models.AuditEvent{ID: "e2", Kind: models.AuditEscalation, AlertID: "a1"}))
	require.NoError(t, store.CreateAuditEvent(ctx, models.AuditEvent{ID: "e3", Kind: models.AuditDetection, AlertID: "a2"}))

	list, err := store.AuditEventsByAlert(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e1", list[0].ID)
	assert.Equal(t, "e2", list[1].ID)
}

func TestMemoryStore_ContactPointsByRole(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateContactPoint(ctx, models.ContactPoint{
		ID: "c1", Role: models.RoleHandlerOnCall, Type: "email", Status: "active", CreatedAt: now,
	}))
	require.NoError(t, store.CreateContactPoint(ctx, models.ContactPoint{
		ID: "c2", Role: models.RoleHandlerOnCall, Type: "telegram", Status: "disabled", CreatedAt: now,
	}))
	require.NoError(t, store.CreateContactPoint(ctx, models.ContactPoint{
		ID: "c3", Role: models.RoleSeniorHandler, Type: "email", Status: "active", CreatedAt: now,
	}))

	list, err := store.ContactPointsByRole(ctx, models.RoleHandlerOnCall)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].ID)

	require.NoError(t, store.DeleteContactPoint(ctx, "c1"))
	err = store.DeleteContactPoint(ctx, "c1")
	assert.ErrorIs(t, err, ErrContactNotFound)
}
