package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisis-service/internal/db"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
)

func seedAlert(t *testing.T, store *db.MemoryStore, subjectID string, age time.Duration) {
	t.Helper()
	createdAt := time.Now().Add(-age)
	err := store.CreateAlert(context.Background(), &models.SafetyAlert{
		ID:        uuid.New().String(),
		SubjectID: subjectID,
		Severity:  models.SeverityMedium,
		Context:   "chat",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	require.NoError(t, err)
}

func TestSnapshot_CountsOnlyWindow(t *testing.T) {
	store := db.NewMemoryStore()
	tracker := NewTracker(store, logging.NewNop(), 30)

	seedAlert(t, store, "subject-1", 2*24*time.Hour)
	seedAlert(t, store, "subject-1", 10*24*time.Hour)
	seedAlert(t, store, "subject-1", 45*24*time.Hour) // outside the window
	seedAlert(t, store, "subject-2", time.Hour)       // different subject

	snap, err := tracker.Snapshot(context.Background(), "subject-1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.AlertCount)
	require.NotNil(t, snap.LastAlertAt)
	assert.WithinDuration(t, time.Now().Add(-2*24*time.Hour), *snap.LastAlertAt, time.Minute)
	assert.Equal(t, PatternRecentCrisis, snap.Pattern)
}

func TestSnapshot_NoAlerts(t *testing.T) {
	store := db.NewMemoryStore()
	tracker := NewTracker(store, logging.NewNop(), 30)

	snap, err := tracker.Snapshot(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, snap.AlertCount)
	assert.Nil(t, snap.LastAlertAt)
	assert.Equal(t, PatternNone, snap.Pattern)
}

func TestClassifyPattern_PriorityOrder(t *testing.T) {
	now := time.Now()
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-20 * 24 * time.Hour)

	// frequent_crisis wins over everything.
	assert.Equal(t, PatternFrequentCrisis, ClassifyPattern(11, &recent, now))
	// escalating beats recent_crisis even with a fresh last alert.
	assert.Equal(t, PatternEscalating, ClassifyPattern(6, &recent, now))
	// recent_crisis needs an alert within 7 days.
	assert.Equal(t, PatternRecentCrisis, ClassifyPattern(3, &recent, now))
	assert.Equal(t, PatternNone, ClassifyPattern(3, &old, now))
	assert.Equal(t, PatternNone, ClassifyPattern(0, nil, now))
}

func TestClassifyPattern_Boundaries(t *testing.T) {
	now := time.Now()

	// Thresholds are strictly greater-than.
	assert.Equal(t, PatternNone, ClassifyPattern(5, nil, now))
	assert.Equal(t, PatternEscalating, ClassifyPattern(6, nil, now))
	assert.Equal(t, PatternEscalating, ClassifyPattern(10, nil, now))
	assert.Equal(t, PatternFrequentCrisis, ClassifyPattern(11, nil, now))
}

type failingAlertStore struct {
	db.AlertStore
}

func (f *failingAlertStore) AlertsBySubjectSince(context.Context, string, time.Time) ([]models.SafetyAlert, error) {
	return nil, errors.New("storage unavailable")
}

func TestSnapshot_PropagatesStoreFailure(t *testing.T) {
	tracker := NewTracker(&failingAlertStore{AlertStore: db.NewMemoryStore()}, logging.NewNop(), 30)

	_, err := tracker.Snapshot(context.Background(), "subject-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history lookup")
}
