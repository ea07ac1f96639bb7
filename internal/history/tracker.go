package history

import (
	"context"
	"fmt"
	"time"

	"crisis-service/internal/db"
	"crisis-service/internal/logging"
)

// Pattern names the shape of a subject's recent crisis history.
type Pattern string

const (
	PatternNone           Pattern = ""
	PatternFrequentCrisis Pattern = "frequent_crisis"
	PatternEscalating     Pattern = "escalating"
	PatternRecentCrisis   Pattern = "recent_crisis"
)

const (
	frequentCrisisThreshold = 10
	escalatingThreshold     = 5
	recentCrisisDays        = 7
)

// Snapshot is the derived view of a subject's recent alerts. Recomputed
// on every detection; never cached beyond a single detection.
type Snapshot struct {
	AlertCount  int        `json:"alert_count"`
	LastAlertAt *time.Time `json:"last_alert_at,omitempty"`
	Pattern     Pattern    `json:"pattern,omitempty"`
}

// Tracker reads a subject's committed alert history through the store.
type Tracker struct {
	store      db.AlertStore
	logger     *logging.Logger
	windowDays int
}

func NewTracker(store db.AlertStore, logger *logging.Logger, windowDays int) *Tracker {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Tracker{store: store, logger: logger, windowDays: windowDays}
}

// Snapshot returns the subject's alert count in the trailing window, the
// most recent alert time, and the classified pattern.
func (t *Tracker) Snapshot(ctx context.Context, subjectID string) (Snapshot, error) {
	since := time.Now().AddDate(0, 0, -t.windowDays)
	alerts, err := t.store.AlertsBySubjectSince(ctx, subjectID, since)
	if err != nil {
		return Snapshot{}, fmt.Errorf("history lookup for subject %s failed: %w", subjectID, err)
	}

	snap := Snapshot{AlertCount: len(alerts)}
	if len(alerts) > 0 {
		// Newest first.
		last := alerts[0].CreatedAt
		snap.LastAlertAt = &last
	}
	snap.Pattern = ClassifyPattern(snap.AlertCount, snap.LastAlertAt, time.Now())
	return snap, nil
}

// RecentAlertCount returns the number of alerts in the trailing window.
func (t *Tracker) RecentAlertCount(ctx context.Context, subjectID string) (int, error) {
	snap, err := t.Snapshot(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	return snap.AlertCount, nil
}

// LastAlertTime returns the creation time of the subject's most recent
// alert inside the window, or nil if there is none.
func (t *Tracker) LastAlertTime(ctx context.Context, subjectID string) (*time.Time, error) {
	snap, err := t.Snapshot(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return snap.LastAlertAt, nil
}

// ClassifyPattern names the history pattern for a window alert count and
// last alert time. Patterns are mutually exclusive and evaluated in
// priority order: frequent_crisis, escalating, recent_crisis.
func ClassifyPattern(count int, last *time.Time, now time.Time) Pattern {
	switch {
	case count > frequentCrisisThreshold:
		return PatternFrequentCrisis
	case count > escalatingThreshold:
		return PatternEscalating
	case last != nil && now.Sub(*last) <= recentCrisisDays*24*time.Hour:
		return PatternRecentCrisis
	default:
		return PatternNone
	}
}
