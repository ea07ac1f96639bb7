package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"crisis-service/internal/audit"
	"crisis-service/internal/db"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
	"crisis-service/internal/utils"
)

// Notifier is the external notification sink. Dispatch is fire-and-forget;
// the lifecycle manager's obligation ends at recording the dispatch on the
// alert and emitting an audit event.
type Notifier interface {
	Notify(targets []string, task models.Task)
}

// alertState serializes all operations on one alert. Exactly one of
// {timer fires, resolve wins} is observed per escalation step: the timer
// callback and Resolve both take the state mutex and re-check the
// handled flag and level under it.
type alertState struct {
	mu      sync.Mutex
	timer   *time.Timer
	level   int
	handled bool
}

// Manager owns every unhandled alert: it persists creation, runs
// immediate actions, arms escalation timers, and drives the
// open -> escalated -> handled state machine.
type Manager struct {
	store    db.AlertStore
	audit    audit.Sink
	notifier Notifier
	logger   *logging.Logger
	path     []models.EscalationStep
	level1   time.Duration
	level2   time.Duration // measured from creation, not from level 1 firing

	mu     sync.Mutex
	states map[string]*alertState
}

func NewManager(store db.AlertStore, sink audit.Sink, notifier Notifier, logger *logging.Logger,
	path []models.EscalationStep, level1, level2 time.Duration) *Manager {
	return &Manager{
		store:    store,
		audit:    sink,
		notifier: notifier,
		logger:   logger,
		path:     path,
		level1:   level1,
		level2:   level2,
		states:   make(map[string]*alertState),
	}
}

// Create persists a new alert in the Open state, executes the protocol's
// immediate actions, and arms the level-1 escalation timer.
func (m *Manager) Create(ctx context.Context, alert *models.SafetyAlert, protocol models.CrisisProtocol) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	now := time.Now()
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	alert.UpdatedAt = now
	alert.EscalationLevel = 0
	alert.Handled = false

	// Record immediate actions on the alert before the insert so the
	// persisted record carries its full execution trail.
	for _, action := range protocol.ImmediateActions {
		alert.Actions = append(alert.Actions, "executed:"+action.Type)
	}

	if err := m.store.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to persist alert for subject %s: %w", alert.SubjectID, err)
	}

	m.audit.Record(models.AuditEvent{
		Kind:      models.AuditAlertCreated,
		SubjectID: alert.SubjectID,
		AlertID:   alert.ID,
		Severity:  alert.Severity,
		Details:   map[string]string{"context": alert.Context},
	})

	// Run the automated immediate actions. Notification-shaped actions go
	// to the external sink; resource provision is already part of the
	// evaluate response.
	for _, action := range protocol.ImmediateActions {
		if !action.Automated {
			continue
		}
		switch action.Type {
		case models.ActionNotifyHandler:
			m.notifier.Notify([]string{models.RoleHandlerOnCall}, m.task(alert, "Crisis alert", action.Description))
		case models.ActionConnectCounselor:
			m.notifier.Notify([]string{models.RoleCounselorOnCall}, m.task(alert, "Counselor connection requested", action.Description))
		}
		m.audit.Record(models.AuditEvent{
			Kind:      models.AuditActionRun,
			SubjectID: alert.SubjectID,
			AlertID:   alert.ID,
			Severity:  alert.Severity,
			Details:   map[string]string{"action": action.Type, "priority": fmt.Sprintf("%d", action.Priority)},
		})
	}

	m.armStep(alert.ID, 1, m.level1)
	m.logger.Infof("Alert %s created for subject %s (severity=%s), level-1 timer armed for %s",
		alert.ID, alert.SubjectID, alert.Severity, m.level1)
	return nil
}

// Resolve marks an alert handled and cancels any armed escalation timer
// as one atomic operation under the per-alert critical section. Calling
// it again for an already-handled alert is a no-op.
func (m *Manager) Resolve(ctx context.Context, alertID, handledBy string) error {
	st := m.stateFor(alertID)
	st.mu.Lock()
	defer st.mu.Unlock()

	alert, err := m.store.GetAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, db.ErrAlertNotFound) {
			m.forget(alertID)
			return db.ErrAlertNotFound
		}
		return fmt.Errorf("failed to load alert %s: %w", alertID, err)
	}

	if alert.Handled {
		// Terminal state, second resolve is a no-op.
		st.handled = true
		m.cancelTimer(st)
		m.forget(alertID)
		return nil
	}

	now := time.Now()
	alert.Handled = true
	alert.HandledBy = &handledBy
	alert.HandledAt = &now
	alert.UpdatedAt = now
	alert.Actions = append(alert.Actions, "resolved_by:"+handledBy)

	if err := utils.Retry(m.logger, 3, 200*time.Millisecond, func() error {
		return m.store.UpdateAlert(ctx, alert)
	}); err != nil {
		return fmt.Errorf("failed to persist resolution of alert %s: %w", alertID, err)
	}

	st.handled = true
	m.cancelTimer(st)
	m.forget(alertID)

	m.audit.Record(models.AuditEvent{
		Kind:      models.AuditAlertResolved,
		SubjectID: alert.SubjectID,
		AlertID:   alert.ID,
		Severity:  alert.Severity,
		Details:   map[string]string{"handled_by": handledBy},
	})
	m.logger.Infof("Alert %s resolved by %s", alertID, handledBy)
	return nil
}

// Recover re-derives timer state for unhandled alerts after a restart.
// Deadlines are computed from the persisted creation time and escalation
// level, never from in-memory timers. Overdue steps fire immediately.
func (m *Manager) Recover(ctx context.Context) error {
	alerts, err := m.store.UnhandledAlerts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load unhandled alerts: %w", err)
	}

	for i := range alerts {
		alert := alerts[i]
		elapsed := time.Since(alert.CreatedAt)

		st := m.stateFor(alert.ID)
		st.mu.Lock()
		st.level = alert.EscalationLevel
		st.mu.Unlock()

		switch alert.EscalationLevel {
		case 0:
			m.armStep(alert.ID, 1, m.level1-elapsed)
		case 1:
			m.armStep(alert.ID, 2, m.level2-elapsed)
		default:
			// Final step already fired, the alert only awaits a handler.
		}
		m.logger.Infof("Recovered alert %s (level=%d, age=%s)", alert.ID, alert.EscalationLevel, elapsed)
	}
	m.logger.Infof("Timer recovery complete: %d unhandled alerts", len(alerts))
	return nil
}

// armStep schedules an escalation step. Delays that are already overdue
// fire immediately. Arming failures retry with backoff and surface as a
// critical audit event if retries exhaust: an unhandled alert must never
// silently end up with no armed escalation.
func (m *Manager) armStep(alertID string, level int, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	err := utils.Retry(m.logger, 3, 100*time.Millisecond, func() error {
		return m.schedule(alertID, level, delay)
	})
	if err != nil {
		m.logger.Errorf("Failed to arm level-%d timer for alert %s: %v", level, alertID, err)
		m.audit.Record(models.AuditEvent{
			Kind:    models.AuditTimerFailed,
			AlertID: alertID,
			Details: map[string]string{"level": fmt.Sprintf("%d", level), "error": err.Error()},
		})
	}
}

func (m *Manager) schedule(alertID string, level int, delay time.Duration) error {
	if level < 1 || level > len(m.path) {
		return fmt.Errorf("no escalation step at level %d", level)
	}
	st := m.stateFor(alertID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.handled {
		return nil
	}
	if st.level >= level {
		return fmt.Errorf("alert %s already at level %d, refusing to arm level %d", alertID, st.level, level)
	}
	st.timer = time.AfterFunc(delay, func() { m.fireStep(alertID, level) })
	return nil
}

// fireStep runs one automatic escalation. It fires at most once per
// step: the level check under the state mutex rejects duplicates, and a
// concurrent resolve either wins (handled flag set) or waits for this
// transition to finish.
func (m *Manager) fireStep(alertID string, level int) {
	m.mu.Lock()
	st := m.states[alertID]
	m.mu.Unlock()
	if st == nil {
		// Resolved and cleaned up before the timer could be stopped.
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.handled || st.level >= level {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var alert *models.SafetyAlert
	err := utils.Retry(m.logger, 3, 200*time.Millisecond, func() error {
		var loadErr error
		alert, loadErr = m.store.GetAlert(ctx, alertID)
		return loadErr
	})
	if err != nil {
		m.logger.Errorf("Escalation level %d for alert %s aborted, load failed: %v", level, alertID, err)
		m.audit.Record(models.AuditEvent{
			Kind:    models.AuditTimerFailed,
			AlertID: alertID,
			Details: map[string]string{"level": fmt.Sprintf("%d", level), "error": err.Error()},
		})
		return
	}

	if alert.Handled {
		// Resolved out-of-band (e.g. before a restart); drop the state.
		st.handled = true
		m.forget(alertID)
		return
	}

	step := m.path[level-1]
	now := time.Now()
	alert.EscalationLevel = level
	alert.UpdatedAt = now
	alert.Actions = append(alert.Actions, fmt.Sprintf("escalated:level_%d:%s", level, step.Action))
	for _, target := range step.NotifyTargets {
		alert.Actions = append(alert.Actions, "notify:"+target)
	}

	st.level = level

	if err := utils.Retry(m.logger, 3, 200*time.Millisecond, func() error {
		return m.store.UpdateAlert(ctx, alert)
	}); err != nil {
		m.logger.Errorf("Failed to persist level-%d escalation of alert %s: %v", level, alertID, err)
		m.audit.Record(models.AuditEvent{
			Kind:      models.AuditTimerFailed,
			SubjectID: alert.SubjectID,
			AlertID:   alertID,
			Severity:  alert.Severity,
			Details:   map[string]string{"level": fmt.Sprintf("%d", level), "error": err.Error()},
		})
	}

	m.notifier.Notify(step.NotifyTargets, m.task(alert,
		fmt.Sprintf("Crisis alert escalated to level %d", level), step.Action))
	m.audit.Record(models.AuditEvent{
		Kind:      models.AuditEscalation,
		SubjectID: alert.SubjectID,
		AlertID:   alert.ID,
		Severity:  alert.Severity,
		Details:   map[string]string{"level": fmt.Sprintf("%d", level), "action": step.Action},
	})
	m.logger.Warnf("Alert %s escalated to level %d (%s)", alertID, level, step.Action)

	if level < len(m.path) {
		// The next deadline is relative to creation, not to this firing.
		remaining := m.level2 - time.Since(alert.CreatedAt)
		next := level + 1
		st.timer = time.AfterFunc(maxDuration(remaining, 0), func() { m.fireStep(alertID, next) })
	}
}

func (m *Manager) task(alert *models.SafetyAlert, subject, body string) models.Task {
	return models.Task{
		AlertID:   alert.ID,
		SubjectID: alert.SubjectID,
		Severity:  alert.Severity,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now(),
	}
}

func (m *Manager) stateFor(alertID string) *alertState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[alertID]
	if !ok {
		st = &alertState{}
		m.states[alertID] = st
	}
	return st
}

func (m *Manager) forget(alertID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, alertID)
}

// cancelTimer stops a pending timer. A callback that already started is
// harmless: it re-checks the handled flag under the state mutex.
func (m *Manager) cancelTimer(st *alertState) {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
