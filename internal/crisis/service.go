package crisis

import (
	"context"
	"strings"

	"crisis-service/internal/audit"
	"crisis-service/internal/catalog"
	"crisis-service/internal/detection"
	"crisis-service/internal/history"
	"crisis-service/internal/lifecycle"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
	"crisis-service/internal/protocol"
)

// EvaluateRequest is one input unit to evaluate: a chat message or a
// single assessment-question response, plus any behavioral patterns the
// surrounding logic has already computed for the subject.
type EvaluateRequest struct {
	SubjectID    string   `json:"subject_id" binding:"required"`
	Text         string   `json:"text"`
	Context      string   `json:"context"`
	Language     string   `json:"language"`
	Jurisdiction string   `json:"jurisdiction"`
	Behavioral   []string `json:"behavioral,omitempty"`
}

// EvaluateResult is the outcome of one detection.
type EvaluateResult struct {
	IsCrisis   bool                   `json:"is_crisis"`
	Severity   models.Severity        `json:"severity"`
	Indicators []models.Indicator     `json:"indicators"`
	Resources  []models.Resource      `json:"resources"`
	Protocol   *models.CrisisProtocol `json:"protocol,omitempty"`
	AlertID    string                 `json:"alert_id,omitempty"`
}

// Service runs the full detection pipeline: detect indicators, read the
// subject's history, classify severity, build the protocol, and hand the
// alert to the lifecycle manager. Detection failures degrade toward the
// conservative answer instead of failing the caller.
type Service struct {
	detector  *detection.Detector
	tracker   *history.Tracker
	catalog   *catalog.Catalog
	builder   *protocol.Builder
	lifecycle *lifecycle.Manager
	audit     audit.Sink
	logger    *logging.Logger
}

func New(detector *detection.Detector, tracker *history.Tracker, cat *catalog.Catalog,
	builder *protocol.Builder, manager *lifecycle.Manager, sink audit.Sink, logger *logging.Logger) *Service {
	return &Service{
		detector:  detector,
		tracker:   tracker,
		catalog:   cat,
		builder:   builder,
		lifecycle: manager,
		audit:     sink,
		logger:    logger,
	}
}

// EvaluateInput inspects one input unit for crisis indicators. A non-nil
// error is returned only for unusable requests (missing subject id);
// subsystem faults degrade and are audited so chat handling is never
// blocked by a crisis-engine problem.
func (s *Service) EvaluateInput(ctx context.Context, req EvaluateRequest) (EvaluateResult, error) {
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	if req.SubjectID == "" {
		return EvaluateResult{}, ErrMissingSubject
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.Jurisdiction == "" {
		req.Jurisdiction = models.JurisdictionInternational
	}

	indicators := s.detector.Detect(req.Text)
	indicators = append(indicators, s.detector.BehavioralIndicators(req.Behavioral)...)

	// Empty or non-matching input is not an error: no indicators, no signal.
	if len(indicators) == 0 {
		return EvaluateResult{Severity: models.SeverityNone}, nil
	}

	pattern := s.historyPattern(ctx, req.SubjectID)
	severity := detection.Classify(indicators, pattern)

	s.audit.Record(models.AuditEvent{
		Kind:      models.AuditDetection,
		SubjectID: req.SubjectID,
		Severity:  severity,
		Details: map[string]string{
			"context":    req.Context,
			"indicators": joinPatterns(indicators),
			"pattern":    string(pattern),
		},
	})

	plan := s.builder.Build(severity, indicators, req.Language, req.Jurisdiction)
	result := EvaluateResult{
		IsCrisis:   true,
		Severity:   severity,
		Indicators: indicators,
		Resources:  plan.Resources,
		Protocol:   &plan,
	}

	alert := &models.SafetyAlert{
		SubjectID:  req.SubjectID,
		Severity:   severity,
		Context:    req.Context,
		Indicators: indicators,
	}
	if err := s.lifecycle.Create(ctx, alert, plan); err != nil {
		// The conservative answer still goes back to the caller: the
		// subject gets resources even when alert persistence is down.
		s.logger.Errorf("Alert creation failed for subject %s: %v", req.SubjectID, err)
		return result, nil
	}
	result.AlertID = alert.ID
	return result, nil
}

// ResolveAlert marks an alert handled on behalf of a human handler.
// Idempotent; unknown ids surface db.ErrAlertNotFound.
func (s *Service) ResolveAlert(ctx context.Context, alertID, handledBy string) error {
	return s.lifecycle.Resolve(ctx, alertID, handledBy)
}

// History exposes the subject's derived crisis history view.
func (s *Service) History(ctx context.Context, subjectID string) (history.Snapshot, error) {
	return s.tracker.Snapshot(ctx, subjectID)
}

// Resources exposes the catalog lookup for the API layer.
func (s *Service) Resources(language, jurisdiction string) []models.Resource {
	return s.catalog.Lookup(language, jurisdiction)
}

// historyPattern reads the subject's recent history. Storage failures
// degrade to "no history signal": missing an upgrade is safer than
// failing to detect a crisis at all.
func (s *Service) historyPattern(ctx context.Context, subjectID string) history.Pattern {
	snap, err := s.tracker.Snapshot(ctx, subjectID)
	if err != nil {
		s.logger.Errorf("History lookup failed for subject %s, continuing without history signal: %v", subjectID, err)
		s.audit.Record(models.AuditEvent{
			Kind:      models.AuditHistoryFailed,
			SubjectID: subjectID,
			Details:   map[string]string{"error": err.Error()},
		})
		return history.PatternNone
	}
	return snap.Pattern
}

func joinPatterns(indicators []models.Indicator) string {
	patterns := make([]string, 0, len(indicators))
	for _, ind := range indicators {
		patterns = append(patterns, ind.Pattern)
	}
	return strings.Join(patterns, ",")
}
