package dispatch

import (
	"context"
	"fmt"
	"sync"

	"crisis-service/internal/config"
	"crisis-service/internal/db"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
	"crisis-service/internal/providers"
)

// Service fans queued notification Tasks out to handler contact points
// and connected WebSocket clients. Dispatch is fire-and-forget: delivery
// failures are logged, never propagated back to the crisis core.
type Service struct {
	store         db.ContactStore
	logger        *logging.Logger
	config        config.Config
	tasks         chan models.Task
	ctx           context.Context
	cancel        context.CancelFunc
	wg            *sync.WaitGroup
	providerFuncs map[string]func(context.Context, models.Task, models.ContactPoint) error
	wsManager     *WebSocketManager
}

func New(store db.ContactStore, logger *logging.Logger, cfg config.Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &Service{
		store:     store,
		logger:    logger,
		config:    cfg,
		tasks:     make(chan models.Task, cfg.Dispatch.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		wsManager: NewWebSocketManager(logger),
	}
	svc.providerFuncs = map[string]func(context.Context, models.Task, models.ContactPoint) error{
		"email": func(ctx context.Context, task models.Task, cp models.ContactPoint) error {
			return providers.SendEmail(ctx, task, cp, svc.config, logger)
		},
		"telegram": func(ctx context.Context, task models.Task, cp models.ContactPoint) error {
			return providers.SendTelegram(ctx, task, cp, logger, svc.config)
		},
		"sms": func(ctx context.Context, task models.Task, cp models.ContactPoint) error {
			return providers.SendSMS(ctx, task, cp, svc.config)
		},
	}
	return svc
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.config.Dispatch.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Notify queues one dispatch to the given handler roles. Implements the
// lifecycle manager's notifier contract.
func (s *Service) Notify(targets []string, task models.Task) {
	task.Targets = targets
	select {
	case s.tasks <- task:
		s.logger.Infof("Queued dispatch: alert=%s targets=%v", task.AlertID, targets)
	default:
		s.logger.Errorf("Dispatch queue full, dropping task: alert=%s targets=%v", task.AlertID, targets)
	}
}

// Close stops the workers.
func (s *Service) Close() {
	s.cancel()
}

// WS exposes the WebSocket manager to the API layer.
func (s *Service) WS() *WebSocketManager {
	return s.wsManager
}

func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Dispatch worker %d stopped", id)
			return
		case task := <-s.tasks:
			s.handleTask(task)
		}
	}
}

// handleTask resolves each target role to its contact points and sends
// through the matching provider. WebSocket pushes go out regardless so
// connected handlers see the alert even without a contact point.
func (s *Service) handleTask(task models.Task) {
	message := []byte(fmt.Sprintf("[%s] %s: %s", task.Severity, task.Subject, task.Body))

	for _, role := range task.Targets {
		s.wsManager.SendToRole(role, message)

		contacts, err := s.store.ContactPointsByRole(s.ctx, role)
		if err != nil {
			s.logger.Errorf("Failed to load contact points for role %s: %v", role, err)
			continue
		}
		if len(contacts) == 0 {
			s.logger.Warnf("No active contact points for role %s (alert=%s)", role, task.AlertID)
			continue
		}

		for _, cp := range contacts {
			provider, ok := s.providerFuncs[cp.Type]
			if !ok {
				s.logger.Warnf("Unknown provider type %s for contact point %s", cp.Type, cp.ID)
				continue
			}
			if err := provider(s.ctx, task, cp); err != nil {
				s.logger.Errorf("Dispatch via %s to %s failed: %v", cp.Type, cp.ID, err)
				continue
			}
			s.logger.Infof("Dispatched alert %s to role %s via %s", task.AlertID, role, cp.Type)
		}
	}
}
