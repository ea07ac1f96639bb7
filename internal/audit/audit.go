package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"crisis-service/internal/db"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
)

// Sink receives audit events. Record must never block the caller and a
// failed write must never roll back the transition that produced it.
type Sink interface {
	Record(event models.AuditEvent)
}

// Recorder buffers audit events and writes them to the audit store from
// a background worker. Events are dropped (and logged) when the buffer
// is full rather than blocking lifecycle transitions.
type Recorder struct {
	store  db.AuditStore
	logger *logging.Logger
	events chan models.AuditEvent
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

func New(store db.AuditStore, logger *logging.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 1000
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Recorder{
		store:  store,
		logger: logger,
		events: make(chan models.AuditEvent, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the writer goroutine.
func (r *Recorder) Start(wg *sync.WaitGroup) {
	r.wg = wg
	wg.Add(1)
	go r.run()
}

// Record enqueues an event without blocking. Missing id/timestamp fields
// are filled in here so call sites stay small.
func (r *Recorder) Record(event models.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	select {
	case r.events <- event:
	default:
		r.logger.Errorf("Audit queue full, dropping event kind=%s subject=%s alert=%s",
			event.Kind, event.SubjectID, event.AlertID)
	}
}

// Close stops the writer after draining queued events.
func (r *Recorder) Close() {
	r.cancel()
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for {
		select {
		case event := <-r.events:
			r.write(event)
		case <-r.ctx.Done():
			// Drain what is already queued before exiting.
			for {
				select {
				case event := <-r.events:
					r.write(event)
				default:
					r.logger.Infof("Audit recorder stopped")
					return
				}
			}
		}
	}
}

func (r *Recorder) write(event models.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.CreateAuditEvent(ctx, event); err != nil {
		r.logger.Errorf("Audit write failed for event %s (kind=%s): %v", event.ID, event.Kind, err)
	}
}
