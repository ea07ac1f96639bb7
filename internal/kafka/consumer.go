package kafka

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"

	"crisis-service/internal/crisis"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
)

// Consumer reads input events produced by chat-message handling and
// assessment-response recording and feeds them through the crisis
// evaluation pipeline.
type Consumer struct {
	reader *kafka.Reader
	svc    *crisis.Service
	logger *logging.Logger
}

func NewConsumer(brokers []string, topic, groupID string, svc *crisis.Service, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, svc: svc, logger: logger}
}

// Start consumes until the context is cancelled. Malformed or invalid
// messages are logged and skipped; evaluation faults never stop the loop.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Input-event consumer started")
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Infof("Input-event consumer stopped")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			var event models.InputEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Errorf("Unmarshal input event failed: %v", err)
				continue
			}
			if event.SubjectID == "" {
				c.logger.Errorf("Invalid input event: missing subject_id")
				continue
			}

			result, err := c.svc.EvaluateInput(ctx, crisis.EvaluateRequest{
				SubjectID:    event.SubjectID,
				Text:         event.Text,
				Context:      event.Context,
				Language:     event.Language,
				Jurisdiction: event.Jurisdiction,
				Behavioral:   event.Behavioral,
			})
			if err != nil {
				c.logger.Errorf("Evaluate failed for subject %s: %v", event.SubjectID, err)
				continue
			}
			if result.IsCrisis {
				c.logger.Infof("Processed input event: subject=%s severity=%s alert=%s",
					event.SubjectID, result.Severity, result.AlertID)
			}
		}
	}()
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Consumer close failed: %v", err)
	}
}
