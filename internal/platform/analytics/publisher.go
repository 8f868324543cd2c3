// Package analytics publishes fire-and-forget business events to NATS JetStream.
package analytics

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	StreamName = "ANALYTICS"

	SubjectBatchJobFinished = "analytics.batch.job_finished"
	SubjectBatchJobFailed   = "analytics.batch.job_failed"
	SubjectBatchJobSkipped  = "analytics.batch.job_skipped"
)

// Event is the envelope sent to all analytics.* subjects.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	Source     string         `json:"source,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher publishes analytics events. A nil *Publisher is a no-op.
type Publisher struct {
	js     nats.JetStreamContext
	log    *zap.Logger
	source string
	now    func() time.Time
}

// New creates a Publisher on an existing JetStream context; source names the emitting service.
func New(js nats.JetStreamContext, log *zap.Logger, source string) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, log: log, source: source, now: time.Now}
}

// EnsureStream creates the ANALYTICS stream when it does not exist yet.
func (p *Publisher) EnsureStream() error {
	if p == nil || p.js == nil {
		return nil
	}
	_, err := p.js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = p.js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"analytics.>"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	return err
}

// Publish sends an event asynchronously. Failures are logged and never returned.
func (p *Publisher) Publish(subject, eventName string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	data, err := p.encode(eventName, props)
	if err != nil {
		p.log.Warn("analytics: marshal failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("analytics: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

func (p *Publisher) encode(eventName string, props map[string]any) ([]byte, error) {
	return json.Marshal(Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		Source:     p.source,
		OccurredAt: p.now().UTC(),
		Properties: props,
	})
}
