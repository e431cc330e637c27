package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// Topic and event type constants.
const (
	TopicLookupCompleted = "keyipc.lookup.completed"

	EventTypeLookupCompleted = "lookup.completed"

	SourceService = "keyip-continuity"
	SchemaVersion = "v1"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope marshals payload and stamps it with a fresh event ID.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.  An empty payload leaves
// target untouched.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// ToMessage serializes the envelope into a producer message keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		"event_type":     e.EventType,
		"source_service": e.Source,
		"schema_version": e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers["trace_id"] = e.TraceID
	}
	msg := &Message{
		Topic:     topic,
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// EventPublisher
// ─────────────────────────────────────────────────────────────────────────────

// EventPublisher wraps payloads in an EventEnvelope and produces them to a
// single topic.
type EventPublisher struct {
	producer *Producer
	topic    string
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// NewEventPublisher binds producer to topic.  An empty topic selects
// TopicLookupCompleted.  metrics may be nil.
func NewEventPublisher(producer *Producer, topic string, metrics *prometheus.AppMetrics, logger logging.Logger) *EventPublisher {
	if topic == "" {
		topic = TopicLookupCompleted
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EventPublisher{producer: producer, topic: topic, metrics: metrics, logger: logger}
}

// PublishEvent produces one event.  The request ID on ctx, if any, becomes the
// envelope trace ID.
func (p *EventPublisher) PublishEvent(ctx context.Context, eventType, key string, payload interface{}) error {
	env, err := NewEventEnvelope(eventType, SourceService, payload)
	if err != nil {
		return err
	}
	env.TraceID = logging.RequestIDFromContext(ctx)

	msg, err := env.ToMessage(p.topic, key)
	if err != nil {
		return err
	}

	err = p.producer.Publish(ctx, msg)
	prometheus.RecordEventPublish(p.metrics, p.topic, err)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Warn("event publish failed",
			logging.String("topic", p.topic),
			logging.String("event_type", eventType))
	}
	return err
}

// Close closes the underlying producer.
func (p *EventPublisher) Close() error {
	return p.producer.Close()
}

//Personal.AI order the ending
