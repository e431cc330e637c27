package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Continuity/internal/testutil"
	apperrors "github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// mockKafkaWriter
type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
	written   []kafka.Message
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.written = append(m.written, msgs...)
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats { return kafka.WriterStats{} }

func newTestProducer(w WriterInterface) *Producer {
	return newProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, testutil.NewMockLogger())
}

func TestValidateProducerConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     ProducerConfig
		wantErr bool
	}{
		{"valid", ProducerConfig{Brokers: []string{"b:9092"}, RequiredAcks: -1}, false},
		{"no brokers", ProducerConfig{}, true},
		{"negative attempts", ProducerConfig{Brokers: []string{"b:9092"}, MaxAttempts: -1}, true},
		{"bad acks", ProducerConfig{Brokers: []string{"b:9092"}, RequiredAcks: 2}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateProducerConfig(tc.cfg)
			if tc.wantErr {
				assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewProducer_DoesNotDial(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Brokers: []string{"127.0.0.1:1"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, p.config.MaxAttempts)
	assert.NoError(t, p.Close())
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &Message{Topic: "t", Key: []byte("k"), Value: []byte("v"), Headers: map[string]string{"h": "1"}})
	require.NoError(t, err)

	require.Len(t, w.written, 1)
	assert.Equal(t, "t", w.written[0].Topic)
	assert.Equal(t, "k", string(w.written[0].Key))
	assert.Equal(t, "v", string(w.written[0].Value))
	assert.False(t, w.written[0].Time.IsZero())
	assert.Equal(t, []kafka.Header{{Key: "h", Value: []byte("1")}}, w.written[0].Headers)

	snap := p.GetMetrics()
	assert.Equal(t, int64(1), snap.MessagesSent)
	assert.Equal(t, int64(1), snap.BytesSent)
}

func TestPublish_Failure(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(context.Context, ...kafka.Message) error { return errors.New("broker down") },
	})

	err := p.Publish(context.Background(), &Message{Topic: "t", Value: []byte("v")})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
	assert.Equal(t, int64(1), p.GetMetrics().MessagesFailed)
}

func TestPublish_Validation(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, nil))
	assert.Error(t, p.Publish(ctx, &Message{Value: []byte("v")}))
	assert.Error(t, p.Publish(ctx, &Message{Topic: "t"}))
	assert.Error(t, p.Publish(ctx, &Message{Topic: "t", Value: []byte(strings.Repeat("x", 1024*1024+1))}))
	assert.Empty(t, w.written)
}

func TestClose_Idempotent(t *testing.T) {
	calls := 0
	p := newTestProducer(&mockKafkaWriter{closeFunc: func() error { calls++; return nil }})

	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
	assert.Equal(t, 1, calls)
	assert.Equal(t, ErrProducerClosed, p.Publish(context.Background(), &Message{Topic: "t", Value: []byte("v")}))
}

func TestEventPublisher_PublishEvent(t *testing.T) {
	w := &mockKafkaWriter{}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	pub := NewEventPublisher(newTestProducer(w), "", metrics, nil)
	ctx := logging.ContextWithRequestID(context.Background(), "req-9")

	payload := map[string]interface{}{"kind": "application", "total": 1}
	require.NoError(t, pub.PublishEvent(ctx, EventTypeLookupCompleted, "16123456", payload))

	require.Len(t, w.written, 1)
	msg := w.written[0]
	assert.Equal(t, TopicLookupCompleted, msg.Topic)
	assert.Equal(t, "16123456", string(msg.Key))

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, EventTypeLookupCompleted, env.EventType)
	assert.Equal(t, SourceService, env.Source)
	assert.Equal(t, "req-9", env.TraceID)
	assert.NotEmpty(t, env.EventID)

	var got map[string]interface{}
	require.NoError(t, env.DecodePayload(&got))
	assert.Equal(t, "application", got["kind"])
}

func TestEventPublisher_FailureIsLogged(t *testing.T) {
	log := testutil.NewMockLogger()
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(context.Context, ...kafka.Message) error { return errors.New("boom") },
	})
	pub := NewEventPublisher(p, "custom", nil, log)

	err := pub.PublishEvent(context.Background(), EventTypeLookupCompleted, "", struct{}{})
	assert.Error(t, err)
	assert.True(t, log.HasMessage("warn", "event publish failed"))
}

func TestEventEnvelope_DecodeEmptyPayload(t *testing.T) {
	env := &EventEnvelope{}
	var target struct{ A int }
	assert.NoError(t, env.DecodePayload(&target))
	assert.Zero(t, target.A)
}

func TestEventEnvelope_UnmarshalablePayload(t *testing.T) {
	_, err := NewEventEnvelope("x", "y", make(chan int))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSerialization))
}

//Personal.AI order the ending
