package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domoutbox "github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability/logctx"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the forwarder needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// KafkaForwarder copies every bus event to a topic as JSON, keyed by the
// aggregate id so one order's events land on one partition.
type KafkaForwarder struct {
	writer    MessageWriter
	forwarded observability.Counter
	log       observability.Logger
}

func NewKafkaForwarder(w MessageWriter, tel observability.Observability) *KafkaForwarder {
	if tel == nil {
		tel = observability.Nop()
	}
	return &KafkaForwarder{
		writer:    w,
		forwarded: tel.Metrics().Counter(observability.MEventsForwarded),
		log:       tel.Logger().With(observability.F("component", "kafka_forwarder")),
	}
}

// Attach subscribes the forwarder to every event on s.
func (f *KafkaForwarder) Attach(s domoutbox.Subscriber) {
	s.Subscribe(Wildcard, f.Handle)
}

func (f *KafkaForwarder) Handle(ctx context.Context, e domoutbox.Event) error {
	name := e.EventName()
	logger := logctx.FromOr(ctx, f.log)

	payload, err := json.Marshal(e)
	if err != nil {
		f.forwarded.Add(1, observability.L("event", name), observability.L("outcome", "error"))
		return fmt.Errorf("kafka forwarder: marshal %s: %w", name, err)
	}
	msg := kafka.Message{
		Key:   []byte(domoutbox.KeyOf(e)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(name)},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		f.forwarded.Add(1, observability.L("event", name), observability.L("outcome", "error"))
		logger.Warn("event_forward_failed", observability.Err(err))
		return fmt.Errorf("kafka forwarder: write %s: %w", name, err)
	}
	f.forwarded.Add(1, observability.L("event", name), observability.L("outcome", "success"))
	logger.Debug("event_forwarded")
	return nil
}

func (f *KafkaForwarder) Close() error { return f.writer.Close() }
