package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/reclaimhq/reclaim/internal/config"
	"github.com/reclaimhq/reclaim/internal/domain/session"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

const (
	TopicSessionEvents = "session.events"
	TopicAccountEvents = "account.events"
)

type sessionMessage struct {
	Origin uuid.UUID     `json:"origin"`
	Event  session.Event `json:"event"`
}

type AccountRemoval struct {
	UserID uuid.UUID `json:"user_id"`
}

// SessionBus carries session lifecycle events. Local subscribers are
// notified synchronously on publish; the Kafka topic fans the same events
// out to other devices of the same identity. Messages carry an origin id
// so the consuming side skips its own publishes.
type SessionBus struct {
	origin        uuid.UUID
	sessionWriter *kafka.Writer
	accountWriter *kafka.Writer
	reader        *kafka.Reader
	logger        logger.Logger

	mu          sync.Mutex
	subscribers map[int]func(session.Event)
	nextSub     int
}

func NewSessionBus(cfg config.Config, log logger.Logger) (*SessionBus, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	origin := uuid.New()

	sessionWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicSessionEvents,
		Balancer: &kafka.LeastBytes{},
	}
	accountWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicAccountEvents,
		Balancer: &kafka.LeastBytes{},
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    TopicSessionEvents,
		GroupID:  "session-bus-" + origin.String(),
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &SessionBus{
		origin:        origin,
		sessionWriter: sessionWriter,
		accountWriter: accountWriter,
		reader:        reader,
		logger:        log,
		subscribers:   map[int]func(session.Event){},
	}, nil
}

// Run consumes session events published by other devices. Blocks until
// the context is done.
func (b *SessionBus) Run(ctx context.Context) {
	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("session bus read failed", zap.Error(err))
			continue
		}

		var sm sessionMessage
		if err := json.Unmarshal(msg.Value, &sm); err != nil {
			b.logger.Warn("session bus message decode failed", zap.Error(err))
			continue
		}
		if sm.Origin == b.origin {
			continue
		}
		b.dispatch(sm.Event)
	}
}

func (b *SessionBus) Publish(ctx context.Context, ev session.Event) error {
	payload, err := json.Marshal(sessionMessage{Origin: b.origin, Event: ev})
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}

	// local subscribers first: emission order must be preserved for the
	// lifecycle state machine regardless of broker latency
	b.dispatch(ev)

	if err := b.sessionWriter.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		b.logger.Warn("session event publish failed", zap.Error(err))
	}
	return nil
}

func (b *SessionBus) Subscribe(fn func(session.Event)) func() {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subscribers[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

func (b *SessionBus) dispatch(ev session.Event) {
	b.mu.Lock()
	fns := make([]func(session.Event), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// RequestRemoval asks the account worker to delete an identity's durable
// rows. Satisfies the lifecycle manager's AccountRemover.
func (b *SessionBus) RequestRemoval(ctx context.Context, userID uuid.UUID) error {
	payload, err := json.Marshal(AccountRemoval{UserID: userID})
	if err != nil {
		return fmt.Errorf("encode removal request: %w", err)
	}
	if err := b.accountWriter.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return fmt.Errorf("publish removal request: %w", err)
	}
	return nil
}

func (b *SessionBus) Close() {
	if b.sessionWriter != nil {
		b.sessionWriter.Close()
	}
	if b.accountWriter != nil {
		b.accountWriter.Close()
	}
	if b.reader != nil {
		b.reader.Close()
	}
	b.logger.Info("Closed session bus")
}
