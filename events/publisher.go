// Package events publishes workflow store changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cofoundr/state"
	"cofoundr/types"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const (
	// DefaultTopic receives every step event
	DefaultTopic = "cofoundr.workflow"

	bufferSize = 256
)

// StepEvent is the message body for one store change
type StepEvent struct {
	Step   types.Step   `json:"step,omitempty"`
	Field  state.Field  `json:"field"`
	Status types.Status `json:"status,omitempty"`
	Error  string       `json:"error,omitempty"`
	At     time.Time    `json:"at"`
}

// Config holds Kafka producer configuration
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher forwards store changes to a Kafka topic. A Publisher without a
// producer does nothing.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	store    *state.Store
	logger   *zap.Logger

	events      chan StepEvent
	quit        chan struct{}
	wg          sync.WaitGroup
	unsubscribe func()
	startOnce   sync.Once
	closeOnce   sync.Once
}

// NewProducer creates a synchronous producer for brokers
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// Connect builds a publisher from cfg. With no brokers configured the
// returned publisher is disabled.
func Connect(cfg Config, store *state.Store, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return NewPublisher(nil, cfg.Topic, store, logger), nil
	}
	producer, err := NewProducer(cfg.Brokers)
	if err != nil {
		return nil, err
	}
	return NewPublisher(producer, cfg.Topic, store, logger), nil
}

// NewPublisher creates a publisher that writes to topic through producer
func NewPublisher(producer sarama.SyncProducer, topic string, store *state.Store, logger *zap.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		store:    store,
		logger:   logger,
		events:   make(chan StepEvent, bufferSize),
		quit:     make(chan struct{}),
	}
}

// Enabled reports whether events are actually sent
func (p *Publisher) Enabled() bool { return p.producer != nil }

// Start subscribes to the store and sends events until ctx is cancelled or
// Close is called
func (p *Publisher) Start(ctx context.Context) {
	if !p.Enabled() {
		return
	}
	p.startOnce.Do(func() {
		p.unsubscribe = p.store.Subscribe(p.observe)

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.loop(ctx)
		}()
		p.logger.Info("event publisher started", zap.String("topic", p.topic))
	})
}

// observe runs synchronously inside store mutations and must not block
func (p *Publisher) observe(c state.Change) {
	if c.Field == state.FieldLog {
		return
	}
	ev := StepEvent{Step: c.Step, Field: c.Field, At: time.Now().UTC()}
	if c.Step != "" {
		ev.Status = p.store.Status(c.Step)
		ev.Error = p.store.Error(c.Step)
	}

	select {
	case p.events <- ev:
	default:
		p.logger.Warn("event buffer full, dropping event",
			zap.String("step", string(c.Step)),
			zap.String("field", string(c.Field)))
	}
}

func (p *Publisher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			p.drain()
			return
		case ev := <-p.events:
			if err := p.publish(ev); err != nil {
				p.logger.Warn("failed to publish event", zap.Error(err))
			}
		}
	}
}

func (p *Publisher) drain() {
	for {
		select {
		case ev := <-p.events:
			if err := p.publish(ev); err != nil {
				p.logger.Warn("failed to publish event", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (p *Publisher) publish(ev StepEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(body),
	}
	if ev.Step != "" {
		msg.Key = sarama.StringEncoder(ev.Step)
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return err
	}
	p.logger.Debug("event published",
		zap.String("step", string(ev.Step)),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close stops forwarding, flushes buffered events and closes the producer
func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	var err error
	p.closeOnce.Do(func() {
		if p.unsubscribe != nil {
			p.unsubscribe()
		}
		close(p.quit)
		p.wg.Wait()
		err = p.producer.Close()
	})
	return err
}
