// Package amqpin consume eventos de pesaje desde un exchange AMQP y los registra en el store.
package amqpin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"herd-weight-tracker/internal/domain/weights"
	"herd-weight-tracker/internal/platform/config"
	"herd-weight-tracker/internal/platform/logger"
	"herd-weight-tracker/internal/platform/metrics"
)

// Recorder es la parte del store que usa el consumidor.
type Recorder interface {
	Upsert(ctx context.Context, animalID string, at time.Time, weightKg float64) (weights.Observation, error)
	Location() *time.Location
}

// acknowledger es el subconjunto de amqp.Delivery que se usa.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// channel es el subconjunto de *amqp.Channel que usa el consumidor.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	QueueDelete(name string, ifUnused, ifEmpty, noWait bool) (int, error)
	Close() error
}

type Subscriber struct {
	cfg         config.AMQPConfig
	rec         Recorder
	log         logger.Logger
	connection  *amqp.Connection
	openChannel func() (channel, error)
	channel     channel
	queue       *amqp.Queue
}

func NewSubscriber(cfg config.AMQPConfig, rec Recorder, log logger.Logger) *Subscriber {
	if log == nil {
		log = logger.Nop()
	}
	return &Subscriber{
		cfg: cfg,
		rec: rec,
		log: log.With(map[string]any{"component": "amqp_subscriber", "exchange": cfg.Exchange}),
	}
}

func (s *Subscriber) dial() error {
	var err error
	if s.cfg.TLS {
		s.connection, err = amqp.DialTLS(s.cfg.DSN, nil)
	} else {
		s.connection, err = amqp.Dial(s.cfg.DSN)
	}
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	s.openChannel = func() (channel, error) {
		ch, err := s.connection.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
	s.log.Info("connection established", nil)
	return nil
}

// setup declara una cola no durable por instancia y la enlaza a los topics.
// Cada intento abre un canal nuevo y cierra el del intento anterior.
func (s *Subscriber) setup() error {
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.log.Debug("closing previous channel", map[string]any{"error": err})
		}
		s.channel, s.queue = nil, nil
	}

	ch, err := s.openChannel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	s.channel = ch

	name := fmt.Sprintf("herd-weight-tracker-%s-%s", s.cfg.Tag, uuid.NewString()[:8])
	q, err := s.channel.QueueDeclare(
		name,
		false, // durable
		true,  // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	s.queue = &q

	for _, topic := range s.cfg.Topics {
		s.log.Debug("binding topic", map[string]any{"queue": q.Name, "key": topic})
		if err := s.channel.QueueBind(q.Name, topic, s.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %q: %w", topic, err)
		}
	}
	return nil
}

// Run consume hasta que ctx se cancele o el broker cierre el canal.
func (s *Subscriber) Run(ctx context.Context) error {
	if err := s.dial(); err != nil {
		return err
	}
	defer s.shutdown()

	err := retry.Do(
		s.setup,
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn("subscriber setup failed, retrying", map[string]any{"attempt": n + 1, "error": err})
		}),
	)
	if err != nil {
		return err
	}

	deliveries, err := s.channel.Consume(s.queue.Name, s.cfg.Tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	s.log.Info("consuming", map[string]any{"queue": s.queue.Name, "topics": s.cfg.Topics})

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp: delivery channel closed")
			}
			s.handle(ctx, d, d.Body)
		}
	}
}

// handle: ok => ack; mensaje inválido => nack sin requeue; fallo del store => nack con requeue.
func (s *Subscriber) handle(ctx context.Context, d acknowledger, body []byte) {
	ev, at, err := Decode(body, s.rec.Location())
	if err == nil {
		_, err = s.rec.Upsert(ctx, ev.AnimalID, at, ev.WeightKg)
	}

	switch {
	case err == nil:
		metrics.IngestMessages.WithLabelValues("ok").Inc()
		_ = d.Ack(false)
	case errors.Is(err, ErrInvalidMessage), errors.Is(err, weights.ErrInvalidInput), errors.Is(err, weights.ErrInvalidWeight):
		metrics.IngestMessages.WithLabelValues("invalid").Inc()
		s.log.Warn("dropping invalid message", map[string]any{"error": err, "body": string(body)})
		_ = d.Nack(false, false)
	default:
		metrics.IngestMessages.WithLabelValues("failed").Inc()
		s.log.Error("store write failed", map[string]any{"error": err, "animal_id": ev.AnimalID})
		_ = d.Nack(false, true)
	}
}

func (s *Subscriber) shutdown() {
	if s.connection == nil {
		return
	}
	if s.channel != nil && s.queue != nil {
		if _, err := s.channel.QueueDelete(s.queue.Name, true, false, false); err != nil {
			s.log.Warn("queue delete failed", map[string]any{"error": err})
		}
	}
	if err := s.connection.Close(); err != nil {
		s.log.Warn("connection close failed", map[string]any{"error": err})
	}
	s.log.Info("shutdown OK", nil)
}
