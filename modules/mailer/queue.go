// Package mailer provides a durable outbound email queue backed by NATS
// JetStream, with a worker pool that delivers messages over SMTP.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the name of the JetStream stream for outbound email.
	StreamName = "EMAILS"
	// SubjectSend is the subject for email send requests.
	SubjectSend = "emails.send"
	// ConsumerName is the name of the durable consumer.
	ConsumerName = "email-workers"
)

// EmailJob is a single outbound email queued for delivery.
type EmailJob struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueConfig holds NATS queue configuration.
type QueueConfig struct {
	URL             string
	MaxDeliverCount int
	AckWait         time.Duration
}

// DefaultQueueConfig returns the default queue configuration.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		URL:             "nats://localhost:4222",
		MaxDeliverCount: 5,
		AckWait:         30 * time.Second,
	}
}

// Queue provides JetStream operations for the email queue.
type Queue struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	stream   jetstream.Stream
	consumer jetstream.Consumer
	natsURL  string
}

// NewQueue creates a new email queue for the given configuration.
func NewQueue(cfg QueueConfig) *Queue {
	return &Queue{
		natsURL: cfg.URL,
	}
}

// Connect establishes the NATS connection and ensures the stream exists.
func (q *Queue) Connect(ctx context.Context) error {
	nc, err := nats.Connect(q.natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	q.nc = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	q.js = js

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Outbound email queue",
		Subjects:    []string{SubjectSend},
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	q.stream = stream

	log.Printf("[mailer] Connected to NATS at %s, stream %s ready", q.natsURL, StreamName)
	return nil
}

// CreateConsumer creates the durable consumer for email delivery.
func (q *Queue) CreateConsumer(ctx context.Context, cfg QueueConfig) error {
	consumer, err := q.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          ConsumerName,
		Durable:       ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliverCount,
		FilterSubject: SubjectSend,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	q.consumer = consumer

	log.Printf("[mailer] Consumer %s created", ConsumerName)
	return nil
}

// Publish enqueues an email for delivery.
func (q *Queue) Publish(ctx context.Context, job *EmailJob) error {
	if q.js == nil {
		return ErrQueueUnavailable
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}

	ack, err := q.js.Publish(ctx, SubjectSend, data)
	if err != nil {
		return fmt.Errorf("failed to publish email job: %w", err)
	}

	log.Printf("[mailer] Queued email %s to %s, sequence %d", job.ID, job.To, ack.Sequence)
	return nil
}

// Subscribe returns a channel of queued email messages for processing.
func (q *Queue) Subscribe(ctx context.Context) (<-chan *ConsumeMessage, error) {
	if q.consumer == nil {
		return nil, fmt.Errorf("consumer not initialized")
	}

	msgChan := make(chan *ConsumeMessage, 100)

	go func() {
		defer close(msgChan)

		iter, err := q.consumer.Messages()
		if err != nil {
			log.Printf("[mailer] Error creating message iterator: %v", err)
			return
		}
		defer iter.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[mailer] Consumer context cancelled, stopping...")
				return
			default:
				msg, err := iter.Next()
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("[mailer] Error fetching message: %v", err)
					continue
				}

				var job EmailJob
				if err := json.Unmarshal(msg.Data(), &job); err != nil {
					log.Printf("[mailer] Error unmarshaling message: %v", err)
					if err := msg.Term(); err != nil {
						log.Printf("[mailer] Error terminating message: %v", err)
					}
					continue
				}

				metadata, _ := msg.Metadata()
				deliveryCount := 1
				if metadata != nil {
					deliveryCount = int(metadata.NumDelivered)
				}

				msgChan <- &ConsumeMessage{
					Job:           &job,
					DeliveryCount: deliveryCount,
					msg:           msg,
				}
			}
		}
	}()

	return msgChan, nil
}

// acker is the subset of jetstream.Msg the worker needs.
type acker interface {
	Ack() error
	Nak() error
	NakWithDelay(delay time.Duration) error
	Term() error
}

// ConsumeMessage wraps a queued email with acknowledgment methods.
type ConsumeMessage struct {
	Job           *EmailJob
	DeliveryCount int
	msg           acker
}

// Ack acknowledges successful delivery of the email.
func (m *ConsumeMessage) Ack() error {
	return m.msg.Ack()
}

// Nak negatively acknowledges the message for redelivery.
func (m *ConsumeMessage) Nak() error {
	return m.msg.Nak()
}

// NakWithDelay negatively acknowledges with a delay before redelivery.
func (m *ConsumeMessage) NakWithDelay(delay time.Duration) error {
	return m.msg.NakWithDelay(delay)
}

// Term terminates the message (no more redeliveries).
func (m *ConsumeMessage) Term() error {
	return m.msg.Term()
}

// Close closes the NATS connection.
func (q *Queue) Close() error {
	if q.nc != nil {
		q.nc.Close()
		log.Println("[mailer] Connection closed")
	}
	return nil
}

// IsConnected returns true if connected to NATS.
func (q *Queue) IsConnected() bool {
	return q.nc != nil && q.nc.IsConnected()
}
