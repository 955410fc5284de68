package mailer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// Config holds mailer module configuration.
type Config struct {
	Queue QueueConfig
	Pool  PoolConfig
	SMTP  SMTPConfig
}

// DefaultConfig returns the default mailer configuration. With no SMTP
// host set, delivery falls back to log-only.
func DefaultConfig() Config {
	return Config{
		Queue: DefaultQueueConfig(),
		Pool:  DefaultPoolConfig(),
	}
}

// Module provides the email queue and delivery pool as a mono module.
type Module struct {
	config Config
	queue  *Queue
	pool   *Pool
}

// NewModule creates a new mailer module.
func NewModule(cfg Config) *Module {
	return &Module{config: cfg}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "mailer"
}

// Init creates the queue and the delivery pool.
func (m *Module) Init(_ mono.ServiceContainer) error {
	m.queue = NewQueue(m.config.Queue)

	var sender Sender
	if m.config.SMTP.Host != "" {
		sender = NewSMTPSender(m.config.SMTP)
		log.Printf("[mailer] SMTP delivery via %s:%d", m.config.SMTP.Host, m.config.SMTP.Port)
	} else {
		sender = &LogSender{}
		log.Println("[mailer] No SMTP host configured, using log-only delivery")
	}
	m.pool = NewPool(m.config.Pool, m.queue, sender)

	return nil
}

// Start connects to NATS, creates the consumer and starts the pool.
func (m *Module) Start(ctx context.Context) error {
	if err := m.queue.Connect(ctx); err != nil {
		return err
	}
	if err := m.queue.CreateConsumer(ctx, m.config.Queue); err != nil {
		return err
	}
	if err := m.pool.Start(ctx); err != nil {
		return err
	}

	log.Println("[mailer] Module started")
	return nil
}

// Stop stops the pool and closes the NATS connection.
func (m *Module) Stop(ctx context.Context) error {
	if m.pool != nil {
		if err := m.pool.Stop(ctx); err != nil {
			log.Printf("[mailer] Error stopping pool: %v", err)
		}
	}
	if m.queue != nil {
		return m.queue.Close()
	}
	log.Println("[mailer] Module stopped")
	return nil
}

// Enqueue queues an arbitrary email for delivery.
func (m *Module) Enqueue(ctx context.Context, to, subject, body string) error {
	if m.queue == nil {
		return ErrQueueUnavailable
	}
	return m.queue.Publish(ctx, &EmailJob{
		ID:        uuid.New().String(),
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
}

// EnqueueFeedbackAck queues the acknowledgement email sent to a
// feedback submitter.
func (m *Module) EnqueueFeedbackAck(ctx context.Context, name, email, message string) error {
	subject, body, err := RenderFeedbackAck(name, message)
	if err != nil {
		return err
	}
	return m.Enqueue(ctx, email, subject, body)
}

// GetQueue returns the email queue.
func (m *Module) GetQueue() *Queue {
	return m.queue
}

// HealthCheck verifies the NATS connection is healthy.
func (m *Module) HealthCheck(_ context.Context) error {
	if m.queue == nil || !m.queue.IsConnected() {
		return fmt.Errorf("mailer: %w", ErrQueueUnavailable)
	}
	return nil
}
