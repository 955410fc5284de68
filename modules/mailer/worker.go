package mailer

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"
)

// PoolConfig holds delivery worker pool configuration.
type PoolConfig struct {
	NumWorkers     int
	MaxRetries     int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration
	SendTimeout    time.Duration
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:     3,
		MaxRetries:     5,
		BaseRetryDelay: time.Second,
		MaxRetryDelay:  time.Minute,
		SendTimeout:    30 * time.Second,
	}
}

// Pool manages a pool of workers delivering queued email.
type Pool struct {
	config  PoolConfig
	queue   *Queue
	sender  Sender
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.RWMutex
	running bool
}

// NewPool creates a new delivery pool.
func NewPool(cfg PoolConfig, queue *Queue, sender Sender) *Pool {
	return &Pool{
		config: cfg,
		queue:  queue,
		sender: sender,
	}
}

// Start subscribes to the queue and begins delivering email.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("pool is already running")
	}
	p.running = true
	p.mu.Unlock()

	msgChan, err := p.queue.Subscribe(ctx)
	if err != nil {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		return fmt.Errorf("failed to subscribe to email queue: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.config.NumWorkers; i++ {
		workerID := fmt.Sprintf("mailer-%d", i+1)
		w := newWorker(workerID, p.config, p.sender)

		p.wg.Add(1)
		go func(w *worker) {
			defer p.wg.Done()
			w.run(workerCtx, msgChan)
		}(w)
	}

	log.Printf("[mailer] Delivery pool started with %d workers", p.config.NumWorkers)
	return nil
}

// Stop stops the worker pool gracefully.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[mailer] All workers stopped gracefully")
	case <-ctx.Done():
		log.Println("[mailer] Timeout waiting for workers to stop")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

type worker struct {
	id     string
	config PoolConfig
	sender Sender
}

func newWorker(id string, cfg PoolConfig, sender Sender) *worker {
	return &worker{
		id:     id,
		config: cfg,
		sender: sender,
	}
}

func (w *worker) run(ctx context.Context, msgChan <-chan *ConsumeMessage) {
	log.Printf("[%s] Worker started", w.id)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Worker stopping due to context cancellation", w.id)
			return
		case msg, ok := <-msgChan:
			if !ok {
				log.Printf("[%s] Message channel closed, worker stopping", w.id)
				return
			}
			w.deliver(ctx, msg)
		}
	}
}

// deliver sends one queued email and acknowledges the message according
// to the outcome.
func (w *worker) deliver(ctx context.Context, msg *ConsumeMessage) {
	job := msg.Job

	log.Printf("[%s] Delivering email %s (to=%s, delivery=%d)", w.id, job.ID, job.To, msg.DeliveryCount)

	sendCtx, cancel := context.WithTimeout(ctx, w.config.SendTimeout)
	defer cancel()

	start := time.Now()
	err := w.sender.Send(sendCtx, job)
	if err == nil {
		if err := msg.Ack(); err != nil {
			log.Printf("[%s] Error acknowledging message: %v", w.id, err)
		}
		log.Printf("[%s] Email %s delivered in %v", w.id, job.ID, time.Since(start))
		return
	}

	if msg.DeliveryCount >= w.config.MaxRetries {
		if termErr := msg.Term(); termErr != nil {
			log.Printf("[%s] Error terminating message: %v", w.id, termErr)
		}
		log.Printf("[%s] Email %s dropped after %d attempts: %v", w.id, job.ID, msg.DeliveryCount, err)
		return
	}

	delay := w.retryDelay(msg.DeliveryCount)
	if nakErr := msg.NakWithDelay(delay); nakErr != nil {
		log.Printf("[%s] Error NAK with delay: %v", w.id, nakErr)
	}
	log.Printf("[%s] Email %s failed (attempt %d/%d), will retry in %v: %v",
		w.id, job.ID, msg.DeliveryCount, w.config.MaxRetries, delay, err)
}

// retryDelay computes exponential backoff capped at MaxRetryDelay.
func (w *worker) retryDelay(deliveryCount int) time.Duration {
	delay := float64(w.config.BaseRetryDelay) * math.Pow(2, float64(deliveryCount-1))
	if time.Duration(delay) > w.config.MaxRetryDelay {
		return w.config.MaxRetryDelay
	}
	return time.Duration(delay)
}
