// Package publisher delivers notifications to the audit store and any external sinks.
//
// In sync mode Emit returns once the store append and every sink publish finished.
// In async mode Emit only enqueues; a single worker drains the queue in order and
// Close waits for it to finish.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mintgate/pkg/domain"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/circuit"
	"mintgate/pkg/requestcontext"
)

// ErrBufferFull is returned by Emit in async mode when the queue is saturated.
var ErrBufferFull = errors.New("audit buffer full")

// ErrSinkUnavailable is reported for a sink skipped because its breaker is open.
var ErrSinkUnavailable = errors.New("audit sink unavailable")

// guardedSink pairs a sink with the breaker that stops calling it while it fails.
type guardedSink struct {
	sink    audit.Sink
	breaker *circuit.Breaker
}

type Publisher struct {
	store  audit.Store
	sinks  []guardedSink
	logger *slog.Logger

	breakerOpts []circuit.Option

	async  bool
	queue  chan audit.Event
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given queue size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.async = true
			p.queue = make(chan audit.Event, size)
		}
	}
}

// WithSink adds an external destination for every event. Each sink gets its own
// circuit breaker; events are not forwarded to a sink whose breaker is open.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, guardedSink{sink: sink})
		}
	}
}

// WithSinkBreaker configures the breakers guarding every sink.
func WithSinkBreaker(opts ...circuit.Option) Option {
	return func(p *Publisher) {
		p.breakerOpts = append(p.breakerOpts, opts...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.sinks {
		p.sinks[i].breaker = circuit.New(fmt.Sprintf("audit-sink-%d", i), p.breakerOpts...)
	}
	if p.async {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit stamps the event and delivers or enqueues it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if !p.async {
		return p.deliver(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.New("audit publisher closed")
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List returns stored events for a project.
func (p *Publisher) List(ctx context.Context, projectID domain.ProjectID) ([]audit.Event, error) {
	return p.store.ListByProject(ctx, projectID)
}

// Close stops accepting events and, in async mode, drains the queue.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.async {
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.deliver(ctx, event); err != nil && p.logger != nil {
			p.logger.Warn("failed to deliver audit event",
				"action", event.Action,
				"project_id", event.ProjectID,
				"error", err,
			)
		}
		cancel()
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	var errs []error
	for _, gs := range p.sinks {
		if !gs.breaker.Allow() {
			errs = append(errs, fmt.Errorf("%s: %w", gs.breaker.Name(), ErrSinkUnavailable))
			continue
		}
		if err := gs.sink.Publish(ctx, event); err != nil {
			if _, change := gs.breaker.RecordFailure(); change.Opened && p.logger != nil {
				p.logger.Warn("audit sink circuit opened", "sink", gs.breaker.Name(), "error", err)
			}
			errs = append(errs, err)
			continue
		}
		if _, change := gs.breaker.RecordSuccess(); change.Closed && p.logger != nil {
			p.logger.Info("audit sink circuit closed", "sink", gs.breaker.Name())
		}
	}
	return errors.Join(errs...)
}
