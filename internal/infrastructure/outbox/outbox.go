package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"

	"go.opentelemetry.io/otel/trace"
)

const (
	componentOutbox       = "outbox"
	defaultQueueSize      = 1024
	defaultConcurrency    = 8
	defaultHandlerTimeout = 30 * time.Second
)

var ErrBusStopped = errors.New("outbox: bus stopped")

// envelope carries the publisher's span so handlers continue the same trace.
type envelope struct {
	event domoutbox.Event
	span  trace.SpanContext
}

// Bus is an in-memory event bus for single-process deployments and tests.
// It is not durable: events still queued when the process dies are lost.
type Bus struct {
	mu             sync.RWMutex // guards subs
	subs           map[string][]domoutbox.Handler
	stateMu        sync.RWMutex // guards stopped and sends on queue
	queue          chan envelope
	stopped        bool
	startOnce      sync.Once
	stopOnce       sync.Once
	done           chan struct{}
	concurrency    int
	handlerTimeout time.Duration
	log            observability.Logger
}

type BusOption func(*Bus)

func WithQueueSize(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan envelope, n)
		}
	}
}

// WithConcurrency caps how many handlers of one event run at once.
func WithConcurrency(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithHandlerTimeout(d time.Duration) BusOption {
	return func(b *Bus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

func NewBus(logger observability.Logger, opts ...BusOption) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	b := &Bus{
		subs:           make(map[string][]domoutbox.Handler),
		queue:          make(chan envelope, defaultQueueSize),
		done:           make(chan struct{}),
		concurrency:    defaultConcurrency,
		handlerTimeout: defaultHandlerTimeout,
		log:            logger.With(observability.F("component", componentOutbox)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		go b.dispatchLoop(context.WithoutCancel(ctx))
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop refuses new events and waits for queued ones to be handled, or for ctx to end.
func (b *Bus) Stop(ctx context.Context) error {
	var err error
	b.stopOnce.Do(func() {
		b.stateMu.Lock()
		b.stopped = true
		close(b.queue)
		b.stateMu.Unlock()

		started := true
		b.startOnce.Do(func() { started = false })
		if started {
			select {
			case <-b.done:
			case <-ctx.Done():
				err = ctx.Err()
			}
		}
		logctx.FromOr(ctx, b.log).Info("event_bus_stopped",
			observability.F("drained", err == nil),
		)
	})
	return err
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))

	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	if b.stopped {
		return ErrBusStopped
	}

	select {
	case b.queue <- envelope{event: e, span: trace.SpanContextFromContext(ctx)}:
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		logger.Warn("event_enqueue_aborted",
			observability.F("error", ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for env := range b.queue {
		b.fanout(ctx, env)
	}
}

func (b *Bus) fanout(ctx context.Context, env envelope) {
	name := env.event.EventName()

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	logger := b.log.With(observability.F("event", name))
	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	if env.span.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, env.span)
	}
	ctx = logctx.With(ctx, logger)

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
			defer cancel()
			if err := h(hctx, env.event); err != nil {
				logger.Warn("event_handler_error",
					observability.F("error", err),
				)
			}
		}()
	}

	wg.Wait()

	logger.Debug("event_fanned_out",
		observability.F("handlers", len(handlers)),
	)
}
