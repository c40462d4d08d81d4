// Package messaging implements event bus functionality for the Campus Placement Hub.
// It provides both in-memory and Redis-based event buses for event-driven architecture.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

// ErrEventBusClosed is returned when publishing or subscribing on a closed bus.
var ErrEventBusClosed = errors.New("event bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode dispatches handlers on background goroutines. Synchronous
	// mode runs them inline on the publishing goroutine, which tests rely on.
	AsyncMode bool

	// WorkerPoolSize caps concurrent handler executions in async mode.
	WorkerPoolSize int

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultInMemoryEventBusConfig returns sensible defaults.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
	}
}

func (c InMemoryEventBusConfig) normalized() InMemoryEventBusConfig {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.WorkerPoolSize <= 0 {
		c.WorkerPoolSize = 10
	}
	return c
}

// InMemoryEventBus delivers events to handlers within a single process.
// Suitable for single-instance deployments and testing; the Redis bus
// embeds one for local delivery.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	byType   map[shared.EventType][]shared.EventHandler
	catchAll []shared.EventHandler
	closed   bool

	async   bool
	slots   chan struct{}
	closeCh chan struct{}
	wg      sync.WaitGroup

	logger *slog.Logger

	published      atomic.Int64
	handlerErrors  atomic.Int64
	handlerInvokes atomic.Int64
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	config = config.normalized()
	return &InMemoryEventBus{
		byType:  make(map[shared.EventType][]shared.EventHandler),
		async:   config.AsyncMode,
		slots:   make(chan struct{}, config.WorkerPoolSize),
		closeCh: make(chan struct{}),
		logger:  config.Logger,
	}
}

// Subscribe registers a handler for one event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.byType[eventType] = append(b.byType[eventType], handler)
	b.logger.Debug("subscribed handler", "event_type", eventType)
	return nil
}

// SubscribeAll registers a handler that receives every event.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.catchAll = append(b.catchAll, handler)
	b.logger.Debug("subscribed global handler")
	return nil
}

// Publish delivers an event to every matching handler. Handler errors are
// logged, never propagated to the publisher.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	handlers, err := b.snapshot(event.EventType())
	if err != nil {
		return err
	}
	if len(handlers) == 0 {
		b.logger.Debug("no handlers for event", "event_type", event.EventType())
		return nil
	}

	b.published.Add(1)

	for _, h := range handlers {
		if b.async {
			b.dispatch(event, h)
		} else if err := b.invoke(event, h); err != nil {
			b.logger.Error("handler error", "event_type", event.EventType(), "error", err)
		}
	}
	return nil
}

// snapshot copies the handler list under the read lock so Publish never
// holds the lock while handlers run.
func (b *InMemoryEventBus) snapshot(t shared.EventType) ([]shared.EventHandler, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrEventBusClosed
	}

	handlers := make([]shared.EventHandler, 0, len(b.byType[t])+len(b.catchAll))
	handlers = append(handlers, b.byType[t]...)
	handlers = append(handlers, b.catchAll...)
	return handlers, nil
}

func (b *InMemoryEventBus) dispatch(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		select {
		case b.slots <- struct{}{}:
			defer func() { <-b.slots }()
		case <-b.closeCh:
			return
		}

		if err := b.invoke(event, handler); err != nil {
			b.logger.Error("async handler error", "event_type", event.EventType(), "error", err)
		}
	}()
}

func (b *InMemoryEventBus) invoke(event shared.Event, handler shared.EventHandler) error {
	b.handlerInvokes.Add(1)
	err := handler(event)
	if err != nil {
		b.handlerErrors.Add(1)
	}
	return err
}

// Close stops accepting events and waits for in-flight handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()

	b.logger.Info("event bus closed",
		"published", b.published.Load(),
		"handler_invocations", b.handlerInvokes.Load(),
		"handler_errors", b.handlerErrors.Load(),
	)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// RedisClient is the Pub/Sub surface the bus needs. redis_adapter.go
// bridges the shared cache client to it.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error)
	Close() error
}

// RedisMessage represents a message received from Redis Pub/Sub.
type RedisMessage struct {
	Channel string
	Payload string
	Err     error
}

// RedisEventBusConfig contains configuration for RedisEventBus.
type RedisEventBusConfig struct {
	// Client is the Redis client to use. Required.
	Client RedisClient

	// ChannelName is the Redis channel for events. Defaults to "placement:events".
	ChannelName string

	// InstanceID identifies this process so it can drop its own echoes.
	// A random ID is generated when empty.
	InstanceID string

	// LocalBusConfig configures the embedded in-memory bus.
	LocalBusConfig InMemoryEventBusConfig

	// Logger for structured logging.
	Logger *slog.Logger
}

func (c RedisEventBusConfig) normalized() RedisEventBusConfig {
	if c.ChannelName == "" {
		c.ChannelName = "placement:events"
	}
	if c.InstanceID == "" {
		c.InstanceID = "instance-" + uuid.NewString()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// RedisEventBus fans events out over Redis Pub/Sub so the API server and
// the worker see each other's events. Local handlers are served by an
// embedded InMemoryEventBus; remote events arrive via the subscription
// loop and are replayed into it.
type RedisEventBus struct {
	client     RedisClient
	local      *InMemoryEventBus
	channel    string
	instanceID string
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewRedisEventBus creates a Redis-backed event bus and starts its
// subscription loop.
func NewRedisEventBus(config RedisEventBusConfig) (*RedisEventBus, error) {
	if config.Client == nil {
		return nil, errors.New("redis client is required")
	}
	config = config.normalized()

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisEventBus{
		client:     config.Client,
		local:      NewInMemoryEventBus(config.LocalBusConfig),
		channel:    config.ChannelName,
		instanceID: config.InstanceID,
		logger:     config.Logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	messages, err := bus.client.Subscribe(ctx, bus.channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start subscriber: %w", err)
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		bus.consume(messages)
	}()

	return bus, nil
}

// Subscribe registers a handler for one event type.
func (b *RedisEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	return b.local.Subscribe(eventType, handler)
}

// SubscribeAll registers a handler that receives every event.
func (b *RedisEventBus) SubscribeAll(handler shared.EventHandler) error {
	return b.local.SubscribeAll(handler)
}

// Publish sends the event to Redis for other instances and to the local
// handlers of this one. A Redis failure degrades to local-only delivery.
func (b *RedisEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrEventBusClosed
	}

	data, err := json.Marshal(wireEvent{
		InstanceID:  b.instanceID,
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.client.Publish(b.ctx, b.channel, string(data)); err != nil {
		b.logger.Error("failed to publish to redis", "error", err)
	}

	return b.local.Publish(event)
}

func (b *RedisEventBus) consume(messages <-chan RedisMessage) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Err != nil {
				b.logger.Error("redis subscription error", "error", msg.Err)
				continue
			}
			b.replay(msg.Payload)
		}
	}
}

// replay decodes a wire event from another instance and runs it through
// the local handlers. Own echoes are dropped; they were already delivered
// at publish time.
func (b *RedisEventBus) replay(payload string) {
	var w wireEvent
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		b.logger.Error("failed to unmarshal event", "error", err)
		return
	}
	if w.InstanceID == b.instanceID {
		return
	}

	if err := b.local.Publish(remoteEvent{w: w}); err != nil {
		b.logger.Error("failed to process remote event", "error", err)
	}
}

// Close stops the subscription loop and shuts down the local bus.
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	if err := b.local.Close(); err != nil {
		b.logger.Error("failed to close local bus", "error", err)
	}

	b.logger.Info("redis event bus closed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE FORMAT
// ══════════════════════════════════════════════════════════════════════════════

// wireEvent is the JSON envelope events travel in over Redis.
type wireEvent struct {
	InstanceID  string                 `json:"instance_id"`
	EventType   shared.EventType       `json:"event_type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

// remoteEvent presents a decoded wire event through the shared.Event interface.
type remoteEvent struct {
	w wireEvent
}

func (e remoteEvent) EventType() shared.EventType     { return e.w.EventType }
func (e remoteEvent) AggregateID() string             { return e.w.AggregateID }
func (e remoteEvent) OccurredAt() time.Time           { return e.w.OccurredAt }
func (e remoteEvent) Payload() map[string]interface{} { return e.w.Payload }
