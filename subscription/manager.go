package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bep/debounce"
	"go.uber.org/atomic"

	"go.viam.com/viz/logging"
	"go.viam.com/viz/utils"
	"go.viam.com/viz/wire"
)

// Defaults for the manager configuration.
const (
	// DefaultNotifyWindow coalesces steady-state status updates so a 100Hz+
	// stream does not turn into 100Hz of notifications.
	DefaultNotifyWindow = 200 * time.Millisecond
	// DefaultRetryInterval is how often failed subscriptions retry once the
	// transport reports connected.
	DefaultRetryInterval = time.Second
	// DefaultQueueSize bounds a component's message history when the caller
	// passes zero.
	DefaultQueueSize = 10
)

// Status is the read-only subscription state exposed per component.
type Status struct {
	Subscribed      bool
	HasData         bool
	MessageCount    int64
	LastMessageTime time.Time
	Error           string
}

type record struct {
	componentID   string
	componentType ComponentType
	topic         string
	queueSize     int
	status        Status
	queue         *messageQueue

	lastFingerprint uint64
	hasFingerprint  bool

	// wantSubscribed survives transport failures so the retry loop can
	// reestablish the subscription without caller intervention.
	wantSubscribed bool
}

// Config configures a Manager. Zero values fall back to the defaults.
type Config struct {
	NotifyWindow  time.Duration
	RetryInterval time.Duration
}

func (cfg *Config) fillDefaults() {
	if cfg.NotifyWindow <= 0 {
		cfg.NotifyWindow = DefaultNotifyWindow
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
}

// Manager owns at most one active transport subscription per display
// component. All of its work is O(payload metadata): validation, dedup
// fingerprinting, and bookkeeping, never a pass over point or pixel data.
type Manager struct {
	mu        sync.Mutex
	records   map[string]*record
	transport Transport

	// statusVersion is the single reactive counter status consumers watch.
	// Transitions bump it immediately; steady-state churn goes through the
	// debounced path.
	statusVersion atomic.Int64
	onStatus      func()
	onPayload     func(componentID string)
	debounced     func(func())

	clock   clock.Clock
	logger  logging.Logger
	workers *utils.StoppableWorkers
}

// NewManager returns a manager with its resubscribe loop running.
func NewManager(cfg Config, transport Transport, clk clock.Clock, logger logging.Logger) *Manager {
	cfg.fillDefaults()
	if clk == nil {
		clk = clock.New()
	}
	m := &Manager{
		records:   map[string]*record{},
		transport: transport,
		debounced: debounce.New(cfg.NotifyWindow),
		clock:     clk,
		logger:    logger,
	}
	retryInterval := cfg.RetryInterval
	m.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		ticker := m.clock.Ticker(retryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.retryFailed()
			}
		}
	})
	return m
}

// Close releases every subscription and stops the retry loop. Torn-down
// subscriptions count as a status transition so consumers observe the
// shutdown.
func (m *Manager) Close() {
	m.workers.Stop()
	m.mu.Lock()
	changed := false
	for _, rec := range m.records {
		if rec.status.Subscribed {
			if err := m.transport.Unsubscribe(rec.topic); err != nil && m.logger != nil {
				m.logger.Warnw("unsubscribe failed during close", "topic", rec.topic, "error", err)
			}
			rec.status.Subscribed = false
			rec.wantSubscribed = false
			changed = true
		}
	}
	onStatus := m.onStatus
	m.mu.Unlock()

	if changed {
		m.statusVersion.Inc()
		if onStatus != nil {
			onStatus()
		}
	}
}

// SetOnStatusChange installs an optional callback fired alongside the status
// version counter. It runs outside the manager lock, so the callback may
// call back into the manager.
func (m *Manager) SetOnStatusChange(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatus = f
}

// SetOnPayload installs an optional callback fired after a valid,
// non-duplicate payload is queued for a component. It runs outside the
// manager lock, so the callback may call back into the manager.
func (m *Manager) SetOnPayload(f func(componentID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPayload = f
}

// StatusVersion returns the reactive status counter. It increases whenever
// any component's status changed since it was last observed.
func (m *Manager) StatusVersion() int64 {
	return m.statusVersion.Load()
}

// Subscribe ensures the component has exactly one active subscription for
// (topic, queueSize). Re-issuing with identical arguments while subscribed
// is a no-op; any change tears down and recreates the underlying
// subscription. The return reports whether the subscription is active.
func (m *Manager) Subscribe(componentID string, componentType ComponentType, topic string, queueSize int) bool {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[componentID]
	if ok && rec.status.Subscribed && rec.topic == topic && rec.queueSize == queueSize {
		return true
	}
	if ok && rec.status.Subscribed {
		if err := m.transport.Unsubscribe(rec.topic); err != nil && m.logger != nil {
			m.logger.Warnw("unsubscribe failed", "topic", rec.topic, "error", err)
		}
		rec.status.Subscribed = false
	}
	if !ok {
		rec = &record{componentID: componentID}
		m.records[componentID] = rec
	}
	rec.componentType = componentType
	rec.topic = topic
	rec.queueSize = queueSize
	rec.queue = newMessageQueue(queueSize)
	rec.hasFingerprint = false
	rec.wantSubscribed = true

	m.subscribeLocked(rec)
	m.transitionLocked()
	return rec.status.Subscribed
}

// subscribeLocked attempts the transport subscription and records the
// outcome on the status. Callers hold m.mu.
func (m *Manager) subscribeLocked(rec *record) {
	if rec.topic == "" || rec.topic == topicPlaceholder {
		rec.status.Error = ErrEmptyTopic.Error()
		// Not retryable until the caller supplies a topic.
		rec.wantSubscribed = false
		return
	}
	wireType, ok := rec.componentType.WireType()
	if !ok {
		rec.status.Error = ErrUnknownComponentType.Error()
		rec.wantSubscribed = false
		return
	}
	if !m.transport.Connected() {
		rec.status.Error = ErrNotConnected.Error()
		return
	}

	componentID := rec.componentID
	err := m.transport.Subscribe(rec.topic, wireType, rec.queueSize,
		func(env wire.Envelope) { m.handleMessage(componentID, env) },
		func(err error) { m.handleTransportError(componentID, err) },
	)
	if err != nil {
		rec.status.Error = err.Error()
		return
	}
	rec.status.Subscribed = true
	rec.status.Error = ""
	if m.logger != nil {
		m.logger.Debugw("subscribed",
			"component", componentID, "topic", rec.topic, "type", rec.componentType.String())
	}
}

// Unsubscribe releases the component's subscription. Idempotent; the last
// known status survives with Subscribed forced false.
func (m *Manager) Unsubscribe(componentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[componentID]
	if !ok {
		return
	}
	rec.wantSubscribed = false
	if !rec.status.Subscribed {
		return
	}
	if err := m.transport.Unsubscribe(rec.topic); err != nil && m.logger != nil {
		m.logger.Warnw("unsubscribe failed", "topic", rec.topic, "error", err)
	}
	rec.status.Subscribed = false
	m.transitionLocked()
}

// GetLatest returns the most recent valid payload for a component, O(1).
func (m *Manager) GetLatest(componentID string) (wire.Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[componentID]
	if !ok || rec.queue == nil {
		return wire.Envelope{}, false
	}
	return rec.queue.latest()
}

// Status returns the component's subscription status.
func (m *Manager) Status(componentID string) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[componentID]
	if !ok {
		return Status{}, false
	}
	return rec.status, true
}

// QueueLen returns how many payloads a component retains.
func (m *Manager) QueueLen(componentID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[componentID]
	if !ok || rec.queue == nil {
		return 0
	}
	return rec.queue.len()
}

// handleMessage validates, dedups, and enqueues one arriving payload.
// Invalid payloads still count toward MessageCount so liveness stays
// observable, but never reach the queue or flip HasData.
func (m *Manager) handleMessage(componentID string, env wire.Envelope) {
	queued := false
	m.mu.Lock()
	rec, ok := m.records[componentID]
	if !ok || !rec.status.Subscribed {
		m.mu.Unlock()
		return
	}

	firstMessage := rec.status.MessageCount == 0
	rec.status.MessageCount++
	rec.status.LastMessageTime = m.clock.Now()

	if env.Payload == nil || env.Payload.Kind() != rec.componentType.PayloadKind() {
		rec.status.Error = "payload kind does not match component type"
		m.steadyLocked()
	} else if err := env.Payload.Validate(); err != nil {
		rec.status.Error = err.Error()
		m.steadyLocked()
	} else {
		rec.status.Error = ""

		// Cheap content fingerprint: identical consecutive payloads are
		// not reprocessed, protecting the decoders from redundant work.
		fp := env.Payload.Fingerprint()
		if rec.hasFingerprint && fp == rec.lastFingerprint {
			m.steadyLocked()
		} else {
			rec.lastFingerprint = fp
			rec.hasFingerprint = true

			if env.ReceivedAt.IsZero() {
				env.ReceivedAt = rec.status.LastMessageTime
			}
			rec.queue.push(env)
			queued = true

			if !rec.status.HasData || firstMessage {
				rec.status.HasData = true
				m.transitionLocked()
			} else {
				m.steadyLocked()
			}
		}
	}
	onPayload := m.onPayload
	m.mu.Unlock()

	if queued && onPayload != nil {
		onPayload(componentID)
	}
}

func (m *Manager) handleTransportError(componentID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[componentID]
	if !ok {
		return
	}
	rec.status.Subscribed = false
	rec.status.Error = err.Error()
	if m.logger != nil {
		m.logger.Warnw("subscription error", "component", componentID, "error", err)
	}
	m.transitionLocked()
}

// retryFailed reattempts every wanted-but-inactive subscription once the
// transport is connected again.
func (m *Manager) retryFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.transport.Connected() {
		return
	}
	for _, rec := range m.records {
		if rec.wantSubscribed && !rec.status.Subscribed {
			m.subscribeLocked(rec)
			if rec.status.Subscribed {
				m.transitionLocked()
			}
		}
	}
}

// transitionLocked notifies immediately: state transitions must not wait out
// the coalescing window. The callback is dispatched to its own goroutine,
// never invoked under the manager lock.
func (m *Manager) transitionLocked() {
	m.statusVersion.Inc()
	if m.onStatus == nil {
		return
	}
	onStatus := m.onStatus
	m.workers.Add(func(ctx context.Context) {
		if ctx.Err() != nil {
			return
		}
		onStatus()
	})
}

// steadyLocked coalesces steady-state churn into the notify window.
func (m *Manager) steadyLocked() {
	onStatus := m.onStatus
	m.debounced(func() {
		m.statusVersion.Inc()
		if onStatus != nil {
			onStatus()
		}
	})
}
