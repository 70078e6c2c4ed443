package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/autodock/internal/platform"
)

// ErrSubscriptionFailure means the event source rejected a subscription.
var ErrSubscriptionFailure = errors.New("event subscription failed")

// EventSubscriptionManager subscribes to window and workspace events and
// feeds them into a Debouncer.
type EventSubscriptionManager struct {
	source         platform.EventSource
	debouncer      *Debouncer
	onScreenChange func()
	logger         *slog.Logger

	mu     sync.Mutex
	subs   []platform.Subscription
	active []platform.EventKind
}

// NewEventSubscriptionManager wires source to debouncer. onScreenChange, when
// set, runs synchronously for every screen change before the trigger.
func NewEventSubscriptionManager(source platform.EventSource, debouncer *Debouncer, onScreenChange func(), logger *slog.Logger) *EventSubscriptionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventSubscriptionManager{
		source:         source,
		debouncer:      debouncer,
		onScreenChange: onScreenChange,
		logger:         logger,
	}
}

// Start subscribes to every event kind. Rejected kinds are logged and
// skipped; an error is returned only when nothing could be subscribed.
func (m *EventSubscriptionManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.subs) > 0 {
		return nil
	}
	m.debouncer.Resume()

	if m.source == nil {
		return fmt.Errorf("%w: no event source", ErrSubscriptionFailure)
	}

	var failed []platform.EventKind
	for _, kind := range platform.AllEventKinds() {
		sub, err := m.source.Subscribe(kind, m.handle)
		if err != nil {
			m.logger.Warn("event category unavailable",
				"kind", kind,
				"error", fmt.Errorf("%w: %v", ErrSubscriptionFailure, err))
			failed = append(failed, kind)
			continue
		}
		m.subs = append(m.subs, sub)
		m.active = append(m.active, kind)
	}

	if len(m.subs) == 0 {
		return fmt.Errorf("%w: all %d categories rejected", ErrSubscriptionFailure, len(failed))
	}
	m.logger.Debug("subscribed to events", "kinds", len(m.active), "rejected", len(failed))
	return nil
}

func (m *EventSubscriptionManager) handle(ev platform.Event) {
	m.logger.Debug("event received", "kind", ev.Kind, "window", ev.Window)
	if ev.Kind == platform.EventScreen && m.onScreenChange != nil {
		m.onScreenChange()
	}
	m.debouncer.Trigger()
}

// Stop unsubscribes everything and cancels the pending debounce.
func (m *EventSubscriptionManager) Stop() {
	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.active = nil
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	m.debouncer.Stop()
}

// Active returns the subscribed event kinds.
func (m *EventSubscriptionManager) Active() []platform.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]platform.EventKind(nil), m.active...)
}
