package platform

import "sync"

// EventKind names a category of window-system notification.
type EventKind string

const (
	EventWindowCreated   EventKind = "window-created"
	EventWindowDestroyed EventKind = "window-destroyed"
	EventWindowMoved     EventKind = "window-moved"
	EventWindowFocused   EventKind = "window-focused"
	EventWindowMinimized EventKind = "window-minimized"
	EventWorkspace       EventKind = "workspace-changed"
	EventScreen          EventKind = "screen-changed"
)

// AllEventKinds lists every category in subscription order.
func AllEventKinds() []EventKind {
	return []EventKind{
		EventWindowCreated,
		EventWindowDestroyed,
		EventWindowMoved,
		EventWindowFocused,
		EventWindowMinimized,
		EventWorkspace,
		EventScreen,
	}
}

// Event is a single notification delivered to a subscriber.
type Event struct {
	Kind   EventKind
	Window WindowID
}

// Subscription is returned by EventSource.Subscribe.
type Subscription interface {
	Unsubscribe()
}

// EventSource delivers window and workspace notifications.
type EventSource interface {
	Subscribe(kind EventKind, handler func(Event)) (Subscription, error)
}

// Dispatcher fans events out to subscribers. Window-system event sources
// embed it and call Dispatch from their event loop.
type Dispatcher struct {
	mu       sync.Mutex
	nextID   int
	handlers map[EventKind]map[int]func(Event)
}

// Subscribe registers handler for kind.
func (d *Dispatcher) Subscribe(kind EventKind, handler func(Event)) (Subscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handlers == nil {
		d.handlers = make(map[EventKind]map[int]func(Event))
	}
	if d.handlers[kind] == nil {
		d.handlers[kind] = make(map[int]func(Event))
	}
	d.nextID++
	id := d.nextID
	d.handlers[kind][id] = handler

	return &dispatcherSub{d: d, kind: kind, id: id}, nil
}

// Dispatch delivers ev to every handler subscribed to its kind.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.Lock()
	handlers := make([]func(Event), 0, len(d.handlers[ev.Kind]))
	for _, h := range d.handlers[ev.Kind] {
		handlers = append(handlers, h)
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

type dispatcherSub struct {
	d    *Dispatcher
	kind EventKind
	id   int
	once sync.Once
}

func (s *dispatcherSub) Unsubscribe() {
	s.once.Do(func() {
		s.d.mu.Lock()
		defer s.d.mu.Unlock()
		delete(s.d.handlers[s.kind], s.id)
	})
}
