// Package pointer is a document-level registry of pointer listeners.
//
// Widgets that need to react to presses anywhere on screen (for example to
// close a dropdown when the user clicks elsewhere) subscribe once when they
// are mounted and close the subscription when they are torn down. The host
// feeds every mouse event to Dispatch, which fans it out to all listeners
// and turns their reactions into Bubble Tea messages.
package pointer

import (
	"log/slog"
	"sort"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Point is a terminal cell coordinate.
type Point struct {
	X, Y int
}

// Rect is a rectangle of terminal cells. The zero Rect contains nothing.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Local translates p into r's coordinate space.
func (r Rect) Local(p Point) Point {
	return Point{X: p.X - r.X, Y: p.Y - r.Y}
}

// Kind classifies an Event.
type Kind int

const (
	KindPress Kind = iota
	KindRelease
	KindMotion
	KindWheel
)

// Event is a pointer interaction in absolute screen coordinates.
type Event struct {
	Point
	Kind Kind
}

// IsPress reports whether e is a button press.
func (e Event) IsPress() bool { return e.Kind == KindPress }

// FromMouse converts a Bubble Tea mouse message.
func FromMouse(msg tea.MouseMsg) Event {
	ev := Event{Point: Point{X: msg.X, Y: msg.Y}}
	switch {
	case tea.MouseEvent(msg).IsWheel():
		ev.Kind = KindWheel
	case msg.Action == tea.MouseActionPress:
		ev.Kind = KindPress
	case msg.Action == tea.MouseActionRelease:
		ev.Kind = KindRelease
	default:
		ev.Kind = KindMotion
	}
	return ev
}

// Handler reacts to an event. A nil return means no reaction.
type Handler func(Event) tea.Msg

// Hub fans pointer events out to subscribers. It is safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	next   uint64
	subs   map[uint64]Handler
	logger *slog.Logger
}

// NewHub creates an empty hub. A nil logger discards hub logs.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		subs:   make(map[uint64]Handler),
		logger: logger,
	}
}

// Subscribe registers fn until the returned Subscription is closed.
func (h *Hub) Subscribe(fn Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	h.subs[id] = fn
	h.logger.Debug("pointer listener added", "id", id, "listeners", len(h.subs))
	return &Subscription{hub: h, id: id}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dispatch delivers ev to every subscriber in subscription order and
// returns their non-nil reactions as a batch command.
func (h *Hub) Dispatch(ev Event) tea.Cmd {
	h.mu.Lock()
	ids := make([]uint64, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, h.subs[id])
	}
	h.mu.Unlock()

	// Handlers run without the lock so they may unsubscribe.
	var cmds []tea.Cmd
	for _, fn := range handlers {
		if msg := fn(ev); msg != nil {
			cmds = append(cmds, func() tea.Msg { return msg })
		}
	}
	return tea.Batch(cmds...)
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
	h.logger.Debug("pointer listener removed", "id", id, "listeners", len(h.subs))
}

// Subscription is a registered listener. Close may be called any number of
// times; only the first call has an effect.
type Subscription struct {
	hub  *Hub
	id   uint64
	once sync.Once
}

// Close removes the listener from its hub.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.hub.remove(s.id) })
}
