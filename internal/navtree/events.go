package navtree

import (
	"sync"
	"time"
)

// EventKind names a visible change to the tree.
type EventKind string

const (
	EventReveal EventKind = "reveal" // children of Path shown
	EventHide   EventKind = "hide"   // children of Path hidden
	EventSelect EventKind = "select"
	EventClear  EventKind = "clear"
	EventScroll EventKind = "scroll"
	EventGlow   EventKind = "glow" // highlight of an anchor in the document
)

// Event is published to observers whenever the tree changes.
type Event struct {
	Kind      EventKind     `json:"kind"`
	Path      []int         `json:"path,omitempty"`
	Label     string        `json:"label,omitempty"`
	Link      string        `json:"link,omitempty"`
	Immediate bool          `json:"immediate,omitempty"`
	Offset    int           `json:"offset,omitempty"`
	Anchor    string        `json:"anchor,omitempty"`
	Target    string        `json:"target,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

type observers struct {
	mu   sync.RWMutex
	next int
	fns  map[int]func(Event)
}

func (o *observers) add(fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(Event))
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.fns, id)
		o.mu.Unlock()
	}
}

func (o *observers) publish(events ...Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, ev := range events {
		for _, fn := range o.fns {
			fn(ev)
		}
	}
}
