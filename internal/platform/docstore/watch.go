package docstore

import (
	"strings"
	"sync"
)

// watchRegistry fans write events out to in-process listeners. A listener
// registered on "chats/room-1" receives events for that document and for any
// path beneath it; a listener on "chats" receives events for the whole
// collection. Delivery is synchronous and best-effort, mirroring how the
// mobile clients consumed realtime database callbacks.
type watchRegistry struct {
	mu      sync.RWMutex
	nextID  int
	entries map[int]watchEntry
}

type watchEntry struct {
	path string
	fn   func(Event)
}

func newWatchRegistry() *watchRegistry {
	return &watchRegistry{entries: make(map[int]watchEntry)}
}

func (w *watchRegistry) add(path string, fn func(Event)) UnsubscribeFunc {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.entries[id] = watchEntry{path: strings.Trim(path, "/"), fn: fn}
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.entries, id)
		w.mu.Unlock()
	}
}

func (w *watchRegistry) notify(ev Event) {
	w.mu.RLock()
	var targets []func(Event)
	for _, e := range w.entries {
		if pathMatches(e.path, ev.Path) {
			targets = append(targets, e.fn)
		}
	}
	w.mu.RUnlock()

	for _, fn := range targets {
		fn(ev)
	}
}

func pathMatches(registered, changed string) bool {
	if registered == changed {
		return true
	}
	return strings.HasPrefix(changed, registered+"/")
}
