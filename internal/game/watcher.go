package game

import "sync"

// watcher fans a change notification out to every subscriber of a session.
// It stands in for the backing store's change feed: whichever write mutates
// a session's rows pings the watcher, and subscribers re-fetch the composed
// state.
type watcher struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

func newWatcher() *watcher {
	return &watcher{subs: make(map[string]map[int]func())}
}

func (w *watcher) subscribe(code string, fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	group := w.subs[code]
	if group == nil {
		group = make(map[int]func())
		w.subs[code] = group
	}
	id := w.nextID
	w.nextID++
	group[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs[code], id)
		if len(w.subs[code]) == 0 {
			delete(w.subs, code)
		}
	}
}

func (w *watcher) notify(code string) {
	w.mu.Lock()
	fns := make([]func(), 0, len(w.subs[code]))
	for _, fn := range w.subs[code] {
		fns = append(fns, fn)
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
