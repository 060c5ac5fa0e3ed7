// Package theme holds the document-root attributes the field reads its
// theme from, and the persisted light/dark preference.
package theme

import (
	"slices"
	"sync"
)

// Theme names.
const (
	Light = "light"
	Dark  = "dark"
)

// DefaultAttribute is the root attribute carrying the theme name.
const DefaultAttribute = "data-theme"

// Observer is called after a watched attribute changes value.
type Observer func(name, value string)

type subscription struct {
	id    int
	fn    Observer
	attrs []string // empty = all attributes
}

// Root is a set of named attributes with change notification.
// It is safe for concurrent use; observers run on the goroutine that made
// the change, after the lock is released.
type Root struct {
	mu     sync.Mutex
	attrs  map[string]string
	subs   []subscription
	nextID int
}

// NewRoot creates an empty root.
func NewRoot() *Root {
	return &Root{attrs: make(map[string]string)}
}

// Attribute returns the value of name, or "" if unset.
func (r *Root) Attribute(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attrs[name]
}

// SetAttribute sets name to value. Observers watching name are notified
// only when the value actually changes.
func (r *Root) SetAttribute(name, value string) {
	r.mu.Lock()
	old, ok := r.attrs[name]
	if ok && old == value {
		r.mu.Unlock()
		return
	}
	r.attrs[name] = value
	var notify []Observer
	for _, s := range r.subs {
		if len(s.attrs) == 0 || slices.Contains(s.attrs, name) {
			notify = append(notify, s.fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range notify {
		fn(name, value)
	}
}

// Observe registers fn for changes to attrs (all attributes if none are
// given). The returned func removes the observer.
func (r *Root) Observe(fn Observer, attrs ...string) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.subs = append(r.subs, subscription{id: id, fn: fn, attrs: attrs})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.subs = slices.DeleteFunc(r.subs, func(s subscription) bool { return s.id == id })
	}
}
