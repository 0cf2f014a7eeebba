// Package notify broadcasts preference changes to interested observers.
//
// Observers subscribe either to every change or to a single key. Delivery
// is synchronous by default; WithAsync moves delivery onto a background
// goroutine so writers never wait on slow observers.
package notify

import (
	"sort"
	"sync"
)

// ChangeType represents the type of preference change.
type ChangeType int

const (
	// ChangeSet indicates a single key was set to a new value.
	ChangeSet ChangeType = iota

	// ChangeReload indicates every key may have changed, typically
	// because the backing file was rewritten.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a preference change event.
type Change struct {
	// Key names the changed preference. Empty for reload events.
	Key string

	Type ChangeType

	OldValue any
	NewValue any

	// Source identifies where the change came from ("user", "file", ...).
	Source string
}

// Observer is called when a change is delivered.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	id  uint64
	key string // empty for global observers
	fn  Observer
}

// Notifier manages change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	observers map[uint64]entry
	nextID    uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous delivery with the given queue size.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]entry),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}
	return n
}

// Subscribe registers an observer for every change.
func (n *Notifier) Subscribe(fn Observer) *Subscription {
	return n.add("", fn)
}

// SubscribeKey registers an observer for changes to key.
// Key observers also receive reload events.
func (n *Notifier) SubscribeKey(key string, fn Observer) *Subscription {
	return n.add(key, fn)
}

func (n *Notifier) add(key string, fn Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = entry{id: id, key: key, fn: fn}

	return &Subscription{id: id, notifier: n}
}

// Notify delivers a change to all matching observers.
// Changes sent after Close are dropped.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}

	n.deliver(change)
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(key string, oldValue, newValue any, source string) {
	n.Notify(Change{
		Key:      key,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   source,
	})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Close stops delivery. Queued async changes are delivered before Close
// returns. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// deliver calls matching observers in subscription order, outside the lock.
func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	matched := make([]entry, 0, len(n.observers))
	for _, e := range n.observers {
		if e.key == "" || change.Type == ChangeReload || e.key == change.Key {
			matched = append(matched, e)
		}
	}
	n.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })

	for _, e := range matched {
		e.fn(change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}
