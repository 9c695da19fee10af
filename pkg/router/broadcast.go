package router

import (
	"sync"
)

// subscription delivers snapshots to one listener in Seq order. A
// snapshot older than one already delivered is dropped; one arriving
// while the listener runs is queued and delivered by the running
// goroutine, keeping only the newest.
type subscription struct {
	fn Listener

	mu         sync.Mutex
	running    bool
	delivered  uint64
	pending    Snapshot
	hasPending bool
}

// Subscribe registers fn and immediately calls it with the current
// snapshot. The returned function unsubscribes; it is safe to call more
// than once. Callers must call it on teardown.
//
// Listeners run on whichever goroutine triggers the broadcast. One
// listener never runs concurrently with itself and never sees an older
// snapshot after a newer one; a broadcast that arrives while it runs
// (including one it triggers itself) is delivered after it returns.
func (r *Router) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	r.mu.Lock()
	r.listeners = append(r.listeners, sub)
	r.mu.Unlock()
	r.observer.ObserveSubscribers(1)

	r.notify(sub, r.Snapshot())

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, existing := range r.listeners {
				if existing == sub {
					r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
					r.observer.ObserveSubscribers(-1)
					return
				}
			}
		})
	}
}

// Snapshot returns the current pathname, search, query and state.
func (r *Router) Snapshot() Snapshot {
	r.snapMu.Lock()
	defer r.snapMu.Unlock()

	r.seq++
	search := r.CurrentSearch()
	return Snapshot{
		Pathname: r.CurrentPathname(),
		Search:   search,
		Query:    decodeQuery(search),
		State:    r.history.State(),
		Seq:      r.seq,
	}
}

// Broadcast notifies every subscriber of the current snapshot. Navigation
// broadcasts on its own; call this after changing location outside the
// router.
func (r *Router) Broadcast() {
	r.broadcast()
}

func (r *Router) broadcast() {
	r.mu.RLock()
	listeners := make([]*subscription, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	snap := r.Snapshot()
	for _, sub := range listeners {
		r.notify(sub, snap)
	}
	r.observer.ObserveBroadcast(len(listeners))
	r.history.Dispatch(ChangeEvent, snap)
}

func (r *Router) notify(sub *subscription, snap Snapshot) {
	sub.mu.Lock()
	if snap.Seq <= sub.delivered || (sub.hasPending && snap.Seq <= sub.pending.Seq) {
		sub.mu.Unlock()
		return
	}
	sub.pending, sub.hasPending = snap, true
	if sub.running {
		sub.mu.Unlock()
		return
	}

	sub.running = true
	for sub.hasPending {
		next := sub.pending
		sub.pending, sub.hasPending = Snapshot{}, false
		sub.delivered = next.Seq
		sub.mu.Unlock()

		r.call(sub, next)

		sub.mu.Lock()
	}
	sub.running = false
	sub.mu.Unlock()
}

func (r *Router) call(sub *subscription, snap Snapshot) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("route listener panicked", "pathname", snap.Pathname, "panic", p)
		}
	}()
	sub.fn(snap)
}

// scheduleBroadcast runs one broadcast later through the scheduler.
// Requests made before it runs collapse into that one broadcast.
func (r *Router) scheduleBroadcast() {
	if !r.pendingBroadcast.CompareAndSwap(false, true) {
		return
	}
	r.schedule(func() {
		r.pendingBroadcast.Store(false)
		r.broadcast()
	})
}
