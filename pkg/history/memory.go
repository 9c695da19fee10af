package history

import (
	"sync"
)

type entry struct {
	loc   Location
	state State
}

// Dispatched is a notification recorded by Memory.Dispatch.
type Dispatched struct {
	Name   string
	Detail any
}

// Memory is an in-process History. It is safe for concurrent use.
// Listeners run synchronously on the goroutine that called Back or
// Forward, after the internal lock is released.
type Memory struct {
	mu        sync.Mutex
	entries   []entry
	index     int
	title     string
	listeners []*listener
	observers []*observer
}

type listener struct{ fn func(Event) }

type observer struct{ fn func(Dispatched) }

// NewMemory creates a history whose single entry is initial (e.g. "/",
// "/docs?tab=api", "/#/team").
func NewMemory(initial string) *Memory {
	loc, err := ParseLocation(initial)
	if err != nil {
		loc = Location{Pathname: "/"}
	}
	return &Memory{
		entries: []entry{{loc: loc}},
	}
}

// Location implements History.
func (m *Memory) Location() Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].loc
}

// State implements History.
func (m *Memory) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].state
}

// Title implements History.
func (m *Memory) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

// SetTitle implements History.
func (m *Memory) SetTitle(title string) {
	m.mu.Lock()
	m.title = title
	m.mu.Unlock()
}

// PushState implements History. Entries after the current one are dropped.
func (m *Memory) PushState(state State, _ string, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc, err := m.entries[m.index].loc.Resolve(url)
	if err != nil {
		return err
	}
	m.entries = append(m.entries[:m.index+1], entry{loc: loc, state: state})
	m.index++
	return nil
}

// ReplaceState implements History.
func (m *Memory) ReplaceState(state State, _ string, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc, err := m.entries[m.index].loc.Resolve(url)
	if err != nil {
		return err
	}
	m.entries[m.index] = entry{loc: loc, state: state}
	return nil
}

// Back implements History. It is a no-op on the first entry.
func (m *Memory) Back() { m.Go(-1) }

// Forward implements History. It is a no-op on the last entry.
func (m *Memory) Forward() { m.Go(1) }

// Go moves delta entries through the stack and emits PopState, followed by
// HashChange when the fragment changed. Out-of-range moves do nothing.
func (m *Memory) Go(delta int) {
	m.mu.Lock()
	next := m.index + delta
	if delta == 0 || next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return
	}
	prevHash := m.entries[m.index].loc.Hash
	m.index = next
	hashChanged := m.entries[next].loc.Hash != prevHash
	listeners := append([]*listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l.fn(PopState)
	}
	if hashChanged {
		for _, l := range listeners {
			l.fn(HashChange)
		}
	}
}

// Len returns the number of entries in the stack.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Listen implements History.
func (m *Memory) Listen(fn func(Event)) func() {
	l := &listener{fn: fn}
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, existing := range m.listeners {
				if existing == l {
					m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Dispatch implements History by handing the notification to every
// observer registered with Observe.
func (m *Memory) Dispatch(name string, detail any) {
	m.mu.Lock()
	observers := append([]*observer(nil), m.observers...)
	m.mu.Unlock()

	d := Dispatched{Name: name, Detail: detail}
	for _, o := range observers {
		o.fn(d)
	}
}

// Observe registers fn for notifications published with Dispatch.
func (m *Memory) Observe(fn func(Dispatched)) (stop func()) {
	o := &observer{fn: fn}
	m.mu.Lock()
	m.observers = append(m.observers, o)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, existing := range m.observers {
			if existing == o {
				m.observers = append(m.observers[:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// HashNavigate simulates the user editing the fragment: a new entry with
// the same path and search is pushed and HashChange is emitted.
func (m *Memory) HashNavigate(hash string) error {
	m.mu.Lock()
	cur := m.entries[m.index].loc
	loc, err := cur.Resolve(hash)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.entries = append(m.entries[:m.index+1], entry{loc: loc})
	m.index++
	changed := loc.Hash != cur.Hash
	listeners := append([]*listener(nil), m.listeners...)
	m.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l.fn(HashChange)
		}
	}
	return nil
}

var _ History = (*Memory)(nil)
