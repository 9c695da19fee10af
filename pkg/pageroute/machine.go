package pageroute

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/pagerouter/pkg/content"
	"github.com/vango-dev/pagerouter/pkg/router"
	"github.com/vango-dev/pagerouter/pkg/routepath"
)

// machine is the content-loading state shared by Route and QueryRoute.
//
// Every load captures the generation it started in. A result is applied
// only if the generation is unchanged and the element is still mounted;
// deactivation and unmounting bump the generation so late results are
// dropped.
type machine struct {
	router    *router.Router
	loader    *content.Loader
	target    Target
	logger    *slog.Logger
	src       string
	component content.Content

	mu         sync.Mutex
	status     Status
	generation uint64
	mounted    bool
	renderer   content.Renderer
	rendering  bool
	ctx        context.Context
	cancel     context.CancelFunc
	loads      sync.WaitGroup

	applyMu sync.Mutex
}

func (m *machine) init(r *router.Router, loader *content.Loader, target Target, logger *slog.Logger, src string, component content.Content) {
	if logger == nil {
		logger = r.Logger()
	}
	if loader == nil {
		loader = content.NewLoader(content.WithLogger(logger))
	}
	m.router = r
	m.loader = loader
	m.target = target
	m.logger = logger
	m.src = src
	m.component = component
}

func (m *machine) hasSource() bool {
	return m.src != "" || m.component != nil
}

// Status returns the current loading state.
func (m *machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Wait blocks until loads started so far have been applied or discarded.
// A renderer must not call it.
func (m *machine) Wait() {
	m.loads.Wait()
}

func (m *machine) start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounted = true
	m.ctx, m.cancel = context.WithCancel(context.Background())
}

func (m *machine) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounted = false
	m.generation++
	if m.cancel != nil {
		m.cancel()
	}
	if m.status != Idle {
		m.setStatusLocked(Idle)
		m.clearLocked()
	}
}

// activate runs when the element matches the current location.
func (m *machine) activate(params routepath.Params, snap router.Snapshot) {
	m.mu.Lock()
	if !m.mounted {
		m.mu.Unlock()
		return
	}
	if m.hasSource() && m.status != Loading && m.status != Loaded {
		m.generation++
		gen := m.generation
		ctx := m.ctx
		m.setStatusLocked(Loading)
		m.loads.Add(1)
		m.mu.Unlock()

		go m.load(ctx, gen, params, snap)
		return
	}
	if m.status != Loaded {
		m.setStatusLocked(Loaded)
	}
	m.mu.Unlock()
}

// deactivate runs when the element stops matching.
func (m *machine) deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != Idle {
		m.generation++
		m.setStatusLocked(Idle)
		m.clearLocked()
	}
}

func (m *machine) load(ctx context.Context, gen uint64, params routepath.Params, snap router.Snapshot) {
	defer m.loads.Done()

	var (
		c   content.Content
		err error
	)
	if m.component != nil {
		c = m.component
	} else {
		c, err = m.loader.Load(ctx, m.src)
	}
	if err == nil {
		c, err = content.Resolve(ctx, c, content.Data{
			State:  snap.State,
			Params: params,
			Query:  snap.Query,
		})
	}
	m.apply(gen, c, err)
}

// apply mounts a load result. Rendering runs without mu held so a
// renderer may read the route's Status; applyMu keeps applies in order.
func (m *machine) apply(gen uint64, c content.Content, err error) {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	m.mu.Lock()
	if gen != m.generation || !m.mounted {
		m.mu.Unlock()
		m.logger.Debug("discarding stale route content", "src", m.src)
		return
	}
	if err != nil {
		m.setStatusLocked(LoadingFailed)
		m.mu.Unlock()
		m.logger.Error("content load failed", "src", m.src, "error", err)
		return
	}
	old := m.renderer
	m.renderer = nil
	m.rendering = true
	m.mu.Unlock()

	if old != nil {
		old.Unmount()
	}
	m.target.Clear()
	renderer, err := content.Mount(m.target, c)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendering = false

	if gen != m.generation || !m.mounted {
		m.logger.Debug("discarding stale route content", "src", m.src)
		if renderer != nil {
			renderer.Unmount()
		}
		m.target.Clear()
		return
	}
	if err != nil {
		m.logger.Error("content render failed", "src", m.src, "error", err)
		m.setStatusLocked(LoadingFailed)
		return
	}
	m.renderer = renderer
	m.setStatusLocked(Loaded)
}

func (m *machine) setStatusLocked(s Status) {
	m.status = s
	m.target.SetStatus(s)
}

// clearLocked leaves the target alone while apply is rendering; apply
// clears it once it sees the generation moved.
func (m *machine) clearLocked() {
	if m.rendering {
		return
	}
	if m.renderer != nil {
		m.renderer.Unmount()
		m.renderer = nil
	}
	m.target.Clear()
}
