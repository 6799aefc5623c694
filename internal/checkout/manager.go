package checkout

import (
	"errors"
	"sync"
	"time"

	"github.com/ityouth/xtn-storefront/pkg/logger"
	"github.com/ityouth/xtn-storefront/pkg/metrics"
)

// ManagerOptions wires the workflow dependencies.
type ManagerOptions struct {
	Carts      cartStore
	Orders     orderStore
	API        orderSubmitter
	Renderer   qrRenderer
	Metrics    *metrics.CheckoutMetrics
	Logger     *logger.Logger
	IdemScope  string
	SessionTTL time.Duration
}

type entry struct {
	workflow *Workflow
	lastSeen time.Time
}

// Manager hands out one Workflow per session and expires abandoned ones.
type Manager struct {
	deps *deps
	ttl  time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager builds the checkout manager.
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Carts == nil {
		return nil, errors.New("checkout manager requires a cart store")
	}
	if opts.Orders == nil {
		return nil, errors.New("checkout manager requires an order store")
	}
	if opts.API == nil {
		return nil, errors.New("checkout manager requires an order api client")
	}
	if opts.Renderer == nil {
		return nil, errors.New("checkout manager requires a qr renderer")
	}
	if opts.IdemScope == "" {
		opts.IdemScope = "checkout"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}

	return &Manager{
		deps: &deps{
			carts:     opts.Carts,
			orders:    opts.Orders,
			api:       opts.API,
			renderer:  opts.Renderer,
			metrics:   opts.Metrics,
			logger:    opts.Logger,
			idemScope: opts.IdemScope,
		},
		ttl:     opts.SessionTTL,
		entries: map[string]*entry{},
	}, nil
}

// Workflow returns the session's workflow, creating one on first use.
// Expired entries are swept lazily on access.
func (m *Manager) Workflow(sessionID string) *Workflow {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.entries {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.entries, id)
		}
	}

	e, ok := m.entries[sessionID]
	if !ok {
		e = &entry{workflow: newWorkflow(sessionID, m.deps)}
		m.entries[sessionID] = e
	}
	e.lastSeen = now
	return e.workflow
}

// Reset discards the session's workflow; the next access starts at step 1.
// Called when a completed checkout is left behind.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
}
