package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/pkg/concurrent"
)

var (
	ErrDuplicateAgent = errors.New("agent: duplicate agent id")
	ErrRunning        = errors.New("agent: manager is already running")
)

// Manager owns a set of agents and drives them concurrently. Each agent is
// only ever stepped by the goroutine Run assigns to it.
type Manager struct {
	logger log.Log
	events bus.EventBus

	mu     sync.RWMutex
	agents map[string]*Agent
	order  []string

	running atomic.Bool
}

func NewManager(logger log.Log, events bus.EventBus) *Manager {
	if logger == nil {
		logger = log.Provide()
	}
	return &Manager{
		logger: logger.Named("agents"),
		events: events,
		agents: make(map[string]*Agent),
	}
}

func (m *Manager) Events() bus.EventBus { return m.events }

func (m *Manager) Add(a *Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.agents[a.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, a.ID())
	}
	m.agents[a.ID()] = a
	m.order = append(m.order, a.ID())
	return nil
}

func (m *Manager) Get(id string) (*Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[id]
	return a, ok
}

func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[id]; !ok {
		return false
	}
	delete(m.agents, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Agents returns the managed agents in insertion order.
func (m *Manager) Agents() []*Agent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Agent, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.agents[id])
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

// Spawn creates count agents from tmpl, named "<template>-<n>", wired to the
// manager's logger and event bus. opts are applied after those defaults.
func (m *Manager) Spawn(tmpl *bt.Template, count int, opts ...Option) ([]*Agent, error) {
	return m.SpawnWith(tmpl, count, func(int) []Option { return opts })
}

// SpawnWith is Spawn with per-agent options, e.g. a distinct random seed for
// each agent.
func (m *Manager) SpawnWith(tmpl *bt.Template, count int, opts func(i int) []Option) ([]*Agent, error) {
	spawned := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		all := []Option{
			WithName(fmt.Sprintf("%s-%d", tmpl.Name(), i)),
			WithLogger(m.logger),
		}
		if m.events != nil {
			all = append(all, WithEvents(m.events))
		}
		if opts != nil {
			all = append(all, opts(i)...)
		}
		a := New(tmpl, all...)
		if err := m.Add(a); err != nil {
			return spawned, err
		}
		spawned = append(spawned, a)
	}
	m.logger.Info("agents spawned", log.String("template", tmpl.Name()), log.Int("count", count))
	return spawned, nil
}

type RunOptions struct {
	// Frames caps the number of steps per agent; zero or less runs until ctx
	// is done.
	Frames int
	// Interval is the pause between frames; zero steps as fast as possible.
	Interval time.Duration
	// StopOnTerminal stops an agent once its tree reports Success or Failure.
	StopOnTerminal bool
	// Workers caps how many agents step at the same time; zero means one
	// goroutine per agent.
	Workers int
}

type Result struct {
	AgentID string
	Name    string
	Status  bt.Status
	Frames  uint64
}

// Run steps every agent until its frame budget is spent, it terminates (with
// StopOnTerminal) or ctx is done. Results are in Agents order. A cancelled
// context is not an error. Only one Run may be active at a time; a concurrent
// call fails with ErrRunning.
func (m *Manager) Run(ctx context.Context, opts RunOptions) ([]Result, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, ErrRunning
	}
	defer m.running.Store(false)

	agents := m.Agents()
	results := make([]Result, len(agents))
	start := time.Now()

	err := concurrent.ForEach(ctx, agents, opts.Workers, func(ctx context.Context, i int, a *Agent) error {
		status, err := m.drive(ctx, a, opts)
		results[i] = Result{AgentID: a.ID(), Name: a.Name(), Status: status, Frames: a.Frames()}
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return results, err
	}

	m.logger.Info("run finished",
		log.Int("agents", len(agents)),
		log.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

func (m *Manager) drive(ctx context.Context, a *Agent, opts RunOptions) (bt.Status, error) {
	if err := a.Start(); err != nil {
		return bt.StatusFailure, fmt.Errorf("start agent %s: %w", a.Name(), err)
	}

	var ticker *time.Ticker
	if opts.Interval > 0 {
		ticker = time.NewTicker(opts.Interval)
		defer ticker.Stop()
	}

	status := a.Tree().Status()
	for frame := 0; opts.Frames <= 0 || frame < opts.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return status, err
		}
		status = a.Step()
		if opts.StopOnTerminal && status.IsTerminal() {
			m.logger.Debug("agent finished",
				log.String("agent", a.Name()),
				log.Stringer("status", status),
				log.Uint64("frames", a.Frames()),
			)
			return status, nil
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return status, ctx.Err()
			case <-ticker.C:
			}
		}
	}
	return status, nil
}
