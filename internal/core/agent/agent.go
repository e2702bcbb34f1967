package agent

import (
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// Event types published for tree transitions.
const (
	EventNodeEntered = "bt.node.entered"
	EventNodeExited  = "bt.node.exited"
	EventNodeAborted = "bt.node.aborted"
)

var (
	_ bt.Host     = (*Agent)(nil)
	_ bt.Observer = (*Agent)(nil)
)

// Agent hosts one behaviour tree instance. It owns the evaluator and action
// registries the tree consults and a blackboard the built-ins operate on.
//
// Registries may be changed from any goroutine; Step, Start and Abort must be
// called by a single owner.
type Agent struct {
	id     string
	name   string
	logger log.Log
	bb     *Blackboard
	events bus.EventBus

	mu         sync.RWMutex
	evaluators []bt.Evaluator
	actions    []bt.Action

	randSource func() *rand.Rand
	noBuiltins bool
	values     map[string]any

	tree    *bt.Tree
	started bool
	frames  uint64
}

// New creates an agent with a fresh tree instantiated from tmpl.
func New(tmpl *bt.Template, opts ...Option) *Agent {
	a := &Agent{values: make(map[string]any)}
	for _, opt := range opts {
		opt(a)
	}
	if a.id == "" {
		a.id = uuid.NewString()
	}
	if a.name == "" {
		a.name = tmpl.Name()
	}
	if a.logger == nil {
		a.logger = log.Provide()
	}
	a.logger = a.logger.With(log.String("agent", a.name), log.String("agent_id", a.id))
	if a.bb == nil {
		a.bb = NewBlackboard()
	}
	for k, v := range a.values {
		a.bb.Set(k, v)
	}
	a.values = nil
	if !a.noBuiltins {
		a.evaluators = append([]bt.Evaluator{
			NewBlackboardPredicates(a.bb),
			NewExprEvaluator(a.bb, a.logger),
		}, a.evaluators...)
		a.actions = append([]bt.Action{NewBlackboardActions(a.bb, a.logger)}, a.actions...)
	}

	treeOpts := []bt.TreeOption{bt.WithID(a.id), bt.WithLogger(a.logger)}
	if a.events != nil {
		treeOpts = append(treeOpts, bt.WithObserver(a))
	}
	if a.randSource != nil {
		treeOpts = append(treeOpts, bt.WithRandSource(a.randSource))
	}
	a.tree = tmpl.Instantiate(treeOpts...)
	return a
}

func (a *Agent) ID() string { return a.id }

func (a *Agent) Name() string { return a.name }

func (a *Agent) Tree() *bt.Tree { return a.tree }

func (a *Agent) Blackboard() *Blackboard { return a.bb }

// Frames returns the number of completed Steps.
func (a *Agent) Frames() uint64 { return a.frames }

// Evaluators returns a snapshot in registration order.
func (a *Agent) Evaluators() []bt.Evaluator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]bt.Evaluator(nil), a.evaluators...)
}

// Actions returns a snapshot in registration order.
func (a *Agent) Actions() []bt.Action {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]bt.Action(nil), a.actions...)
}

func (a *Agent) AddEvaluator(e bt.Evaluator) {
	a.mu.Lock()
	a.evaluators = append(a.evaluators, e)
	a.mu.Unlock()
}

func (a *Agent) AddAction(act bt.Action) {
	a.mu.Lock()
	a.actions = append(a.actions, act)
	a.mu.Unlock()
}

// Start binds the tree to this agent. It is idempotent.
func (a *Agent) Start() error {
	if a.started {
		return nil
	}
	if err := a.tree.Bind(a); err != nil {
		return err
	}
	a.started = true
	a.logger.Debug("agent started", log.Int("nodes", a.tree.Template().Len()))
	return nil
}

// Step ticks the tree once, starting the agent first if needed.
func (a *Agent) Step() bt.Status {
	if !a.started {
		if err := a.Start(); err != nil {
			a.logger.Error("agent start failed", log.Error(err))
			return bt.StatusFailure
		}
	}
	status := a.tree.Tick()
	a.frames++
	return status
}

func (a *Agent) Abort() {
	a.tree.Abort()
	a.logger.Debug("agent aborted", log.Uint64("frames", a.frames))
}

// OnTransition forwards tree transitions to the event bus.
func (a *Agent) OnTransition(tr bt.Transition) {
	if a.events == nil {
		return
	}
	var typ string
	switch tr.Event {
	case bt.EventEntered:
		typ = EventNodeEntered
	case bt.EventExited:
		typ = EventNodeExited
	case bt.EventAborted:
		typ = EventNodeAborted
	default:
		return
	}
	meta := map[string]any{
		"agent": a.name,
		"node":  tr.Name,
		"kind":  tr.Kind.String(),
		"frame": a.frames,
	}
	if err := a.events.Publish(bus.NewEvent(typ, a.id, tr, meta)); err != nil {
		a.logger.Warn("transition handler failed", log.String("event", typ), log.Error(err))
	}
}
