package bt

import (
	"math/rand/v2"
	"reflect"
	"sort"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// node is the per-instance runtime state of one template node.
type node struct {
	status  Status
	started bool
	cursor  int
	// current child order of a composite; selectors reorder it on entry
	order []int
	// a missing decorator child has been reported
	warned bool
}

// Tree is a runtime instance of a Template. It is ticked by a single owner:
// no method is safe for concurrent use.
type Tree struct {
	id    string
	tmpl  *Template
	nodes []node
	host  Host

	logger     log.Log
	observer   Observer
	randSource func() *rand.Rand

	unboundWarned bool
}

func (t *Tree) ID() string { return t.id }

func (t *Tree) Name() string { return t.tmpl.name }

func (t *Tree) Template() *Template { return t.tmpl }

// Bind attaches the host whose evaluators and actions the tree uses. Binding
// the same host again is a no-op; hosts that cannot be compared with == are
// never the same, so a second Bind with one fails.
func (t *Tree) Bind(h Host) error {
	if h == nil {
		return ErrNilHost
	}
	if t.host != nil {
		if sameHost(t.host, h) {
			return nil
		}
		return ErrAlreadyBound
	}
	t.host = h
	return nil
}

func (t *Tree) Bound() bool { return t.host != nil }

func sameHost(a, b Host) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// Tick runs one frame from the root and returns the root's status.
// An unbound tree fails without touching any node.
func (t *Tree) Tick() Status {
	if t.host == nil {
		if !t.unboundWarned {
			t.logger.Warn("tick on unbound tree")
			t.unboundWarned = true
		}
		return StatusFailure
	}
	return t.tick(t.host, 0)
}

// Abort interrupts every node: each one becomes Failure and not started.
// Exit actions do not run.
func (t *Tree) Abort() {
	t.abort(0)
}

// Status returns the root status from the last tick.
func (t *Tree) Status() Status {
	return t.nodes[0].status
}

func (t *Tree) NodeStatus(id NodeID) (Status, bool) {
	i, ok := t.tmpl.index[id]
	if !ok {
		return StatusRunning, false
	}
	return t.nodes[i].status, true
}

// Started reports whether id is between entry and its next terminal exit.
func (t *Tree) Started(id NodeID) bool {
	i, ok := t.tmpl.index[id]
	return ok && t.nodes[i].started
}

func (t *Tree) Nodes() []NodeID {
	return t.tmpl.Nodes()
}

func (t *Tree) Node(id NodeID) (NodeInfo, bool) {
	return t.tmpl.Node(id)
}

// ChildOrder returns the children of a composite in their current runtime
// order, which selectors may have changed.
func (t *Tree) ChildOrder(id NodeID) []NodeID {
	i, ok := t.tmpl.index[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, len(t.nodes[i].order))
	for j, c := range t.nodes[i].order {
		out[j] = t.tmpl.nodes[c].id
	}
	return out
}

type NodeState struct {
	ID      NodeID
	Name    string
	Kind    Kind
	Depth   int
	Status  Status
	Started bool
}

// Walk visits nodes in pre-order: composites before their children in their
// current runtime order (see ChildOrder), decorators before their child.
// Returning false stops the walk.
func (t *Tree) Walk(fn func(NodeState) bool) {
	t.walk(0, 0, fn)
}

func (t *Tree) walk(i, depth int, fn func(NodeState) bool) bool {
	spec := &t.tmpl.nodes[i]
	n := &t.nodes[i]
	if !fn(NodeState{ID: spec.id, Name: spec.name, Kind: spec.kind, Depth: depth, Status: n.status, Started: n.started}) {
		return false
	}
	switch spec.kind {
	case KindRoot, KindLoop:
		if spec.child != noChild {
			return t.walk(spec.child, depth+1, fn)
		}
	case KindSequence, KindSelector:
		for _, c := range n.order {
			if !t.walk(c, depth+1, fn) {
				return false
			}
		}
	case KindAction:
	}
	return true
}

func (t *Tree) tick(h Host, i int) Status {
	spec := &t.tmpl.nodes[i]
	n := &t.nodes[i]

	if spec.kind != KindAction && !spec.abort.IsEmpty() && spec.abort.Evaluate(h.Evaluators()) {
		t.abort(i)
		return StatusFailure
	}

	if !n.started {
		t.onEnter(h, i)
		n.started = true
		t.emit(i, EventEntered, StatusRunning)
	}

	status := t.onTick(h, i)

	if status.IsTerminal() {
		t.onExit(h, i)
		n.started = false
		t.emit(i, EventExited, status)
	}
	n.status = status
	return status
}

// abort walks pre-order so a parent is marked before its descendants.
func (t *Tree) abort(i int) {
	spec := &t.tmpl.nodes[i]
	n := &t.nodes[i]

	wasStarted := n.started
	n.started = false
	n.status = StatusFailure
	if wasStarted {
		t.emit(i, EventAborted, StatusFailure)
	}

	switch spec.kind {
	case KindRoot, KindLoop:
		if spec.child != noChild {
			t.abort(spec.child)
		}
	case KindSequence, KindSelector:
		for _, c := range n.order {
			t.abort(c)
		}
	case KindAction:
	}
}

func (t *Tree) onEnter(h Host, i int) {
	spec := &t.tmpl.nodes[i]
	n := &t.nodes[i]

	switch spec.kind {
	case KindRoot, KindLoop:
	case KindSequence:
		n.cursor = 0
	case KindSelector:
		n.cursor = 0
		t.applySelection(spec.selection, n.order)
	case KindAction:
		dispatch(h, spec.enter)
	}
}

func (t *Tree) onTick(h Host, i int) Status {
	spec := &t.tmpl.nodes[i]
	n := &t.nodes[i]

	switch spec.kind {
	case KindRoot:
		if spec.child == noChild {
			return t.missingChild(i)
		}
		return t.tick(h, spec.child)

	case KindLoop:
		if spec.child == noChild {
			return t.missingChild(i)
		}
		t.tick(h, spec.child)
		return StatusRunning

	case KindSequence:
		if len(n.order) == 0 {
			return StatusSuccess
		}
		switch t.tick(h, n.order[n.cursor]) {
		case StatusRunning:
			return StatusRunning
		case StatusFailure:
			return StatusFailure
		case StatusSuccess:
			n.cursor++
		}
		if n.cursor >= len(n.order) {
			return StatusSuccess
		}
		return StatusRunning

	case KindSelector:
		if len(n.order) == 0 {
			return StatusFailure
		}
		switch t.tick(h, n.order[n.cursor]) {
		case StatusRunning:
			return StatusRunning
		case StatusSuccess:
			return StatusSuccess
		case StatusFailure:
			n.cursor++
		}
		if n.cursor >= len(n.order) {
			return StatusFailure
		}
		return StatusRunning

	case KindAction:
		dispatch(h, spec.tick)
		if len(spec.statuses) == 0 {
			return StatusRunning
		}
		evals := h.Evaluators()
		for _, sc := range spec.statuses {
			if sc.Condition.Evaluate(evals) {
				return sc.Status
			}
		}
		return StatusRunning

	default:
		return StatusFailure
	}
}

func (t *Tree) onExit(h Host, i int) {
	spec := &t.tmpl.nodes[i]

	switch spec.kind {
	case KindRoot, KindLoop, KindSequence, KindSelector:
	case KindAction:
		dispatch(h, spec.exit)
	}
}

func (t *Tree) missingChild(i int) Status {
	n := &t.nodes[i]
	if !n.warned {
		spec := &t.tmpl.nodes[i]
		t.logger.Warn("decorator has no child",
			log.String("node_id", string(spec.id)),
			log.String("node", spec.name),
			log.Stringer("kind", spec.kind),
		)
		n.warned = true
	}
	return StatusFailure
}

func (t *Tree) applySelection(s Selection, order []int) {
	switch s {
	case SelectFirstToBeSuccessful:
	case SelectByPriority:
		sort.SliceStable(order, func(a, b int) bool {
			return t.tmpl.nodes[order[a]].priority > t.tmpl.nodes[order[b]].priority
		})
	case SelectRandom:
		shuffle(t.randSource(), order)
	}
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(r *rand.Rand, order []int) {
	for i := len(order) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
}

// dispatch runs every invocation on every action collaborator, collaborators
// in host order first.
func dispatch(h Host, invocations []ActionInvocation) {
	if len(invocations) == 0 {
		return
	}
	for _, a := range h.Actions() {
		for _, inv := range invocations {
			a.DoAction(inv.Action, inv.Params)
		}
	}
}

func (t *Tree) emit(i int, ev Event, status Status) {
	if t.observer == nil {
		return
	}
	spec := &t.tmpl.nodes[i]
	t.observer.OnTransition(Transition{
		TreeID: t.id,
		NodeID: spec.id,
		Name:   spec.name,
		Kind:   spec.kind,
		Event:  ev,
		Status: status,
	})
}
