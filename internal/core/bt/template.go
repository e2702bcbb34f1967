package bt

import (
	"github.com/google/uuid"
)

const noChild = -1

// nodeSpec is the immutable definition of one node inside a Template.
type nodeSpec struct {
	id          NodeID
	kind        Kind
	name        string
	description string
	priority    int
	position    Position

	// composites and decorators
	abort Condition
	// selectors
	selection Selection
	// decorators: index of the child or noChild
	child int
	// composites: indices in list order
	children []int

	// actions
	enter    []ActionInvocation
	tick     []ActionInvocation
	exit     []ActionInvocation
	statuses []StatusCondition
}

// NodeInfo is a read-only copy of a node definition.
type NodeInfo struct {
	ID          NodeID
	Kind        Kind
	Name        string
	Description string
	Priority    int
	Position    Position
	Selection   Selection
	Abort       Condition
	Child       NodeID
	Children    []NodeID
	Enter       []ActionInvocation
	Tick        []ActionInvocation
	Exit        []ActionInvocation
	Statuses    []StatusCondition
}

// Template is an immutable tree definition. Any number of independent Trees
// can be instantiated from one Template and run concurrently.
type Template struct {
	name  string
	nodes []nodeSpec
	index map[NodeID]int
}

func (t *Template) Name() string { return t.name }

func (t *Template) Len() int { return len(t.nodes) }

func (t *Template) Root() NodeID { return t.nodes[0].id }

// Nodes returns node ids in pre-order.
func (t *Template) Nodes() []NodeID {
	out := make([]NodeID, len(t.nodes))
	for i := range t.nodes {
		out[i] = t.nodes[i].id
	}
	return out
}

func (t *Template) Node(id NodeID) (NodeInfo, bool) {
	i, ok := t.index[id]
	if !ok {
		return NodeInfo{}, false
	}
	return t.info(i), true
}

// Instantiate creates a runtime Tree with fresh state. The tree shares the
// template's definitions but owns its status, cursors and child order.
func (t *Template) Instantiate(opts ...TreeOption) *Tree {
	tree := &Tree{
		tmpl:  t,
		nodes: make([]node, len(t.nodes)),
	}
	for i := range t.nodes {
		spec := &t.nodes[i]
		if spec.kind.IsComposite() {
			tree.nodes[i].order = append([]int(nil), spec.children...)
		}
	}
	for _, opt := range opts {
		opt(tree)
	}
	tree.applyDefaults()
	return tree
}

// Edit returns a Builder seeded with a copy of this template, keeping node ids.
func (t *Template) Edit() *Builder {
	b := &Builder{
		name:   t.name,
		root:   t.nodes[0].id,
		drafts: make(map[NodeID]*draft, len(t.nodes)),
		parent: make(map[NodeID]NodeID, len(t.nodes)),
	}
	for i := range t.nodes {
		spec := t.nodes[i].clone()
		d := &draft{spec: spec}
		switch {
		case spec.kind.IsDecorator():
			if spec.child != noChild {
				d.child = t.nodes[spec.child].id
				b.parent[d.child] = spec.id
			}
		case spec.kind.IsComposite():
			for _, c := range spec.children {
				cid := t.nodes[c].id
				d.children = append(d.children, cid)
				b.parent[cid] = spec.id
			}
		}
		d.spec.child, d.spec.children = noChild, nil
		b.drafts[spec.id] = d
		b.order = append(b.order, spec.id)
	}
	return b
}

func (t *Template) info(i int) NodeInfo {
	spec := &t.nodes[i]
	info := NodeInfo{
		ID:          spec.id,
		Kind:        spec.kind,
		Name:        spec.name,
		Description: spec.description,
		Priority:    spec.priority,
		Position:    spec.position,
		Selection:   spec.selection,
		Abort:       spec.abort.Clone(),
		Enter:       cloneInvocations(spec.enter),
		Tick:        cloneInvocations(spec.tick),
		Exit:        cloneInvocations(spec.exit),
		Statuses:    cloneStatusConditions(spec.statuses),
	}
	if spec.child != noChild {
		info.Child = t.nodes[spec.child].id
	}
	for _, c := range spec.children {
		info.Children = append(info.Children, t.nodes[c].id)
	}
	return info
}

func (s nodeSpec) clone() nodeSpec {
	out := s
	out.abort = s.abort.Clone()
	out.children = append([]int(nil), s.children...)
	out.enter = cloneInvocations(s.enter)
	out.tick = cloneInvocations(s.tick)
	out.exit = cloneInvocations(s.exit)
	out.statuses = cloneStatusConditions(s.statuses)
	return out
}

func cloneInvocations(in []ActionInvocation) []ActionInvocation {
	if in == nil {
		return nil
	}
	out := make([]ActionInvocation, len(in))
	for i, a := range in {
		out[i] = ActionInvocation{Action: a.Action, Params: cloneStrings(a.Params)}
	}
	return out
}

func cloneStatusConditions(in []StatusCondition) []StatusCondition {
	if in == nil {
		return nil
	}
	out := make([]StatusCondition, len(in))
	for i, sc := range in {
		out[i] = StatusCondition{Status: sc.Status, Condition: sc.Condition.Clone()}
	}
	return out
}

func newNodeID() NodeID {
	return NodeID(uuid.NewString())
}
