package bt

import (
	"fmt"
	"sort"
)

type draft struct {
	spec     nodeSpec
	child    NodeID
	children []NodeID
}

// Builder assembles a tree definition. It is the only way to change tree
// structure; Build snapshots it into an immutable Template.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	name   string
	root   NodeID
	drafts map[NodeID]*draft
	order  []NodeID
	parent map[NodeID]NodeID
}

// NewBuilder returns a builder holding a single Root node.
func NewBuilder(name string) *Builder {
	b := &Builder{
		name:   name,
		drafts: make(map[NodeID]*draft),
		parent: make(map[NodeID]NodeID),
	}
	id := newNodeID()
	b.insert(&draft{spec: nodeSpec{id: id, kind: KindRoot, name: "root", child: noChild}})
	b.root = id
	return b
}

func (b *Builder) Name() string { return b.name }

func (b *Builder) Root() NodeID { return b.root }

// NodeOption configures a node at creation time.
type NodeOption func(*draft) error

func WithNodeID(id NodeID) NodeOption {
	return func(d *draft) error {
		if id == "" {
			return fmt.Errorf("%w: empty id", ErrUnknownNode)
		}
		d.spec.id = id
		return nil
	}
}

func WithName(name string) NodeOption {
	return func(d *draft) error {
		d.spec.name = name
		return nil
	}
}

func WithDescription(description string) NodeOption {
	return func(d *draft) error {
		d.spec.description = description
		return nil
	}
}

func WithPriority(priority int) NodeOption {
	return func(d *draft) error {
		d.spec.priority = priority
		return nil
	}
}

func WithPosition(x, y float64) NodeOption {
	return func(d *draft) error {
		d.spec.position = Position{X: x, Y: y}
		return nil
	}
}

func WithAbort(c Condition) NodeOption {
	return func(d *draft) error {
		return d.setAbort(c)
	}
}

func WithSelection(s Selection) NodeOption {
	return func(d *draft) error {
		return d.setSelection(s)
	}
}

func WithEnter(actions ...ActionInvocation) NodeOption {
	return func(d *draft) error {
		return d.setActions(&d.spec.enter, actions)
	}
}

func WithTick(actions ...ActionInvocation) NodeOption {
	return func(d *draft) error {
		return d.setActions(&d.spec.tick, actions)
	}
}

func WithExit(actions ...ActionInvocation) NodeOption {
	return func(d *draft) error {
		return d.setActions(&d.spec.exit, actions)
	}
}

func WithStatus(status Status, when Condition) NodeOption {
	return func(d *draft) error {
		if d.spec.kind != KindAction {
			return kindMismatch(d, "status conditions")
		}
		d.spec.statuses = append(d.spec.statuses, StatusCondition{Status: status, Condition: when.Clone()})
		return nil
	}
}

// CreateNode adds a detached node. Only one Root exists per builder, so
// creating another returns ErrMultipleRoots.
func (b *Builder) CreateNode(kind Kind, opts ...NodeOption) (NodeID, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
	if kind == KindRoot {
		return "", ErrMultipleRoots
	}
	d := &draft{spec: nodeSpec{kind: kind, name: kind.String(), child: noChild}}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return "", err
		}
	}
	if d.spec.id == "" {
		d.spec.id = newNodeID()
	}
	if _, exists := b.drafts[d.spec.id]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, d.spec.id)
	}
	b.insert(d)
	return d.spec.id, nil
}

// MustCreateNode is CreateNode for static trees; it panics on error.
func (b *Builder) MustCreateNode(kind Kind, opts ...NodeOption) NodeID {
	id, err := b.CreateNode(kind, opts...)
	if err != nil {
		panic(err)
	}
	return id
}

// RemoveNode deletes a node, detaching it from its parent. Its children stay
// in the builder without a parent.
func (b *Builder) RemoveNode(id NodeID) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	if id == b.root {
		return fmt.Errorf("%w: root cannot be removed", ErrKindMismatch)
	}
	if p, ok := b.parent[id]; ok {
		b.detach(p, id)
	}
	if d.child != "" {
		delete(b.parent, d.child)
	}
	for _, c := range d.children {
		delete(b.parent, c)
	}
	delete(b.drafts, id)
	for i, o := range b.order {
		if o == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddChild appends child to a composite.
func (b *Builder) AddChild(parent, child NodeID) error {
	p, err := b.get(parent)
	if err != nil {
		return err
	}
	if !p.spec.kind.IsComposite() {
		return kindMismatch(p, "AddChild")
	}
	if err = b.checkEdge(parent, child); err != nil {
		return err
	}
	p.children = append(p.children, child)
	b.parent[child] = parent
	return nil
}

func (b *Builder) RemoveChild(parent, child NodeID) error {
	p, err := b.get(parent)
	if err != nil {
		return err
	}
	if !p.spec.kind.IsComposite() {
		return kindMismatch(p, "RemoveChild")
	}
	if b.parent[child] != parent {
		return fmt.Errorf("%w: %s is not a child of %s", ErrUnknownNode, child, parent)
	}
	b.detach(parent, child)
	return nil
}

// SetChild sets the only child of a decorator, releasing any previous one.
func (b *Builder) SetChild(parent, child NodeID) error {
	p, err := b.get(parent)
	if err != nil {
		return err
	}
	if !p.spec.kind.IsDecorator() {
		return kindMismatch(p, "SetChild")
	}
	if p.child == child {
		return nil
	}
	if err = b.checkEdge(parent, child); err != nil {
		return err
	}
	if p.child != "" {
		delete(b.parent, p.child)
	}
	p.child = child
	b.parent[child] = parent
	return nil
}

func (b *Builder) UnsetChild(parent NodeID) error {
	p, err := b.get(parent)
	if err != nil {
		return err
	}
	if !p.spec.kind.IsDecorator() {
		return kindMismatch(p, "UnsetChild")
	}
	if p.child != "" {
		delete(b.parent, p.child)
		p.child = ""
	}
	return nil
}

func (b *Builder) SetName(id NodeID, name string) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	d.spec.name = name
	return nil
}

func (b *Builder) SetPosition(id NodeID, pos Position) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	d.spec.position = pos
	return nil
}

func (b *Builder) SetPriority(id NodeID, priority int) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	d.spec.priority = priority
	return nil
}

func (b *Builder) SetDescription(id NodeID, description string) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	d.spec.description = description
	return nil
}

func (b *Builder) SetAbortCondition(id NodeID, c Condition) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	return d.setAbort(c)
}

func (b *Builder) SetSelection(id NodeID, s Selection) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	return d.setSelection(s)
}

func (b *Builder) SetEnterActions(id NodeID, actions ...ActionInvocation) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	return d.setActions(&d.spec.enter, actions)
}

func (b *Builder) SetTickActions(id NodeID, actions ...ActionInvocation) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	return d.setActions(&d.spec.tick, actions)
}

func (b *Builder) SetExitActions(id NodeID, actions ...ActionInvocation) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	return d.setActions(&d.spec.exit, actions)
}

// SetStatusConditions replaces the ordered status conditions of an action node.
func (b *Builder) SetStatusConditions(id NodeID, conditions ...StatusCondition) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	if d.spec.kind != KindAction {
		return kindMismatch(d, "status conditions")
	}
	d.spec.statuses = cloneStatusConditions(conditions)
	return nil
}

// SortChildrenByPosition orders a composite's children left to right.
// Children sharing an X coordinate keep their relative order.
func (b *Builder) SortChildrenByPosition(id NodeID) error {
	d, err := b.get(id)
	if err != nil {
		return err
	}
	if !d.spec.kind.IsComposite() {
		return kindMismatch(d, "SortChildrenByPosition")
	}
	sort.SliceStable(d.children, func(i, j int) bool {
		return b.drafts[d.children[i]].spec.position.X < b.drafts[d.children[j]].spec.position.X
	})
	return nil
}

func (b *Builder) Children(id NodeID) ([]NodeID, error) {
	d, err := b.get(id)
	if err != nil {
		return nil, err
	}
	switch {
	case d.spec.kind.IsComposite():
		return append([]NodeID(nil), d.children...), nil
	case d.spec.kind.IsDecorator() && d.child != "":
		return []NodeID{d.child}, nil
	default:
		return nil, nil
	}
}

// Parent returns the owner of id, if any.
func (b *Builder) Parent(id NodeID) (NodeID, bool) {
	p, ok := b.parent[id]
	return p, ok
}

// Nodes returns every node id in creation order, attached or not.
func (b *Builder) Nodes() []NodeID {
	return append([]NodeID(nil), b.order...)
}

// Build validates the structure reachable from the root and snapshots it.
// Detached nodes are left out of the template.
func (b *Builder) Build() (*Template, error) {
	root, ok := b.drafts[b.root]
	if !ok {
		return nil, ErrNoRoot
	}
	if root.child == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingChild, b.root)
	}

	t := &Template{name: b.name, index: make(map[NodeID]int, len(b.drafts))}
	var visit func(id NodeID) (int, error)
	visit = func(id NodeID) (int, error) {
		d, ok := b.drafts[id]
		if !ok {
			return noChild, fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
		if _, seen := t.index[id]; seen {
			return noChild, fmt.Errorf("%w: %s reached twice", ErrCycle, id)
		}
		i := len(t.nodes)
		spec := d.spec.clone()
		spec.child, spec.children = noChild, nil
		t.nodes = append(t.nodes, spec)
		t.index[id] = i

		switch {
		case d.spec.kind.IsDecorator():
			if d.child != "" {
				c, err := visit(d.child)
				if err != nil {
					return noChild, err
				}
				t.nodes[i].child = c
			}
		case d.spec.kind.IsComposite():
			children := make([]int, 0, len(d.children))
			for _, cid := range d.children {
				c, err := visit(cid)
				if err != nil {
					return noChild, err
				}
				children = append(children, c)
			}
			t.nodes[i].children = children
		}
		return i, nil
	}
	if _, err := visit(b.root); err != nil {
		return nil, err
	}
	return t, nil
}

func (b *Builder) insert(d *draft) {
	b.drafts[d.spec.id] = d
	b.order = append(b.order, d.spec.id)
}

func (b *Builder) get(id NodeID) (*draft, error) {
	d, ok := b.drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return d, nil
}

// checkEdge validates parent -> child before it is added.
func (b *Builder) checkEdge(parent, child NodeID) error {
	if _, err := b.get(child); err != nil {
		return err
	}
	if child == b.root {
		return ErrRootAsChild
	}
	if owner, ok := b.parent[child]; ok {
		return fmt.Errorf("%w: %s is owned by %s", ErrChildOwned, child, owner)
	}
	for cur, ok := parent, true; ok; cur, ok = b.parent[cur] {
		if cur == child {
			return fmt.Errorf("%w: %s is an ancestor of %s", ErrCycle, child, parent)
		}
	}
	return nil
}

func (b *Builder) detach(parent, child NodeID) {
	delete(b.parent, child)
	p, ok := b.drafts[parent]
	if !ok {
		return
	}
	if p.child == child {
		p.child = ""
	}
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
}

func (d *draft) setAbort(c Condition) error {
	if d.spec.kind == KindAction {
		return kindMismatch(d, "abort condition")
	}
	d.spec.abort = c.Clone()
	return nil
}

func (d *draft) setSelection(s Selection) error {
	if d.spec.kind != KindSelector {
		return kindMismatch(d, "selection")
	}
	if s > SelectRandom {
		return fmt.Errorf("%w: %d", ErrUnknownSelection, uint8(s))
	}
	d.spec.selection = s
	return nil
}

func (d *draft) setActions(dst *[]ActionInvocation, actions []ActionInvocation) error {
	if d.spec.kind != KindAction {
		return kindMismatch(d, "actions")
	}
	*dst = cloneInvocations(actions)
	return nil
}

func kindMismatch(d *draft, op string) error {
	return fmt.Errorf("%w: %s on %s node", ErrKindMismatch, op, d.spec.kind)
}
