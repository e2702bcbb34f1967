package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderStructureErrors(t *testing.T) {
	t.Run("single root", func(t *testing.T) {
		b := NewBuilder("t")
		_, err := b.CreateNode(KindRoot)
		assert.ErrorIs(t, err, ErrMultipleRoots)
		assert.ErrorIs(t, b.RemoveNode(b.Root()), ErrKindMismatch)
	})

	t.Run("unknown kind and node", func(t *testing.T) {
		b := NewBuilder("t")
		_, err := b.CreateNode(Kind(42))
		assert.ErrorIs(t, err, ErrUnknownKind)
		assert.ErrorIs(t, b.SetChild(b.Root(), "missing"), ErrUnknownNode)
		assert.ErrorIs(t, b.AddChild("missing", b.Root()), ErrUnknownNode)
	})

	t.Run("duplicate id", func(t *testing.T) {
		b := NewBuilder("t")
		_, err := b.CreateNode(KindAction, WithNodeID("a"))
		require.NoError(t, err)
		_, err = b.CreateNode(KindSequence, WithNodeID("a"))
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		b := NewBuilder("t")
		act := b.MustCreateNode(KindAction)
		seq := b.MustCreateNode(KindSequence)
		loop := b.MustCreateNode(KindLoop)

		assert.ErrorIs(t, b.AddChild(act, seq), ErrKindMismatch)
		assert.ErrorIs(t, b.AddChild(loop, seq), ErrKindMismatch)
		assert.ErrorIs(t, b.SetChild(seq, act), ErrKindMismatch)
		assert.ErrorIs(t, b.SetSelection(seq, SelectRandom), ErrKindMismatch)
		assert.ErrorIs(t, b.SetAbortCondition(act, When(Is("x"))), ErrKindMismatch)
		assert.ErrorIs(t, b.SetTickActions(seq, Invoke("Set")), ErrKindMismatch)
		assert.ErrorIs(t, b.SetStatusConditions(loop), ErrKindMismatch)
		assert.ErrorIs(t, b.SortChildrenByPosition(act), ErrKindMismatch)

		_, err := b.CreateNode(KindSequence, WithSelection(SelectByPriority))
		assert.ErrorIs(t, err, ErrKindMismatch)
		_, err = b.CreateNode(KindSelector, WithTick(Invoke("Set")))
		assert.ErrorIs(t, err, ErrKindMismatch)
	})

	t.Run("exclusive ownership", func(t *testing.T) {
		b := NewBuilder("t")
		s1 := b.MustCreateNode(KindSequence)
		s2 := b.MustCreateNode(KindSelector)
		act := b.MustCreateNode(KindAction)

		require.NoError(t, b.AddChild(s1, act))
		assert.ErrorIs(t, b.AddChild(s2, act), ErrChildOwned)
		assert.ErrorIs(t, b.AddChild(s1, act), ErrChildOwned)
		assert.ErrorIs(t, b.AddChild(s1, b.Root()), ErrRootAsChild)

		require.NoError(t, b.RemoveChild(s1, act))
		require.NoError(t, b.AddChild(s2, act))
		p, ok := b.Parent(act)
		require.True(t, ok)
		assert.Equal(t, s2, p)
		assert.ErrorIs(t, b.RemoveChild(s1, act), ErrUnknownNode)
	})

	t.Run("cycles", func(t *testing.T) {
		b := NewBuilder("t")
		outer := b.MustCreateNode(KindSequence)
		inner := b.MustCreateNode(KindLoop)
		leaf := b.MustCreateNode(KindSelector)

		require.NoError(t, b.AddChild(outer, inner))
		require.NoError(t, b.SetChild(inner, leaf))
		assert.ErrorIs(t, b.AddChild(leaf, outer), ErrCycle)
		assert.ErrorIs(t, b.AddChild(outer, outer), ErrCycle)
	})

	t.Run("root needs child", func(t *testing.T) {
		b := NewBuilder("t")
		_, err := b.Build()
		assert.ErrorIs(t, err, ErrMissingChild)
	})
}

func TestBuilderDecoratorChild(t *testing.T) {
	b := NewBuilder("t")
	a := b.MustCreateNode(KindAction)
	c := b.MustCreateNode(KindAction)

	require.NoError(t, b.SetChild(b.Root(), a))
	require.NoError(t, b.SetChild(b.Root(), a), "setting the same child is a no-op")
	require.NoError(t, b.SetChild(b.Root(), c))

	_, owned := b.Parent(a)
	assert.False(t, owned, "replaced child is released")
	children, err := b.Children(b.Root())
	require.NoError(t, err)
	assert.Equal(t, []NodeID{c}, children)

	require.NoError(t, b.UnsetChild(b.Root()))
	children, err = b.Children(b.Root())
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestBuilderRemoveNodeOrphansChildren(t *testing.T) {
	b := NewBuilder("t")
	seq := b.MustCreateNode(KindSequence)
	a := b.MustCreateNode(KindAction)
	require.NoError(t, b.SetChild(b.Root(), seq))
	require.NoError(t, b.AddChild(seq, a))

	require.NoError(t, b.RemoveNode(seq))
	_, ok := b.Parent(a)
	assert.False(t, ok)
	children, err := b.Children(b.Root())
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.Len(t, b.Nodes(), 2)
	assert.ErrorIs(t, b.RemoveNode(seq), ErrUnknownNode)
}

func TestBuildPrunesDetachedAndOrdersPreOrder(t *testing.T) {
	b := NewBuilder("guard")
	sel := b.MustCreateNode(KindSelector, WithName("sel"))
	seq := b.MustCreateNode(KindSequence, WithName("seq"))
	a := b.MustCreateNode(KindAction, WithName("a"))
	c := b.MustCreateNode(KindAction, WithName("c"))
	d := b.MustCreateNode(KindAction, WithName("d"))
	orphan := b.MustCreateNode(KindAction, WithName("orphan"))

	require.NoError(t, b.SetChild(b.Root(), sel))
	require.NoError(t, b.AddChild(sel, seq))
	require.NoError(t, b.AddChild(sel, d))
	require.NoError(t, b.AddChild(seq, a))
	require.NoError(t, b.AddChild(seq, c))

	tmpl := mustBuild(t, b)
	assert.Equal(t, "guard", tmpl.Name())
	assert.Equal(t, []NodeID{b.Root(), sel, seq, a, c, d}, tmpl.Nodes())
	_, ok := tmpl.Node(orphan)
	assert.False(t, ok)

	info, ok := tmpl.Node(sel)
	require.True(t, ok)
	assert.Equal(t, KindSelector, info.Kind)
	assert.Equal(t, []NodeID{seq, d}, info.Children)
	root, _ := tmpl.Node(tmpl.Root())
	assert.Equal(t, sel, root.Child)
}

func TestTemplateIsImmutable(t *testing.T) {
	b := NewBuilder("t")
	seq := b.MustCreateNode(KindSequence)
	a := b.MustCreateNode(KindAction, WithTick(Invoke("Set", "k", "v")))
	require.NoError(t, b.SetChild(b.Root(), seq))
	require.NoError(t, b.AddChild(seq, a))
	tmpl := mustBuild(t, b)

	extra := b.MustCreateNode(KindAction)
	require.NoError(t, b.AddChild(seq, extra))
	require.NoError(t, b.SetTickActions(a, Invoke("Delete", "k")))

	info, _ := tmpl.Node(seq)
	assert.Equal(t, []NodeID{a}, info.Children)
	info, _ = tmpl.Node(a)
	assert.Equal(t, []ActionInvocation{Invoke("Set", "k", "v")}, info.Tick)

	info.Tick[0].Params[0] = "mutated"
	again, _ := tmpl.Node(a)
	assert.Equal(t, "k", again.Tick[0].Params[0])
}

func TestSortChildrenByPositionIsStable(t *testing.T) {
	b := NewBuilder("t")
	seq := b.MustCreateNode(KindSequence)
	right := b.MustCreateNode(KindAction, WithPosition(100, 0))
	tieA := b.MustCreateNode(KindAction, WithPosition(10, 5))
	left := b.MustCreateNode(KindAction, WithPosition(-50, 0))
	tieB := b.MustCreateNode(KindAction, WithPosition(10, -5))
	for _, c := range []NodeID{right, tieA, left, tieB} {
		require.NoError(t, b.AddChild(seq, c))
	}

	require.NoError(t, b.SortChildrenByPosition(seq))
	children, err := b.Children(seq)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{left, tieA, tieB, right}, children)

	require.NoError(t, b.SetPosition(tieB, Position{X: 0}))
	require.NoError(t, b.SortChildrenByPosition(seq))
	children, _ = b.Children(seq)
	assert.Equal(t, []NodeID{left, tieB, tieA, right}, children)
}

func TestTemplateEditKeepsIDs(t *testing.T) {
	b := NewBuilder("t")
	sel := b.MustCreateNode(KindSelector, WithSelection(SelectByPriority), WithAbort(When(Is("stop"))))
	a := b.MustCreateNode(KindAction, WithPriority(3), succeedsWhen("ok"))
	require.NoError(t, b.SetChild(b.Root(), sel))
	require.NoError(t, b.AddChild(sel, a))
	tmpl := mustBuild(t, b)

	eb := tmpl.Edit()
	c := eb.MustCreateNode(KindAction)
	require.NoError(t, eb.AddChild(sel, c))
	edited := mustBuild(t, eb)

	assert.Equal(t, tmpl.Root(), edited.Root())
	info, ok := edited.Node(sel)
	require.True(t, ok)
	assert.Equal(t, []NodeID{a, c}, info.Children)
	assert.Equal(t, SelectByPriority, info.Selection)
	assert.Equal(t, "(stop())", info.Abort.String())

	orig, _ := tmpl.Node(sel)
	assert.Equal(t, []NodeID{a}, orig.Children)
}
