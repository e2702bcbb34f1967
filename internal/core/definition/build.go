package definition

import (
	"fmt"
	"sort"

	"github.com/zeusync/behave/internal/core/bt"
)

// Build validates the document and assembles a template from it. Nodes that
// the root cannot reach are left out.
func (doc *Document) Build() (*bt.Template, error) {
	_, tmpl, err := doc.build()
	return tmpl, err
}

// BuildIndexed is Build that also returns the node id assigned to each
// document node name.
func (doc *Document) BuildIndexed() (map[string]bt.NodeID, *bt.Template, error) {
	return doc.build()
}

func (doc *Document) build() (map[string]bt.NodeID, *bt.Template, error) {
	if doc.Root == "" {
		return nil, nil, ErrMissingRoot
	}
	rootDoc, ok := doc.Nodes[doc.Root]
	if !ok {
		return nil, nil, fmt.Errorf("%w: root %q", ErrUnknownNode, doc.Root)
	}

	b := bt.NewBuilder(doc.Name)
	ids := make(map[string]bt.NodeID, len(doc.Nodes))

	names := make([]string, 0, len(doc.Nodes))
	for name := range doc.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	rootKind, err := bt.ParseKind(rootDoc.Kind)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %q: %w", ErrInvalidNode, doc.Root, err)
	}

	// first pass: create every node
	for _, name := range names {
		nd := doc.Nodes[name]
		kind, err := bt.ParseKind(nd.Kind)
		if err != nil {
			return nil, nil, fmt.Errorf("%w %q: %w", ErrInvalidNode, name, err)
		}
		if kind == bt.KindRoot {
			if name != doc.Root {
				return nil, nil, fmt.Errorf("%w %q: %w", ErrInvalidNode, name, bt.ErrMultipleRoots)
			}
			ids[name] = b.Root()
			if err = configureRoot(b, name, nd); err != nil {
				return nil, nil, err
			}
			continue
		}
		opts, err := nodeOptions(name, kind, nd)
		if err != nil {
			return nil, nil, err
		}
		id, err := b.CreateNode(kind, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("%w %q: %w", ErrInvalidNode, name, err)
		}
		ids[name] = id
	}

	// second pass: wire children by name
	for _, name := range names {
		nd := doc.Nodes[name]
		if err = wire(b, ids, name, nd); err != nil {
			return nil, nil, err
		}
	}

	if rootKind != bt.KindRoot {
		if err = b.SetChild(b.Root(), ids[doc.Root]); err != nil {
			return nil, nil, fmt.Errorf("%w %q: %w", ErrInvalidNode, doc.Root, err)
		}
	}

	tmpl, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build %q: %w", doc.Name, err)
	}
	return ids, tmpl, nil
}

func configureRoot(b *bt.Builder, name string, nd NodeDoc) error {
	if len(nd.Children) > 0 || len(nd.Enter)+len(nd.Tick)+len(nd.Exit)+len(nd.Status) > 0 || nd.Selection != "" || nd.SortByPosition {
		return fmt.Errorf("%w %q: root only takes a child", ErrInvalidNode, name)
	}
	if err := b.SetName(b.Root(), name); err != nil {
		return err
	}
	if err := b.SetDescription(b.Root(), nd.Description); err != nil {
		return err
	}
	if err := b.SetPriority(b.Root(), nd.Priority); err != nil {
		return err
	}
	if nd.Position != nil {
		if err := b.SetPosition(b.Root(), *nd.Position); err != nil {
			return err
		}
	}
	return b.SetAbortCondition(b.Root(), nd.Abort.Condition())
}

func nodeOptions(name string, kind bt.Kind, nd NodeDoc) ([]bt.NodeOption, error) {
	opts := []bt.NodeOption{
		bt.WithName(name),
		bt.WithDescription(nd.Description),
		bt.WithPriority(nd.Priority),
	}
	if nd.Position != nil {
		opts = append(opts, bt.WithPosition(nd.Position.X, nd.Position.Y))
	}

	switch kind {
	case bt.KindLoop:
		if len(nd.Children) > 0 {
			return nil, fmt.Errorf("%w %q: loop takes a single child", ErrInvalidNode, name)
		}
		if nd.Selection != "" || nd.SortByPosition {
			return nil, fmt.Errorf("%w %q: loop takes no selection or sort_by_position", ErrInvalidNode, name)
		}
		if len(nd.Abort) > 0 {
			opts = append(opts, bt.WithAbort(nd.Abort.Condition()))
		}
	case bt.KindSequence, bt.KindSelector:
		if nd.Child != "" {
			return nil, fmt.Errorf("%w %q: %s takes children, not child", ErrInvalidNode, name, kind)
		}
		if len(nd.Abort) > 0 {
			opts = append(opts, bt.WithAbort(nd.Abort.Condition()))
		}
		if kind == bt.KindSelector {
			sel, err := bt.ParseSelection(nd.Selection)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %w", ErrInvalidNode, name, err)
			}
			opts = append(opts, bt.WithSelection(sel))
		} else if nd.Selection != "" {
			return nil, fmt.Errorf("%w %q: selection on sequence", ErrInvalidNode, name)
		}
	case bt.KindAction:
		if nd.Child != "" || len(nd.Children) > 0 || len(nd.Abort) > 0 || nd.Selection != "" || nd.SortByPosition {
			return nil, fmt.Errorf("%w %q: action takes no children, abort or selection", ErrInvalidNode, name)
		}
		opts = append(opts, bt.WithEnter(nd.Enter...), bt.WithTick(nd.Tick...), bt.WithExit(nd.Exit...))
		for i, s := range nd.Status {
			status, err := bt.ParseStatus(s.Result)
			if err != nil {
				return nil, fmt.Errorf("%w %q status %d: %w", ErrInvalidNode, name, i, err)
			}
			opts = append(opts, bt.WithStatus(status, s.When.Condition()))
		}
	}

	if kind != bt.KindAction && len(nd.Enter)+len(nd.Tick)+len(nd.Exit)+len(nd.Status) > 0 {
		return nil, fmt.Errorf("%w %q: only actions take enter, tick, exit or status", ErrInvalidNode, name)
	}
	return opts, nil
}

func wire(b *bt.Builder, ids map[string]bt.NodeID, name string, nd NodeDoc) error {
	parent := ids[name]
	if nd.Child != "" {
		child, ok := ids[nd.Child]
		if !ok {
			return fmt.Errorf("%w: %q child of %q", ErrUnknownNode, nd.Child, name)
		}
		if err := b.SetChild(parent, child); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidNode, name, err)
		}
	}
	for _, cname := range nd.Children {
		child, ok := ids[cname]
		if !ok {
			return fmt.Errorf("%w: %q child of %q", ErrUnknownNode, cname, name)
		}
		if err := b.AddChild(parent, child); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidNode, name, err)
		}
	}
	if nd.SortByPosition {
		if err := b.SortChildrenByPosition(parent); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidNode, name, err)
		}
	}
	return nil
}
