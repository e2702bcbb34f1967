// Package definition loads behaviour tree documents written in JSON, YAML or
// HCL and turns them into immutable bt.Templates.
//
// A document names its nodes and wires them by name:
//
//	name: guard
//	root: root
//	nodes:
//	  root:   {kind: root, child: patrol}
//	  patrol: {kind: selector, selection: by_priority, children: [attack, wander]}
//
// When the named root is not itself of kind root, it becomes the child of an
// implicit root node.
package definition

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/behave/internal/core/bt"
)

type Document struct {
	Name  string             `json:"name" yaml:"name"`
	Root  string             `json:"root" yaml:"root"`
	Nodes map[string]NodeDoc `json:"nodes" yaml:"nodes"`
}

type NodeDoc struct {
	Kind        string       `json:"kind" yaml:"kind"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    int          `json:"priority,omitempty" yaml:"priority,omitempty"`
	Position    *bt.Position `json:"position,omitempty" yaml:"position,omitempty"`

	// decorators
	Child string `json:"child,omitempty" yaml:"child,omitempty"`

	// composites
	Children       []string     `json:"children,omitempty" yaml:"children,omitempty"`
	SortByPosition bool         `json:"sort_by_position,omitempty" yaml:"sort_by_position,omitempty"`
	Selection      string       `json:"selection,omitempty" yaml:"selection,omitempty"`
	Abort          ConditionDoc `json:"abort,omitempty" yaml:"abort,omitempty"`

	// actions
	Enter  []bt.ActionInvocation `json:"enter,omitempty" yaml:"enter,omitempty"`
	Tick   []bt.ActionInvocation `json:"tick,omitempty" yaml:"tick,omitempty"`
	Exit   []bt.ActionInvocation `json:"exit,omitempty" yaml:"exit,omitempty"`
	Status []StatusDoc           `json:"status,omitempty" yaml:"status,omitempty"`
}

// ConditionDoc is a condition in conjunctive normal form: every inner list
// must have at least one predicate that holds.
type ConditionDoc [][]bt.Predicate

func (c ConditionDoc) Condition() bt.Condition {
	if len(c) == 0 {
		return bt.Condition{}
	}
	out := bt.Condition{All: make([]bt.Disjunction, len(c))}
	for i, clause := range c {
		out.All[i] = bt.Disjunction{Any: append([]bt.Predicate(nil), clause...)}
	}
	return out
}

type StatusDoc struct {
	Result string       `json:"result" yaml:"result"`
	When   ConditionDoc `json:"when" yaml:"when"`
}

// Fingerprint hashes the canonical JSON encoding of the document. Documents
// that decode to the same structure share a fingerprint regardless of the
// source format.
func Fingerprint(doc *Document) (uint64, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("fingerprint %q: %w", doc.Name, err)
	}
	return xxhash.Sum64(data), nil
}
