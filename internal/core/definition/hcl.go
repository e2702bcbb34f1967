package definition

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/zeusync/behave/internal/core/bt"
)

// hclDocument is the top-level structure of a tree file:
//
//	name = "guard"
//	root = "root"
//
//	node "root" {
//	  kind  = "root"
//	  child = "patrol"
//	}
type hclDocument struct {
	Name  string     `hcl:"name,optional"`
	Root  string     `hcl:"root"`
	Nodes []*hclNode `hcl:"node,block"`
}

type hclNode struct {
	Name           string        `hcl:"name,label"`
	Kind           string        `hcl:"kind"`
	Description    string        `hcl:"description,optional"`
	Priority       int           `hcl:"priority,optional"`
	Child          string        `hcl:"child,optional"`
	Children       []string      `hcl:"children,optional"`
	SortByPosition bool          `hcl:"sort_by_position,optional"`
	Selection      string        `hcl:"selection,optional"`
	Position       *hclPosition  `hcl:"position,block"`
	Abort          *hclCondition `hcl:"abort,block"`
	Enter          []*hclAction  `hcl:"enter,block"`
	Tick           []*hclAction  `hcl:"tick,block"`
	Exit           []*hclAction  `hcl:"exit,block"`
	Status         []*hclStatus  `hcl:"status,block"`
}

type hclPosition struct {
	X float64 `hcl:"x,optional"`
	Y float64 `hcl:"y,optional"`
}

type hclCondition struct {
	Clauses []*hclClause `hcl:"clause,block"`
}

type hclClause struct {
	Predicates []*hclPredicate `hcl:"predicate,block"`
}

type hclPredicate struct {
	Name   string   `hcl:"name"`
	Params []string `hcl:"params,optional"`
	Negate bool     `hcl:"negate,optional"`
}

type hclAction struct {
	Action string   `hcl:"action"`
	Params []string `hcl:"params,optional"`
}

type hclStatus struct {
	Result string        `hcl:"result"`
	When   *hclCondition `hcl:"when,block"`
}

// LoadHCL parses and decodes an HCL document held in src.
func LoadHCL(src []byte, filename string) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclDocument
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	doc := &Document{
		Name:  parsed.Name,
		Root:  parsed.Root,
		Nodes: make(map[string]NodeDoc, len(parsed.Nodes)),
	}
	for _, n := range parsed.Nodes {
		if _, exists := doc.Nodes[n.Name]; exists {
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateNode, n.Name, filename)
		}
		doc.Nodes[n.Name] = n.toNodeDoc()
	}
	return doc, nil
}

func (n *hclNode) toNodeDoc() NodeDoc {
	nd := NodeDoc{
		Kind:           n.Kind,
		Description:    n.Description,
		Priority:       n.Priority,
		Child:          n.Child,
		Children:       n.Children,
		SortByPosition: n.SortByPosition,
		Selection:      n.Selection,
		Abort:          n.Abort.toConditionDoc(),
		Enter:          toInvocations(n.Enter),
		Tick:           toInvocations(n.Tick),
		Exit:           toInvocations(n.Exit),
	}
	if n.Position != nil {
		nd.Position = &bt.Position{X: n.Position.X, Y: n.Position.Y}
	}
	for _, s := range n.Status {
		nd.Status = append(nd.Status, StatusDoc{Result: s.Result, When: s.When.toConditionDoc()})
	}
	return nd
}

func (c *hclCondition) toConditionDoc() ConditionDoc {
	if c == nil || len(c.Clauses) == 0 {
		return nil
	}
	out := make(ConditionDoc, len(c.Clauses))
	for i, clause := range c.Clauses {
		preds := make([]bt.Predicate, len(clause.Predicates))
		for j, p := range clause.Predicates {
			preds[j] = bt.Predicate{Name: p.Name, Params: p.Params, Negate: p.Negate}
		}
		out[i] = preds
	}
	return out
}

func toInvocations(actions []*hclAction) []bt.ActionInvocation {
	if len(actions) == 0 {
		return nil
	}
	out := make([]bt.ActionInvocation, len(actions))
	for i, a := range actions {
		out[i] = bt.ActionInvocation{Action: a.Action, Params: a.Params}
	}
	return out
}
