package bt

import "strings"

// Predicate names a capability answered by the host's evaluators.
type Predicate struct {
	Name   string   `json:"name" yaml:"name"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
	Negate bool     `json:"negate,omitempty" yaml:"negate,omitempty"`
}

// Disjunction holds if any of its predicates holds. An empty disjunction never holds.
type Disjunction struct {
	Any []Predicate `json:"any" yaml:"any"`
}

// Condition is a conjunction of disjunctions. An empty condition holds.
type Condition struct {
	All []Disjunction `json:"all,omitempty" yaml:"all,omitempty"`
}

func Is(name string, params ...string) Predicate {
	return Predicate{Name: name, Params: params}
}

func Not(name string, params ...string) Predicate {
	return Predicate{Name: name, Params: params, Negate: true}
}

func AnyOf(predicates ...Predicate) Disjunction {
	return Disjunction{Any: predicates}
}

func AllOf(clauses ...Disjunction) Condition {
	return Condition{All: clauses}
}

// When is shorthand for a condition whose clauses each hold a single predicate.
func When(predicates ...Predicate) Condition {
	c := Condition{All: make([]Disjunction, len(predicates))}
	for i, p := range predicates {
		c.All[i] = Disjunction{Any: []Predicate{p}}
	}
	return c
}

func (c Condition) IsEmpty() bool {
	return len(c.All) == 0
}

// Evaluate resolves p against evals in order. A predicate nobody answers is
// false, as is one where any answering evaluator disagrees after negation.
func (p Predicate) Evaluate(evals []Evaluator) bool {
	answered := false
	for _, e := range evals {
		result, ok := e.Evaluate(p.Name, p.Params)
		if !ok {
			continue
		}
		if result == p.Negate {
			return false
		}
		answered = true
	}
	return answered
}

func (d Disjunction) Evaluate(evals []Evaluator) bool {
	for _, p := range d.Any {
		if p.Evaluate(evals) {
			return true
		}
	}
	return false
}

func (c Condition) Evaluate(evals []Evaluator) bool {
	for _, d := range c.All {
		if !d.Evaluate(evals) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can keep mutating their input.
func (c Condition) Clone() Condition {
	if c.All == nil {
		return Condition{}
	}
	out := Condition{All: make([]Disjunction, len(c.All))}
	for i, d := range c.All {
		preds := make([]Predicate, len(d.Any))
		for j, p := range d.Any {
			preds[j] = Predicate{Name: p.Name, Params: cloneStrings(p.Params), Negate: p.Negate}
		}
		out.All[i] = Disjunction{Any: preds}
	}
	return out
}

func (p Predicate) String() string {
	var b strings.Builder
	if p.Negate {
		b.WriteByte('!')
	}
	b.WriteString(p.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(p.Params, ", "))
	b.WriteByte(')')
	return b.String()
}

func (d Disjunction) String() string {
	parts := make([]string, len(d.Any))
	for i, p := range d.Any {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, " || ") + ")"
}

func (c Condition) String() string {
	if c.IsEmpty() {
		return "true"
	}
	parts := make([]string, len(c.All))
	for i, d := range c.All {
		parts[i] = d.String()
	}
	return strings.Join(parts, " && ")
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
