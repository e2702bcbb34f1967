package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicateEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		pred  Predicate
		evals []Evaluator
		want  bool
	}{
		{"no evaluators", Is("a"), nil, false},
		{"unanswered", Is("a"), []Evaluator{flags{"b": true}}, false},
		{"unanswered negated", Not("a"), []Evaluator{flags{"b": true}}, false},
		{"true", Is("a"), []Evaluator{flags{"a": true}}, true},
		{"false", Is("a"), []Evaluator{flags{"a": false}}, false},
		{"negated false", Not("a"), []Evaluator{flags{"a": false}}, true},
		{"negated true", Not("a"), []Evaluator{flags{"a": true}}, false},
		{"all agree", Is("a"), []Evaluator{flags{"a": true}, flags{}, flags{"a": true}}, true},
		{"one disagrees", Is("a"), []Evaluator{flags{"a": true}, flags{"a": false}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Evaluate(tt.evals))
		})
	}
}

func TestConditionEvaluate(t *testing.T) {
	evals := []Evaluator{flags{"yes": true, "no": false}}

	assert.True(t, Condition{}.IsEmpty())
	assert.True(t, Condition{}.Evaluate(evals))
	assert.False(t, AllOf(AnyOf()).Evaluate(evals), "empty disjunction never holds")

	assert.True(t, AllOf(AnyOf(Is("no"), Is("yes"))).Evaluate(evals))
	assert.False(t, AllOf(AnyOf(Is("no"), Is("missing"))).Evaluate(evals))
	assert.True(t, AllOf(AnyOf(Is("yes")), AnyOf(Not("no"))).Evaluate(evals))
	assert.False(t, AllOf(AnyOf(Is("yes")), AnyOf(Is("no"))).Evaluate(evals))
	assert.True(t, When(Is("yes"), Not("no")).Evaluate(evals))
}

func TestConditionString(t *testing.T) {
	c := AllOf(AnyOf(Is("Has", "target"), Not("IsTrue", "asleep")), AnyOf(Is("Ready")))
	assert.Equal(t, "(Has(target) || !IsTrue(asleep)) && (Ready())", c.String())
	assert.Equal(t, "true", Condition{}.String())
}

func TestConditionCloneIsDeep(t *testing.T) {
	orig := When(Is("Has", "target"))
	clone := orig.Clone()
	clone.All[0].Any[0].Params[0] = "changed"
	assert.Equal(t, "target", orig.All[0].Any[0].Params[0])
}
