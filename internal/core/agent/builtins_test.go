package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/behave/internal/core/observability/log"
)

func TestBlackboardPredicates(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("armed", true)
	bb.Set("asleep", false)
	bb.Set("hp", int64(40))
	bb.Set("mode", "patrol")
	bb.Set("one", int64(1))
	p := NewBlackboardPredicates(bb)

	tests := []struct {
		name     string
		pred     string
		params   []string
		result   bool
		answered bool
	}{
		{"is true", "IsTrue", []string{"armed"}, true, true},
		{"is true false", "IsTrue", []string{"asleep"}, false, true},
		{"is true missing", "IsTrue", []string{"nope"}, false, true},
		{"has", "Has", []string{"mode"}, true, true},
		{"has missing", "Has", []string{"nope"}, false, true},
		{"equals string", "Equals", []string{"mode", "patrol"}, true, true},
		{"equals number", "Equals", []string{"hp", "40.0"}, true, true},
		{"equals differs", "Equals", []string{"mode", "attack"}, false, true},
		{"equals missing", "Equals", []string{"nope", "x"}, false, true},
		{"greater", "GreaterThan", []string{"hp", "39"}, true, true},
		{"greater than one", "GreaterThan", []string{"hp", "1"}, true, true},
		{"less than zero", "LessThan", []string{"hp", "0"}, false, true},
		{"equals one", "Equals", []string{"one", "1"}, true, true},
		{"equals zero", "Equals", []string{"one", "0"}, false, true},
		{"greater equal", "GreaterThan", []string{"hp", "40"}, false, true},
		{"less", "LessThan", []string{"hp", "40.5"}, true, true},
		{"less non numeric key", "LessThan", []string{"mode", "1"}, false, true},
		{"less bad limit", "LessThan", []string{"hp", "x"}, false, false},
		{"wrong arity", "IsTrue", nil, false, false},
		{"unknown", "CanSee", []string{"x"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, answered := p.Evaluate(tt.pred, tt.params)
			assert.Equal(t, tt.answered, answered)
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestExprEvaluator(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("hp", int64(15))
	bb.Set("armed", true)
	e := NewExprEvaluator(bb, log.Nop())

	result, ok := e.Evaluate(ExprPredicate, []string{"bb.hp < 20 && bb.armed == true"})
	assert.True(t, ok)
	assert.True(t, result)

	result, ok = e.Evaluate(ExprPredicate, []string{`"target" in bb`})
	assert.True(t, ok)
	assert.False(t, result)

	bb.Set("hp", int64(25))
	result, ok = e.Evaluate(ExprPredicate, []string{"bb.hp < 20 && bb.armed == true"})
	assert.True(t, ok)
	assert.False(t, result, "blackboard is read on every evaluation")
	assert.Equal(t, 2, e.Compiled())

	_, ok = e.Evaluate(ExprPredicate, []string{"bb.hp <"})
	assert.False(t, ok, "expressions that do not compile are unanswered")

	result, ok = e.Evaluate(ExprPredicate, []string{"bb.missing > 3"})
	assert.True(t, ok)
	assert.False(t, result)

	_, ok = e.Evaluate("IsTrue", []string{"armed"})
	assert.False(t, ok)
	_, ok = e.Evaluate(ExprPredicate, nil)
	assert.False(t, ok)
}

func TestBlackboardActions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	bb := NewBlackboard()
	a := NewBlackboardActions(bb, log.FromZap(zap.New(core)))

	a.DoAction("Set", []string{"mode", "attack"})
	a.DoAction("Set", []string{"hp", "10"})
	a.DoAction("Increment", []string{"hp"})
	a.DoAction("Increment", []string{"hp", "5"})
	a.DoAction("Increment", []string{"ratio", "0.5"})
	a.DoAction("Increment", []string{"ratio", "0.25"})
	a.DoAction("Increment", []string{"mode"})
	a.DoAction("Set", []string{"only-key"})
	a.DoAction("Unknown", []string{"x"})
	a.DoAction("Log", []string{"engaging", "target"})

	v, _ := bb.Get("mode")
	assert.Equal(t, "attack", v, "non-numeric values are left alone")
	v, _ = bb.Get("hp")
	assert.Equal(t, int64(16), v)
	v, _ = bb.Get("ratio")
	assert.Equal(t, 0.75, v)
	_, ok := bb.Get("only-key")
	assert.False(t, ok)

	a.DoAction("Set", []string{"count", "1"})
	a.DoAction("Increment", []string{"count"})
	a.DoAction("Increment", []string{"hp", "1"})
	v, _ = bb.Get("count")
	assert.Equal(t, int64(2), v)
	v, _ = bb.Get("hp")
	assert.Equal(t, int64(17), v)

	a.DoAction("Delete", []string{"mode"})
	_, ok = bb.Get("mode")
	assert.False(t, ok)

	assert.Equal(t, 1, logs.FilterMessage("engaging target").Len())
}
