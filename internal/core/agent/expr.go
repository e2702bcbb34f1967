package agent

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// ExprPredicate is the predicate name answered by ExprEvaluator.
const ExprPredicate = "Expr"

var _ bt.Evaluator = (*ExprEvaluator)(nil)

// exprEnv exposes the blackboard snapshot as "bb", e.g. `bb.hp < 20 && bb.armed`.
type exprEnv struct {
	BB map[string]any `expr:"bb"`
}

type compiled struct {
	source  string
	program *vm.Program
	err     error
}

// ExprEvaluator answers the Expr predicate by running params[0] as an
// expr-lang expression against the blackboard. Expressions that fail to
// compile are left unanswered; runtime errors and non-bool results answer
// false.
type ExprEvaluator struct {
	bb     *Blackboard
	logger log.Log

	mu    sync.RWMutex
	cache map[uint64]*compiled
}

func NewExprEvaluator(bb *Blackboard, logger log.Log) *ExprEvaluator {
	if logger == nil {
		logger = log.Provide()
	}
	return &ExprEvaluator{bb: bb, logger: logger, cache: make(map[uint64]*compiled)}
}

func (e *ExprEvaluator) Evaluate(predicate string, params []string) (bool, bool) {
	if predicate != ExprPredicate || len(params) != 1 {
		return false, false
	}
	c := e.compile(params[0])
	if c.err != nil {
		return false, false
	}

	result, err := expr.Run(c.program, exprEnv{BB: e.bb.Snapshot()})
	if err != nil {
		e.logger.Debug("expression evaluation failed", log.String("expression", c.source), log.Error(err))
		return false, true
	}
	b, ok := result.(bool)
	if !ok {
		e.logger.Debug("expression returned non-boolean result", log.String("expression", c.source))
		return false, true
	}
	return b, true
}

// Compiled reports how many distinct expressions are cached.
func (e *ExprEvaluator) Compiled() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func (e *ExprEvaluator) compile(source string) *compiled {
	key := xxhash.Sum64String(source)

	e.mu.RLock()
	c, ok := e.cache[key]
	e.mu.RUnlock()
	if ok && c.source == source {
		return c
	}

	program, err := expr.Compile(source,
		expr.Env(exprEnv{}),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	c = &compiled{source: source, program: program, err: err}
	if err != nil {
		e.logger.Warn("expression compilation failed", log.String("expression", source), log.Error(err))
	}

	e.mu.Lock()
	e.cache[key] = c
	e.mu.Unlock()
	return c
}
