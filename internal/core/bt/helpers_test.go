package bt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// flags answers predicates by name; names not in the map are unanswered.
type flags map[string]bool

func (f flags) Evaluate(predicate string, _ []string) (bool, bool) {
	v, ok := f[predicate]
	return v, ok
}

// countingEvaluator records how often each predicate was asked.
type countingEvaluator struct {
	answers map[string]bool
	calls   map[string]int
}

func newCountingEvaluator(answers map[string]bool) *countingEvaluator {
	return &countingEvaluator{answers: answers, calls: map[string]int{}}
}

func (c *countingEvaluator) Evaluate(predicate string, _ []string) (bool, bool) {
	c.calls[predicate]++
	v, ok := c.answers[predicate]
	return v, ok
}

type recorder struct {
	name  string
	calls *[]string
}

func (r recorder) DoAction(action string, params []string) {
	entry := r.name + ":" + action
	if len(params) > 0 {
		entry += "(" + strings.Join(params, ",") + ")"
	}
	*r.calls = append(*r.calls, entry)
}

type testHost struct {
	evaluators []Evaluator
	actions    []Action
}

func (h *testHost) Evaluators() []Evaluator { return h.evaluators }
func (h *testHost) Actions() []Action       { return h.actions }

func newHost(evals ...Evaluator) *testHost {
	return &testHost{evaluators: evals}
}

// succeedsWhen makes an action node report Success once predicate holds.
func succeedsWhen(predicate string) NodeOption {
	return WithStatus(StatusSuccess, When(Is(predicate)))
}

func failsWhen(predicate string) NodeOption {
	return WithStatus(StatusFailure, When(Is(predicate)))
}

func quietTree(t *testing.T, tmpl *Template, h Host, opts ...TreeOption) *Tree {
	t.Helper()
	tree := tmpl.Instantiate(append([]TreeOption{WithLogger(log.Nop())}, opts...)...)
	require.NoError(t, tree.Bind(h))
	return tree
}

func mustBuild(t *testing.T, b *Builder) *Template {
	t.Helper()
	tmpl, err := b.Build()
	require.NoError(t, err)
	return tmpl
}
