package agent

import (
	"math/rand/v2"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
)

type Option func(*Agent)

func WithID(id string) Option {
	return func(a *Agent) { a.id = id }
}

func WithName(name string) Option {
	return func(a *Agent) { a.name = name }
}

func WithLogger(logger log.Log) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithBlackboard shares bb instead of creating a private blackboard.
func WithBlackboard(bb *Blackboard) Option {
	return func(a *Agent) { a.bb = bb }
}

// WithValues seeds the blackboard before the first tick.
func WithValues(values map[string]any) Option {
	return func(a *Agent) {
		for k, v := range values {
			a.values[k] = v
		}
	}
}

// WithEvents publishes every node transition of the agent's tree to events.
func WithEvents(events bus.EventBus) Option {
	return func(a *Agent) { a.events = events }
}

// WithEvaluators registers evaluators after the built-ins.
func WithEvaluators(evals ...bt.Evaluator) Option {
	return func(a *Agent) { a.evaluators = append(a.evaluators, evals...) }
}

// WithActions registers actions after the built-ins.
func WithActions(actions ...bt.Action) Option {
	return func(a *Agent) { a.actions = append(a.actions, actions...) }
}

func WithRandSource(source func() *rand.Rand) Option {
	return func(a *Agent) { a.randSource = source }
}

// WithoutBuiltins skips the blackboard predicates, expression evaluator and
// blackboard actions.
func WithoutBuiltins() Option {
	return func(a *Agent) { a.noBuiltins = true }
}
