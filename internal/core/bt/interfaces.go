package bt

// Evaluator answers predicates. ok is false when the evaluator does not know
// the predicate, in which case result is ignored.
type Evaluator interface {
	Evaluate(predicate string, params []string) (result, ok bool)
}

// Action performs side effects for named actions. Unknown actions are ignored.
type Action interface {
	DoAction(action string, params []string)
}

// Host is the controller a tree is bound to. Both lists are consulted in order
// on every use, so a host may grow them between ticks.
type Host interface {
	Evaluators() []Evaluator
	Actions() []Action
}

// Observer receives node lifecycle transitions from a running tree. It is
// called synchronously from Tick and Abort.
type Observer interface {
	OnTransition(Transition)
}

type ObserverFunc func(Transition)

func (f ObserverFunc) OnTransition(t Transition) { f(t) }

type Event uint8

const (
	EventEntered Event = iota + 1
	EventExited
	EventAborted
)

func (e Event) String() string {
	switch e {
	case EventEntered:
		return "entered"
	case EventExited:
		return "exited"
	case EventAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type Transition struct {
	TreeID string
	NodeID NodeID
	Name   string
	Kind   Kind
	Event  Event
	Status Status
}

type NodeID string

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type ActionInvocation struct {
	Action string   `json:"action" yaml:"action"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

func Invoke(action string, params ...string) ActionInvocation {
	return ActionInvocation{Action: action, Params: params}
}

// StatusCondition maps a condition to the status an action node reports when
// it holds.
type StatusCondition struct {
	Status    Status
	Condition Condition
}
