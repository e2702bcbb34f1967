package agent

import (
	"strings"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

var _ bt.Action = (*BlackboardActions)(nil)

// BlackboardActions performs the built-in actions:
//
//	Set key value       store the parsed value
//	Delete key          remove key
//	Increment key [n]   add n (default 1) to a numeric key, starting from 0
//	Log msg...          log the joined params at info level
//
// Unknown actions and malformed params are ignored.
type BlackboardActions struct {
	bb     *Blackboard
	logger log.Log
}

func NewBlackboardActions(bb *Blackboard, logger log.Log) *BlackboardActions {
	if logger == nil {
		logger = log.Provide()
	}
	return &BlackboardActions{bb: bb, logger: logger}
}

func (a *BlackboardActions) DoAction(action string, params []string) {
	switch action {
	case "Set":
		if len(params) != 2 {
			a.malformed(action, params)
			return
		}
		a.bb.Set(params[0], ParseValue(params[1]))

	case "Delete":
		if len(params) != 1 {
			a.malformed(action, params)
			return
		}
		a.bb.Delete(params[0])

	case "Increment":
		if len(params) < 1 || len(params) > 2 {
			a.malformed(action, params)
			return
		}
		step := any(int64(1))
		if len(params) == 2 {
			step = ParseValue(params[1])
		}
		a.bb.Update(params[0], func(old any, exists bool) any {
			if !exists {
				old = int64(0)
			}
			return add(old, step)
		})

	case "Log":
		a.logger.Info(strings.Join(params, " "))
	}
}

func (a *BlackboardActions) malformed(action string, params []string) {
	a.logger.Debug("ignoring malformed action", log.String("action", action), log.Strings("params", params))
}

// add keeps integers integral and falls back to float64 otherwise. A
// non-numeric operand leaves old unchanged.
func add(old, step any) any {
	oi, oInt := old.(int64)
	si, sInt := step.(int64)
	if oInt && sInt {
		return oi + si
	}
	of, ok := toFloat(old)
	if !ok {
		return old
	}
	sf, ok := toFloat(step)
	if !ok {
		return old
	}
	return of + sf
}
