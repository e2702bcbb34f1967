package agent

import (
	"fmt"

	"github.com/zeusync/behave/internal/core/bt"
)

var _ bt.Evaluator = (*BlackboardPredicates)(nil)

// BlackboardPredicates answers predicates about blackboard entries:
//
//	IsTrue key          key holds true
//	Has key             key is set
//	Equals key value    key holds value (compared after parsing value)
//	GreaterThan key n   key is numeric and > n
//	LessThan key n      key is numeric and < n
//
// Other predicates, or known ones with the wrong number of params, are left
// unanswered.
type BlackboardPredicates struct {
	bb *Blackboard
}

func NewBlackboardPredicates(bb *Blackboard) *BlackboardPredicates {
	return &BlackboardPredicates{bb: bb}
}

func (p *BlackboardPredicates) Evaluate(predicate string, params []string) (bool, bool) {
	switch predicate {
	case "IsTrue":
		if len(params) != 1 {
			return false, false
		}
		v, _ := p.bb.GetBool(params[0])
		return v, true

	case "Has":
		if len(params) != 1 {
			return false, false
		}
		_, ok := p.bb.Get(params[0])
		return ok, true

	case "Equals":
		if len(params) != 2 {
			return false, false
		}
		v, ok := p.bb.Get(params[0])
		if !ok {
			return false, true
		}
		return equalValues(v, ParseValue(params[1])), true

	case "GreaterThan", "LessThan":
		if len(params) != 2 {
			return false, false
		}
		limit, ok := toFloat(ParseValue(params[1]))
		if !ok {
			return false, false
		}
		v, ok := p.bb.GetFloat(params[0])
		if !ok {
			return false, true
		}
		if predicate == "GreaterThan" {
			return v > limit, true
		}
		return v < limit, true

	default:
		return false, false
	}
}

func equalValues(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
