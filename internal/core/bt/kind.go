package bt

import (
	"fmt"
	"strings"
)

// Kind is the closed set of node kinds the engine knows how to tick.
type Kind uint8

const (
	KindRoot Kind = iota + 1
	KindLoop
	KindSequence
	KindSelector
	KindAction
)

var kindNames = map[Kind]string{
	KindRoot:     "root",
	KindLoop:     "loop",
	KindSequence: "sequence",
	KindSelector: "selector",
	KindAction:   "action",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsDecorator reports whether nodes of this kind own exactly one child.
func (k Kind) IsDecorator() bool {
	return k == KindRoot || k == KindLoop
}

// IsComposite reports whether nodes of this kind own an ordered child list.
func (k Kind) IsComposite() bool {
	return k == KindSequence || k == KindSelector
}

func ParseKind(s string) (Kind, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Selection is the ordering a Selector applies to its children on entry.
type Selection uint8

const (
	SelectFirstToBeSuccessful Selection = iota
	SelectByPriority
	SelectRandom
)

func (s Selection) String() string {
	switch s {
	case SelectFirstToBeSuccessful:
		return "first_to_be_successful"
	case SelectByPriority:
		return "by_priority"
	case SelectRandom:
		return "random"
	default:
		return fmt.Sprintf("selection(%d)", uint8(s))
	}
}

// ParseSelection accepts snake_case or CamelCase names; empty means
// SelectFirstToBeSuccessful.
func ParseSelection(s string) (Selection, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "") {
	case "", "firsttobesuccessful", "first":
		return SelectFirstToBeSuccessful, nil
	case "bypriority", "priority":
		return SelectByPriority, nil
	case "random":
		return SelectRandom, nil
	default:
		return SelectFirstToBeSuccessful, fmt.Errorf("%w: %q", ErrUnknownSelection, s)
	}
}

func (s Selection) MarshalText() ([]byte, error) {
	if s > SelectRandom {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSelection, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Selection) UnmarshalText(text []byte) error {
	v, err := ParseSelection(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
