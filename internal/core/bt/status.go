package bt

import (
	"fmt"
	"strings"
)

// Status is the result of ticking a node. Running is the zero value.
type Status int

const (
	StatusRunning Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsTerminal reports whether s ends a node's activation.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// ParseStatus accepts the status names case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return StatusRunning, nil
	case "success":
		return StatusSuccess, nil
	case "failure":
		return StatusFailure, nil
	default:
		return StatusRunning, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusRunning, StatusSuccess, StatusFailure:
		return []byte(strings.ToLower(s.String())), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
}

func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
