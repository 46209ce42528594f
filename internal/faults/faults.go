package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the four failure classes the daemon distinguishes.
// ErrDevice aborts session startup, ErrModel and ErrData degrade fail-open,
// ErrState rejects an operation synchronously without mutating anything.
var (
	ErrDevice = errors.New("device error")
	ErrModel  = errors.New("model error")
	ErrData   = errors.New("data error")
	ErrState  = errors.New("state error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrModel
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind reports the classification of err as a short string, or "unknown" when
// the error carries none of the sentinel markers.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrDevice):
		return "device"
	case errors.Is(err, ErrModel):
		return "model"
	case errors.Is(err, ErrData):
		return "data"
	case errors.Is(err, ErrState):
		return "state"
	default:
		return "unknown"
	}
}

// Fatal reports whether err should abort session startup rather than degrade.
func Fatal(err error) bool {
	return errors.Is(err, ErrDevice)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
