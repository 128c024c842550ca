package service

import "fmt"

// ValidationError reports malformed or rule-violating input. The triggering
// operation was rejected before any write, so stored state is unchanged.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
