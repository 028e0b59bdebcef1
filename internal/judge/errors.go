// Package judge evaluates cover letters against the quality rubric using an
// independent generative provider.
package judge

import "fmt"

// ParseError indicates the judge's response could not be parsed as a valid
// verdict even after the stricter re-prompt. The orchestrator treats it as a
// failing verdict, never a passing one.
type ParseError struct {
	Message  string
	Response string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("judge parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("judge parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
