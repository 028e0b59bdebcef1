package llm

import "fmt"

// GenerationError represents a transport or provider failure during a
// generative call (HTTP errors, quota exhaustion, timeouts). It is retryable.
type GenerationError struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error (%s): %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error (%s): %s", e.Provider, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// EmptyResponseError indicates the model returned no usable content.
type EmptyResponseError struct {
	Provider Provider
	Message  string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("empty response (%s): %s", e.Provider, e.Message)
}
