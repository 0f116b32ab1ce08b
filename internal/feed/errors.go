package feed

import "fmt"

// InvalidArgumentError represents a bad or missing feed query parameter
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// NewInvalidArgumentError creates an error for a bad feed parameter
func NewInvalidArgumentError(field, message string) *InvalidArgumentError {
	return &InvalidArgumentError{
		Field:   field,
		Message: message,
	}
}
