package users

import "fmt"

// UserError represents errors related to user operations
type UserError struct {
	Type    string
	UserID  string
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("user error [%s] for user %s: %s (caused by: %v)", e.Type, e.UserID, e.Message, e.Cause)
	}
	return fmt.Sprintf("user error [%s] for user %s: %s", e.Type, e.UserID, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// User error types
const (
	UserErrorTypeNotFound         = "not_found"
	UserErrorTypeValidationFailed = "validation_failed"
)

// NewUserNotFoundError creates an error for when a user is not found
func NewUserNotFoundError(userID string) *UserError {
	return &UserError{
		Type:    UserErrorTypeNotFound,
		UserID:  userID,
		Message: "user not found",
	}
}

// NewUserValidationError creates an error for user validation failures
func NewUserValidationError(userID string, message string) *UserError {
	return &UserError{
		Type:    UserErrorTypeValidationFailed,
		UserID:  userID,
		Message: message,
	}
}
