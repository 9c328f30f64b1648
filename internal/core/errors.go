package core

// ValidationError reports bad, missing or oversized input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports that no row matched.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func invalid(msg string) error  { return &ValidationError{Message: msg} }
func notFound(msg string) error { return &NotFoundError{Message: msg} }
