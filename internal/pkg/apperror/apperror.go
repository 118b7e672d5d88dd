package apperror

import "fmt"

// AppError is an error that carries the HTTP status it should be reported with.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by status code and message, so a sentinel still
// matches after Wrap attaches a cause to a copy of it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf is New with a formatted message.
func Newf(code int, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// With returns a copy of sentinel e that records cause.
func (e *AppError) With(cause error) *AppError {
	return Wrap(cause, e.Code, e.Message)
}
