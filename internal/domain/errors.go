package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error so transports can branch on cause.
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindConflict:
		return "CONFLICT"
	default:
		return "PERSISTENCE_ERROR"
	}
}

// Error is a business error with a kind and a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrQuizNotFound indicates the quiz id does not resolve.
	ErrQuizNotFound = &Error{Kind: KindNotFound, Message: "quiz not found"}
	// ErrAttemptNotFound indicates the attempt id does not resolve.
	ErrAttemptNotFound = &Error{Kind: KindNotFound, Message: "attempt not found"}
	// ErrUserNotFound indicates the user id does not resolve.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "user not found"}
	// ErrAnswerCountMismatch is returned when answers do not cover every question exactly once.
	ErrAnswerCountMismatch = &Error{Kind: KindValidation, Message: "answers array length mismatch"}
	// ErrNotAttemptOwner is returned when a caller reads someone else's attempt.
	ErrNotAttemptOwner = &Error{Kind: KindForbidden, Message: "attempt belongs to another user"}
	// ErrUnauthenticated is returned when no caller identity is present.
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Message: "user or password invalid"}
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = &Error{Kind: KindConflict, Message: "username already exists"}
)

// Validation builds a validation error with a formatted message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err. Errors that carry no kind are storage
// failures and classify as KindPersistence.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "storage failure"
}
