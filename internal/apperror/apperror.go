// Package apperror defines the failure taxonomy shared by the booking
// engine and its transport.  A *Failure carries a Kind, used to pick the
// exit code or HTTP status, and a user-facing Message.  Err, when set, is
// the internal cause and is never shown to the caller.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	NotFound          Kind = "NotFound"
	InvalidState      Kind = "InvalidState"
	ValidationFailure Kind = "ValidationFailure"
	Conflict          Kind = "Conflict"
	StorageFailure    Kind = "StorageFailure"
)

// MsgStorageUnavailable is the only message a StorageFailure exposes.
const MsgStorageUnavailable = "El almacenamiento no está disponible. Intente nuevamente más tarde."

type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// New returns a failure of the given kind.
func New(kind Kind, msg string) *Failure {
	return &Failure{Kind: kind, Message: msg}
}

// Storage wraps a collaborator error as a StorageFailure with the generic
// message.
func Storage(err error) *Failure {
	return &Failure{Kind: StorageFailure, Message: MsgStorageUnavailable, Err: err}
}

// As extracts the *Failure from err, if any.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the failure kind of err.  Errors that are not failures
// are reported as StorageFailure since they can only come from a
// collaborator.
func KindOf(err error) Kind {
	if f, ok := As(err); ok {
		return f.Kind
	}
	return StorageFailure
}

// Is reports whether err is a failure of the given kind.
func Is(err error, kind Kind) bool {
	f, ok := As(err)
	return ok && f.Kind == kind
}
