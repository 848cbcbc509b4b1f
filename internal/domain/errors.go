package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyExists is matched by AlreadyExistsError through errors.Is so callers
// can detect duplicates without depending on the store package.
var ErrAlreadyExists = errors.New("already exists")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(msg string) error {
	return &ValidationError{msg: msg}
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// InvalidTimeError reports a required time value that was not supplied.
type InvalidTimeError struct {
	msg string
}

func (e *InvalidTimeError) Error() string {
	return e.msg
}

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string {
	return e.msg
}

func UserNotFound(id uuid.UUID) error {
	return &NotFoundError{msg: fmt.Sprintf("User %s not found", id)}
}

func UserOfTypeNotFound(id uuid.UUID, t UserType) error {
	return &NotFoundError{msg: fmt.Sprintf("User %s, type %s not found", id, t)}
}

// AlreadyExistsError is a ValidationError raised when a slot with the same
// owner, start and end is already stored.
type AlreadyExistsError struct {
	ValidationError
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

func (e *AlreadyExistsError) As(target any) bool {
	if v, ok := target.(**ValidationError); ok {
		*v = &e.ValidationError
		return true
	}
	return false
}

func SlotAlreadyExists(ownerID uuid.UUID, start, end time.Time) error {
	return &AlreadyExistsError{ValidationError{msg: fmt.Sprintf(
		"Agenda already exists for user %s, start %s, end %s",
		ownerID, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339),
	)}}
}
