package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	// ErrNotFound is returned when a document or master record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a business key (document number, plate, citizen id) is already taken.
	ErrDuplicate = errors.New("duplicate")
)

// ConflictError is a 409 carrying the offending keys, e.g. invoice numbers already billed elsewhere.
type ConflictError struct {
	Message    string
	Duplicates []string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if len(e.Duplicates) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Duplicates, ", "))
}

// Is lets errors.Is(err, ErrDuplicate) match conflicts.
func (e *ConflictError) Is(target error) bool {
	return target == ErrDuplicate
}

func NewConflict(message string, duplicates ...string) *ConflictError {
	return &ConflictError{Message: message, Duplicates: duplicates}
}

// NotFoundError names the missing record in Thai, e.g. "ไม่พบใบวางบิล".
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return "ไม่พบ" + e.What
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound reports a missing record; what is the Thai name of the record kind.
func NotFound(what string) error {
	return &NotFoundError{What: what}
}
