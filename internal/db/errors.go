package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// NotFoundError reports that a referenced record does not exist. Kind is the
// entity name ("project", "task", "user", ...) so callers can map it to a
// response without string matching.
type NotFoundError struct {
	Kind string
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// DuplicateMembershipError reports an attempt to add a second membership for
// the same (project, user) pair.
type DuplicateMembershipError struct {
	ProjectID uint
	UserID    uint
}

func (e *DuplicateMembershipError) Error() string {
	return fmt.Sprintf("user %d already has a membership in project %d", e.UserID, e.ProjectID)
}

// ValidationError rejects malformed input before any mutation happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsDuplicateMembership(err error) bool {
	var dup *DuplicateMembershipError
	return errors.As(err, &dup)
}

// wrapNotFound converts gorm's record-not-found sentinel into a typed
// NotFoundError carrying the entity kind and id.
func wrapNotFound(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}
