package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError reports malformed input: empty or oversized content,
// missing identifiers. Not retryable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthorizationError reports that the actor is not a participant of the
// target conversation. Not retryable.
type AuthorizationError struct {
	UserID         uint
	ConversationID uint
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %d is not a participant of conversation %d", e.UserID, e.ConversationID)
}

// NotFoundError reports that a conversation or message id does not resolve.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// TransientStoreError wraps a durable-store failure. Mark-read is naturally
// idempotent and safe to retry; sends are retried with the same client_id so
// the store resolves the retry to the original row.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}

// storeErr classifies a repository error: record-not-found becomes
// NotFoundError, everything else TransientStoreError.
func storeErr(op, resource string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return &TransientStoreError{Op: op, Err: err}
}
