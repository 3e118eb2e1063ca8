package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMemberNotFound is returned for unknown member ids
	ErrMemberNotFound = errors.New("member not found")
	// ErrSyncInProgress is returned when another sync holds the lock
	ErrSyncInProgress = errors.New("a sync is already in progress")
	// ErrSyncTimeout is returned when a sync exceeds its time budget
	ErrSyncTimeout = errors.New("sync timed out")
	// ErrSyncCanceled is returned when the caller goes away or the server shuts
	// down mid-sync
	ErrSyncCanceled = errors.New("sync canceled")
	// ErrCommerceUnavailable is returned when no commerce client is configured
	ErrCommerceUnavailable = errors.New("commerce platform is not configured")
	// ErrUpstream wraps failures of the commerce platform or email provider
	ErrUpstream = errors.New("upstream service error")
	// ErrBackupDisabled is returned when no backup bucket is configured
	ErrBackupDisabled = errors.New("backups are not configured")
)

// ValidationError is a rejected request; nothing was changed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// SyncError reports a failed sync with how far it got. Upserts already
// committed stay committed.
type SyncError struct {
	Err            error
	Processed      int
	NewMembers     int
	UpdatedMembers int
	Failed         int
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed after %d members (%d new, %d updated, %d failed): %v",
		e.Processed, e.NewMembers, e.UpdatedMembers, e.Failed, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
