package entity

import "errors"

var (
	// ErrNotFound is returned by repositories when a referenced row does not
	// exist or is soft-deleted.
	ErrNotFound = errors.New("record not found")

	// ErrCurrentConflict signals a concurrent writer already holds the
	// current follow-up slot for the lead.
	ErrCurrentConflict = errors.New("current follow-up already exists")
)
