package data

import "errors"

var (
	// ErrRecordNotFound is returned by lookups and status transitions when no
	// matching row exists. Transitions never create records.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateRecord is returned by CreateSeries when the url is taken.
	ErrDuplicateRecord = errors.New("duplicate record")
)
