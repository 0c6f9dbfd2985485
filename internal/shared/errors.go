package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Feed errors
	ErrInvalidFeed = fmt.Errorf("feed is not a valid calendar document")
	ErrFetchFailed = fmt.Errorf("feed fetch failed")

	// Replication errors
	ErrRemoteUnavailable = fmt.Errorf("remote record unavailable")
	ErrRecordMissing     = fmt.Errorf("remote record does not exist")

	// Store errors
	ErrInvalidBackup  = fmt.Errorf("invalid backup document")
	ErrSourceNotFound = fmt.Errorf("calendar source not found")
	ErrTaskNotFound   = fmt.Errorf("task not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
