package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTermsRejected is returned when the user declines the terms and
	// chooses not to edit the form again.
	ErrTermsRejected = errors.New("tui: terms rejected")
	// ErrNoRegions is returned when the region lookup failed or came back
	// empty, so there is nothing to choose from.
	ErrNoRegions = errors.New("tui: no regions available")
)
