package backup

import "errors"

// Sentinel errors that terminate the workflow pipeline. The CLI maps these
// to distinct exit codes.
var (
	// ErrNoMatchingFiles is returned when discovery finds zero source files
	// for the target's year/month/extension pattern.
	ErrNoMatchingFiles = errors.New("no matching source files found")

	// ErrUserAborted is returned when the user declines a confirmation
	// prompt. No further side effects are attempted after it.
	ErrUserAborted = errors.New("aborted by user")
)
