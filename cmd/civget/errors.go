package main

import "fmt"

// Exit codes for CLI commands.
const (
	exitSuccess        = 0
	exitError          = 1
	exitDownloadFailed = 2
)

// ExitError represents an error that should cause the process to exit with a specific code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func errDownloadFailed(failed, total int) *ExitError {
	return &ExitError{
		Code:    exitDownloadFailed,
		Message: fmt.Sprintf("%d of %d reference(s) failed.", failed, total),
	}
}
