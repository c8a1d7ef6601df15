package updater

import "fmt"

// Process exit codes with a fixed meaning.
const (
	ExitNoPackage       = 1
	ExitVersionNotFound = 2
)

// ExitError carries the exit code a run should end the process with.
type ExitError struct {
	// Code is the process exit code.
	Code int
	// Err is the cause, nil when a child process failed on its own.
	Err error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}

	return e.Err.Error()
}

// Unwrap returns the cause.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns a usable process exit code; codes a signal produced (-1) become 1.
func (e *ExitError) ExitCode() int {
	if e.Code <= 0 {
		return 1
	}

	return e.Code
}
