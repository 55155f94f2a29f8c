package model

import "fmt"

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitGitError indicates a Git operation (worktree add/remove) failed.
	ExitGitError ExitCode = 2

	// ExitPortAllocationFailed indicates no run of free ports could be
	// found in the configured range.
	ExitPortAllocationFailed ExitCode = 3

	// ExitWorktreeNotFound indicates the specified worktree does not exist.
	ExitWorktreeNotFound ExitCode = 4

	// ExitUserCancelled indicates the user declined an interactive prompt.
	ExitUserCancelled ExitCode = 5

	// ExitHomeDirUnavailable indicates the base storage location could not
	// be resolved. Nothing can be persisted without it, so this is fatal.
	ExitHomeDirUnavailable ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// IOError wraps a file read/write failure, surfacing the path involved.
func IOError(op, path string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", op, path, err)
}

// ParseError wraps a malformed-JSON failure, surfacing the path involved.
func ParseError(path string, err error) error {
	return fmt.Errorf("failed to parse %s: %w", path, err)
}
