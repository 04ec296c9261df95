package errors

import (
	"fmt"
)

// ParsingError reports that the input of a tool could not be retrieved, for
// example because the dashboard is unreachable. It aborts the analysis.
type ParsingError struct {
	Source string
	Err    error
}

// Error implements the error interface for ParsingError.
func (e *ParsingError) Error() string {
	return fmt.Sprintf("failed to retrieve %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParsingError) Unwrap() error {
	return e.Err
}

// NewParsingError wraps err as a ParsingError for the given source.
func NewParsingError(source string, err error) *ParsingError {
	return &ParsingError{Source: source, Err: err}
}

// CommandResult describes the outcome of a command run.
type CommandResult struct {
	Args    interface{} `json:"args"`
	Result  interface{} `json:"result"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
}

// CommandError represents an error that occurred during command execution, storing relevant results.
type CommandError struct {
	ExitCode    int
	CommonError string
	Result      CommandResult
	err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// Unwrap returns the error the command failed with.
func (e *CommandError) Unwrap() error {
	return e.err
}

// NewCommandError creates a new CommandError instance, encapsulating args, result, and the error message.
func NewCommandError(args interface{}, result interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Result: CommandResult{
			Args:    args,
			Result:  result,
			Status:  "FAILED",
			Message: err.Error(),
		},
		err: err,
	}
}
