package errors

import stderrors "errors"

// Exit codes returned by commands.
const (
	ExitInvalidArgs    = 1
	ExitPassFailed     = 2
	ExitMutationFailed = 3
)

// CommandError represents an error that occurred during command execution, storing relevant results.
type CommandError struct {
	ExitCode    int
	CommonError string
	Args        interface{}
	Result      interface{}
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError instance, encapsulating args, result, and the error message.
func NewCommandError(args interface{}, result interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Args:        args,
		Result:      result,
		Err:         err,
	}
}

// NewCommandErrorWithMessage keeps err for errors.Is/As but shows message to the user.
func NewCommandErrorWithMessage(args interface{}, message string, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: message,
		Args:        args,
		Err:         err,
	}
}

// ExitCode returns the exit code carried by err, ExitInvalidArgs for other errors and 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if stderrors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitInvalidArgs
}
