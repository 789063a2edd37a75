package cli

import (
	"context"
	"errors"
	"io"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// failure marks an error raised while doing the work, as opposed to one
// raised by cobra while parsing the command line.
func failure(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
}

// Execute runs the command tree with args. Generated artifacts go to outW,
// logs and usage errors to errW. Every returned error is an *ExitError:
// failures from the work itself exit with 1, command line errors with 2.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	cmd := newRootCmd(outW, errW)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
}
