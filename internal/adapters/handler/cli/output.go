package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation ran and was refused (already completed, reward failed)
	ExitCommandError = 2 // bad flags, config or storage
)

type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no code.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type cliResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// printResult writes data as a JSON envelope, or text verbatim.
func printResult(w io.Writer, format string, data any, text string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(cliResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
