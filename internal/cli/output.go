package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/architeacher/household/internal/domain/model"
	"gopkg.in/yaml.v3"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// ExitCode maps err to a process exit code. Malformed input exits with
// ExitUsage, anything else with ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	for _, kind := range []error{model.ErrParse, model.ErrCompile, model.ErrInvalidParameter, model.ErrNullParameter} {
		if errors.Is(err, kind) {
			return ExitUsage
		}
	}

	return ExitFailure
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml output: %w", err)
		}

		return encoder.Close()
	default:
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding json output: %w", err)
		}

		return nil
	}
}
