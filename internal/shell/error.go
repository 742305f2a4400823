package shell

import "fmt"

// ExitError carries the process exit code a shell run resolved to. A code
// of zero is a normal exit; the error form keeps it flowing through the
// cli action chain.
type ExitError struct {
	ExitCode int
}

func NewExitError(code int) *ExitError {
	return &ExitError{ExitCode: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("shell exited with code %d", e.ExitCode)
}
