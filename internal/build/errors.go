package build

import "fmt"

// StepError is a failed pipeline step. ExitCode is the exit status of the
// external tool, or 1 when the step failed inside this process.
type StepError struct {
	Step     State
	Command  string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s failed (%s, exit code %d): %v", e.Step, e.Command, e.ExitCode, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Code returns the process exit code the CLI should use.
func (e *StepError) Code() int {
	if e.ExitCode <= 0 {
		return 1
	}
	return e.ExitCode
}
