package bindgen

import (
	"errors"
	"fmt"
)

const (
	prepareFailedErrorMessageConstant      = "bindgen.prepare"
	taskFailedErrorMessageTemplateConstant = "bindgen.generate[%d] %s (%s)"
	generatorMissingErrorMessageConstant   = "binding generator not configured"
	loggerMissingErrorMessageConstant      = "bindgen logger not configured"
)

var (
	// ErrGeneratorNotConfigured indicates the runner was built without a generator.
	ErrGeneratorNotConfigured = errors.New(generatorMissingErrorMessageConstant)
	// ErrLoggerNotConfigured indicates the runner was built without a logger.
	ErrLoggerNotConfigured = errors.New(loggerMissingErrorMessageConstant)
)

// PrepareFailedError reports a failure of the one-time preparation step.
type PrepareFailedError struct {
	Cause error
}

// Error describes the preparation failure.
func (prepareError PrepareFailedError) Error() string {
	return fmt.Sprintf("%s: %v", prepareFailedErrorMessageConstant, prepareError.Cause)
}

// Unwrap exposes the generator error.
func (prepareError PrepareFailedError) Unwrap() error {
	return prepareError.Cause
}

// TaskFailedError reports the task that stopped the run.
type TaskFailedError struct {
	Index int
	Task  GenerationTask
	Cause error
}

// Error describes the failing task.
func (taskError TaskFailedError) Error() string {
	message := fmt.Sprintf(taskFailedErrorMessageTemplateConstant, taskError.Index, taskError.Task.HeaderPath, taskError.Task.MainPrefix)
	return fmt.Sprintf("%s: %v", message, taskError.Cause)
}

// Unwrap exposes the generator error.
func (taskError TaskFailedError) Unwrap() error {
	return taskError.Cause
}
