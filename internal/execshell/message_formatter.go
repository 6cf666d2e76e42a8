package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	completedMessageTemplateConstant        = "Completed %s"
	exitFailureMessageTemplateConstant      = "%s failed with exit code %d"
	executionFailureMessageTemplateConstant = "%s failed: %v"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	outputMessageTemplateConstant           = "%s output:\n%s"
)

// CommandMessageFormatter renders human-readable command lifecycle messages.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.describe(command))
}

// BuildSuccessMessage describes a command that exited cleanly.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(completedMessageTemplateConstant, formatter.describe(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	message := fmt.Sprintf(exitFailureMessageTemplateConstant, formatter.describe(command), result.ExitCode)
	detail := firstNonEmptyLine(result.StandardError)
	if len(detail) == 0 {
		detail = firstNonEmptyLine(result.StandardOutput)
	}
	if len(detail) > 0 {
		message = fmt.Sprintf("%s: %s", message, detail)
	}
	return message
}

// BuildExecutionFailureMessage describes a command the runner could not execute.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, cause error) string {
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatter.describe(command), cause)
}

// BuildOutputMessage renders the captured output of a command, stdout first.
func (formatter CommandMessageFormatter) BuildOutputMessage(command ShellCommand, result ExecutionResult) string {
	sections := make([]string, 0, 2)
	for _, stream := range []string{result.StandardOutput, result.StandardError} {
		if trimmed := strings.TrimSpace(stream); len(trimmed) > 0 {
			sections = append(sections, trimmed)
		}
	}
	return fmt.Sprintf(outputMessageTemplateConstant, formatter.describe(command), strings.Join(sections, "\n"))
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) string {
	parts := make([]string, 0, len(command.Details.Arguments)+1)
	parts = append(parts, string(command.Name))
	parts = append(parts, command.Details.Arguments...)
	description := strings.Join(parts, " ")

	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) > 0 {
		description += fmt.Sprintf(workingDirectorySuffixTemplateConstant, workingDirectory)
	}
	return description
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 0 {
			return trimmed
		}
	}
	return ""
}
