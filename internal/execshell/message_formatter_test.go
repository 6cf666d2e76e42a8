package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/bindgen/internal/execshell"
)

func TestCommandMessageFormatter(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	command := execshell.ShellCommand{
		Name:    "gen_zig",
		Details: execshell.CommandDetails{Arguments: []string{"gen", "../sokol_gl.h", "sgl_", "sg_"}, WorkingDirectory: "bindgen"},
	}

	testCases := []struct {
		name     string
		rendered string
		expected string
	}{
		{name: "started", rendered: formatter.BuildStartedMessage(command), expected: "Running gen_zig gen ../sokol_gl.h sgl_ sg_ (in bindgen)"},
		{name: "completed", rendered: formatter.BuildSuccessMessage(command), expected: "Completed gen_zig gen ../sokol_gl.h sgl_ sg_ (in bindgen)"},
		{
			name:     "exit_failure_uses_stderr",
			rendered: formatter.BuildFailureMessage(command, execshell.ExecutionResult{ExitCode: 1, StandardError: "\nunknown type sg_image\nmore"}),
			expected: "gen_zig gen ../sokol_gl.h sgl_ sg_ (in bindgen) failed with exit code 1: unknown type sg_image",
		},
		{
			name:     "exit_failure_without_output",
			rendered: formatter.BuildFailureMessage(command, execshell.ExecutionResult{ExitCode: 4}),
			expected: "gen_zig gen ../sokol_gl.h sgl_ sg_ (in bindgen) failed with exit code 4",
		},
		{
			name:     "output",
			rendered: formatter.BuildOutputMessage(command, execshell.ExecutionResult{StandardOutput: "wrote sokol/gl.zig\n", StandardError: "\nwarning: skipped sgl_context_desc_t\n"}),
			expected: "gen_zig gen ../sokol_gl.h sgl_ sg_ (in bindgen) output:\nwrote sokol/gl.zig\nwarning: skipped sgl_context_desc_t",
		},
		{
			name:     "execution_failure",
			rendered: formatter.BuildExecutionFailureMessage(execshell.ShellCommand{Name: "gen_zig"}, errors.New("executable file not found")),
			expected: "gen_zig failed: executable file not found",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.rendered)
		})
	}
}
