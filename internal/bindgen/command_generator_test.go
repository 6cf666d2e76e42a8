package bindgen_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/bindgen/internal/bindgen"
	"github.com/tyemirov/bindgen/internal/execshell"
)

type recordingCommandExecutor struct {
	commands       []execshell.ShellCommand
	executionError error
}

func (executor *recordingCommandExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, command)
	return execshell.ExecutionResult{}, executor.executionError
}

func TestRenderGenerateArguments(testInstance *testing.T) {
	testCases := []struct {
		name               string
		template           []string
		dependencyPrefixes []string
		expected           []string
	}{
		{
			name:     "no_dependencies",
			template: []string{"gen", "{header}", "{prefix}", "{dependencies}"},
			expected: []string{"gen", "../sokol_gl.h", "sgl_"},
		},
		{
			name:               "multiple_dependencies",
			template:           []string{"gen", "{header}", "{prefix}", "{dependencies}"},
			dependencyPrefixes: []string{"sg_", "sapp_"},
			expected:           []string{"gen", "../sokol_gl.h", "sgl_", "sg_", "sapp_"},
		},
		{
			name:               "embedded_placeholders",
			template:           []string{"--header={header}", "--prefix={prefix}", "--out=sokol/{prefix}zig"},
			dependencyPrefixes: []string{"sg_"},
			expected:           []string{"--header=../sokol_gl.h", "--prefix=sgl_", "--out=sokol/sgl_zig"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rendered := bindgen.RenderGenerateArguments(testCase.template, "../sokol_gl.h", "sgl_", testCase.dependencyPrefixes)
			require.Equal(testInstance, testCase.expected, rendered)
		})
	}
}

func TestNewCommandGeneratorValidation(testInstance *testing.T) {
	_, executorError := bindgen.NewCommandGenerator(bindgen.DefaultGeneratorConfiguration(), nil)
	require.ErrorIs(testInstance, executorError, bindgen.ErrCommandExecutorMissing)

	_, commandError := bindgen.NewCommandGenerator(bindgen.GeneratorConfiguration{Command: "  "}, &recordingCommandExecutor{})
	require.ErrorIs(testInstance, commandError, bindgen.ErrGeneratorCommandMissing)

	invalidEnvironment := bindgen.DefaultGeneratorConfiguration()
	invalidEnvironment.Environment = []string{"SOKOL_OUT"}
	_, environmentError := bindgen.NewCommandGenerator(invalidEnvironment, &recordingCommandExecutor{})
	require.ErrorIs(testInstance, environmentError, bindgen.ErrEnvironmentEntryInvalid)
}

func TestParseEnvironmentEntries(testInstance *testing.T) {
	testCases := []struct {
		name              string
		entries           []string
		expectedVariables map[string]string
		expectError       bool
	}{
		{name: "empty", entries: nil, expectedVariables: nil},
		{name: "case_preserved", entries: []string{"SOKOL_OUT=zig", "ZigCache=.cache"}, expectedVariables: map[string]string{"SOKOL_OUT": "zig", "ZigCache": ".cache"}},
		{name: "value_with_separator", entries: []string{"SOKOL_FLAGS=a=b"}, expectedVariables: map[string]string{"SOKOL_FLAGS": "a=b"}},
		{name: "empty_value", entries: []string{"SOKOL_OUT="}, expectedVariables: map[string]string{"SOKOL_OUT": ""}},
		{name: "last_entry_wins", entries: []string{"SOKOL_OUT=zig", "SOKOL_OUT=odin"}, expectedVariables: map[string]string{"SOKOL_OUT": "odin"}},
		{name: "missing_separator", entries: []string{"SOKOL_OUT"}, expectError: true},
		{name: "missing_name", entries: []string{" =zig"}, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			variables, parseError := bindgen.ParseEnvironmentEntries(testCase.entries)
			if testCase.expectError {
				require.ErrorIs(testInstance, parseError, bindgen.ErrEnvironmentEntryInvalid)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedVariables, variables)
		})
	}
}

func TestCommandGeneratorInvokesExecutable(testInstance *testing.T) {
	executor := &recordingCommandExecutor{}
	configuration := bindgen.DefaultGeneratorConfiguration()
	configuration.Environment = []string{"SOKOL_OUT=zig"}
	generator, creationError := bindgen.NewCommandGenerator(configuration, executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, generator.Prepare(context.Background()))
	require.NoError(testInstance, generator.Generate(context.Background(), "../sokol_glue.h", "sapp_sg", []string{"sg_"}))

	require.Len(testInstance, executor.commands, 2)
	require.Equal(testInstance, execshell.CommandName("gen_zig"), executor.commands[0].Name)
	require.Equal(testInstance, []string{"prepare"}, executor.commands[0].Details.Arguments)
	require.Equal(testInstance, ".", executor.commands[0].Details.WorkingDirectory)
	require.Equal(testInstance, []string{"gen", "../sokol_glue.h", "sapp_sg", "sg_"}, executor.commands[1].Details.Arguments)
	require.Equal(testInstance, "zig", executor.commands[1].Details.EnvironmentVariables["SOKOL_OUT"])
}

func TestCommandGeneratorPropagatesExecutorFailure(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: "gen_zig"},
		Result:  execshell.ExecutionResult{ExitCode: 1},
	}
	executor := &recordingCommandExecutor{executionError: failure}
	generator, creationError := bindgen.NewCommandGenerator(bindgen.DefaultGeneratorConfiguration(), executor)
	require.NoError(testInstance, creationError)

	generateError := generator.Generate(context.Background(), "../sokol_gfx.h", "sg_", nil)
	var commandFailure execshell.CommandFailedError
	require.True(testInstance, errors.As(generateError, &commandFailure))
	require.Equal(testInstance, 1, commandFailure.Result.ExitCode)
}

func TestGeneratorConfigurationSanitize(testInstance *testing.T) {
	sanitized := bindgen.GeneratorConfiguration{Command: " gen_odin ", PrepareArguments: []string{}}.Sanitize()
	require.Equal(testInstance, "gen_odin", sanitized.Command)
	require.Equal(testInstance, ".", sanitized.WorkingDirectory)
	require.Empty(testInstance, sanitized.PrepareArguments)
	require.Equal(testInstance, bindgen.DefaultGeneratorConfiguration().GenerateArguments, sanitized.GenerateArguments)
}

func TestRunnerWithCommandGeneratorStopsAfterFailingCommand(testInstance *testing.T) {
	executor := &recordingCommandExecutor{}
	generator, creationError := bindgen.NewCommandGenerator(bindgen.DefaultGeneratorConfiguration(), executor)
	require.NoError(testInstance, creationError)

	failingExecutor := &failingAfterExecutor{delegate: executor, remainingSuccesses: 3}
	failingGenerator, failingCreationError := bindgen.NewCommandGenerator(bindgen.DefaultGeneratorConfiguration(), failingExecutor)
	require.NoError(testInstance, failingCreationError)

	require.NoError(testInstance, newTestRunner(testInstance, generator).Run(context.Background(), bindgen.DefaultTasks()))
	require.Len(testInstance, executor.commands, len(bindgen.DefaultTasks())+1)

	executor.commands = nil
	runError := newTestRunner(testInstance, failingGenerator).Run(context.Background(), bindgen.DefaultTasks())
	require.Error(testInstance, runError)
	require.Len(testInstance, executor.commands, 4)
}

type failingAfterExecutor struct {
	delegate           *recordingCommandExecutor
	remainingSuccesses int
}

func (executor *failingAfterExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	result, executionError := executor.delegate.Execute(executionContext, command)
	if executionError != nil {
		return result, executionError
	}
	if executor.remainingSuccesses == 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: execshell.ExecutionResult{ExitCode: 1}}
	}
	executor.remainingSuccesses--
	return result, nil
}
