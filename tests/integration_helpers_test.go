package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationCommandFailureFormatConstant = "command failed: %v\n%s"
	pathEnvironmentVariableNameConstant     = "PATH"
	environmentAssignmentSeparatorConstant  = "="
	integrationBinaryFileNameConstant       = "bindgen-integration"
	fakeGeneratorFileNameConstant           = "gen_zig"
	fakeGeneratorTraceVariableConstant      = "GENERATOR_TRACE_FILE"
	fakeGeneratorFailHeaderVariableConstant = "GENERATOR_FAIL_HEADER"
	fakeGeneratorScriptConstant             = `#!/bin/sh
echo "$*" >> "$GENERATOR_TRACE_FILE"
if [ -n "$GENERATOR_FAIL_HEADER" ] && [ "$2" = "$GENERATOR_FAIL_HEADER" ]; then
  echo "cannot parse $2" >&2
  exit 3
fi
exit 0
`
)

func requirePOSIXShell(testInstance *testing.T) {
	testInstance.Helper()
	if runtime.GOOS == "windows" {
		testInstance.Skip("fake generator requires a POSIX shell")
	}
}

func integrationRepositoryRoot(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(workingDirectory)
}

func buildIntegrationBinary(testInstance *testing.T, repositoryRoot string) string {
	testInstance.Helper()
	binaryPath := filepath.Join(testInstance.TempDir(), integrationBinaryFileNameConstant)

	command := exec.Command("go", "build", "-o", binaryPath, ".")
	command.Dir = repositoryRoot
	command.Env = os.Environ()

	outputBytes, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf(integrationCommandFailureFormatConstant, runError, string(outputBytes))
	}
	return binaryPath
}

// installFakeGenerator writes a gen_zig script that records its arguments and returns the directory holding it.
func installFakeGenerator(testInstance *testing.T) string {
	testInstance.Helper()
	binaryDirectory := testInstance.TempDir()
	scriptPath := filepath.Join(binaryDirectory, fakeGeneratorFileNameConstant)
	require.NoError(testInstance, os.WriteFile(scriptPath, []byte(fakeGeneratorScriptConstant), 0o755))
	return binaryDirectory
}

func readGeneratorTrace(testInstance *testing.T, tracePath string) []string {
	testInstance.Helper()
	traceBytes, readError := os.ReadFile(tracePath)
	if os.IsNotExist(readError) {
		return nil
	}
	require.NoError(testInstance, readError)
	return strings.Split(strings.TrimRight(string(traceBytes), "\n"), "\n")
}

func runBinaryIntegrationCommand(
	testInstance *testing.T,
	binaryPath string,
	workingDirectory string,
	environmentOverrides map[string]string,
	timeout time.Duration,
	arguments []string,
) (string, error) {
	testInstance.Helper()

	executionContext, cancelFunction := context.WithTimeout(context.Background(), timeout)
	defer cancelFunction()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = buildCommandEnvironment(environmentOverrides)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func buildCommandEnvironment(overrides map[string]string) []string {
	environmentValues := make(map[string]string)
	for _, assignment := range os.Environ() {
		separatorIndex := strings.Index(assignment, environmentAssignmentSeparatorConstant)
		if separatorIndex <= 0 {
			continue
		}
		environmentValues[assignment[:separatorIndex]] = assignment[separatorIndex+len(environmentAssignmentSeparatorConstant):]
	}
	for variableName, variableValue := range overrides {
		environmentValues[variableName] = variableValue
	}

	environmentNames := make([]string, 0, len(environmentValues))
	for variableName := range environmentValues {
		environmentNames = append(environmentNames, variableName)
	}
	sort.Strings(environmentNames)

	mergedEnvironment := make([]string, 0, len(environmentNames))
	for _, variableName := range environmentNames {
		mergedEnvironment = append(mergedEnvironment, variableName+environmentAssignmentSeparatorConstant+environmentValues[variableName])
	}
	return mergedEnvironment
}
