package utils_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/bindgen/internal/bindgen"
	"github.com/tyemirov/bindgen/internal/utils"
)

const (
	testRunStartedStructuredMessageConstant = "generation run starting"
	testRunStartedHumanMessageConstant      = "Generating bindings for 2 headers"
	testTaskHumanMessageConstant            = "[2/2] ../sokol_gl.h (sgl_) depends on sg_"
	testConsoleBannerMessageConstant        = "configuration initialized | log level=info"
)

func generationTasks() []bindgen.GenerationTask {
	return []bindgen.GenerationTask{
		{HeaderPath: "../sokol_gfx.h", MainPrefix: "sg_"},
		{HeaderPath: "../sokol_gl.h", MainPrefix: "sgl_", DependencyPrefixes: []string{"sg_"}},
	}
}

// captureStandardError swaps os.Stderr while emit builds and uses the loggers.
func captureStandardError(testInstance *testing.T, emit func() error) (string, error) {
	testInstance.Helper()
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	emitError := emit()
	os.Stderr = originalStandardError

	require.NoError(testInstance, pipeWriter.Close())
	captured, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return string(bytes.TrimSpace(captured)), emitError
}

func runGenerationWithLoggers(outputs utils.LoggerOutputs, humanReadableLogging bool) error {
	planGenerator, planError := bindgen.NewPlanGenerator(io.Discard)
	if planError != nil {
		return planError
	}
	runner, runnerError := bindgen.NewRunner(outputs.DiagnosticLogger, planGenerator, humanReadableLogging)
	if runnerError != nil {
		return runnerError
	}
	if runError := runner.Run(context.Background(), generationTasks()); runError != nil {
		return runError
	}
	outputs.ConsoleLogger.Info(testConsoleBannerMessageConstant)
	return nil
}

func TestLoggerFactoryStructuredFormatEmitsJSONRunEvents(testInstance *testing.T) {
	captured, runError := captureStandardError(testInstance, func() error {
		outputs, creationError := utils.NewLoggerFactory().CreateLoggerOutputs(utils.LogLevelInfo, utils.LogFormatStructured)
		if creationError != nil {
			return creationError
		}
		return runGenerationWithLoggers(outputs, false)
	})
	require.NoError(testInstance, runError)
	require.NotContains(testInstance, captured, testConsoleBannerMessageConstant)

	lines := strings.Split(captured, "\n")
	require.NotEmpty(testInstance, lines)
	var firstEntry map[string]any
	require.NoError(testInstance, json.Unmarshal([]byte(lines[0]), &firstEntry))
	require.Equal(testInstance, testRunStartedStructuredMessageConstant, firstEntry["message"])
	require.Equal(testInstance, "info", firstEntry["level"])
	require.Contains(testInstance, firstEntry, "timestamp")
	require.EqualValues(testInstance, 2, firstEntry["task_count"])
	for _, line := range lines {
		require.True(testInstance, json.Valid([]byte(line)), line)
	}
}

func TestLoggerFactoryConsoleFormatEmitsHumanReadableRunLines(testInstance *testing.T) {
	captured, runError := captureStandardError(testInstance, func() error {
		outputs, creationError := utils.NewLoggerFactory().CreateLoggerOutputs(utils.LogLevelInfo, utils.LogFormatConsole)
		if creationError != nil {
			return creationError
		}
		return runGenerationWithLoggers(outputs, true)
	})
	require.NoError(testInstance, runError)

	lines := strings.Split(captured, "\n")
	require.NotEmpty(testInstance, lines)
	require.True(testInstance, strings.HasPrefix(lines[0], "INFO"), lines[0])
	require.Contains(testInstance, lines[0], testRunStartedHumanMessageConstant)
	require.False(testInstance, json.Valid([]byte(lines[0])))
	require.Contains(testInstance, captured, testTaskHumanMessageConstant)
	require.Equal(testInstance, testConsoleBannerMessageConstant, lines[len(lines)-1])
}

func TestLoggerFactoryLevelFiltersRunEvents(testInstance *testing.T) {
	testCases := []struct {
		name            string
		logLevel        utils.LogLevel
		expectRunEvents bool
	}{
		{name: "default_error_level", logLevel: utils.LogLevelError, expectRunEvents: false},
		{name: "warn_level", logLevel: utils.LogLevelWarn, expectRunEvents: false},
		{name: "debug_level", logLevel: utils.LogLevelDebug, expectRunEvents: true},
		{name: "mixed_case_level", logLevel: utils.LogLevel(" Info "), expectRunEvents: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			captured, runError := captureStandardError(testInstance, func() error {
				outputs, creationError := utils.NewLoggerFactory().CreateLoggerOutputs(testCase.logLevel, utils.LogFormatStructured)
				if creationError != nil {
					return creationError
				}
				return runGenerationWithLoggers(outputs, false)
			})
			require.NoError(testInstance, runError)
			if testCase.expectRunEvents {
				require.Contains(testInstance, captured, testRunStartedStructuredMessageConstant)
			} else {
				require.Empty(testInstance, captured)
			}
		})
	}
}

func TestLoggerFactoryRejectsUnsupportedSettings(testInstance *testing.T) {
	testCases := []struct {
		name            string
		logLevel        utils.LogLevel
		logFormat       utils.LogFormat
		expectedMessage string
	}{
		{name: "level", logLevel: utils.LogLevel("verbose"), logFormat: utils.LogFormatStructured, expectedMessage: `unsupported log level "verbose"`},
		{name: "format", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormat("xml"), expectedMessage: `unsupported log format "xml"`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputs, creationError := utils.NewLoggerFactory().CreateLoggerOutputs(testCase.logLevel, testCase.logFormat)
			require.EqualError(testInstance, creationError, testCase.expectedMessage)
			require.Zero(testInstance, outputs)
		})
	}
}
