package taskrunner

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/bindgen/internal/bindgen"
	"github.com/tyemirov/bindgen/internal/execshell"
)

// DependenciesConfig captures providers required to build run dependencies.
type DependenciesConfig struct {
	LoggerProvider               func() *zap.Logger
	HumanReadableLoggingProvider func() bool
	CommandRunner                execshell.CommandRunner
	Generator                    bindgen.GeneratorConfiguration
}

// DependenciesOptions allows per-command overrides when resolving run dependencies.
type DependenciesOptions struct {
	Command        *cobra.Command
	Output         io.Writer
	Errors         io.Writer
	DryRun         bool
	DisableSummary bool
}

// BuildDependencies resolves the logger, shell executor and binding generator for a run.
// Dry runs receive a PlanGenerator writing to the output writer instead of a CommandGenerator.
func BuildDependencies(config DependenciesConfig, options DependenciesOptions) (Dependencies, error) {
	logger := resolveLogger(config.LoggerProvider)
	humanReadable := false
	if config.HumanReadableLoggingProvider != nil {
		humanReadable = config.HumanReadableLoggingProvider()
	}

	outputWriter := resolveWriter(options.Output, options.Command, true)
	errorWriter := resolveWriter(options.Errors, options.Command, false)

	var generator bindgen.Generator
	if options.DryRun {
		planGenerator, planError := bindgen.NewPlanGenerator(outputWriter)
		if planError != nil {
			return Dependencies{}, fmt.Errorf("taskrunner.dependencies.plan_generator: %w", planError)
		}
		generator = planGenerator
	} else {
		commandRunner := config.CommandRunner
		if commandRunner == nil {
			commandRunner = execshell.NewOSCommandRunner()
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, humanReadable)
		if executorError != nil {
			return Dependencies{}, fmt.Errorf("taskrunner.dependencies.shell_executor: %w", executorError)
		}
		commandGenerator, generatorError := bindgen.NewCommandGenerator(config.Generator, shellExecutor)
		if generatorError != nil {
			return Dependencies{}, fmt.Errorf("taskrunner.dependencies.command_generator: %w", generatorError)
		}
		generator = commandGenerator
	}

	return Dependencies{
		Logger:               logger,
		Generator:            generator,
		HumanReadableLogging: humanReadable,
		Output:               outputWriter,
		Errors:               errorWriter,
		DisableSummary:       options.DisableSummary || options.DryRun,
	}, nil
}

func resolveLogger(provider func() *zap.Logger) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveWriter(provided io.Writer, command *cobra.Command, useStdout bool) io.Writer {
	if provided != nil {
		return provided
	}
	if command != nil {
		if useStdout {
			if writer := command.OutOrStdout(); writer != nil && writer != io.Discard {
				return writer
			}
		} else {
			if writer := command.ErrOrStderr(); writer != nil && writer != io.Discard {
				return writer
			}
		}
	}
	if useStdout {
		return os.Stdout
	}
	return os.Stderr
}
