package taskrunner

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/bindgen/internal/bindgen"
)

// Executor runs generation tasks against a binding generator.
type Executor interface {
	Run(ctx context.Context, tasks []bindgen.GenerationTask) error
}

// Factory constructs an Executor given resolved dependencies.
type Factory func(Dependencies) Executor

// Dependencies carries the collaborators an Executor needs.
type Dependencies struct {
	Logger               *zap.Logger
	Generator            bindgen.Generator
	HumanReadableLogging bool
	Output               io.Writer
	Errors               io.Writer
	DisableSummary       bool
	Clock                func() time.Time
}

type generationRunner interface {
	Run(ctx context.Context, tasks []bindgen.GenerationTask) error
}

type taskRunnerAdapter struct {
	runner            generationRunner
	constructionError error
}

func (adapter taskRunnerAdapter) Run(ctx context.Context, tasks []bindgen.GenerationTask) error {
	if adapter.constructionError != nil {
		return fmt.Errorf("taskrunner.runner: %w", adapter.constructionError)
	}
	return adapter.runner.Run(ctx, tasks)
}

// Resolve returns either the provided factory result or a default bindgen runner.
func Resolve(factory Factory, dependencies Dependencies) Executor {
	var base Executor
	if factory != nil {
		base = factory(dependencies)
	}
	if base == nil {
		logger := dependencies.Logger
		if logger == nil {
			logger = zap.NewNop()
		}
		runner, runnerError := bindgen.NewRunner(logger, dependencies.Generator, dependencies.HumanReadableLogging)
		base = taskRunnerAdapter{runner: runner, constructionError: runnerError}
	}
	return summaryExecutor{
		delegate:     base,
		dependencies: dependencies,
	}
}

type summaryExecutor struct {
	delegate     Executor
	dependencies Dependencies
}

func (executor summaryExecutor) Run(ctx context.Context, tasks []bindgen.GenerationTask) error {
	clock := executor.dependencies.Clock
	if clock == nil {
		clock = time.Now
	}
	startedAt := clock()
	if runError := executor.delegate.Run(ctx, tasks); runError != nil {
		return runError
	}
	executor.printSummary(len(tasks), clock().Sub(startedAt))
	return nil
}

func (executor summaryExecutor) printSummary(taskCount int, elapsed time.Duration) {
	if executor.dependencies.DisableSummary {
		return
	}
	writer := executor.summaryWriter()
	if writer == nil {
		return
	}
	fmt.Fprintln(writer, RenderSummaryLine(NewSummaryData(taskCount, elapsed)))
}

func (executor summaryExecutor) summaryWriter() io.Writer {
	if executor.dependencies.Errors != nil {
		return executor.dependencies.Errors
	}
	if executor.dependencies.Output != nil {
		return executor.dependencies.Output
	}
	return nil
}
