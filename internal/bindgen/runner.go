package bindgen

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	runStartedMessageConstant             = "generation run starting"
	runCompletedMessageConstant           = "generation run completed"
	prepareStartedMessageConstant         = "generator preparation starting"
	prepareFailedMessageConstant          = "generator preparation failed"
	taskStartedMessageConstant            = "generation task starting"
	taskCompletedMessageConstant          = "generation task completed"
	taskFailedMessageConstant             = "generation task failed"
	taskCountFieldNameConstant            = "task_count"
	taskIndexFieldNameConstant            = "task_index"
	headerPathFieldNameConstant           = "header"
	mainPrefixFieldNameConstant           = "prefix"
	dependencyPrefixesFieldNameConstant   = "dependencies"
	humanRunStartedTemplateConstant       = "Generating bindings for %d headers"
	humanRunCompletedTemplateConstant     = "Generated bindings for %d headers"
	humanTaskStartedTemplateConstant      = "[%d/%d] %s (%s)"
	humanTaskDependenciesTemplateConstant = "%s depends on %s"
	humanTaskFailedTemplateConstant       = "%s (%s) failed: %v"
	humanPrepareFailedTemplateConstant    = "Generator preparation failed: %v"
	humanDependencySeparatorConstant      = ", "
)

// Runner prepares a Generator once and then generates each task in order.
type Runner struct {
	generator            Generator
	logger               *zap.Logger
	humanReadableLogging bool
}

// NewRunner builds a Runner for the provided generator.
func NewRunner(logger *zap.Logger, generator Generator, humanReadableLogging bool) (*Runner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if generator == nil {
		return nil, ErrGeneratorNotConfigured
	}
	return &Runner{
		generator:            generator,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
	}, nil
}

// Run validates the tasks, calls Prepare exactly once and then Generate for every task in list order.
// The first failure ends the run; later tasks are never generated.
func (runner *Runner) Run(executionContext context.Context, tasks []GenerationTask) error {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if validationError := ValidateTasks(tasks); validationError != nil {
		return validationError
	}

	runner.logRunStarted(len(tasks))

	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	runner.logger.Debug(prepareStartedMessageConstant)
	if prepareError := runner.generator.Prepare(executionContext); prepareError != nil {
		runner.logPrepareFailed(prepareError)
		return PrepareFailedError{Cause: prepareError}
	}

	for taskIndex, task := range tasks {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		runner.logTaskStarted(taskIndex, len(tasks), task)
		generateError := runner.generator.Generate(executionContext, task.HeaderPath, task.MainPrefix, task.DependencyPrefixes)
		if generateError != nil {
			runner.logTaskFailed(taskIndex, task, generateError)
			return TaskFailedError{Index: taskIndex, Task: task, Cause: generateError}
		}
		runner.logger.Debug(taskCompletedMessageConstant, zap.Int(taskIndexFieldNameConstant, taskIndex), zap.String(headerPathFieldNameConstant, task.HeaderPath))
	}

	runner.logRunCompleted(len(tasks))
	return nil
}

func (runner *Runner) logRunStarted(taskCount int) {
	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanRunStartedTemplateConstant, taskCount))
		return
	}
	runner.logger.Info(runStartedMessageConstant, zap.Int(taskCountFieldNameConstant, taskCount))
}

func (runner *Runner) logRunCompleted(taskCount int) {
	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanRunCompletedTemplateConstant, taskCount))
		return
	}
	runner.logger.Info(runCompletedMessageConstant, zap.Int(taskCountFieldNameConstant, taskCount))
}

func (runner *Runner) logPrepareFailed(prepareError error) {
	if runner.humanReadableLogging {
		runner.logger.Error(fmt.Sprintf(humanPrepareFailedTemplateConstant, prepareError))
		return
	}
	runner.logger.Error(prepareFailedMessageConstant, zap.Error(prepareError))
}

func (runner *Runner) logTaskStarted(taskIndex int, taskCount int, task GenerationTask) {
	if runner.humanReadableLogging {
		message := fmt.Sprintf(humanTaskStartedTemplateConstant, taskIndex+1, taskCount, task.HeaderPath, task.MainPrefix)
		if len(task.DependencyPrefixes) > 0 {
			message = fmt.Sprintf(humanTaskDependenciesTemplateConstant, message, strings.Join(task.DependencyPrefixes, humanDependencySeparatorConstant))
		}
		runner.logger.Info(message)
		return
	}
	runner.logger.Info(taskStartedMessageConstant,
		zap.Int(taskIndexFieldNameConstant, taskIndex),
		zap.String(headerPathFieldNameConstant, task.HeaderPath),
		zap.String(mainPrefixFieldNameConstant, task.MainPrefix),
		zap.Strings(dependencyPrefixesFieldNameConstant, task.DependencyPrefixes),
	)
}

func (runner *Runner) logTaskFailed(taskIndex int, task GenerationTask, generateError error) {
	if runner.humanReadableLogging {
		runner.logger.Error(fmt.Sprintf(humanTaskFailedTemplateConstant, task.HeaderPath, task.MainPrefix, generateError))
		return
	}
	runner.logger.Error(taskFailedMessageConstant,
		zap.Int(taskIndexFieldNameConstant, taskIndex),
		zap.String(headerPathFieldNameConstant, task.HeaderPath),
		zap.String(mainPrefixFieldNameConstant, task.MainPrefix),
		zap.Error(generateError),
	)
}
