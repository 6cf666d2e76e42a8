package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tyemirov/bindgen/internal/bindgen"
	"github.com/tyemirov/bindgen/internal/execshell"
	"github.com/tyemirov/bindgen/internal/version"
)

const (
	tasksCommandUseNameConstant          = "tasks"
	tasksCommandAliasConstant            = "ls"
	tasksCommandShortDescriptionConstant = "Print the effective generation task list"
	tasksCommandLongDescriptionConstant  = "tasks prints the header list bindgen would generate, after applying configuration, as YAML."
	versionCommandUseNameConstant        = "version"
	versionCommandShortDescription       = "Print the bindgen version"
	versionOutputTemplateConstant        = "bindgen version: %s\n"
	tasksYAMLIndentConstant              = 2
	tasksEncodeErrorTemplateConstant     = "unable to render task list: %w"
)

// StampedVersion is set at link time with -ldflags "-X github.com/tyemirov/bindgen/cmd/cli.StampedVersion=v1.0.0".
var StampedVersion string

type taskListing struct {
	Tasks []bindgen.GenerationTask `yaml:"tasks"`
}

func (application *Application) registerCommands(cobraCommand *cobra.Command) {
	tasksCommand := &cobra.Command{
		Use:     tasksCommandUseNameConstant,
		Aliases: []string{tasksCommandAliasConstant},
		Short:   tasksCommandShortDescriptionConstant,
		Long:    tasksCommandLongDescriptionConstant,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.printTasks(command)
		},
	}

	versionCommand := &cobra.Command{
		Use:   versionCommandUseNameConstant,
		Short: versionCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command)
			return nil
		},
	}

	cobraCommand.AddCommand(tasksCommand, versionCommand)
}

func (application *Application) printTasks(command *cobra.Command) error {
	tasks, tasksError := decodeTaskConfigurations(application.configuration.Tasks)
	if tasksError != nil {
		return tasksError
	}

	encoder := yaml.NewEncoder(command.OutOrStdout())
	encoder.SetIndent(tasksYAMLIndentConstant)
	if encodeError := encoder.Encode(taskListing{Tasks: tasks}); encodeError != nil {
		return fmt.Errorf(tasksEncodeErrorTemplateConstant, encodeError)
	}
	return encoder.Close()
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	dependencies := version.Dependencies{StampedVersion: StampedVersion}
	gitExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner(), application.humanReadableLoggingEnabled())
	if executorError == nil {
		dependencies.GitExecutor = gitExecutor
	} else {
		application.logger.Debug("git executor unavailable for version detection", zap.Error(executorError))
	}
	return strings.TrimSpace(version.Detect(executionContext, dependencies))
}

func (application *Application) printVersion(command *cobra.Command) {
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	versionString := application.versionResolver(executionContext)
	fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, versionString)
}
