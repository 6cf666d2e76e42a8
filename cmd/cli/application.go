package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tyemirov/bindgen/internal/bindgen"
	"github.com/tyemirov/bindgen/internal/execshell"
	"github.com/tyemirov/bindgen/internal/utils"
	flagutils "github.com/tyemirov/bindgen/internal/utils/flags"
	"github.com/tyemirov/bindgen/pkg/taskrunner"
)

const (
	applicationNameConstant                                     = "bindgen"
	applicationShortDescriptionConstant                         = "Generate language bindings for the sokol headers"
	applicationLongDescriptionConstant                          = "bindgen prepares the binding generator once and then generates bindings for every configured header, in order, stopping at the first failure."
	configFileFlagNameConstant                                  = "config"
	configFileFlagUsageConstant                                 = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                                    = "log-level"
	logLevelFlagUsageConstant                                   = "Override the configured log level."
	logFormatFlagNameConstant                                   = "log-format"
	logFormatFlagUsageConstant                                  = "Override the configured log format (structured or console)."
	versionFlagNameConstant                                     = "version"
	versionFlagUsageConstant                                    = "Print the bindgen version and exit."
	configurationInitializationFlagNameConstant                 = "init"
	configurationInitializationFlagUsageConstant                = "Write the embedded default configuration to LOCAL (./config.yaml) or user ($HOME/.bindgen/config.yaml) scope."
	configurationInitializationForceFlagNameConstant            = "force"
	configurationInitializationForceFlagUsageConstant           = "Overwrite an existing configuration file when initializing."
	configurationInitializationScopeLocalConstant               = "local"
	configurationInitializationScopeUserConstant                = "user"
	configurationInitializationUnsupportedScopeTemplateConstant = "unsupported initialization scope %q"
	configurationInitializationDirectoryErrorTemplateConstant   = "unable to resolve configuration directory: %w"
	configurationInitializationExistingFileTemplateConstant     = "configuration file already exists at %s (use --force to overwrite)"
	configurationInitializationWriteErrorTemplateConstant       = "unable to write configuration file %s: %w"
	configurationInitializationSuccessMessageConstant           = "configuration file created"
	commonLogLevelConfigKeyConstant                             = "common.log_level"
	commonLogFormatConfigKeyConstant                            = "common.log_format"
	commonDryRunConfigKeyConstant                               = "common.dry_run"
	environmentPrefixConstant                                   = "BINDGEN"
	configurationNameConstant                                   = "config"
	configurationTypeConstant                                   = "yaml"
	configurationFileNameConstant                               = configurationNameConstant + "." + configurationTypeConstant
	configurationDirectoryPermissionConstant                    = 0o755
	configurationFilePermissionConstant                         = 0o600
	configurationInitializedMessageConstant                     = "configuration initialized"
	configurationLogLevelFieldConstant                          = "log_level"
	configurationLogFormatFieldConstant                         = "log_format"
	configurationFileFieldConstant                              = "config_file"
	xdgConfigHomeEnvironmentVariableConstant                    = "XDG_CONFIG_HOME"
	configurationLoadErrorTemplateConstant                      = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                         = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                             = "unable to flush logger: %w"
	configurationInitializedConsoleTemplateConstant             = "%s | log level=%s | log format=%s | config file=%s"
	loggerNotInitializedMessageConstant                         = "logger not initialized"
	defaultConfigurationSearchPathConstant                      = "."
	applicationConfigurationDirectoryNameConstant               = "bindgen"
	userConfigurationDirectoryNameConstant                      = ".bindgen"
	configurationSearchPathEnvironmentVariableConstant          = "BINDGEN_CONFIG_SEARCH_PATH"
	dependenciesErrorTemplateConstant                           = "unable to prepare generation run: %w"
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(utils.LogLevel, utils.LogFormat) (utils.LoggerOutputs, error)
}

// Application wires configuration, logging and the generation run behind the cobra root command.
type Application struct {
	rootCommand                       *cobra.Command
	configurationLoader               *utils.ConfigurationLoader
	loggerFactory                     loggerOutputsFactory
	logger                            *zap.Logger
	consoleLogger                     *zap.Logger
	configuration                     ApplicationConfiguration
	configurationMetadata             utils.LoadedConfiguration
	configurationFilePath             string
	logLevelFlagValue                 string
	logFormatFlagValue                string
	commandContextAccessor            utils.CommandContextAccessor
	configurationInitializationScope  string
	configurationInitializationForced bool
	versionFlag                       bool
	versionResolver                   func(context.Context) string
	exitFunction                      func(int)
	commandRunner                     execshell.CommandRunner
	executorFactory                   taskrunner.Factory
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}
	application.versionResolver = application.resolveVersion
	application.exitFunction = os.Exit

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)
	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if initializationError := application.initializeConfiguration(command); initializationError != nil {
				return initializationError
			}

			versionRequested := application.versionFlag
			if flagValue, flagChanged, flagError := flagutils.BoolFlag(command, versionFlagNameConstant); flagError == nil && flagChanged {
				versionRequested = flagValue
			}
			if versionRequested {
				application.printVersion(command)
				application.exitFunction(0)
			}
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	persistentFlags.BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)
	cobraCommand.Flags().StringVar(&application.configurationInitializationScope, configurationInitializationFlagNameConstant, "", configurationInitializationFlagUsageConstant)
	if initializationFlag := cobraCommand.Flags().Lookup(configurationInitializationFlagNameConstant); initializationFlag != nil {
		initializationFlag.NoOptDefVal = configurationInitializationScopeLocalConstant
	}
	cobraCommand.Flags().BoolVar(&application.configurationInitializationForced, configurationInitializationForceFlagNameConstant, false, configurationInitializationForceFlagUsageConstant)

	flagutils.BindExecutionFlags(
		cobraCommand,
		flagutils.ExecutionDefaults{},
		flagutils.ExecutionFlagDefinitions{
			DryRun:    flagutils.ExecutionFlagDefinition{Name: flagutils.DryRunFlagName, Usage: flagutils.DryRunFlagUsage, Shorthand: "n", Enabled: true},
			Generator: flagutils.ExecutionFlagDefinition{Name: flagutils.GeneratorFlagName, Usage: flagutils.GeneratorFlagUsage, Shorthand: "g", Enabled: true},
		},
	)

	application.registerCommands(cobraCommand)
	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(os.Args[1:])

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		return append([]string{defaultConfigurationSearchPathConstant}, resolveUserConfigurationDirectoryPaths()...)
	}

	cleanedPaths := make([]string, 0)
	for _, pathCandidate := range filepath.SplitList(overrideValue) {
		if trimmedCandidate := strings.TrimSpace(pathCandidate); len(trimmedCandidate) > 0 {
			cleanedPaths = append(cleanedPaths, trimmedCandidate)
		}
	}
	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}
	return cleanedPaths
}

// resolveUserConfigurationDirectoryPaths lists $XDG_CONFIG_HOME/bindgen and $HOME/.bindgen, skipping unset bases.
func resolveUserConfigurationDirectoryPaths() []string {
	directoryPaths := make([]string, 0, 2)
	if xdgConfigHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariableConstant)); len(xdgConfigHome) > 0 {
		directoryPaths = append(directoryPaths, filepath.Join(xdgConfigHome, applicationConfigurationDirectoryNameConstant))
	}
	if homeDirectory, homeDirectoryError := os.UserHomeDir(); homeDirectoryError == nil && len(strings.TrimSpace(homeDirectory)) > 0 {
		directoryPaths = append(directoryPaths, filepath.Join(homeDirectory, userConfigurationDirectoryNameConstant))
	}
	return directoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		commonDryRunConfigKeyConstant:    false,
	}

	application.configuration = ApplicationConfiguration{}
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}
	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithExecutionFlags(command.Context(), flagutils.CollectExecutionFlags(command))

		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// InitializeForCommand prepares application state for the provided command name without executing command logic.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	command.SetContext(context.Background())
	return application.initializeConfiguration(command)
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

// Configuration returns the configuration resolved during initialization.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogFormat), string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		application.consoleLogger.Debug(fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
		))
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
}

// effectiveExecution merges configuration with command-line overrides into the generator settings and dry-run mode.
func (application *Application) effectiveExecution(command *cobra.Command) (bindgen.GeneratorConfiguration, bool) {
	generatorConfiguration := application.configuration.Generator
	dryRun := application.configuration.Common.DryRun

	executionFlags, overridesAvailable := flagutils.ResolveExecutionFlags(command)
	if !overridesAvailable {
		return generatorConfiguration, dryRun
	}
	if executionFlags.DryRunSet {
		dryRun = executionFlags.DryRun
	}
	if executionFlags.GeneratorSet {
		generatorConfiguration.Command = executionFlags.Generator
	}
	return generatorConfiguration, dryRun
}

func (application *Application) runRootCommand(command *cobra.Command) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	if command.Flags().Changed(configurationInitializationFlagNameConstant) {
		return application.initializeConfigurationFile(command)
	}

	tasks, tasksError := decodeTaskConfigurations(application.configuration.Tasks)
	if tasksError != nil {
		return tasksError
	}

	generatorConfiguration, dryRun := application.effectiveExecution(command)
	dependencies, dependenciesError := taskrunner.BuildDependencies(
		taskrunner.DependenciesConfig{
			LoggerProvider:               func() *zap.Logger { return application.logger },
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			CommandRunner:                application.commandRunner,
			Generator:                    generatorConfiguration,
		},
		taskrunner.DependenciesOptions{Command: command, DryRun: dryRun},
	)
	if dependenciesError != nil {
		return fmt.Errorf(dependenciesErrorTemplateConstant, dependenciesError)
	}

	return taskrunner.Resolve(application.executorFactory, dependencies).Run(command.Context(), tasks)
}

func (application *Application) initializeConfigurationFile(command *cobra.Command) error {
	targetDirectory, directoryError := resolveInitializationDirectory(application.configurationInitializationScope)
	if directoryError != nil {
		return directoryError
	}
	targetPath := filepath.Join(targetDirectory, configurationFileNameConstant)

	if _, statError := os.Stat(targetPath); statError == nil && !application.configurationInitializationForced {
		return fmt.Errorf(configurationInitializationExistingFileTemplateConstant, targetPath)
	}
	if mkdirError := os.MkdirAll(targetDirectory, configurationDirectoryPermissionConstant); mkdirError != nil {
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, targetPath, mkdirError)
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if writeError := os.WriteFile(targetPath, configurationContent, configurationFilePermissionConstant); writeError != nil {
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, targetPath, writeError)
	}

	application.logger.Info(configurationInitializationSuccessMessageConstant, zap.String(configurationFileFieldConstant, targetPath))
	fmt.Fprintln(command.OutOrStdout(), targetPath)
	return nil
}

func resolveInitializationDirectory(scope string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(scope)) {
	case "", configurationInitializationScopeLocalConstant:
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		return workingDirectory, nil
	case configurationInitializationScopeUserConstant:
		homeDirectory, homeDirectoryError := os.UserHomeDir()
		if homeDirectoryError != nil {
			return "", fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, homeDirectoryError)
		}
		return filepath.Join(homeDirectory, userConfigurationDirectoryNameConstant), nil
	default:
		return "", fmt.Errorf(configurationInitializationUnsupportedScopeTemplateConstant, scope)
	}
}

func (application *Application) flushLogger() error {
	if syncError := syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return syncLoggerInstance(application.consoleLogger)
}

func syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP), errors.Is(syncError, syscall.EINVAL), errors.Is(syncError, syscall.EBADF), errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}
