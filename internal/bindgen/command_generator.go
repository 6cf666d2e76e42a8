package bindgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/bindgen/internal/execshell"
)

const (
	// HeaderPlaceholder is replaced with the task header path inside generator arguments.
	HeaderPlaceholder = "{header}"
	// PrefixPlaceholder is replaced with the task main prefix inside generator arguments.
	PrefixPlaceholder = "{prefix}"
	// DependenciesPlaceholder expands to one argument per dependency prefix when used as a whole argument.
	DependenciesPlaceholder = "{dependencies}"
	// EnvironmentAssignmentSeparator splits a configured environment entry into name and value.
	EnvironmentAssignmentSeparator = "="

	defaultGeneratorCommandConstant          = "gen_zig"
	defaultGeneratorWorkingDirectoryConstant = "."
	defaultPrepareSubcommandConstant         = "prepare"
	defaultGenerateSubcommandConstant        = "gen"
	generatorCommandMissingMessageConstant   = "binding generator command not configured"
	commandExecutorMissingMessageConstant    = "binding generator command executor not configured"
	environmentEntryInvalidMessageConstant   = "binding generator environment entry must be NAME=value"
	environmentEntryErrorTemplateConstant    = "%w: %q"
)

var (
	// ErrGeneratorCommandMissing indicates the generator executable was not configured.
	ErrGeneratorCommandMissing = errors.New(generatorCommandMissingMessageConstant)
	// ErrCommandExecutorMissing indicates the shell executor was not provided.
	ErrCommandExecutorMissing = errors.New(commandExecutorMissingMessageConstant)
	// ErrEnvironmentEntryInvalid indicates a configured environment entry without a variable name.
	ErrEnvironmentEntryInvalid = errors.New(environmentEntryInvalidMessageConstant)
)

// CommandExecutor runs a shell command on behalf of the CommandGenerator.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// GeneratorConfiguration describes how the external binding generator is invoked.
// Environment holds NAME=value entries; a list keeps variable names case intact through the configuration loader.
type GeneratorConfiguration struct {
	Command           string   `mapstructure:"command" yaml:"command"`
	WorkingDirectory  string   `mapstructure:"working_directory" yaml:"working_directory"`
	PrepareArguments  []string `mapstructure:"prepare_arguments" yaml:"prepare_arguments"`
	GenerateArguments []string `mapstructure:"generate_arguments" yaml:"generate_arguments"`
	Environment       []string `mapstructure:"environment" yaml:"environment"`
}

// DefaultGeneratorConfiguration returns the invocation used when nothing is configured.
func DefaultGeneratorConfiguration() GeneratorConfiguration {
	return GeneratorConfiguration{
		Command:           defaultGeneratorCommandConstant,
		WorkingDirectory:  defaultGeneratorWorkingDirectoryConstant,
		PrepareArguments:  []string{defaultPrepareSubcommandConstant},
		GenerateArguments: []string{defaultGenerateSubcommandConstant, HeaderPlaceholder, PrefixPlaceholder, DependenciesPlaceholder},
	}
}

// Sanitize trims values and fills blanks from the defaults.
func (configuration GeneratorConfiguration) Sanitize() GeneratorConfiguration {
	defaults := DefaultGeneratorConfiguration()
	sanitized := configuration
	sanitized.Command = strings.TrimSpace(configuration.Command)
	sanitized.WorkingDirectory = strings.TrimSpace(configuration.WorkingDirectory)
	if len(sanitized.WorkingDirectory) == 0 {
		sanitized.WorkingDirectory = defaults.WorkingDirectory
	}
	if configuration.PrepareArguments == nil {
		sanitized.PrepareArguments = defaults.PrepareArguments
	}
	if len(configuration.GenerateArguments) == 0 {
		sanitized.GenerateArguments = defaults.GenerateArguments
	}
	return sanitized
}

// CommandGenerator delegates preparation and generation to an external executable.
type CommandGenerator struct {
	configuration        GeneratorConfiguration
	environmentVariables map[string]string
	executor             CommandExecutor
}

// NewCommandGenerator builds a CommandGenerator for the sanitized configuration.
func NewCommandGenerator(configuration GeneratorConfiguration, executor CommandExecutor) (*CommandGenerator, error) {
	if executor == nil {
		return nil, ErrCommandExecutorMissing
	}
	sanitized := configuration.Sanitize()
	if len(sanitized.Command) == 0 {
		return nil, ErrGeneratorCommandMissing
	}
	environmentVariables, environmentError := ParseEnvironmentEntries(sanitized.Environment)
	if environmentError != nil {
		return nil, environmentError
	}
	return &CommandGenerator{configuration: sanitized, environmentVariables: environmentVariables, executor: executor}, nil
}

// ParseEnvironmentEntries converts NAME=value entries into a variable map. Names keep their case;
// the value may be empty and may itself contain the separator. Later entries win.
func ParseEnvironmentEntries(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	variables := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, value, separatorFound := strings.Cut(entry, EnvironmentAssignmentSeparator)
		name = strings.TrimSpace(name)
		if !separatorFound || len(name) == 0 {
			return nil, fmt.Errorf(environmentEntryErrorTemplateConstant, ErrEnvironmentEntryInvalid, entry)
		}
		variables[name] = value
	}
	return variables, nil
}

// Prepare runs the generator with the prepare arguments.
func (generator *CommandGenerator) Prepare(executionContext context.Context) error {
	_, executionError := generator.executor.Execute(executionContext, generator.command(append([]string{}, generator.configuration.PrepareArguments...)))
	return executionError
}

// Generate runs the generator with the generate arguments rendered for one header.
func (generator *CommandGenerator) Generate(executionContext context.Context, headerPath string, mainPrefix string, dependencyPrefixes []string) error {
	arguments := RenderGenerateArguments(generator.configuration.GenerateArguments, headerPath, mainPrefix, dependencyPrefixes)
	_, executionError := generator.executor.Execute(executionContext, generator.command(arguments))
	return executionError
}

func (generator *CommandGenerator) command(arguments []string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandName(generator.configuration.Command),
		Details: execshell.CommandDetails{
			Arguments:            arguments,
			WorkingDirectory:     generator.configuration.WorkingDirectory,
			EnvironmentVariables: generator.environmentVariables,
		},
	}
}

// RenderGenerateArguments substitutes task values into an argument template.
func RenderGenerateArguments(template []string, headerPath string, mainPrefix string, dependencyPrefixes []string) []string {
	rendered := make([]string, 0, len(template)+len(dependencyPrefixes))
	replacer := strings.NewReplacer(HeaderPlaceholder, headerPath, PrefixPlaceholder, mainPrefix)
	for _, argument := range template {
		if argument == DependenciesPlaceholder {
			rendered = append(rendered, dependencyPrefixes...)
			continue
		}
		rendered = append(rendered, replacer.Replace(argument))
	}
	return rendered
}
