package cli

import (
	_ "embed"
	"fmt"

	mapstructure "github.com/go-viper/mapstructure/v2"

	"github.com/tyemirov/bindgen/internal/bindgen"
)

const (
	embeddedConfigurationTypeConstant   = "yaml"
	taskConfigurationDecodeTemplate     = "tasks[%d]: %w"
	taskConfigurationDecoderTemplate    = "tasks[%d]: unable to build decoder: %w"
	taskConfigurationValidationTemplate = "invalid task configuration: %w"
)

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns the configuration shipped with the binary and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfiguration...), embeddedConfigurationTypeConstant
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration `mapstructure:"common"`
	Generator bindgen.GeneratorConfiguration `mapstructure:"generator"`
	Tasks     []map[string]any               `mapstructure:"tasks"`
}

// ApplicationCommonConfiguration stores logging and execution defaults.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	DryRun    bool   `mapstructure:"dry_run"`
}

// decodeTaskConfigurations converts configured task entries, rejecting unknown keys.
// An absent list yields the built-in tasks.
func decodeTaskConfigurations(entries []map[string]any) ([]bindgen.GenerationTask, error) {
	if entries == nil {
		return bindgen.DefaultTasks(), nil
	}

	tasks := make([]bindgen.GenerationTask, 0, len(entries))
	for entryIndex, entry := range entries {
		var task bindgen.GenerationTask
		decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           &task,
		})
		if decoderError != nil {
			return nil, fmt.Errorf(taskConfigurationDecoderTemplate, entryIndex, decoderError)
		}
		if decodeError := decoder.Decode(entry); decodeError != nil {
			return nil, fmt.Errorf(taskConfigurationDecodeTemplate, entryIndex, decodeError)
		}
		tasks = append(tasks, task)
	}

	if validationError := bindgen.ValidateTasks(tasks); validationError != nil {
		return nil, fmt.Errorf(taskConfigurationValidationTemplate, validationError)
	}
	return tasks, nil
}
