package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant          = "."
	environmentKeyReplacementConstant        = "_"
	embeddedConfigurationReadErrorTemplate   = "unable to read embedded configuration: %w"
	configurationFileReadErrorTemplate       = "unable to read configuration file %s: %w"
	configurationSearchReadErrorTemplate     = "unable to read configuration: %w"
	configurationDecodeErrorTemplateConstant = "unable to decode configuration: %w"
)

// LoadedConfiguration reports metadata about a completed configuration load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader layers defaults, embedded content, configuration files and environment variables.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedData      []byte
	embeddedType      string
}

// NewConfigurationLoader constructs a loader for the provided file name, type, environment prefix and search paths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string{}, searchPaths...),
	}
}

// SetEmbeddedConfiguration registers configuration content applied beneath file and environment values.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(data []byte, configurationType string) {
	loader.embeddedData = append([]byte{}, data...)
	loader.embeddedType = configurationType
}

// LoadConfiguration decodes the layered configuration into target. An explicit configuration file path
// takes precedence over the search paths; a missing file on the search paths is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	configurationReader := viper.New()
	for key, value := range defaultValues {
		configurationReader.SetDefault(key, value)
	}

	if len(loader.embeddedData) > 0 {
		embeddedType := loader.embeddedType
		if len(embeddedType) == 0 {
			embeddedType = loader.configurationType
		}
		configurationReader.SetConfigType(embeddedType)
		if readError := configurationReader.MergeConfig(bytes.NewReader(loader.embeddedData)); readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationReadErrorTemplate, readError)
		}
	}

	metadata := LoadedConfiguration{}
	trimmedFilePath := strings.TrimSpace(configurationFilePath)
	if len(trimmedFilePath) > 0 {
		configurationReader.SetConfigFile(trimmedFilePath)
		if mergeError := configurationReader.MergeInConfig(); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileReadErrorTemplate, trimmedFilePath, mergeError)
		}
		metadata.ConfigFileUsed = trimmedFilePath
	} else if len(loader.searchPaths) > 0 {
		configurationReader.SetConfigName(loader.configurationName)
		configurationReader.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			configurationReader.AddConfigPath(searchPath)
		}
		mergeError := configurationReader.MergeInConfig()
		var notFoundError viper.ConfigFileNotFoundError
		switch {
		case mergeError == nil:
			metadata.ConfigFileUsed = configurationReader.ConfigFileUsed()
		case errors.As(mergeError, &notFoundError):
		default:
			return LoadedConfiguration{}, fmt.Errorf(configurationSearchReadErrorTemplate, mergeError)
		}
	}

	if len(loader.environmentPrefix) > 0 {
		configurationReader.SetEnvPrefix(loader.environmentPrefix)
		configurationReader.SetEnvKeyReplacer(strings.NewReplacer(environmentKeySeparatorConstant, environmentKeyReplacementConstant))
		configurationReader.AutomaticEnv()
	}

	if target == nil {
		return metadata, nil
	}
	if decodeError := configurationReader.Unmarshal(target); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return metadata, nil
}
