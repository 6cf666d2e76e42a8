package bindgen

import (
	"errors"
	"fmt"
	"strings"
)

const taskValidationErrorTemplateConstant = "bindgen.task[%d]: %w"

var (
	// ErrHeaderPathMissing indicates a task without a header path.
	ErrHeaderPathMissing = errors.New("header path not provided")
	// ErrMainPrefixMissing indicates a task without a main prefix.
	ErrMainPrefixMissing = errors.New("main prefix not provided")
)

// GenerationTask names a header, the symbol prefix to extract from it and the prefixes its bindings depend on.
type GenerationTask struct {
	HeaderPath         string   `mapstructure:"header" yaml:"header"`
	MainPrefix         string   `mapstructure:"prefix" yaml:"prefix"`
	DependencyPrefixes []string `mapstructure:"dependencies" yaml:"dependencies,omitempty"`
}

// Validate reports whether the required task fields are present.
func (task GenerationTask) Validate() error {
	if len(strings.TrimSpace(task.HeaderPath)) == 0 {
		return ErrHeaderPathMissing
	}
	if len(strings.TrimSpace(task.MainPrefix)) == 0 {
		return ErrMainPrefixMissing
	}
	return nil
}

// ValidateTasks checks every task and returns the first failure annotated with its position.
func ValidateTasks(tasks []GenerationTask) error {
	for taskIndex := range tasks {
		if validationError := tasks[taskIndex].Validate(); validationError != nil {
			return fmt.Errorf(taskValidationErrorTemplateConstant, taskIndex, validationError)
		}
	}
	return nil
}

// DefaultTasks returns the built-in sokol header list in generation order.
func DefaultTasks() []GenerationTask {
	return []GenerationTask{
		{HeaderPath: "../sokol_gp.h", MainPrefix: "sgp_"},
		{HeaderPath: "../sokol_log.h", MainPrefix: "slog_"},
		{HeaderPath: "../sokol_gfx.h", MainPrefix: "sg_"},
		{HeaderPath: "../sokol_app.h", MainPrefix: "sapp_"},
		{HeaderPath: "../sokol_glue.h", MainPrefix: "sapp_sg", DependencyPrefixes: []string{"sg_"}},
		{HeaderPath: "../sokol_time.h", MainPrefix: "stm_"},
		{HeaderPath: "../sokol_audio.h", MainPrefix: "saudio_"},
		{HeaderPath: "../sokol_gl.h", MainPrefix: "sgl_", DependencyPrefixes: []string{"sg_"}},
		{HeaderPath: "../sokol_debugtext.h", MainPrefix: "sdtx_", DependencyPrefixes: []string{"sg_"}},
		{HeaderPath: "../sokol_shape.h", MainPrefix: "sshape_", DependencyPrefixes: []string{"sg_"}},
	}
}
