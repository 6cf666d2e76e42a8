package bindgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	planPrepareLineConstant          = "prepare()"
	planGenerateLineTemplateConstant = "generate(%s, %s, [%s])"
	planDependencySeparatorConstant  = ", "
	planWriterMissingMessageConstant = "plan writer not configured"
)

// ErrPlanWriterMissing indicates the dry-run writer was not provided.
var ErrPlanWriterMissing = errors.New(planWriterMissingMessageConstant)

// PlanGenerator records the calls a run would make by writing one line per call.
type PlanGenerator struct {
	writer io.Writer
}

// NewPlanGenerator builds a PlanGenerator writing to the provided writer.
func NewPlanGenerator(writer io.Writer) (*PlanGenerator, error) {
	if writer == nil {
		return nil, ErrPlanWriterMissing
	}
	return &PlanGenerator{writer: writer}, nil
}

// Prepare writes the preparation call.
func (generator *PlanGenerator) Prepare(context.Context) error {
	_, writeError := fmt.Fprintln(generator.writer, planPrepareLineConstant)
	return writeError
}

// Generate writes the generation call for one header.
func (generator *PlanGenerator) Generate(_ context.Context, headerPath string, mainPrefix string, dependencyPrefixes []string) error {
	_, writeError := fmt.Fprintln(generator.writer, FormatGenerateCall(headerPath, mainPrefix, dependencyPrefixes))
	return writeError
}

// FormatGenerateCall renders a generate call as `generate("b.h", "b_", ["a_"])`.
func FormatGenerateCall(headerPath string, mainPrefix string, dependencyPrefixes []string) string {
	quotedDependencies := make([]string, 0, len(dependencyPrefixes))
	for _, dependencyPrefix := range dependencyPrefixes {
		quotedDependencies = append(quotedDependencies, strconv.Quote(dependencyPrefix))
	}
	return fmt.Sprintf(
		planGenerateLineTemplateConstant,
		strconv.Quote(headerPath),
		strconv.Quote(mainPrefix),
		strings.Join(quotedDependencies, planDependencySeparatorConstant),
	)
}
