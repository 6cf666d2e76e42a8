package version

import (
	"context"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/bindgen/internal/execshell"
)

const (
	// UnknownVersion is reported when no source yields a version.
	UnknownVersion = "unknown"

	develBuildVersionConstant          = "devel"
	develBuildVersionDecoratedConstant = "(devel)"
	gitRevParseArgumentConstant        = "rev-parse"
	gitShowTopLevelArgumentConstant    = "--show-toplevel"
	gitDescribeArgumentConstant        = "describe"
	gitTagsArgumentConstant            = "--tags"
	gitExactMatchArgumentConstant      = "--exact-match"
	gitLongArgumentConstant            = "--long"
	gitDirtyArgumentConstant           = "--dirty"
	gitPromptVariableNameConstant      = "GIT_TERMINAL_PROMPT"
	gitPromptVariableValueConstant     = "0"
)

// GitExecutor runs git commands for version detection.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// Dependencies describes the collaborators required for version detection.
// StampedVersion is the value injected at link time, when any.
type Dependencies struct {
	StampedVersion    string
	BuildInfoProvider BuildInfoProvider
	GitExecutor       GitExecutor
	WorkingDirectory  string
}

// Detector resolves the bindgen version from, in order: the link-time stamp,
// module build info, an exact git tag and finally a long git describe.
type Detector struct {
	stampedVersion    string
	buildInfoProvider BuildInfoProvider
	gitExecutor       GitExecutor
	workingDirectory  string
}

// NewDetector constructs a Detector, filling unset collaborators with runtime defaults.
func NewDetector(dependencies Dependencies) (*Detector, error) {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}

	gitExecutor := dependencies.GitExecutor
	if gitExecutor == nil {
		shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), false)
		if creationError != nil {
			return nil, creationError
		}
		gitExecutor = shellExecutor
	}

	workingDirectory := strings.TrimSpace(dependencies.WorkingDirectory)
	if len(workingDirectory) == 0 {
		if currentDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
			workingDirectory = currentDirectory
		}
	}

	return &Detector{
		stampedVersion:    strings.TrimSpace(dependencies.StampedVersion),
		buildInfoProvider: provider,
		gitExecutor:       gitExecutor,
		workingDirectory:  workingDirectory,
	}, nil
}

// Detect resolves the version with a one-off Detector.
func Detect(executionContext context.Context, dependencies Dependencies) string {
	detector, detectorError := NewDetector(dependencies)
	if detectorError != nil {
		return UnknownVersion
	}
	return detector.Version(executionContext)
}

// Version returns the first version any source reports, or UnknownVersion.
func (detector *Detector) Version(executionContext context.Context) string {
	if detector == nil {
		return UnknownVersion
	}
	if len(detector.stampedVersion) > 0 {
		return detector.stampedVersion
	}
	if moduleVersion := detector.moduleVersion(); len(moduleVersion) > 0 {
		return moduleVersion
	}

	repositoryRoot := detector.repositoryRoot(executionContext)
	describeVariants := [][]string{
		{gitDescribeArgumentConstant, gitTagsArgumentConstant, gitExactMatchArgumentConstant},
		{gitDescribeArgumentConstant, gitTagsArgumentConstant, gitLongArgumentConstant, gitDirtyArgumentConstant},
	}
	for _, arguments := range describeVariants {
		if described := detector.gitOutput(executionContext, repositoryRoot, arguments); len(described) > 0 {
			return described
		}
	}
	return UnknownVersion
}

func (detector *Detector) moduleVersion() string {
	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return ""
	}
	moduleVersion := strings.TrimSpace(buildInfo.Main.Version)
	if strings.EqualFold(moduleVersion, develBuildVersionConstant) || moduleVersion == develBuildVersionDecoratedConstant {
		return ""
	}
	return moduleVersion
}

func (detector *Detector) repositoryRoot(executionContext context.Context) string {
	if len(detector.workingDirectory) == 0 {
		return ""
	}
	topLevel := detector.gitOutput(executionContext, detector.workingDirectory, []string{gitRevParseArgumentConstant, gitShowTopLevelArgumentConstant})
	if len(topLevel) == 0 {
		return detector.workingDirectory
	}
	return topLevel
}

func (detector *Detector) gitOutput(executionContext context.Context, workingDirectory string, arguments []string) string {
	if detector.gitExecutor == nil {
		return ""
	}
	executionResult, executionError := detector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: map[string]string{gitPromptVariableNameConstant: gitPromptVariableValueConstant},
	})
	if executionError != nil {
		return ""
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}
