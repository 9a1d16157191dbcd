package version

import (
	"runtime"

	"go.uber.org/zap"
)

type GitVersion struct {
	Tag    string           `yaml:"tag" json:"tag"`
	Commit string           `yaml:"commit" json:"commit"`
	Tree   WorkingTreeState `yaml:"working_tree" json:"working_tree"`
}

type GoMetadata struct {
	Version string `yaml:"version" json:"version"`
	Arch    string `yaml:"arch" json:"arch"`
	OS      string `yaml:"os" json:"os"`
}

type Version struct {
	Git   GitVersion `yaml:"git" json:"git"`
	Store string     `yaml:"store,omitempty" json:"store,omitempty"`
	Go    GoMetadata `yaml:"go" json:"go"`
	Date  string     `yaml:"build_date" json:"build_date"`
}

type WorkingTreeState string

const (
	TREE_CLEAN WorkingTreeState = "clean"
	TREE_DIRTY WorkingTreeState = "dirty"
)

const defaultTag = "v0.0.0"

var (
	// Git tag
	Tag string
	// Git commit
	Commit string
	// Working tree state
	Tree string
	// Go architecture
	Arch = runtime.GOARCH
	// Go version
	Go = runtime.Version()
	// Build OS
	OS = runtime.GOOS
	// Build date
	Date string
)

// Get reports build metadata. store names the ledger backend in use and may
// be empty.
func Get(store string) *Version {
	tag := Tag
	if len(tag) == 0 {
		zap.L().Debug("no semantic tag provided", zap.String("default", defaultTag))
		tag = defaultTag
	}

	return &Version{
		Git: GitVersion{
			Tag:    tag,
			Commit: Commit,
			Tree:   WorkingTreeState(Tree),
		},
		Store: store,
		Go: GoMetadata{
			Version: Go,
			Arch:    Arch,
			OS:      OS,
		},
		Date: Date,
	}
}
