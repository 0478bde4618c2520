package repository

// ToolScope represents which tool groups a profile exposes
type ToolScope struct {
	UseMath     bool
	UseBuild    bool
	UseGit      bool
	UseTestgen  bool
	UseReview   bool
	UseWorkflow bool
	Exclude     []string // individual tool names hidden even when their group is on
}

// Profile is a named selection of tools loaded from YAML
type Profile interface {
	Name() string
	Tools() string
	Description() string
	GetToolScope() ToolScope
}
