package repository

// FileSystemConfig limits which paths tools may read from or write to
type FileSystemConfig struct {
	AllowedDirectories []string `json:"allowed_directories,omitempty" yaml:"allowed_directories,omitempty"` // Paths tools may touch; the working dir is always included
	BlacklistedFiles   []string `json:"blacklisted_files,omitempty" yaml:"blacklisted_files,omitempty"`     // Files that cannot be read; unset means the default list
}
