package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/pkg/errors"
)

// ErrNotInAllowedDirectory is returned for paths outside every allowed directory
var ErrNotInAllowedDirectory = errors.New("file access denied: path is not within allowed directories")

// DefaultFileSystemConfig confines tools to the working directory and keeps
// credentials out of reach
func DefaultFileSystemConfig(workingDir string) repository.FileSystemConfig {
	absWorkingDir, err := filepath.Abs(workingDir)
	if err != nil {
		absWorkingDir = workingDir
	}

	return repository.FileSystemConfig{
		AllowedDirectories: []string{
			absWorkingDir,
		},
		BlacklistedFiles: []string{
			".env",
			".env.*",
			"*.key",
			"*.pem",
			"*.p12",
			"*.pfx",
			"*.jks",
			"*secret*",
			"*password*",
			"*token*",
			"credentials.json",
			".netrc",
			"settings-security.xml",
		},
	}
}

// PathGuard resolves tool path arguments against the working directory and
// rejects anything outside the allowed directories
type PathGuard struct {
	workingDir         string
	allowedDirectories []string
	blacklistedFiles   []string
}

// NewPathGuard creates a guard. The working directory is always allowed; a
// nil blacklist falls back to the default one.
func NewPathGuard(config repository.FileSystemConfig, workingDir string) *PathGuard {
	absWorkingDir, err := filepath.Abs(workingDir)
	if err != nil {
		absWorkingDir = workingDir
	}

	g := &PathGuard{
		workingDir:       absWorkingDir,
		blacklistedFiles: config.BlacklistedFiles,
	}
	if g.blacklistedFiles == nil {
		g.blacklistedFiles = DefaultFileSystemConfig(absWorkingDir).BlacklistedFiles
	}
	g.allowedDirectories = ensureWorkingDirectoryInAllowedList(config.AllowedDirectories, g)
	return g
}

// ensureWorkingDirectoryInAllowedList returns a copy of the configured
// directories, made absolute, with the working directory included
func ensureWorkingDirectoryInAllowedList(configured []string, g *PathGuard) []string {
	allowed := make([]string, 0, len(configured)+1)
	present := false
	for _, dir := range configured {
		abs := g.abs(dir)
		if abs == g.workingDir {
			present = true
		}
		allowed = append(allowed, abs)
	}
	if !present {
		allowed = append(allowed, g.workingDir)
	}
	return allowed
}

// WorkingDir returns the absolute working directory
func (g *PathGuard) WorkingDir() string {
	return g.workingDir
}

// abs resolves a path against the guard's working directory rather than the
// process's
func (g *PathGuard) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(g.workingDir, path))
}

// Resolve returns the absolute form of path after checking it is inside an
// allowed directory
func (g *PathGuard) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path must not be empty")
	}

	absPath := g.abs(path)
	for _, dir := range g.allowedDirectories {
		if absPath == dir || strings.HasPrefix(absPath, dir+string(os.PathSeparator)) {
			return absPath, nil
		}
	}
	return "", errors.Wrapf(ErrNotInAllowedDirectory, "%s", path)
}

// ResolveReadable is Resolve plus the blacklist check for files to be read
func (g *PathGuard) ResolveReadable(path string) (string, error) {
	absPath, err := g.Resolve(path)
	if err != nil {
		return "", err
	}

	fileName := filepath.Base(absPath)
	for _, pattern := range g.blacklistedFiles {
		if matched, _ := filepath.Match(pattern, fileName); matched {
			return "", fmt.Errorf("file access denied: %s matches blacklisted pattern %s", fileName, pattern)
		}
		if matched, _ := filepath.Match(pattern, absPath); matched {
			return "", fmt.Errorf("file access denied: %s matches blacklisted pattern %s", absPath, pattern)
		}
	}
	return absPath, nil
}
