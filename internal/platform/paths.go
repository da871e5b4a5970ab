// Package platform resolves OS-specific default locations.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultStateDir returns the directory for deployment-state storage
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "artifactsync"), nil
		}
	}
	return filepath.Join(home, ".local", "state", "artifactsync"), nil
}

// DefaultStatePath returns the default path for the named state file
func DefaultStatePath(name string) (string, error) {
	dir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved.
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	if runtime.GOOS == "windows" {
		for _, char := range []string{"<", ">", "\"", "|", "?", "*"} {
			if strings.Contains(path, char) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
