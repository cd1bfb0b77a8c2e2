package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultWorkDir is where backups are written and restores are read from.
	DefaultWorkDir = "."
)

// ResolveWorkDir returns the directory holding saved configuration files.
// An explicit flag value wins over MX_WORKDIR.
func ResolveWorkDir(customPath string) string {
	if customPath != "" {
		return customPath
	}
	if root := os.Getenv("MX_WORKDIR"); root != "" {
		return root
	}
	return DefaultWorkDir
}

// ResolveConfigPath returns the YAML configuration file to load, or "" when none.
func ResolveConfigPath(customPath string) string {
	if customPath != "" {
		return customPath
	}
	if p := os.Getenv("MX_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("mxtools.yaml"); err == nil {
		return "mxtools.yaml"
	}
	return ""
}

// EnsureDir creates dir if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Writable checks that path can be created or truncated. A file that did not
// exist before the check is removed again.
func Writable(path string) error {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to write to %s, it might be open in another application: %w", path, err)
	}
	f.Close()
	if !existed {
		os.Remove(path)
	}
	return nil
}

// SafeJoin joins path elements and ensures the result is within the base directory (no traversal).
func SafeJoin(base string, elements ...string) (string, error) {
	for _, el := range elements {
		if filepath.IsAbs(el) || strings.HasPrefix(el, `\\`) {
			return "", fmt.Errorf("path traversal attempt detected: absolute path not allowed in elements: %s", el)
		}
	}
	joined := filepath.Join(append([]string{base}, elements...)...)

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}

	absJoined, err := filepath.Abs(joined)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absBase, absJoined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected: %s is outside %s", absJoined, absBase)
	}

	return absJoined, nil
}
