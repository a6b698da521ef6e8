// Package project locates the directory holding sphinxql.ini, so commands
// work from any subdirectory of it.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shipq/sphinxql/internal/config"
)

// Root is a located sphinxql.ini.
type Root struct {
	// Dir is the absolute path of the directory holding the file.
	Dir string

	// ConfigPath is the absolute path of sphinxql.ini.
	ConfigPath string
}

// FindRoot searches upward from startDir looking for a sphinxql.ini file.
// If startDir is empty, the current working directory is used.
//
// Returns the Root if found, or (nil, false, nil) if not found.
// Returns an error only for filesystem errors (not for "not found").
func FindRoot(startDir string) (*Root, bool, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return nil, false, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	dir := absDir
	for {
		configPath := filepath.Join(dir, config.ConfigFilename)
		info, err := os.Stat(configPath)
		if err == nil && !info.IsDir() {
			return &Root{Dir: dir, ConfigPath: configPath}, true, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return nil, false, fmt.Errorf("failed to check %s: %w", configPath, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, false, nil
		}
		dir = parent
	}
}

// ConfigDir returns the directory to load sphinxql.ini from: override when
// set, else the closest directory above startDir holding the file, else
// startDir itself (so that SPHINXQL_URL alone can configure the default
// adapter).
//
// If startDir is empty, the current working directory is used.
func ConfigDir(override, startDir string) (string, error) {
	if override != "" {
		info, err := os.Stat(override)
		if err != nil {
			return "", fmt.Errorf("config directory: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("config directory is not a directory: %s", override)
		}
		return filepath.Abs(override)
	}

	root, found, err := FindRoot(startDir)
	if err != nil {
		return "", err
	}
	if found {
		return root.Dir, nil
	}
	if startDir == "" {
		return os.Getwd()
	}
	return filepath.Abs(startDir)
}
