package config

import (
	"os"
	"path/filepath"
)

// globalConfigDirName and projectConfigDirName name the directories config
// files live under, mirroring the REASONKERNEL_* environment prefix.
const (
	globalConfigDirName  = ".reasonkernel"
	projectConfigDirName = ".reasonkernel"
)

// GlobalConfigDir returns the user's global config directory
// (~/.reasonkernel), creating no files or directories itself.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, globalConfigDirName), nil
}

// ProjectConfigPath returns the project-local config file path
// (.reasonkernel/config.yaml) relative to the current working directory.
func ProjectConfigPath() string {
	return filepath.Join(projectConfigDirName, "config.yaml")
}
