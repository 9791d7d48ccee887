// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName = "provenance-scan"

	// ConfigDirEnv overrides the configuration directory on every platform.
	ConfigDirEnv = "PROVENANCE_SCAN_CONFIG_DIR"
)

// GetConfigDir returns the provenance-scan configuration directory.
// Windows uses APPDATA, other platforms follow XDG and fall back to a dot
// directory in the user's home.
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	if runtime.GOOS == "windows" {
		return windowsConfigDir()
	}
	return unixConfigDir()
}

func windowsConfigDir() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appDirName)
	}
	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		return filepath.Join(userProfile, "."+appDirName)
	}
	return "." + appDirName
}

func unixConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appDirName
	}
	return filepath.Join(home, "."+appDirName)
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}
