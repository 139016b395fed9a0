// Package configfiles provides the embedded example configuration for DocSynth.
// It is used as the template for initializing a user configuration.
package configfiles

import (
	"embed"
	"os"
	"path/filepath"
)

// ExampleName is the file name of the embedded example configuration
const ExampleName = "config.example.yaml"

//go:embed config.example.yaml
var configFS embed.FS

// GetConfigExample returns the example configuration file content
func GetConfigExample() ([]byte, error) {
	return configFS.ReadFile(ExampleName)
}

// WriteConfigExample writes the example configuration to path. An existing
// file is left untouched unless overwrite is set. It reports whether the file
// was written.
func WriteConfigExample(path string, overwrite bool) (bool, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	data, err := GetConfigExample()
	if err != nil {
		return false, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}
