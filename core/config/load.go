package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(fsys, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}
	out := Default()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadOrDefault is Load, except that a missing file yields the default
// configuration.
func LoadOrDefault(fsys afero.Fs, path string) (*Configuration, error) {
	cfg, err := Load(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Initialize writes the default configuration into dir. An existing
// configuration is left untouched.
func Initialize(fsys afero.Fs, dir string, logger *log.Logger) error {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, ConfigurationName)
	switch _, err := fsys.Stat(path); {
	case err == nil:
		logger.Printf("Configuration already exists: %s\n", path)
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	logger.Printf("Writing configuration: %s\n", path)
	return afero.WriteFile(fsys, path, defaultConfigData, 0644)
}
