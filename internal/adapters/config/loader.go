// Package config provides the registry loader for stage.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/stage/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader on top of the built-in registry and a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load returns the built-in registry extended with the components and configurations
// declared in the stage.yaml file at path. A missing file yields the built-in registry.
func (l *Loader) Load(path string) (*domain.Registry, error) {
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return builtin, nil
	}

	var stagefile Stagefile
	if err := readAndUnmarshalYAML(path, &stagefile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return builtin, nil
		}
		return nil, zerr.With(err, "path", path)
	}

	if stagefile.Version != "" && stagefile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", path, stagefile.Version, SupportedVersion))
	}

	reg, err := builtin.WithOverrides(stagefile.Components, stagefile.Configurations)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return reg, nil
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is provided by the operator
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(configFile))
	dec.KnownFields(true)
	if parseErr := dec.Decode(target); parseErr != nil && !errors.Is(parseErr, io.EOF) {
		return zerr.Wrap(domain.ErrConfigParseFailed, parseErr.Error())
	}

	return nil
}
