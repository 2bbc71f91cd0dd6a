package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Load reads reporter options from a YAML (.yaml, .yml) or TOML (.toml) file.
// An empty file yields zero Options.
func Load(path string) (Options, error) {
	var opts Options

	path = strings.TrimSpace(path)
	if path == "" {
		return opts, errors.New("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return opts, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &opts)
	case ".toml":
		err = toml.Unmarshal(data, &opts)
	default:
		return opts, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return Options{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return opts, nil
}
