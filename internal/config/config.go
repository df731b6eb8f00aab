// Package config layers sqlshelf settings: built-in defaults, then a YAML
// config file, then SQLSHELF_* environment variables, then command-line
// flags. Later layers win.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "SQLSHELF_"

// Config holds every runtime setting of the tool.
type Config struct {
	// Sources are local corpus directories or git URLs registered on
	// first sync.
	Sources []string `koanf:"sources"`

	DBPath   string `koanf:"db" validate:"required"`
	ReposDir string `koanf:"repos_dir" validate:"required"`

	Include []string `koanf:"include"`
	Exclude []string `koanf:"exclude"`

	OutputDir  string `koanf:"output_dir" validate:"required"`
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	Watch      bool   `koanf:"watch"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DBPath:     "sqlshelf.db",
		ReposDir:   "repos",
		Include:    []string{"**/*.md"},
		OutputDir:  "site",
		ListenAddr: "localhost:8347",
	}
}

// Load assembles the configuration. path may be empty (no config file);
// flags may be nil (no flag layer). The result is validated before it is
// returned.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// SQLSHELF_REPOS_DIR=x becomes repos_dir=x.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		// Flag names use hyphens (--repos-dir), config keys underscores.
		flagProvider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(flagProvider, nil); err != nil {
			return Config{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	// Unmarshal over the defaults: keys absent from every layer keep
	// their built-in values.
	out := Defaults()
	if err := k.Unmarshal("", &out); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(out); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return out, nil
}

// LoadFile is Load with an optional config file: a path that does not
// exist is simply skipped instead of failing.
func LoadFile(path string, flags *pflag.FlagSet) (Config, error) {
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	return Load(path, flags)
}
