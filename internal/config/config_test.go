package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlshelf.db", cfg.DBPath)
	assert.Equal(t, "repos", cfg.ReposDir)
	assert.Equal(t, []string{"**/*.md"}, cfg.Include)
	assert.Equal(t, "site", cfg.OutputDir)
	assert.Equal(t, "localhost:8347", cfg.ListenAddr)
	assert.False(t, cfg.Watch)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqlshelf.yml")
	content := "db: /var/lib/sqlshelf/catalog.db\nlisten_addr: 0.0.0.0:9000\nexclude:\n  - drafts/**\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/sqlshelf/catalog.db", cfg.DBPath)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, []string{"drafts/**"}, cfg.Exclude)
	// Untouched keys keep their defaults.
	assert.Equal(t, "repos", cfg.ReposDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqlshelf.yml")
	require.NoError(t, os.WriteFile(path, []byte("db: from-file.db\n"), 0o644))
	t.Setenv("SQLSHELF_DB", "from-env.db")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DBPath)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SQLSHELF_DB", "from-env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "sqlshelf.db", "")
	require.NoError(t, flags.Parse([]string{"--db", "from-flag.db"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.DBPath)
}

func TestLoadRejectsBadListenAddr(t *testing.T) {
	t.Setenv("SQLSHELF_LISTEN_ADDR", "not an address")
	_, err := Load("", nil)
	assert.Error(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"), nil)
	assert.Error(t, err)

	// LoadFile tolerates a missing optional file.
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlshelf.db", cfg.DBPath)
}
