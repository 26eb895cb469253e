package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, filepath.Join("/data", "spice", "spice.db"), cfg.Database.Path)
	assert.Equal(t, "%m/%d/%Y", cfg.Import.DateFormat)
	assert.True(t, cfg.Import.SkipDuplicates)
	assert.True(t, cfg.Import.AutoCategorize)
	assert.True(t, cfg.Import.Snapshot)
	assert.Equal(t, 520, cfg.Budget.MaxPeriods)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
database:
  path: $SPICE_TEST_ROOT/ledger.db
import:
  date_format: "%d/%m/%Y"
  auto_categorize: false
budget:
  max_periods: 60
`), 0600))

	t.Setenv("SPICE_TEST_ROOT", dir)
	t.Setenv("SPICE_LOGGING_FORMAT", "json")

	v := viper.New()
	SetDefaults(v)
	Bind(v, file)
	require.NoError(t, Read(v))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), cfg.Database.Path)
	assert.Equal(t, "%d/%m/%Y", cfg.Import.DateFormat)
	assert.False(t, cfg.Import.AutoCategorize)
	assert.True(t, cfg.Import.SkipDuplicates)
	assert.Equal(t, 60, cfg.Budget.MaxPeriods)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestRead_MissingSearchedFileIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())

	v := viper.New()
	Bind(v, "")
	assert.NoError(t, Read(v))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Logging.Level = "info"
		c.Logging.Format = "console"
		c.Database.Path = "/tmp/spice.db"
		c.Budget.MaxPeriods = 10
		return c
	}

	tests := []struct {
		mutate  func(*Config)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: common.ErrInvalidConfig},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: common.ErrInvalidConfig},
		{name: "no database", mutate: func(c *Config) { c.Database.Path = " " }, wantErr: common.ErrMissingConfig},
		{name: "no periods", mutate: func(c *Config) { c.Budget.MaxPeriods = 0 }, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SPICE_DIR", "/srv/spice")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "data", "spice.db"), ExpandPath("~/data/spice.db"))
	assert.Equal(t, "/srv/spice/spice.db", ExpandPath("$SPICE_DIR/spice.db"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPICE_FROM_DOTENV=yes\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("SPICE_FROM_DOTENV") })

	loaded, err := LoadDotEnv()
	require.NoError(t, err)
	assert.Equal(t, ".env", loaded)
	assert.Equal(t, "yes", os.Getenv("SPICE_FROM_DOTENV"))
}
