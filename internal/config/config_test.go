package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.False(t, cfg.SecurityEnable)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, envFrom(map[string]string{
		"PORT":            "9090",
		"STORAGE":         "gorm",
		"GORM_DIALECT":    "sqlite",
		"DB_DSN":          "file:test?mode=memory",
		"SEED":            "false",
		"SECURITY_ENABLE": "true",
		"LOG_FORMAT":      "json",
		"APP_NAME":        "  ",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageGorm, cfg.Storage)
	assert.Equal(t, "sqlite", cfg.GormDialect)
	assert.False(t, cfg.Seed)
	assert.True(t, cfg.SecurityEnable)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "petclinic", cfg.AppName, "blank values keep the default")
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_BadBool(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, envFrom(map[string]string{"SEED": "maybe"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = "http" }, "port"},
		{"postgres without dsn", func(c *Config) { c.Storage = StoragePostgres }, "db_dsn"},
		{"gorm unknown dialect", func(c *Config) { c.Storage = StorageGorm; c.DSN = "x"; c.GormDialect = "mysql" }, "gorm_dialect"},
		{"unknown storage", func(c *Config) { c.Storage = "redis" }, "unknown storage"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "petclinic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7070"
storage: postgres
db_dsn: postgres://file
security_enable: true
`), 0o644))

	t.Setenv("DB_DSN", "postgres://env")
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "postgres://env", cfg.DSN)
	assert.True(t, cfg.SecurityEnable)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
