package config

import (
	"os"
	"path/filepath"
	"testing"

	"nrtrewriter/internal/crawler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefault_IgnoresCrawlerDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, crawler.DefaultIgnored, cfg.Ignore)

	cfg.Ignore[0] = "changed"
	assert.NotEqual(t, "changed", crawler.DefaultIgnored[0])
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.Properties)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
workers: 3
dry_run: true
properties: false
nullable_attributes: [CanBeNull, ItemCanBeNull]
ignore: [bin, obj, generated]
log_level: debug
audit_db: runs.db
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.DryRun)
	assert.False(t, cfg.Properties)
	assert.Equal(t, []string{"CanBeNull", "ItemCanBeNull"}, cfg.NullableAttributes)
	assert.Equal(t, []string{"bin", "obj", "generated"}, cfg.Ignore)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "runs.db", cfg.AuditDB)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "workers: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.Properties)
	assert.Equal(t, Default().Ignore, cfg.Ignore)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("NRT_WORKERS", "7")
	t.Setenv("NRT_DRY_RUN", "true")
	t.Setenv("NRT_PROPERTIES", "false")
	t.Setenv("NRT_NULLABLE_ATTRIBUTES", "CanBeNull, MaybeNull")
	t.Setenv("NRT_LOG_LEVEL", "WARN")
	t.Setenv("NRT_AUDIT_DB", "audit.db")

	cfg, err := LoadConfig(writeConfig(t, "workers: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.True(t, cfg.DryRun)
	assert.False(t, cfg.Properties)
	assert.Equal(t, []string{"CanBeNull", "MaybeNull"}, cfg.NullableAttributes)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "audit.db", cfg.AuditDB)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "unknown key", content: "wrokers: 2\n"},
		{name: "zero workers", content: "workers: 0\n"},
		{name: "bad log level", content: "log_level: verbose\n"},
		{name: "wrong type", content: "dry_run: maybe\n"},
		{name: "malformed yaml", content: "workers: [\n"},
		{name: "bad env number", content: "", env: map[string]string{"NRT_WORKERS": "many"}},
		{name: "bad env level", content: "", env: map[string]string{"NRT_LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
