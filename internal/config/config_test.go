package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  port: 8787
ingest:
  batch_width: 5
  pages: 2
  keywords: ["PMHNP", "pmhnp", "  "]
sources:
  greenhouse:
    enabled: true
    boards:
      - slug: acme
        name: Acme Behavioral
  email:
    enabled: false
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndNormalize(t *testing.T) {
	cfg, err := Load(writeTemp(t, sampleYAML))
	require.NoError(t, err)

	out, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK(), "errors: %v", v.Errors)
	assert.Equal(t, 8787, out.App.Port)
	assert.Equal(t, []string{"PMHNP"}, out.Ingest.Keywords, "case-insensitive dedup and blank trim")
	assert.Equal(t, "acme", out.Sources.Greenhouse.Boards[0].Slug)
}

func TestValidateCatchesBrokenSources(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
app: {port: 0}
sources:
  greenhouse: {enabled: true}
  email:
    enabled: true
    username: someone
`))
	require.NoError(t, err)

	_, v := NormalizeAndValidate(cfg)
	assert.False(t, v.OK())
	assert.Contains(t, v.Errors, "app.port must be 1..65535")
	assert.Contains(t, v.Errors, "sources.greenhouse.boards is required when greenhouse is enabled")
	assert.Contains(t, v.Errors, "sources.email.imap_host is required when email is enabled")
}

func TestEnsureUserConfigCopiesDefaultOnce(t *testing.T) {
	dataDir := t.TempDir()
	defaultPath := writeTemp(t, sampleYAML)

	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	// a user edit must survive subsequent bootstraps
	require.NoError(t, os.WriteFile(userPath, []byte("app: {port: 9999}\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	cfg, err := Load(again)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.App.Port)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.App.Port = 9000
	require.NoError(t, SaveAtomic(path, cfg))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, reloaded.App.Port)

	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)

	cfg.App.Port = -1
	assert.Error(t, SaveAtomic(path, cfg), "invalid config must not overwrite a good one")
}
