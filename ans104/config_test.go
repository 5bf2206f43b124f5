package ans104

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/ans104/tags"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ans104.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfigFile_JSONThenEnv(t *testing.T) {
	p := writeConfig(t, `{"max_tags": 16, "workers": 3}`)
	t.Setenv("ANS104_WORKERS", "5")

	cfg, err := LoadConfigFile(p)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.MaxTags)
	require.Equal(t, 5, cfg.Workers)
	require.Zero(t, cfg.MaxTagNameBytes)

	full := cfg.withDefaults()
	require.Equal(t, tags.DefaultLimits.MaxNameBytes, full.MaxTagNameBytes)
	require.Equal(t, 16, full.limits().MaxTags)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := LoadConfigFile("")
	require.Error(t, err)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = LoadConfigFile(writeConfig(t, `{"max_tags":`))
	require.ErrorContains(t, err, "parse config")

	_, err = LoadConfigFile(writeConfig(t, `{"max_tags": -1}`))
	require.ErrorContains(t, err, "max_tags")
}

func TestWithEnv_BadValue(t *testing.T) {
	t.Setenv("ANS104_MAX_TAGS", "lots")
	_, err := Config{}.WithEnv()
	require.ErrorContains(t, err, "parse env")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, tags.DefaultLimits, cfg.limits())
	require.Positive(t, cfg.Workers)
}
