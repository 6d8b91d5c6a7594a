package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NOTABLE_DB", "NOTABLE_LOG", "NOTABLE_SHARE_URL", "NOTABLE_LLM_PROVIDER",
		"NOTABLE_LLM_MODEL", "NOTABLE_LLM_ENDPOINT", "SAMBANOVA_API_KEY", "OPENAI_API_KEY",
		"NOTABLE_BACKEND_URL", "NOTABLE_ADDR", "JWT_SECRET", "NOTABLE_TOKEN_TTL_HOURS",
		"CORS_ALLOWED_ORIGINS", "NOTABLE_DEBOUNCE_MS", "NOTABLE_THEME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("NOTABLE_HOME", home)

	cfg, err := Load(filepath.Join(home, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, home, cfg.DataDir)
	assert.Equal(t, filepath.Join(home, "notable.db"), cfg.DBPath)
	assert.Equal(t, 300*time.Millisecond, cfg.Editor.Debounce())
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Server.TokenTTL())
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("NOTABLE_HOME", home)

	path := filepath.Join(home, "config.yaml")
	body := []byte("editor:\n  debounce_ms: 500\n  toolbar_width: 40\nllm:\n  model: llama3\nserver:\n  addr: \":9000\"\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	t.Setenv("NOTABLE_ADDR", ":9100")
	t.Setenv("SAMBANOVA_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Editor.Debounce())
	assert.Equal(t, 40, cfg.Editor.ToolbarWidth)
	assert.Equal(t, 3, cfg.Editor.ToolbarHeight, "unset fields keep defaults")
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, ":9100", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "openai", cfg.LLM.Provider, "an API key switches to the OpenAI-compatible provider")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("NOTABLE_HOME", home)
	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("editor: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestMergeKeepsBaseForZeroOverlay(t *testing.T) {
	base := DefaultConfig("/data")
	merged := Merge(base, &Config{Editor: EditorConfig{Theme: "light"}})

	assert.Equal(t, "light", merged.Editor.Theme)
	assert.Equal(t, base.DBPath, merged.DBPath)
	assert.Equal(t, base.Editor.DebounceMS, merged.Editor.DebounceMS)
}
