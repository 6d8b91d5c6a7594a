package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime option for the CLI, the TUI and the API server.
type Config struct {
	// DataDir holds the database, the auth token file and logs unless overridden.
	DataDir string `yaml:"data_dir"`
	DBPath  string `yaml:"db_path"`
	LogPath string `yaml:"log_path"`
	// ShareBaseURL prefixes share links produced by export.
	ShareBaseURL string `yaml:"share_base_url"`

	LLM     LLMConfig     `yaml:"llm"`
	Backend BackendConfig `yaml:"backend"`
	Server  ServerConfig  `yaml:"server"`
	Editor  EditorConfig  `yaml:"editor"`
}

// LLMConfig selects the in-process model provider.
type LLMConfig struct {
	// Provider is "ollama" or "openai" (any OpenAI-compatible API).
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// BackendConfig points the editor at a remote notable server instead of a local model.
type BackendConfig struct {
	URL       string `yaml:"url"`
	TokenPath string `yaml:"token_path"`
}

// ServerConfig configures `notable serve`.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	JWTSecret   string `yaml:"jwt_secret"`
	TokenTTLH   int    `yaml:"token_ttl_hours"`
	CORSOrigins string `yaml:"cors_origins"`
}

// EditorConfig tunes the interaction engine.
type EditorConfig struct {
	DebounceMS     int    `yaml:"debounce_ms"`
	ToolbarWidth   int    `yaml:"toolbar_width"`
	ToolbarHeight  int    `yaml:"toolbar_height"`
	ToolbarPadding int    `yaml:"toolbar_padding"`
	Theme          string `yaml:"theme"`
}

// Debounce returns the autosave quiet window.
func (e EditorConfig) Debounce() time.Duration {
	return time.Duration(e.DebounceMS) * time.Millisecond
}

// TokenTTL returns the lifetime of issued access tokens.
func (s ServerConfig) TokenTTL() time.Duration {
	return time.Duration(s.TokenTTLH) * time.Hour
}

// DefaultConfig returns the built-in defaults rooted at dataDir.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "notable.db"),
		LogPath:      filepath.Join(dataDir, "logs", "notable.log"),
		ShareBaseURL: "https://notable.app",
		LLM: LLMConfig{
			Provider: "ollama",
		},
		Backend: BackendConfig{
			TokenPath: filepath.Join(dataDir, "token.json"),
		},
		Server: ServerConfig{
			Addr:        ":8000",
			TokenTTLH:   24,
			CORSOrigins: "*",
		},
		Editor: EditorConfig{
			DebounceMS:     300,
			ToolbarWidth:   36,
			ToolbarHeight:  3,
			ToolbarPadding: 1,
			Theme:          "dark",
		},
	}
}

// DefaultDataDir returns ~/.notable, falling back to a temp directory.
func DefaultDataDir() string {
	if env := strings.TrimSpace(os.Getenv("NOTABLE_HOME")); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "notable")
	}
	return filepath.Join(home, ".notable")
}

// Load applies defaults, then the YAML file at path (if any), then .env and
// process environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	// A missing .env is the common case; the process environment still applies.
	_ = godotenv.Load()

	cfg := DefaultConfig(DefaultDataDir())
	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}
	file, err := loadFileRaw(path)
	if err != nil {
		return nil, err
	}
	if file.DataDir != "" && file.DataDir != cfg.DataDir {
		cfg = DefaultConfig(file.DataDir)
	}
	cfg = Merge(cfg, file)
	return Merge(cfg, fromEnv()), nil
}

func loadFileRaw(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	cfg := &Config{
		DataDir:      getEnv("NOTABLE_HOME", ""),
		DBPath:       getEnv("NOTABLE_DB", ""),
		LogPath:      getEnv("NOTABLE_LOG", ""),
		ShareBaseURL: getEnv("NOTABLE_SHARE_URL", ""),
		LLM: LLMConfig{
			Provider: getEnv("NOTABLE_LLM_PROVIDER", ""),
			Model:    getEnv("NOTABLE_LLM_MODEL", ""),
			Endpoint: getEnv("NOTABLE_LLM_ENDPOINT", ""),
			APIKey:   getEnv("SAMBANOVA_API_KEY", getEnv("OPENAI_API_KEY", "")),
		},
		Backend: BackendConfig{
			URL: getEnv("NOTABLE_BACKEND_URL", ""),
		},
		Server: ServerConfig{
			Addr:        getEnv("NOTABLE_ADDR", ""),
			JWTSecret:   getEnv("JWT_SECRET", ""),
			TokenTTLH:   getEnvInt("NOTABLE_TOKEN_TTL_HOURS", 0),
			CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		},
		Editor: EditorConfig{
			DebounceMS: getEnvInt("NOTABLE_DEBOUNCE_MS", 0),
			Theme:      getEnv("NOTABLE_THEME", ""),
		},
	}
	if cfg.LLM.APIKey != "" && cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	return cfg
}

// Merge returns base with every non-zero field of overlay applied on top.
func Merge(base, overlay *Config) *Config {
	out := *base
	out.DataDir = pick(overlay.DataDir, base.DataDir)
	out.DBPath = pick(overlay.DBPath, base.DBPath)
	out.LogPath = pick(overlay.LogPath, base.LogPath)
	out.ShareBaseURL = pick(overlay.ShareBaseURL, base.ShareBaseURL)

	out.LLM.Provider = pick(overlay.LLM.Provider, base.LLM.Provider)
	out.LLM.Model = pick(overlay.LLM.Model, base.LLM.Model)
	out.LLM.Endpoint = pick(overlay.LLM.Endpoint, base.LLM.Endpoint)
	out.LLM.APIKey = pick(overlay.LLM.APIKey, base.LLM.APIKey)

	out.Backend.URL = pick(overlay.Backend.URL, base.Backend.URL)
	out.Backend.TokenPath = pick(overlay.Backend.TokenPath, base.Backend.TokenPath)

	out.Server.Addr = pick(overlay.Server.Addr, base.Server.Addr)
	out.Server.JWTSecret = pick(overlay.Server.JWTSecret, base.Server.JWTSecret)
	out.Server.TokenTTLH = pickInt(overlay.Server.TokenTTLH, base.Server.TokenTTLH)
	out.Server.CORSOrigins = pick(overlay.Server.CORSOrigins, base.Server.CORSOrigins)

	out.Editor.DebounceMS = pickInt(overlay.Editor.DebounceMS, base.Editor.DebounceMS)
	out.Editor.ToolbarWidth = pickInt(overlay.Editor.ToolbarWidth, base.Editor.ToolbarWidth)
	out.Editor.ToolbarHeight = pickInt(overlay.Editor.ToolbarHeight, base.Editor.ToolbarHeight)
	out.Editor.ToolbarPadding = pickInt(overlay.Editor.ToolbarPadding, base.Editor.ToolbarPadding)
	out.Editor.Theme = pick(overlay.Editor.Theme, base.Editor.Theme)
	return &out
}

func pick(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
