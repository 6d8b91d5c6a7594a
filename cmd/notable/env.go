package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/csheth/notable/internal/assist"
	"github.com/csheth/notable/internal/auth"
	"github.com/csheth/notable/internal/config"
	"github.com/csheth/notable/internal/db"
	"github.com/csheth/notable/internal/llm"
	"github.com/csheth/notable/internal/logging"
	"github.com/csheth/notable/internal/notes"
)

const diagramCacheTTL = 30 * time.Minute

// appEnv is what every command needs: merged config, a logger and,
// once opened, the database.
type appEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	conn   *sql.DB
}

// loadEnv merges the config layers and applies global flags on top.
// console mirrors logs to stderr; the TUI leaves it off.
func loadEnv(c *cli.Context, console bool) (*appEnv, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := &config.Config{
		DBPath: c.String("db"),
		LLM: config.LLMConfig{
			Provider: c.String("llm-provider"),
			Model:    c.String("llm-model"),
			Endpoint: c.String("llm-endpoint"),
		},
		Backend: config.BackendConfig{URL: c.String("backend")},
		Editor:  config.EditorConfig{Theme: c.String("theme")},
	}
	cfg = config.Merge(cfg, flags)

	logger, err := logging.New(logging.Options{
		Path:    cfg.LogPath,
		Console: console,
		Debug:   c.Bool("debug"),
	})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return &appEnv{cfg: cfg, logger: logger}, nil
}

func (r *appEnv) open() error {
	if r.conn != nil {
		return nil
	}
	conn, err := db.Open(r.cfg.DBPath)
	if err != nil {
		return err
	}
	r.conn = conn
	return nil
}

// store returns the local note store, opening the database on first use.
func (r *appEnv) store() (*notes.SQLStore, error) {
	if err := r.open(); err != nil {
		return nil, err
	}
	return notes.NewSQLStore(r.conn, notes.LocalOwner), nil
}

func (r *appEnv) close() {
	if r.conn != nil {
		r.conn.Close()
	}
	_ = r.logger.Sync()
}

// account returns the saved sign-in, nil when signed out or expired.
func (r *appEnv) account() *auth.Session {
	session, err := auth.LoadSession(r.cfg.Backend.TokenPath)
	if err != nil {
		r.logger.Warn("ignoring unreadable session", zap.Error(err))
		return nil
	}
	if !session.SignedIn() {
		return nil
	}
	return session
}

// assistant picks the AI collaborators: the configured backend when signed
// in to it, otherwise the in-process model.
func (r *appEnv) assistant(account *auth.Session) (assist.Service, error) {
	var svc assist.Service
	if backend := strings.TrimSpace(r.cfg.Backend.URL); backend != "" && account.SignedIn() {
		r.logger.Info("using remote assistant", zap.String("backend", backend))
		svc = assist.NewRemote(backend, nil, account)
	} else {
		client, err := llm.NewFromEnv(llm.Config{
			Provider: r.cfg.LLM.Provider,
			Model:    r.cfg.LLM.Model,
			Endpoint: r.cfg.LLM.Endpoint,
			APIKey:   r.cfg.LLM.APIKey,
		})
		if err != nil {
			return nil, err
		}
		r.logger.Info("using local assistant", zap.String("model", client.Name()))
		svc = assist.NewLocal(client, r.logger)
	}
	return assist.WithDiagramCache(svc, diagramCacheTTL), nil
}
