package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/assist"
	"github.com/csheth/notable/internal/auth"
	"github.com/csheth/notable/internal/diagram"
	"github.com/csheth/notable/internal/export"
	"github.com/csheth/notable/internal/lecture"
	"github.com/csheth/notable/internal/notes"
	"github.com/csheth/notable/internal/server"
	"github.com/csheth/notable/internal/tui"
	"github.com/csheth/notable/internal/watch"
)

const maxParallelLoads = 4

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "notable",
		Usage:   "Terminal note editor with AI assist",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config.yaml", EnvVars: []string{"NOTABLE_CONFIG"}},
			&cli.StringFlag{Name: "db", Usage: "Path to the notes database"},
			&cli.StringFlag{Name: "theme", Usage: "dark or light"},
			&cli.StringFlag{Name: "llm-provider", Usage: "ollama or openai"},
			&cli.StringFlag{Name: "llm-model", Usage: "Model name override"},
			&cli.StringFlag{Name: "llm-endpoint", Usage: "Model API base URL"},
			&cli.StringFlag{Name: "backend", Usage: "notable server URL for sign-in and remote AI"},
			&cli.BoolFlag{Name: "debug", Usage: "Log at debug level"},
		},
		Commands: []*cli.Command{
			editCmd(),
			serveCmd(),
			notesCmd(),
			lectureCmd(),
			exportCmd(),
			loginCmd(),
			logoutCmd(),
			archiveCmd(),
		},
		DefaultCommand: "edit",
	}
	// Errors are printed once by main.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Open the editor (the default command)",
		ArgsUsage: "[note-id]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-alt-screen", Usage: "Disable the alternate screen buffer"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadEnv(c, false)
			if err != nil {
				return err
			}
			defer rt.close()
			store, err := rt.store()
			if err != nil {
				return err
			}

			account := rt.account()
			svc, err := rt.assistant(account)
			if err != nil {
				rt.logger.Warn("AI features disabled", zap.Error(err))
			}

			var changes <-chan watch.Event
			if w, err := watch.New(rt.cfg.DBPath, watch.DefaultDelay, rt.logger); err != nil {
				rt.logger.Warn("not watching for external changes", zap.Error(err))
			} else {
				defer w.Close()
				changes = w.Events()
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			theme := tui.NewTheme(rt.cfg.Editor.Theme)
			cfg := tui.Config{
				Context:  ctx,
				Store:    store,
				Renderer: diagram.NewTermRenderer(theme.Glamour),
				Lectures: lecture.NewLoader(nil),
				Theme:    theme,
				Account:  account,
				Editor:   rt.cfg.Editor,
				Logger:   rt.logger,
				Changes:  changes,
				NoteID:   c.Args().First(),
			}
			if svc != nil {
				cfg.Assist = svc
			}

			opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
			if !c.Bool("no-alt-screen") {
				opts = append(opts, tea.WithAltScreen())
			}
			if _, err := tea.NewProgram(tui.New(cfg), opts...).Run(); err != nil {
				return fmt.Errorf("program error: %w", err)
			}
			return nil
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default :8000)"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadEnv(c, true)
			if err != nil {
				return err
			}
			defer rt.close()
			if err := rt.open(); err != nil {
				return err
			}

			secret := rt.cfg.Server.JWTSecret
			if strings.TrimSpace(secret) == "" {
				return errors.New("JWT_SECRET (server.jwt_secret) is required to serve")
			}
			svc, err := rt.assistant(nil)
			if err != nil {
				return err
			}
			addr := c.String("addr")
			if addr == "" {
				addr = rt.cfg.Server.Addr
			}

			srv := server.New(server.Deps{
				Notes:       notes.NewSQLStore(rt.conn, notes.LocalOwner),
				Users:       auth.NewUsers(rt.conn),
				Issuer:      auth.NewIssuer(secret, rt.cfg.Server.TokenTTL()),
				Assist:      svc,
				Logger:      rt.logger,
				CORSOrigins: rt.cfg.Server.CORSOrigins,
			})

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			rt.logger.Info("serving", zap.String("addr", addr), zap.String("db", rt.cfg.DBPath))
			return srv.Run(ctx, addr)
		},
	}
}

func notesCmd() *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Manage notes without opening the editor",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List notes, most recently updated first",
				Action: func(c *cli.Context) error {
					return withStore(c, func(ctx context.Context, store *notes.SQLStore) error {
						list, err := store.List(ctx)
						if err != nil {
							return err
						}
						printNotes(c.App.Writer, list)
						return nil
					})
				},
			},
			{
				Name:  "new",
				Usage: "Create a note (content is read from stdin when piped)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
				},
				Action: func(c *cli.Context) error {
					content := ""
					if stdinHasData() {
						data, err := io.ReadAll(os.Stdin)
						if err != nil {
							return err
						}
						content = string(data)
					}
					return withStore(c, func(ctx context.Context, store *notes.SQLStore) error {
						note, err := store.Create(ctx, c.String("title"), content)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "%s %s\n", color.GreenString("created"), note.ID)
						return nil
					})
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a note",
				ArgsUsage: "<note-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, "note-id")
					if err != nil {
						return err
					}
					return withStore(c, func(ctx context.Context, store *notes.SQLStore) error {
						if err := store.Delete(ctx, id); err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "%s %s\n", color.YellowString("deleted"), id)
						return nil
					})
				},
			},
		},
	}
}

func lectureCmd() *cli.Command {
	return &cli.Command{
		Name:      "lecture",
		Usage:     "Merge lecture transcripts (files or URLs) into a note",
		ArgsUsage: "<note-id> <source>...",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return apperr.Invalid("usage: notable lecture <note-id> <source>...")
			}
			id := c.Args().First()
			sources := c.Args().Tail()

			rt, err := loadEnv(c, false)
			if err != nil {
				return err
			}
			defer rt.close()
			store, err := rt.store()
			if err != nil {
				return err
			}
			svc, err := rt.assistant(rt.account())
			if err != nil {
				return err
			}
			ctx := c.Context

			note, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			text, err := loadLectures(ctx, lecture.NewLoader(nil), sources)
			if err != nil {
				return err
			}
			merged, err := svc.Process(ctx, assist.LectureRequest{
				NoteID:         note.ID,
				CurrentContent: note.Content,
				LectureContent: text,
			})
			if err != nil {
				return err
			}
			if _, err := store.Update(ctx, note.ID, notes.ContentPatch(merged)); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s %d source(s) into %q\n",
				color.GreenString("merged"), len(sources), notes.NormalizeTitle(note.Title))
			return nil
		},
	}
}

// loadLectures loads every source concurrently and joins the condensed
// transcripts in argument order.
func loadLectures(ctx context.Context, loader *lecture.Loader, sources []string) (string, error) {
	texts := make([]string, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, source := range sources {
		g.Go(func() error {
			transcript, err := loader.Load(ctx, source)
			if err != nil {
				return fmt.Errorf("load %s: %w", source, err)
			}
			texts[i] = transcript.Text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return lecture.Condense(strings.Join(texts, "\n\n"), lecture.DefaultBudget), nil
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a note as Markdown or HTML",
		ArgsUsage: "<note-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "md", Usage: "md or html"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "Output directory, or - for stdout"},
		},
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "note-id")
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			rt, err := loadEnv(c, false)
			if err != nil {
				return err
			}
			defer rt.close()
			store, err := rt.store()
			if err != nil {
				return err
			}
			note, err := store.Get(c.Context, id)
			if err != nil {
				return err
			}

			if c.String("out") == "-" {
				return export.Write(c.App.Writer, note, format)
			}
			path, err := export.WriteFile(c.String("out"), note, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s %s\n", color.GreenString("wrote"), path)
			fmt.Fprintf(c.App.Writer, "%s %s\n", color.CyanString("share"), export.ShareLink(rt.cfg.ShareBaseURL, note.ID))
			return nil
		},
	}
}

func loginCmd() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in to a notable server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, EnvVars: []string{"NOTABLE_EMAIL"}},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"NOTABLE_PASSWORD"}},
			&cli.BoolFlag{Name: "register", Usage: "Create the account first"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadEnv(c, false)
			if err != nil {
				return err
			}
			defer rt.close()
			client, err := authClient(rt)
			if err != nil {
				return err
			}
			email, password := c.String("email"), c.String("password")
			if c.Bool("register") {
				if err := client.Register(c.Context, email, password); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s %s\n", color.GreenString("registered"), email)
			}
			session, err := client.Login(c.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s as %s until %s\n",
				color.GreenString("signed in"), session.Email, session.ExpiresAt.Local().Format("Jan 2 15:04"))
			return nil
		},
	}
}

func logoutCmd() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Revoke and forget the saved sign-in",
		Action: func(c *cli.Context) error {
			rt, err := loadEnv(c, false)
			if err != nil {
				return err
			}
			defer rt.close()
			client, err := authClient(rt)
			if err != nil {
				return err
			}
			if err := client.Logout(c.Context); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, color.YellowString("signed out"))
			return nil
		},
	}
}

func archiveCmd() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Back up or restore notes as a JSON archive",
		Subcommands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Write every note to an archive file",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					path, err := requireArg(c, "path")
					if err != nil {
						return err
					}
					return withStore(c, func(ctx context.Context, store *notes.SQLStore) error {
						list, err := store.List(ctx)
						if err != nil {
							return err
						}
						if err := notes.SaveArchive(path, list); err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "%s %d note(s) to %s\n", color.GreenString("archived"), len(list), path)
						return nil
					})
				},
			},
			{
				Name:      "restore",
				Usage:     "Load notes from an archive file, keeping their ids",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					path, err := requireArg(c, "path")
					if err != nil {
						return err
					}
					archived, err := notes.LoadArchive(path)
					if err != nil {
						return err
					}
					return withStore(c, func(ctx context.Context, store *notes.SQLStore) error {
						n, err := notes.Restore(ctx, store, archived)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "%s %d note(s) from %s\n", color.GreenString("restored"), n, path)
						return nil
					})
				},
			},
		},
	}
}

func withStore(c *cli.Context, fn func(ctx context.Context, store *notes.SQLStore) error) error {
	rt, err := loadEnv(c, false)
	if err != nil {
		return err
	}
	defer rt.close()
	store, err := rt.store()
	if err != nil {
		return err
	}
	return fn(c.Context, store)
}

func authClient(rt *appEnv) (*auth.Client, error) {
	backend := strings.TrimSpace(rt.cfg.Backend.URL)
	if backend == "" {
		return nil, apperr.Invalid("no server configured; pass --backend or set NOTABLE_BACKEND_URL")
	}
	return auth.NewClient(backend, rt.cfg.Backend.TokenPath, nil), nil
}

func requireArg(c *cli.Context, name string) (string, error) {
	arg := strings.TrimSpace(c.Args().First())
	if arg == "" {
		return "", apperr.Invalid(fmt.Sprintf("missing <%s>", name))
	}
	return arg, nil
}

func printNotes(w io.Writer, list []notes.Note) {
	if len(list) == 0 {
		fmt.Fprintln(w, color.New(color.Faint).Sprint("no notes yet"))
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, note := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			faint(note.ID),
			bold(notes.NormalizeTitle(note.Title)),
			note.UpdatedAt.Local().Format("2006-01-02 15:04"),
			notes.Preview(note.Content, 50),
		)
	}
	tw.Flush()
}

// stdinHasData reports whether stdin is a pipe or file rather than a terminal.
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}
