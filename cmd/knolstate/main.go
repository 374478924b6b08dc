package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstate/internal/config"
	"github.com/conorfennell/knolstate/internal/flashcards"
	"github.com/conorfennell/knolstate/internal/fitness"
	"github.com/conorfennell/knolstate/internal/generate"
	"github.com/conorfennell/knolstate/internal/kv"
	"github.com/conorfennell/knolstate/internal/language"
	"github.com/conorfennell/knolstate/internal/sensor"
	"github.com/conorfennell/knolstate/internal/store"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// app is the state shared by every subcommand for one invocation.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
	storage    kv.Storage
	closer     io.Closer
	pedometer  sensor.Pedometer // nil unless the host has a step counter
}

func main() {
	a := &app{}
	root := newRootCmd(a)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var ee *exitErr
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "knolstate",
		Short:         "Inspect and edit the flashcards, fitness and language app state",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "knolstate.yaml", "Path to the YAML config file")
	pf.String("storage.driver", "sqlite", "Storage driver: sqlite, redis or memory")
	pf.String("storage.path", "knolstate.db", "SQLite database path")
	pf.String("storage.redis.addr", "localhost:6379", "Redis address")
	pf.String("log.level", "info", "Log level: debug, info, warn or error")
	pf.String("log.format", "text", "Log format: text or json")

	root.AddCommand(
		newCardsCmd(a),
		newFitnessCmd(a),
		newLanguageCmd(a),
		newResetCmd(a),
	)
	return root
}

// open loads the config, installs the logger and opens storage.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Root().PersistentFlags())
	if err != nil {
		return codeError(3, "%s", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)

	storage, closer, err := kv.Open(cfg.Storage.KVOptions())
	if err != nil {
		return codeError(4, "opening storage: %s", err)
	}
	a.storage, a.closer = storage, closer
	a.logger.Debug("storage opened", "driver", cfg.Storage.Driver)
	return nil
}

func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) storeOptions() []store.Option {
	return []store.Option{store.WithLogger(a.logger)}
}

// withCards loads the flashcard store, runs fn and flushes on the way out.
func (a *app) withCards(ctx context.Context, fn func(*flashcards.Store) error) error {
	var gen generate.Generator
	anthropic, err := generate.NewAnthropic(a.cfg.Generation.AnthropicOptions())
	switch {
	case err == nil:
		gen = anthropic
	case errors.Is(err, generate.ErrMissingCredential):
		a.logger.Debug("no generation credential configured")
	default:
		return err
	}

	s, err := flashcards.New(a.storage, gen, a.storeOptions()...)
	if err != nil {
		return err
	}
	if err := s.Load(ctx); err != nil {
		return finish(ctx, s.Base, err)
	}
	return finish(ctx, s.Base, fn(s))
}

func (a *app) withFitness(ctx context.Context, fn func(*fitness.Store) error) error {
	s, err := fitness.New(a.storage, fitness.Config{WeekDays: a.cfg.Fitness.WeekDays}, a.storeOptions()...)
	if err != nil {
		return err
	}
	if err := s.Load(ctx); err != nil {
		return finish(ctx, s.Base, err)
	}
	return finish(ctx, s.Base, fn(s))
}

func (a *app) withLanguage(ctx context.Context, fn func(*language.Store) error) error {
	s, err := language.New(a.storage, a.storeOptions()...)
	if err != nil {
		return err
	}
	if err := s.Load(ctx); err != nil {
		return finish(ctx, s.Base, err)
	}
	return finish(ctx, s.Base, fn(s))
}

// finish closes the store's writer even when the command failed, so that
// mutations made before the failure still reach storage.
func finish(ctx context.Context, b *store.Base, runErr error) error {
	closeErr := b.Close(context.WithoutCancel(ctx))
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
