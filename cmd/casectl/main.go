// casectl is a command line front end for the casedeck data layer. It
// drives the same cache, filter and batch components a view embeds,
// against a remote catalog API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpggio/casedeck/internal/cache"
	"github.com/rpggio/casedeck/internal/config"
	"github.com/rpggio/casedeck/internal/domain/batch"
	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/kvstore"
	"github.com/rpggio/casedeck/internal/remote"
	"github.com/rpggio/casedeck/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the wired components shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	store   *kvstore.SQLiteStore
	manager *cache.Manager
	client  *remote.Client
	auth    remote.Authenticator

	team      string
	container string
	assumeYes bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "casectl",
		Short:         "Test case catalog data layer CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&a.team, "team", "", "team id (default: configured team)")
	cmd.PersistentFlags().StringVar(&a.container, "container", "", "test case set id")
	cmd.PersistentFlags().BoolVarP(&a.assumeYes, "yes", "y", false, "answer confirmation prompts with yes")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.init()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.store != nil {
			a.store.Close()
		}
	}

	cmd.AddCommand(newSyncCmd(a))
	cmd.AddCommand(newCreateCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newBatchCmd(a))
	cmd.AddCommand(newCacheCmd(a))
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureCacheDir(cfg.Cache.Path); err != nil {
		return fmt.Errorf("prepare cache path: %w", err)
	}
	store, err := kvstore.NewSQLiteStore(cfg.Cache.Path, cfg.Cache.QuotaBytes)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	a.store = store

	broadcaster := cache.NewBroadcaster(store, a.logger)
	a.manager = cache.NewManager(store, broadcaster, cache.Options{
		TTL:    cfg.Cache.TTL,
		Strict: cfg.Team.Strict,
		Logger: a.logger,
	})

	a.auth = &remote.TokenAuth{Token: cfg.API.Token}
	a.client = remote.NewClient(cfg.API.BaseURL, a.auth, a.logger)

	if a.team == "" {
		a.team = cfg.Team.Default
	}
	if a.team != "" {
		a.manager.SetActiveTeam(a.team)
	}
	return nil
}

// connect gates commands that actually reach the remote API behind the
// auth readiness poll.
func (a *app) connect(ctx context.Context) error {
	return remote.WaitReady(ctx, a.auth, a.cfg.API.AuthWait)
}

// load returns the team's entity list, from cache when fresh, otherwise
// from the remote API (caching the result).
func (a *app) load(ctx context.Context) ([]testcase.Entity, error) {
	if entities := a.manager.Get(a.team); entities != nil {
		return entities, nil
	}
	if err := a.connect(ctx); err != nil {
		return nil, err
	}
	entities, err := a.client.List(ctx, a.team, a.container)
	if err != nil {
		return nil, err
	}
	a.manager.Set(a.team, entities)
	return entities, nil
}

// newState builds the per-invocation view state, restoring the team's
// persisted filters.
func (a *app) newState(entities []testcase.Entity) *session.State {
	state := session.New(a.team)
	state.ContainerID = a.container
	state.Entities = entities
	state.Filters = a.manager.LoadFilters(a.team)
	return state
}

func (a *app) batchService(confirmer *promptConfirmer) *batch.Service {
	return batch.NewService(a.client, a.manager, confirmer, a.logger, a.cfg.API.PreviewTopN)
}

func ensureCacheDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
