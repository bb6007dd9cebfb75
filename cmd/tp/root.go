package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/actions"
	"github.com/taskpilot/taskpilot/internal/cache"
	"github.com/taskpilot/taskpilot/internal/engine"
	"github.com/taskpilot/taskpilot/internal/logging"
	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/remote"
	"github.com/taskpilot/taskpilot/internal/settings"
)

var rootCmd = &cobra.Command{
	Use:   "tp",
	Short: "TaskPilot - offline-resilient multi-tenant task tracking",
	Long: `TaskPilot keeps a local, always-usable copy of a shared task database.

Data lives on a remote document server. Every command loads the remote
state if reachable and falls back to the local snapshot cache when it is
not, so the tool keeps working offline. Edits apply locally first and
sync to the server in the background.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Task Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)
	rootCmd.PersistentFlags().String("config-dir", "", "Config directory (default ~/.taskpilot)")
	rootCmd.PersistentFlags().String("remote", "", "Remote server URL (overrides settings)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log engine activity to stderr")
}

// app bundles the wired-up client stack for one CLI invocation.
type app struct {
	settings *settings.Store
	cache    *cache.Snapshot
	remote   *remote.Client
	engine   *engine.Engine
	actions  *actions.Actions
}

// newApp opens settings and the snapshot cache and builds the sync engine.
// It does not touch the network; call load for that. onEvent may be nil.
func newApp(cmd *cobra.Command, onEvent func(engine.Event)) (*app, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	if dir == "" {
		var err error
		dir, err = settings.DefaultDir()
		if err != nil {
			return nil, err
		}
	}

	st, err := settings.Open(dir)
	if err != nil {
		return nil, err
	}

	remoteURL := st.RemoteURL()
	if flagURL, _ := cmd.Flags().GetString("remote"); flagURL != "" {
		remoteURL = flagURL
	}

	logger := logging.Discard()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger = logging.New("[tp]")
	}

	snap, err := cache.Open(filepath.Join(st.DataDir(), "snapshots"), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot cache: %w", err)
	}

	client := remote.New(remoteURL, logger)
	eng := engine.New(client, snap, &engine.Options{
		Logger:      logger,
		LoadTimeout: time.Duration(st.GetInt(settings.KeyLoadTimeout)) * time.Second,
		OnEvent:     onEvent,
	})

	return &app{
		settings: st,
		cache:    snap,
		remote:   client,
		engine:   eng,
		actions:  actions.New(eng),
	}, nil
}

// load runs the load protocol and restores the logged-in actor from
// settings. Offline operation is not an error; commands check
// engine.LastError when they care.
func (a *app) load(ctx context.Context) {
	a.engine.Load(ctx)

	if id := a.settings.ActorID(); id != "" {
		if actor := model.FindByID(a.engine.Users(), id); actor != nil {
			a.engine.SetActor(actor)
		}
	}
}

// close flushes pending background syncs and releases the cache.
func (a *app) close() {
	a.engine.Flush()
	_ = a.cache.Close()
}

// requireActor exits unless a user is logged in.
func (a *app) requireActor() model.Record {
	actor := a.engine.Actor()
	if actor == nil {
		fmt.Fprintf(os.Stderr, "Error: not logged in (run 'tp login' first)\n")
		os.Exit(1)
	}
	return actor
}
