package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/dashboard"
	"github.com/taskpilot/taskpilot/internal/logging"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "advanced",
	Short:   "Start real-time WebSocket dashboard for sync monitoring",
	Long: `Start a WebSocket dashboard server that broadcasts sync engine
activity to connected clients.

WebSocket messages include:
- load: a load cycle started or finished
- offline: a load fell back to cached or seed data
- sync: a collection was replaced and persisted
- stats: per-collection record counts

The command runs its own sync engine and refreshes on an interval so
connected clients see remote changes as they land.

Example usage:
  tp dashboard                   # Start on default port 8091
  tp dashboard --port 9000       # Start on custom port

Connect with a WebSocket client:
  ws://localhost:8091/ws`,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	interval, _ := cmd.Flags().GetDuration("refresh")

	srv := dashboard.NewServer(&dashboard.Config{
		Port:   port,
		Logger: logging.New("[dashboard]"),
	})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start dashboard: %w", err)
	}

	app, err := newApp(cmd, srv.OnEvent)
	if err != nil {
		_ = srv.Stop()
		return err
	}
	defer app.close()

	fmt.Printf("Dashboard server started on http://localhost:%d\n", port)
	fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
	fmt.Printf("Health check: http://localhost:%d/health\n", port)
	fmt.Println("\nPress Ctrl+C to stop...")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		app.engine.Load(ctx)
		srv.Broadcast(statsMessage(app))

		select {
		case <-ctx.Done():
			fmt.Println("\nShutting down dashboard server...")
			if err := srv.Stop(); err != nil {
				return fmt.Errorf("error during shutdown: %w", err)
			}
			fmt.Println("Dashboard server stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// statsMessage snapshots current collection counts for broadcast.
func statsMessage(app *app) dashboard.Message {
	data, _ := json.Marshal(dashboard.StatsData{
		ByCollection: map[string]int{
			"users":     len(app.engine.Users()),
			"tasks":     len(app.engine.Tasks()),
			"templates": len(app.engine.Templates()),
			"orgs":      len(app.engine.Organizations()),
		},
		Offline: app.engine.LastError() != "",
	})
	return dashboard.Message{Type: dashboard.MessageTypeStats, Data: data}
}

func init() {
	dashboardCmd.Flags().IntP("port", "p", 8091, "Port to listen on")
	dashboardCmd.Flags().Duration("refresh", 30*time.Second, "Remote refresh interval")

	rootCmd.AddCommand(dashboardCmd)
}
