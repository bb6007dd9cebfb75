package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/logging"
	"github.com/taskpilot/taskpilot/internal/server"
	"github.com/taskpilot/taskpilot/internal/settings"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "advanced",
	Short:   "Start the remote document server",
	Long: `Start the HTTP document server that clients sync against.

The server stores each collection as a single JSON document in a local
SQLite database and exposes one endpoint:

  GET  /api/data?type=<collection>   read a collection (or type=health)
  POST /api/data?type=<collection>   replace a collection wholesale

Example usage:
  tp serve                 # Start on default port 8090
  tp serve --port 9000     # Start on custom port`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("config-dir")
		if dir == "" {
			var err error
			dir, err = settings.DefaultDir()
			if err != nil {
				return err
			}
		}
		st, err := settings.Open(dir)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = st.GetInt(settings.KeyServerPort)
		}

		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			dbPath = filepath.Join(st.DataDir(), "server.db")
		}

		store, err := server.OpenDocStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open document store: %w", err)
		}
		defer store.Close()

		srv := server.New(store, &server.Config{
			Port:   port,
			Logger: logging.NewRotating(st.DataDir(), "server"),
		})

		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		fmt.Printf("Document server started on http://localhost:%d\n", port)
		fmt.Printf("Data endpoint: http://localhost:%d/api/data\n", port)
		fmt.Printf("Database: %s\n", dbPath)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		<-ctx.Done()

		fmt.Println("\nShutting down server...")
		if err := srv.Stop(); err != nil {
			return fmt.Errorf("error during shutdown: %w", err)
		}

		fmt.Println("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from settings)")
	serveCmd.Flags().String("db", "", "SQLite database path (default <data-dir>/server.db)")

	rootCmd.AddCommand(serveCmd)
}
