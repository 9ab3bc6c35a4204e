package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagBeatmapDir  string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the termania SSH server",
	Long: `Start an SSH server that lets users connect and play the charts in a
directory.

Each SSH connection gets its own session with a difficulty menu. Audio
cannot travel over SSH, so sessions are timed on a silent clock. With
--db, results are stored per-server (all users share the same history).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.termania/host_key

Examples:
  termania serve --beatmaps ./songs           # Listen on :23234
  termania serve --ssh :2222 --beatmaps ./songs
  termania serve --beatmaps ./songs --db ./results.db

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagBeatmapDir, "beatmaps", ".", "Directory scanned for charts")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	app, kb, err := loadConfig(config.Overrides{})
	if err != nil {
		fail("%v", err)
	}

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		BeatmapDir:  flagBeatmapDir,
		DBPath:      dbPath(app),
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		App:         app,
		Keybinds:    kb,
		Logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "termania-ssh",
			Level:           logLevel(app),
		}),
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting termania SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
