// Fanlink is a local controller for WiFi ceiling fans.
//
// It maintains a desired state for a fan (power, speed, swing) and runs
// a reconcile loop that pushes that state to the device over its local
// HTTP interface, tolerating the corrupted JSON the firmware emits.
// The tool provides one-shot commands, mDNS discovery, an interactive
// dashboard, and a long-running mode with a WebSocket state feed.
//
// Usage:
//
//	fanlink [command] [flags]
//
// See 'fanlink --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/fanlink/internal/logging"
	"github.com/muurk/fanlink/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fanlink",
	Short: "Local WiFi fan controller",
	Long: `A local controller for WiFi ceiling fans.

Fanlink talks to the fan over its local HTTP interface. Commands either
run one-shot (status, set, discover) or start the reconcile loop that
keeps the fan converged on your desired state (run, tui).`,
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fanlink %s (commit: %s)\n", version.Version, version.Commit)
	},
}
