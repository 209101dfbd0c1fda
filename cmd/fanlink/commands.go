package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/fanlink/internal/config"
	"github.com/muurk/fanlink/internal/device"
	"github.com/muurk/fanlink/internal/discovery"
	"github.com/muurk/fanlink/internal/engine"
	"github.com/muurk/fanlink/internal/feed"
	"github.com/muurk/fanlink/internal/tui"
)

// Command flags
var (
	deviceAddr   string
	devicePort   int
	configPath   string
	scanTimeout  int
	outputFormat string
	feedListen   string
	noFeed       bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceAddr, "device", "", "Device IP address or hostname (overrides config)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", 0, "Device HTTP port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: user config dir)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(tuiCmd)
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if deviceAddr != "" {
		cfg.Device.Address = deviceAddr
	}
	if devicePort != 0 {
		cfg.Device.Port = devicePort
	}
	if feedListen != "" {
		cfg.Feed.Enabled = true
		cfg.Feed.Listen = feedListen
	}
	if noFeed {
		cfg.Feed.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *device.Client {
	c := device.NewClientWithURL(cfg.BaseURL())
	c.SetTimeouts(cfg.Reconcile.StatusTimeout, cfg.Reconcile.CommandTimeout)
	return c
}

func newEngine(cfg *config.Config, onUpdate func(device.State)) *engine.Engine {
	return engine.New(newClient(cfg), engine.Options{
		MaxSpeed: cfg.Device.MaxSpeed,
		Interval: cfg.Reconcile.Interval,
		Cooldown: cfg.Reconcile.Cooldown,
		OnUpdate: onUpdate,
	})
}

// statusCmd performs a one-shot status read
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read the current fan state",
	Long: `Read the current state of the fan over HTTP.

This is a one-shot read and does not start the reconcile loop. The raw
response is sanitized before parsing, so it works against firmware that
emits corrupted JSON.`,
	Example: `  # Read state from the configured device
  fanlink status

  # Read state from a specific device
  fanlink status --device 192.168.4.16

  # JSON output for scripting
  fanlink status --format json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg)
	state, err := client.Status(context.Background())
	if err != nil {
		return fmt.Errorf("status read failed: %w", err)
	}

	printState(state)
	return nil
}

func printState(state device.State) {
	if outputFormat == "json" {
		out, _ := json.Marshal(map[string]int{
			"power": state.Power,
			"speed": state.Speed,
			"swing": state.Swing,
		})
		fmt.Println(string(out))
		return
	}
	fmt.Printf("Power: %s\n", onOff(state.Power))
	fmt.Printf("Speed: %d\n", state.Speed)
	fmt.Printf("Swing: %s\n", onOff(state.Swing))
}

func onOff(v int) string {
	if v == device.PowerOn {
		return "on"
	}
	return "off"
}

// setCmd sends a single command and waits for convergence
var setCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a fan field (power, speed, swing)",
	Long: `Set one field of the fan state and wait for the device to confirm.

The command runs a short-lived reconcile loop, so transient network
failures are retried until the deadline. The device may clamp the value
(for example a speed above its maximum); the confirmed value is printed.`,
	Example: `  # Set the fan to speed 3
  fanlink set speed 3

  # Turn the fan off
  fanlink set power 0

  # Enable swing on a specific device
  fanlink set swing 1 --device 192.168.4.16`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

var setDeadline int

func init() {
	setCmd.Flags().IntVar(&setDeadline, "wait", 15, "Seconds to wait for the device to confirm")
}

func runSet(cmd *cobra.Command, args []string) error {
	field, err := device.ParseField(args[0])
	if err != nil {
		return err
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid value %q: must be an integer", args[1])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	converged := make(chan device.State, 1)
	eng := newEngine(cfg, func(s device.State) {
		select {
		case converged <- s:
		default:
		}
	})

	if err := eng.SetDesired(field, value); err != nil {
		return err
	}
	eng.Start()
	defer eng.Stop()

	deadline := time.After(time.Duration(setDeadline) * time.Second)
	for {
		select {
		case <-converged:
			d, c := eng.Desired(), eng.Confirmed()
			if d == c {
				fmt.Printf("Confirmed: %s=%d\n", field, c.Get(field))
				printState(c)
				return nil
			}
		case <-deadline:
			return fmt.Errorf("device did not confirm %s=%d within %ds", field, value, setDeadline)
		}
	}
}

// runCmd starts the reconcile loop as a long-running process
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reconcile loop until interrupted",
	Long: `Run the reconcile loop as a long-running process.

The loop polls the fan's state on every tick and pushes any pending
desired changes. When the feed is enabled, state updates are published
on a local WebSocket endpoint so other tools can subscribe.`,
	Example: `  # Run against the configured device
  fanlink run

  # Run with the WebSocket feed on a custom address
  fanlink run --feed-listen 127.0.0.1:9190

  # Run without the feed
  fanlink run --no-feed`,
	RunE: runLoop,
}

func init() {
	runCmd.Flags().StringVar(&feedListen, "feed-listen", "", "Enable the WebSocket feed on this address")
	runCmd.Flags().BoolVar(&noFeed, "no-feed", false, "Disable the WebSocket feed")
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var feedSrv *feed.Server
	onUpdate := func(device.State) {}
	if cfg.Feed.Enabled {
		feedSrv = feed.NewServer(cfg.Feed.Listen)
		onUpdate = func(s device.State) { feedSrv.Broadcast(s) }
	}

	eng := newEngine(cfg, onUpdate)
	eng.Start()

	if feedSrv != nil {
		feedSrv.Start()
		fmt.Printf("State feed listening on ws://%s/ws\n", cfg.Feed.Listen)
	}

	fmt.Printf("Reconciling %s every %s. Press Ctrl+C to stop.\n",
		cfg.BaseURL(), cfg.Reconcile.Interval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	eng.Stop()
	if feedSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := feedSrv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "feed server shutdown: %v\n", err)
		}
	}
	return nil
}

// discoverCmd scans the network for fans
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan for fans on the network",
	Long: `Scan for fans using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from fans and displays all
discovered devices with their IP addresses and serial numbers.`,
	Example: `  # Scan for 10 seconds (default)
  fanlink discover

  # Quick 3-second scan
  fanlink discover --timeout 3`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for fans (timeout: %ds)...\n\n", scanTimeout)

	devices, err := discovery.ScanForDevices(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No fans found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the fan is powered and joined to this network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --device flag to specify the IP manually")
		return nil
	}

	fmt.Printf("Found %d fan(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Printf("%d. %s\n", i+1, d.String())
	}

	fmt.Println("\nUse 'fanlink status --device <ip>' to read a fan's state")
	return nil
}

// tuiCmd launches the interactive dashboard
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive terminal dashboard.

The dashboard runs the reconcile loop in the background and shows the
desired and confirmed state side by side. Key presses change the
desired state; the loop pushes the changes to the fan.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the dashboard requires an interactive terminal")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng := newEngine(cfg, nil)
	eng.Start()
	defer eng.Stop()

	return tui.Run(eng)
}
