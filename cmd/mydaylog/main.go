package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mydaylog/cmd/mydaylog/tui"
	"mydaylog/cmd/mydaylog/ui"
	"mydaylog/internal/client/app"
	"mydaylog/internal/client/gateway"
	"mydaylog/internal/client/localstate"
	"mydaylog/internal/client/session"
	"mydaylog/internal/config"
)

var (
	// Global flags
	verbose bool
	apiURL  string
	homeDir string
)

// env is everything a command needs once the client is wired.
type env struct {
	app    *app.App
	gw     *gateway.Client
	state  *localstate.Store
	styles ui.Styles
	bridge *tui.Bridge
}

var rootCmd = &cobra.Command{
	Use:   "mydaylog",
	Short: "MyDayLog - record whether you received lunch and dinner each day",
	Long: `MyDayLog keeps a daily log of two meals, lunch and dinner.

Run without arguments to open the interactive calendar.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		if err := requireSession(e); err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go e.app.Run(ctx)
		err = tui.Run(ctx, e.app, e.bridge)
		e.app.Meals.Wait()
		return err
	},
}

// setup loads config and local state and restores the session.
func setup(ctx context.Context) (*env, error) {
	dir := homeDir
	if dir == "" {
		d, err := config.Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	cfg, err := config.LoadClient(dir)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	state, err := localstate.Open(dir)
	if state == nil {
		return nil, err
	}
	if err != nil {
		// a corrupt state file starts fresh
		slog.Warn("state_event", "event", "load_failed", "error", err)
	}
	jar, err := state.Jar()
	if err != nil {
		return nil, fmt.Errorf("failed to restore cookies: %w", err)
	}
	gw := gateway.New(cfg.APIURL, jar, cfg.Timeout)

	bridge := &tui.Bridge{Fallback: func(msg string) { fmt.Fprintln(os.Stderr, msg) }}
	a := app.New(gw, state, app.Options{
		Credentials: jar,
		OnTick:      bridge.Tick,
		OnNotify:    bridge.Notify,
	})
	if err := a.Init(ctx); err != nil {
		return nil, err
	}
	return &env{
		app:    a,
		gw:     gw,
		state:  state,
		styles: ui.NewStyles(ui.ThemeFor(a.Settings.Peek().Theme)),
		bridge: bridge,
	}, nil
}

func requireSession(e *env) error {
	if e.app.Session.Status() != session.Authenticated {
		return errors.New("not signed in: run `mydaylog login`, `mydaylog signup` or `mydaylog guest`")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (default from config.yaml or MYDAYLOG_API_URL)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Directory for config.yaml and state.yaml (default: user config dir)")

	addAuthCommands(rootCmd)
	addMealCommands(rootCmd)
	addSettingsCommands(rootCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
