package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/GriffinCanCode/screenwatch/internal/config"
	"github.com/GriffinCanCode/screenwatch/internal/logging"
	"github.com/GriffinCanCode/screenwatch/internal/orchestrator"
	"github.com/GriffinCanCode/screenwatch/internal/server"
	"github.com/GriffinCanCode/screenwatch/internal/tui"
)

// logFileName receives the log while the dashboard owns the terminal.
const logFileName = "screenwatch.log"

type runOptions struct {
	configPath string
	window     string
	httpAddr   string
	dashboard  bool
	verbose    bool
	noAlarm    bool
}

// bind registers the run flags on cmd.
func (o *runOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.window, "window", "w", "", "title of the window to watch")
	f.StringVar(&o.httpAddr, "http", "", "serve the status API and event feed on this address")
	f.BoolVar(&o.dashboard, "tui", false, "show the terminal dashboard")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log all attributes")
	f.BoolVar(&o.noAlarm, "no-alarm", false, "disable the audible alarm")
}

func newRunCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start monitoring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func (o *runOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("window") {
		cfg.WindowTitle = o.window
	}
	if flags.Changed("http") {
		cfg.HTTPAddr = o.httpAddr
	}
	if flags.Changed("verbose") {
		cfg.LogVerbose = o.verbose
	}
	if o.noAlarm {
		cfg.AlarmEnabled = false
	}
	return cfg, cfg.Validate()
}

func runMonitor(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dashboard := opts.dashboard && term.IsTerminal(int(os.Stdout.Fd()))
	var logOut io.Writer = cmd.OutOrStdout()
	if dashboard {
		f, err := openLogFile(cfg.DataDir)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New(logOut, &logging.Options{Verbose: cfg.LogVerbose})
	slog.SetDefault(logger)
	ctx = logging.NewContext(ctx, logger)

	mgr, err := orchestrator.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return mgr.Run(ctx)
	})
	if cfg.HTTPAddr != "" {
		srv := server.New(mgr)
		g.Go(func() error {
			defer cancel()
			return srv.ListenAndServe(ctx, cfg.HTTPAddr)
		})
	}
	if dashboard {
		g.Go(func() error {
			defer cancel()
			return tui.Run(ctx, mgr)
		})
	}
	return g.Wait()
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
