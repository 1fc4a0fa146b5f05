package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/observability"
	"github.com/san-kum/chargesim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds the flag values shared by the subcommands.
type cli struct {
	dataDir    string
	configFile string
	preset     string
	integrator string
	logLevel   string
	logFile    string
	dt         float64
	duration   float64
	// run
	recordEvery int
	probe       []float64
	compare     []string
	noSave      bool
	// live
	steps   int
	fps     float64
	gifPath string
	// lines / export
	linesFormat  string
	exportFormat string
	plane        string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "chargesim",
		Short:         "interactive point-charge electrostatics",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := c.fileLogger(config.DefaultConfig())
			if err != nil {
				return err
			}
			defer observability.Sync(logger)
			// Default to the preset picker when no command given
			return viz.RunMenu(logger)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.dataDir, "data", ".chargesim", "data directory")
	pf.StringVar(&c.configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&c.logFile, "log-file", "", "also write JSON logs to this file")

	sceneFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&c.preset, "preset", config.DefaultScene, "preset scene, ignored with --config")
		cmd.Flags().StringVar(&c.integrator, "integrator", "", "integrator (verlet, euler)")
		cmd.Flags().Float64Var(&c.dt, "dt", 0, "timestep override")
		cmd.Flags().Float64Var(&c.duration, "time", 0, "duration override")
	}

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runSimulation,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&c.recordEvery, "every", 1, "record one frame in N")
	runCmd.Flags().Float64SliceVar(&c.probe, "probe", nil, "x,y,z point to sample the field at")
	runCmd.Flags().StringSliceVar(&c.compare, "compare", nil, "compare these integrators instead of storing a run")
	runCmd.Flags().BoolVar(&c.noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&c.steps, "steps", 1, "simulation steps per frame")
	liveCmd.Flags().Float64Var(&c.fps, "fps", 0, "frame rate override")
	liveCmd.Flags().StringVar(&c.gifPath, "gif", "chargesim.gif", "where V-key recordings are written")

	linesCmd := &cobra.Command{
		Use:   "lines [preset]",
		Short: "trace the field lines of a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.traceLines,
	}
	sceneFlags(linesCmd)
	linesCmd.Flags().StringVar(&c.linesFormat, "format", "table", "output format (table, json, svg)")
	linesCmd.Flags().StringVar(&c.plane, "plane", "xy", "projection plane for svg output (xy, xz, yz)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  c.listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  c.plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data",
		Args:  cobra.ExactArgs(1),
		RunE:  c.exportRun,
	}
	exportCmd.Flags().StringVar(&c.exportFormat, "format", "json", "output format (json, csv, meta, svg)")
	exportCmd.Flags().StringVar(&c.plane, "plane", "xy", "projection plane for svg output (xy, xz, yz)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenes",
		Args:  cobra.NoArgs,
		RunE:  c.listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a preset as an editable config file",
		Args:  cobra.ExactArgs(1),
		RunE:  c.initConfig,
	}
	initCmd.Flags().StringVar(&c.preset, "preset", config.DefaultScene, "preset to start from")

	rootCmd.AddCommand(runCmd, liveCmd, linesCmd, listCmd, plotCmd, exportCmd, presetsCmd, initCmd)
	return rootCmd
}

// loadConfig resolves the scene from --config, a preset argument or
// --preset, then applies the command-line overrides.
func (c *cli) loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case c.configFile != "":
		loaded, err := config.Load(c.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	default:
		name := c.preset
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = c.integrator
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = c.dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = c.duration
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFile != "" {
		cfg.Logging.File = c.logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger writes to stderr, plus the log file when one is configured.
func (c *cli) logger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewStderr(cfg.Logging)
}

// fileLogger never writes to the terminal, so it cannot tear the viewer.
func (c *cli) fileLogger(cfg *config.Config) (*zap.Logger, error) {
	logging := cfg.Logging
	if c.logLevel != "" {
		logging.Level = c.logLevel
	}
	if c.logFile != "" {
		logging.File = c.logFile
	}
	return observability.New(logging, nil)
}
