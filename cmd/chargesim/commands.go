package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/export"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/metrics"
	"github.com/san-kum/chargesim/internal/observability"
	"github.com/san-kum/chargesim/internal/physics"
	"github.com/san-kum/chargesim/internal/sim"
	"github.com/san-kum/chargesim/internal/storage"
	"github.com/san-kum/chargesim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := c.logger(cfg)
	if err != nil {
		return err
	}
	defer observability.Sync(logger)

	if len(c.compare) > 0 {
		return c.compareIntegrators(cmd, cfg, logger)
	}

	runCfg := sim.RunConfig{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		RecordEvery:   c.recordEvery,
		ValidateState: true,
	}
	if len(c.probe) > 0 {
		if len(c.probe) != 3 {
			return fmt.Errorf("probe needs x,y,z, got %d values", len(c.probe))
		}
		runCfg.Probe = &dynamo.Vec3{X: c.probe[0], Y: c.probe[1], Z: c.probe[2]}
		cfg.Physics.Retarded = true
	}

	engine, err := sim.FromConfig(cfg, dynamo.NewManualClock(0), logger)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		engine.AddMetric(m)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s simulation...\n", cfg.Scene)
	start := time.Now()

	result, err := engine.Run(cmd.Context(), runCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "steps: %d\n", result.StepsTaken)
	fmt.Fprintf(out, "frames: %d\n", result.Frames())
	fmt.Fprintf(out, "field lines: %d\n", len(result.FieldLines))
	if len(result.Probe) > 0 {
		fmt.Fprintf(out, "probe |E| final: %.6g V/m\n", result.Probe[len(result.Probe)-1])
	}

	if !c.noSave {
		st := storage.New(c.dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Dt, cfg.Duration, result)
		if err != nil {
			return err
		}
		logger.Info("stored run", zap.String("id", runID), zap.String("dir", st.Dir(runID)))
		fmt.Fprintf(out, "run id: %s\n", runID)
	}

	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(out, "  %s: %.6g\n", name, result.Metrics[name])
	}
	return nil
}

func (c *cli) compareIntegrators(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing integrators for %s (dt=%.4g, duration=%.4gs)\n\n", cfg.Scene, cfg.Dt, cfg.Duration)

	results, err := sim.CompareIntegrators(cmd.Context(), cfg, c.compare, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tFINAL ENERGY\tENERGY DRIFT\tMAX SPEED")
	for _, r := range results {
		final := 0.0
		if n := len(r.Energies); n > 0 {
			final = r.Energies[n-1]
		}
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.3e\t%.4g\n", r.Integrator, r.StepsTaken, final, r.Metrics["energy_drift"], r.Metrics["max_speed"])
	}
	return w.Flush()
}

func (c *cli) runLive(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := c.fileLogger(cfg)
	if err != nil {
		return err
	}
	defer observability.Sync(logger)

	engine, err := sim.FromConfig(cfg, dynamo.NewWallClock(), logger)
	if err != nil {
		return err
	}
	fps := cfg.FrameRate
	if c.fps > 0 {
		fps = c.fps
	}
	return viz.Run(engine, viz.Options{
		Dt:           cfg.Dt,
		StepsPerTick: c.steps,
		FrameRate:    fps,
		GIFPath:      c.gifPath,
		Logger:       logger,
	})
}

func (c *cli) traceLines(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig(cmd, args)
	if err != nil {
		return err
	}
	particles, err := cfg.BuildParticles()
	if err != nil {
		return err
	}
	lines := fieldlines.GenerateAll(particles, cfg.Tracer())

	out := cmd.OutOrStdout()
	switch c.linesFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	case "svg":
		return c.writeSVG(out, export.Scene{Particles: particles, Lines: lines})
	case "table":
	default:
		return fmt.Errorf("unknown format: %s", c.linesFormat)
	}

	complete, sinks := 0, 0
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tSOURCE\tDIRECTION\tPOINTS\tCOMPLETE\tON CHARGE\tEND")
	for i, line := range lines {
		if line.Len() == 0 {
			continue
		}
		dir := "forward"
		if !line.Forward {
			dir = "backward"
		}
		if line.Complete {
			complete++
		}
		if line.EndsOnCharge {
			sinks++
		}
		end := line.Points[len(line.Points)-1]
		fmt.Fprintf(w, "%d\t%+.2e\t%s\t%d\t%t\t%t\t(%.3g, %.3g, %.3g)\n", i, line.SourceCharge, dir, line.Len(), line.Complete, line.EndsOnCharge, end.X, end.Y, end.Z)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d lines, %d complete, %d ended on a charge\n", len(lines), complete, sinks)
	return nil
}

func (c *cli) listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(c.dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tINTEG\tPARTICLES\tFRAMES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4gs\t%.4gs\t%s\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Particles,
			run.Frames,
		)
	}

	return w.Flush()
}

func (c *cli) plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(c.dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scene: %s\n", meta.Scene)
	fmt.Fprintf(out, "samples: %d\n\n", len(states.Times))

	plot := func(data []float64, caption string) {
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	plot(states.Energies, "total energy (J)")

	const maxPlots = 6
	particles := min(len(states.Positions[0]), maxPlots)
	for i := 0; i < particles; i++ {
		dist := make([]float64, len(states.Positions))
		for f, frame := range states.Positions {
			if i < len(frame) {
				dist[f] = frame[i].Length()
			}
		}
		plot(dist, fmt.Sprintf("particle %d distance from origin (m)", i))
	}

	return nil
}

// exportedRun is the full JSON export of a stored run.
type exportedRun struct {
	Metadata   *storage.RunMetadata   `json:"metadata"`
	Times      []float64              `json:"times"`
	Energies   []float64              `json:"energies"`
	Positions  [][]dynamo.Vec3        `json:"positions"`
	FieldLines []fieldlines.FieldLine `json:"field_lines,omitempty"`
}

func (c *cli) exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	out := cmd.OutOrStdout()

	st := storage.New(c.dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if c.exportFormat == "meta" {
		return enc.Encode(meta)
	}

	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	switch c.exportFormat {
	case "csv":
		return writeCSV(out, states)
	case "json":
		run := exportedRun{Metadata: meta, Times: states.Times, Energies: states.Energies, Positions: states.Positions}
		if meta.FieldLines > 0 {
			if run.FieldLines, err = st.LoadFieldLines(runID); err != nil {
				return err
			}
		}
		return enc.Encode(run)
	case "svg":
		scene, err := runScene(st, meta, states)
		if err != nil {
			return err
		}
		return c.writeSVG(out, scene)
	}
	return fmt.Errorf("unknown format: %s", c.exportFormat)
}

func (c *cli) writeSVG(out io.Writer, scene export.Scene) error {
	plane, err := export.ParsePlane(c.plane)
	if err != nil {
		return err
	}
	opts := export.DefaultOptions()
	opts.Plane = plane
	return export.WriteSVG(out, scene, opts)
}

// runScene rebuilds a stored run as a drawable scene: one trajectory per
// particle, the stored field lines, and the particles at their final
// positions. Charges come from the preset the run was named after when it
// still matches; otherwise the particles are drawn neutral.
func runScene(st *storage.Store, meta *storage.RunMetadata, states *storage.States) (export.Scene, error) {
	var scene export.Scene
	if len(states.Positions) == 0 {
		return scene, fmt.Errorf("no data to export")
	}

	n := len(states.Positions[0])
	scene.Trajectories = make([][]dynamo.Vec3, n)
	for _, frame := range states.Positions {
		for i := 0; i < n && i < len(frame); i++ {
			scene.Trajectories[i] = append(scene.Trajectories[i], frame[i])
		}
	}

	last := states.Positions[len(states.Positions)-1]
	var charged []physics.Particle
	if preset := config.GetPreset(meta.Scene); preset != nil && len(preset.Particles) == len(last) {
		charged, _ = preset.BuildParticles()
	}
	for i, pos := range last {
		p := physics.NewCustom(pos, 0, 1)
		if charged != nil {
			p = charged[i]
			p.Position = pos
		}
		scene.Particles = append(scene.Particles, p)
	}

	if meta.FieldLines > 0 {
		lines, err := st.LoadFieldLines(meta.ID)
		if err != nil {
			return scene, err
		}
		scene.Lines = lines
	}
	return scene, nil
}

func writeCSV(out io.Writer, states *storage.States) error {
	if len(states.Times) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(out)

	header := []string{"time", "energy"}
	for i := range states.Positions[0] {
		header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i), fmt.Sprintf("p%d_z", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states.Times {
		row := []string{
			strconv.FormatFloat(states.Times[i], 'g', 10, 64),
			strconv.FormatFloat(states.Energies[i], 'g', 10, 64),
		}
		for _, p := range states.Positions[i] {
			row = append(row,
				strconv.FormatFloat(p.X, 'g', 10, 64),
				strconv.FormatFloat(p.Y, 'g', 10, 64),
				strconv.FormatFloat(p.Z, 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (c *cli) listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARTICLES\tFIXED\tDT\tDURATION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fixed := 0
		for _, p := range cfg.Particles {
			if p.Fixed {
				fixed++
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3gs\t%.3gs\n", name, len(cfg.Particles), fixed, cfg.Dt, cfg.Duration)
	}
	return w.Flush()
}

func (c *cli) initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(c.preset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %s)", c.preset, strings.Join(config.ListPresets(), ", "))
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s preset to %s\n", c.preset, args[0])
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
