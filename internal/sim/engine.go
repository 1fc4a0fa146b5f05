package sim

import (
	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/interaction"
	"github.com/san-kum/chargesim/internal/metrics"
	"github.com/san-kum/chargesim/internal/physics"
	"github.com/san-kum/chargesim/internal/scene"
	"go.uber.org/zap"
)

type Options struct {
	Scene        string
	System       scene.Options
	Drag         interaction.Options
	Lines        fieldlines.ManagerOptions
	LineConfig   fieldlines.Config
	LinesEnabled bool
	// Retarded makes RetardedField available by recording particle history.
	Retarded bool
	Clock    dynamo.Clock
	Logger   *zap.Logger
}

// Engine wires the particle system, the drag controller and the field-line
// cache into a single frame loop.
type Engine struct {
	name      string
	system    *scene.System
	drag      *interaction.DragController
	lines     *fieldlines.Manager
	lineCfg   fieldlines.Config
	linesOn   bool
	retarded  bool
	clock     dynamo.Clock
	log       *zap.Logger
	metrics   []metrics.Metric
	observers []Observer
	paused    bool
}

func NewEngine(particles []physics.Particle, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = dynamo.NewWallClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.System.Logger = opts.Logger
	opts.System.RecordHistory = opts.System.RecordHistory || opts.Retarded
	opts.Drag.Clock = opts.Clock
	opts.Drag.Logger = opts.Logger
	opts.Lines.Clock = opts.Clock
	opts.Lines.Logger = opts.Logger

	sys := scene.New(opts.System)
	for _, p := range particles {
		sys.Add(p)
	}

	return &Engine{
		name:     opts.Scene,
		system:   sys,
		drag:     interaction.NewDragController(sys, opts.Drag),
		lines:    fieldlines.NewManager(opts.Lines),
		lineCfg:  opts.LineConfig,
		linesOn:  opts.LinesEnabled,
		retarded: opts.Retarded,
		clock:    opts.Clock,
		log:      opts.Logger.Named("engine"),
	}
}

// FromConfig builds an engine from a validated configuration.
func FromConfig(cfg *config.Config, clock dynamo.Clock, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	particles, err := cfg.BuildParticles()
	if err != nil {
		return nil, err
	}

	return NewEngine(particles, Options{
		Scene: cfg.Scene,
		System: scene.Options{
			Method:              cfg.Method(),
			CollisionPrevention: cfg.Physics.CollisionPrevention,
			MinSeparation:       cfg.Physics.MinSeparation,
			RecordHistory:       cfg.Physics.RecordHistory,
		},
		Drag:         interaction.Options{MaxReleaseSpeed: cfg.Drag.MaxReleaseSpeed},
		Lines:        fieldlines.ManagerOptions{MaxRegenerationRate: cfg.FieldLines.MaxRegenerationRate},
		LineConfig:   cfg.Tracer(),
		LinesEnabled: cfg.FieldLines.Enabled,
		Retarded:     cfg.Physics.Retarded,
		Clock:        clock,
		Logger:       logger,
	}), nil
}

func (e *Engine) Name() string                                { return e.name }
func (e *Engine) System() *scene.System                       { return e.system }
func (e *Engine) DragController() *interaction.DragController { return e.drag }
func (e *Engine) LineManager() *fieldlines.Manager            { return e.lines }
func (e *Engine) Particles() []physics.Particle               { return e.system.Particles() }
func (e *Engine) Time() float64                               { return e.system.Time() }

func (e *Engine) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer)     { e.observers = append(e.observers, o) }

func (e *Engine) Paused() bool { return e.paused }
func (e *Engine) Pause()       { e.paused = true }
func (e *Engine) Resume()      { e.paused = false }
func (e *Engine) Toggle()      { e.paused = !e.paused }

func (e *Engine) LineConfig() fieldlines.Config { return e.lineCfg }

func (e *Engine) SetLineConfig(cfg fieldlines.Config) { e.lineCfg = cfg }

func (e *Engine) LinesEnabled() bool { return e.linesOn }

func (e *Engine) SetLinesEnabled(on bool) {
	e.linesOn = on
	e.lines.MarkDirty()
}

// Frame advances the simulation by dt unless paused and returns the current
// field lines. Lines are refreshed even while paused so a dragged particle
// drags its field with it.
func (e *Engine) Frame(dt float64) []fieldlines.FieldLine {
	if !e.paused {
		e.step(dt)
	}
	return e.Lines()
}

func (e *Engine) step(dt float64) {
	e.system.Step(dt)
	if mc, ok := e.clock.(*dynamo.ManualClock); ok {
		mc.Advance(dt)
	}
	particles := e.system.Particles()
	for _, m := range e.metrics {
		m.Observe(particles, e.system.Time())
	}
	for _, o := range e.observers {
		o.OnFrame(particles, e.system.Time())
	}
}

// Lines returns the throttled field-line set, or nil when disabled.
func (e *Engine) Lines() []fieldlines.FieldLine {
	if !e.linesOn {
		return nil
	}
	return e.lines.FieldLines(e.system.Particles(), e.lineCfg)
}

// Grab picks the particle under ray and starts dragging it. It reports the
// picked index, or -1 when the ray hits nothing.
func (e *Engine) Grab(ray dynamo.Ray, cameraPos dynamo.Vec3) (int, error) {
	particles := e.system.Particles()
	hit := scene.Pick(ray, particles)
	if !hit.Hit {
		return -1, nil
	}
	if err := e.drag.BeginDrag(&particles[hit.Index], hit.Point, cameraPos); err != nil {
		return -1, err
	}
	return hit.Index, nil
}

// GrabIndex starts dragging the particle at index as if it had been picked
// at its centre.
func (e *Engine) GrabIndex(index int, cameraPos dynamo.Vec3) error {
	particles := e.system.Particles()
	if index < 0 || index >= len(particles) {
		return interaction.ErrNilParticle
	}
	p := &particles[index]
	return e.drag.BeginDrag(p, p.Position, cameraPos)
}

func (e *Engine) Drag(ray dynamo.Ray) error {
	return e.drag.UpdateDrag(ray)
}

// Release ends the drag and returns the velocity given to the particle.
func (e *Engine) Release() (dynamo.Vec3, error) {
	v, err := e.drag.EndDrag()
	if err != nil {
		return v, err
	}
	e.lines.MarkDirty()
	return v, nil
}

func (e *Engine) Add(p physics.Particle) uint64 {
	id := e.system.Add(p)
	e.lines.MarkDirty()
	return id
}

func (e *Engine) Remove(index int) {
	e.system.Remove(index)
	e.lines.MarkDirty()
}

// Reset cancels any drag, restores the initial particles and clears metrics.
func (e *Engine) Reset() {
	e.drag.Cancel()
	e.system.Reset()
	for _, m := range e.metrics {
		m.Reset()
	}
	if mc, ok := e.clock.(*dynamo.ManualClock); ok {
		mc.Set(0)
	}
	e.lines.Reset()
}

// FieldAt evaluates the field at p, retarded when the engine records history.
func (e *Engine) FieldAt(p dynamo.Vec3) dynamo.Vec3 {
	if e.retarded {
		return physics.RetardedTotalField(p, e.system.Time(), e.system.Particles())
	}
	return physics.TotalField(p, e.system.Particles())
}

// Energy is the current total energy.
func (e *Engine) Energy() float64 {
	return metrics.TotalEnergy(e.system.Particles())
}
