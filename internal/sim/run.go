package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/metrics"
	"go.uber.org/zap"
)

func validateRunConfig(cfg RunConfig) error {
	if cfg.Dt <= 0 {
		return &dynamo.ConfigError{Field: "dt", Value: cfg.Dt, Wrapped: dynamo.ErrParameterBounds}
	}
	if cfg.Duration <= 0 {
		return &dynamo.ConfigError{Field: "duration", Value: cfg.Duration, Wrapped: dynamo.ErrParameterBounds}
	}
	return nil
}

// Run steps the engine for cfg.Duration and records the trajectory, tracing
// field lines once at the end. It stops early, returning the partial result,
// when ctx is cancelled or, with ValidateState, when a particle state becomes
// NaN or Inf. Run ignores the paused flag.
func (e *Engine) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	every := max(cfg.RecordEvery, 1)
	frames := steps/every + 1

	result := &Result{
		Scene:      e.name,
		Integrator: e.system.Method().String(),
		Times:      make([]float64, 0, frames),
		Positions:  make([][]dynamo.Vec3, 0, frames),
		Energies:   make([]float64, 0, frames),
		Metrics:    make(map[string]float64),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	e.log.Info("run started",
		zap.String("scene", e.name),
		zap.String("integrator", result.Integrator),
		zap.Int("particles", e.system.Len()),
		zap.Int("steps", steps))

	e.record(result, cfg)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			e.finish(result)
			return result, ctx.Err()
		default:
		}

		e.step(cfg.Dt)
		result.StepsTaken++

		if cfg.ValidateState {
			if err := e.validate(); err != nil {
				e.finish(result)
				return result, &dynamo.SimulationError{Step: i, Time: e.system.Time(), Wrapped: err}
			}
		}

		if (i+1)%every == 0 {
			e.record(result, cfg)
		}
	}

	e.finish(result)
	e.log.Info("run finished",
		zap.Int("steps", result.StepsTaken),
		zap.Int("field_lines", len(result.FieldLines)))
	return result, nil
}

func (e *Engine) record(result *Result, cfg RunConfig) {
	particles := e.system.Particles()
	frame := make([]dynamo.Vec3, len(particles))
	for i := range particles {
		frame[i] = particles[i].Position
	}

	result.Times = append(result.Times, e.system.Time())
	result.Positions = append(result.Positions, frame)
	result.Energies = append(result.Energies, metrics.TotalEnergy(particles))

	if cfg.Probe != nil {
		result.Probe = append(result.Probe, e.FieldAt(*cfg.Probe).Length())
	}
}

func (e *Engine) finish(result *Result) {
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if e.linesOn {
		result.FieldLines = fieldlines.GenerateAll(e.system.Snapshot(), e.lineCfg)
	}
}

func (e *Engine) validate() error {
	for _, p := range e.system.Particles() {
		if !p.Position.IsValid() || !p.Velocity.IsValid() {
			return fmt.Errorf("particle %d: %w", p.ID, dynamo.ErrInvalidState)
		}
	}
	return nil
}
