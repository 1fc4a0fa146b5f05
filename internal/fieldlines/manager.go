package fieldlines

import (
	"math"
	"time"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxRegenerationRate is in regenerations per second.
	DefaultMaxRegenerationRate = 10.0

	// MovementThreshold is how far a particle must move to invalidate the cache.
	MovementThreshold = 1e-12
)

type ManagerOptions struct {
	MaxRegenerationRate float64
	Clock               dynamo.Clock
	Logger              *zap.Logger
}

// Manager caches the most recent line set and regenerates it when the scene
// changes, no more often than its rate limit allows.
type Manager struct {
	lines     []FieldLine
	positions []dynamo.Vec3
	cfg       Config

	dirty     bool
	generated bool
	lastRegen float64
	regens    int

	maxRate float64
	limiter *rate.Limiter
	clock   dynamo.Clock
	log     *zap.Logger
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.MaxRegenerationRate <= 0 {
		opts.MaxRegenerationRate = DefaultMaxRegenerationRate
	}
	if opts.Clock == nil {
		opts.Clock = dynamo.NewWallClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{
		dirty:   true,
		maxRate: opts.MaxRegenerationRate,
		limiter: rate.NewLimiter(rate.Limit(opts.MaxRegenerationRate), 1),
		clock:   opts.Clock,
		log:     opts.Logger.Named("fieldlines"),
	}
}

// FieldLines returns the cached line set, regenerating it first when the
// manager is dirty, the configuration changed, or the particles moved, and
// the rate limit allows. A change that arrives too soon is served the stale
// set and picked up by a later call.
//
// The returned slice is shared with the cache and must not be modified.
func (m *Manager) FieldLines(particles []physics.Particle, cfg Config) []FieldLine {
	if !m.needsRegeneration(particles, cfg) {
		return m.lines
	}

	now := m.clock.Now()
	allowed := m.limiter.AllowN(dynamo.TimeOf(now), 1)
	if m.generated && !allowed {
		return m.lines
	}

	start := time.Now()
	m.lines = GenerateAll(particles, cfg)
	m.snapshot(particles)
	m.cfg = cfg
	m.dirty = false
	m.generated = true
	m.lastRegen = now
	m.regens++

	m.log.Debug("regenerated field lines",
		zap.Int("lines", len(m.lines)),
		zap.Int("particles", len(particles)),
		zap.Duration("took", time.Since(start)))
	return m.lines
}

// Lines returns the cached set without checking for changes.
func (m *Manager) Lines() []FieldLine { return m.lines }

func (m *Manager) MarkDirty() { m.dirty = true }

func (m *Manager) Dirty() bool { return m.dirty }

func (m *Manager) MaxRegenerationRate() float64 { return m.maxRate }

// SetMaxRegenerationRate changes the limit in regenerations per second.
func (m *Manager) SetMaxRegenerationRate(hz float64) error {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return &dynamo.ConfigError{Field: "max_regeneration_rate", Value: hz, Wrapped: dynamo.ErrParameterBounds}
	}
	m.maxRate = hz
	m.limiter.SetLimitAt(dynamo.TimeOf(m.clock.Now()), rate.Limit(hz))
	return nil
}

// Reset forgets the cached set and the rate history so the next request
// regenerates immediately. Call it whenever the clock is rewound; the limiter
// refuses requests timed before its last event.
func (m *Manager) Reset() {
	m.lines = nil
	m.positions = m.positions[:0]
	m.dirty = true
	m.generated = false
	m.lastRegen = 0
	m.limiter = rate.NewLimiter(rate.Limit(m.maxRate), 1)
}

// LastRegeneration returns the clock time of the last regeneration and
// whether one has happened.
func (m *Manager) LastRegeneration() (float64, bool) { return m.lastRegen, m.generated }

// Regenerations counts how many times the line set has been rebuilt.
func (m *Manager) Regenerations() int { return m.regens }

func (m *Manager) needsRegeneration(particles []physics.Particle, cfg Config) bool {
	return m.dirty || !m.generated || cfg != m.cfg || m.moved(particles)
}

func (m *Manager) moved(particles []physics.Particle) bool {
	if len(particles) != len(m.positions) {
		return true
	}
	for i := range particles {
		if particles[i].Position.Dist(m.positions[i]) > MovementThreshold {
			return true
		}
	}
	return false
}

func (m *Manager) snapshot(particles []physics.Particle) {
	m.positions = m.positions[:0]
	for i := range particles {
		m.positions = append(m.positions, particles[i].Position)
	}
}
