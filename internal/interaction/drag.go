package interaction

import (
	"errors"
	"math"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
	"go.uber.org/zap"
)

var (
	ErrAlreadyDragging = errors.New("interaction: a particle is already being dragged")
	ErrNotDragging     = errors.New("interaction: no drag in progress")
	ErrNilParticle     = errors.New("interaction: nil particle")
)

const (
	// HistoryCapacity bounds the pointer samples used for release velocity.
	HistoryCapacity = 10

	parallelEpsilon = 1e-10
	minReleaseTime  = 1e-6
)

// Mode is the drag state.
type Mode int

const (
	Idle Mode = iota
	Dragging
	// Releasing is reserved; EndDrag returns straight to Idle.
	Releasing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Releasing:
		return "releasing"
	}
	return "unknown"
}

// ParticleStore resolves particle IDs to live particles. The returned
// pointer is only used until the next call.
type ParticleStore interface {
	Lookup(id uint64) *physics.Particle
}

// Sample is a dragged position stamped with clock time.
type Sample struct {
	Position  dynamo.Vec3
	Timestamp float64
}

type Options struct {
	MaxReleaseSpeed float64
	Clock           dynamo.Clock
	Logger          *zap.Logger
}

func DefaultOptions() Options {
	return Options{MaxReleaseSpeed: physics.MaxReleaseSpeed}
}

// DragController holds the single active drag session.
type DragController struct {
	store ParticleStore
	clock dynamo.Clock
	log   *zap.Logger

	mode     Mode
	targetID uint64
	active   bool

	planePoint  dynamo.Vec3
	planeNormal dynamo.Vec3
	history     *dynamo.Ring[Sample]

	maxReleaseSpeed float64
}

func NewDragController(store ParticleStore, opts Options) *DragController {
	if opts.Clock == nil {
		opts.Clock = dynamo.NewWallClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxReleaseSpeed <= 0 {
		opts.MaxReleaseSpeed = physics.MaxReleaseSpeed
	}
	return &DragController{
		store:           store,
		clock:           opts.Clock,
		log:             opts.Logger.Named("drag"),
		history:         dynamo.NewRing[Sample](HistoryCapacity),
		maxReleaseSpeed: opts.MaxReleaseSpeed,
	}
}

func (d *DragController) Mode() Mode { return d.mode }

func (d *DragController) IsDragging() bool { return d.mode == Dragging }

// Target returns the dragged particle's ID and whether a drag is active.
func (d *DragController) Target() (uint64, bool) { return d.targetID, d.active }

func (d *DragController) MaxReleaseSpeed() float64 { return d.maxReleaseSpeed }

// SetMaxReleaseSpeed caps the release velocity. Non-positive values are
// rejected.
func (d *DragController) SetMaxReleaseSpeed(speed float64) error {
	if speed <= 0 || math.IsNaN(speed) {
		return &dynamo.ConfigError{Field: "max_release_speed", Value: speed, Wrapped: dynamo.ErrParameterBounds}
	}
	d.maxReleaseSpeed = speed
	return nil
}

// Plane returns the current drag plane.
func (d *DragController) Plane() (point, normal dynamo.Vec3) {
	return d.planePoint, d.planeNormal
}

// Samples returns the recorded pointer samples, oldest first.
func (d *DragController) Samples() []Sample { return d.history.Slice() }

// BeginDrag starts dragging p on the plane through hitPoint that faces the
// camera.
func (d *DragController) BeginDrag(p *physics.Particle, hitPoint, cameraPos dynamo.Vec3) error {
	if p == nil {
		return ErrNilParticle
	}
	if d.mode != Idle {
		return ErrAlreadyDragging
	}

	normal := hitPoint.Sub(cameraPos)
	if normal.Length() < parallelEpsilon {
		normal = dynamo.Up
	}

	d.planeNormal = normal.Normalize()
	d.planePoint = hitPoint
	d.history.Clear()

	p.Dragged = true
	d.targetID = p.ID
	d.active = true
	d.mode = Dragging

	d.log.Debug("drag started",
		zap.Uint64("id", p.ID),
		zap.Float64s("plane_normal", d.planeNormal.Slice()))
	return nil
}

// UpdateDrag moves the dragged particle to where ray meets the drag plane.
// Intersections behind the ray origin leave the particle where it is.
func (d *DragController) UpdateDrag(ray dynamo.Ray) error {
	p, err := d.target()
	if err != nil {
		return err
	}

	hit, ok := d.intersect(ray, p.Position.Y)
	if !ok {
		return nil
	}

	p.Position = hit
	p.Velocity = dynamo.Vec3{}
	d.history.Push(Sample{Position: hit, Timestamp: d.clock.Now()})
	return nil
}

// EndDrag releases the particle and returns the velocity given to it.
func (d *DragController) EndDrag() (dynamo.Vec3, error) {
	p, err := d.target()
	if err != nil {
		return dynamo.Vec3{}, err
	}

	v := d.releaseVelocity()
	p.Velocity = v
	p.Dragged = false

	d.log.Debug("drag ended",
		zap.Uint64("id", p.ID),
		zap.Int("samples", d.history.Len()),
		zap.Float64("release_speed", v.Length()))

	d.clear()
	return v, nil
}

// Cancel abandons the drag without imparting a velocity.
func (d *DragController) Cancel() {
	if d.mode == Idle {
		return
	}
	if p := d.store.Lookup(d.targetID); p != nil {
		p.Dragged = false
	}
	d.clear()
}

// target resolves the dragged particle, cancelling the session if it has
// been removed from the store or replaced by one that is not flagged as
// dragged (a System.Reset behind the controller's back).
func (d *DragController) target() (*physics.Particle, error) {
	if d.mode != Dragging || !d.active {
		return nil, ErrNotDragging
	}
	p := d.store.Lookup(d.targetID)
	if p == nil {
		d.log.Warn("dragged particle vanished, cancelling drag", zap.Uint64("id", d.targetID))
		d.clear()
		return nil, ErrNotDragging
	}
	if !p.Dragged {
		d.log.Warn("dragged particle lost its drag flag, cancelling drag", zap.Uint64("id", d.targetID))
		d.clear()
		return nil, ErrNotDragging
	}
	return p, nil
}

func (d *DragController) intersect(ray dynamo.Ray, height float64) (dynamo.Vec3, bool) {
	denom := ray.Direction.Dot(d.planeNormal)
	if math.Abs(denom) >= parallelEpsilon {
		t := d.planePoint.Sub(ray.Origin).Dot(d.planeNormal) / denom
		if t < 0 {
			return dynamo.Vec3{}, false
		}
		return ray.At(t), true
	}

	// Ray runs along the drag plane: project onto the horizontal plane at
	// the particle's height instead.
	if math.Abs(ray.Direction.Y) < parallelEpsilon {
		return dynamo.Vec3{}, false
	}
	t := (height - ray.Origin.Y) / ray.Direction.Y
	if t < 0 {
		return dynamo.Vec3{}, false
	}
	return ray.At(t), true
}

func (d *DragController) releaseVelocity() dynamo.Vec3 {
	if d.history.Len() < 2 {
		return dynamo.Vec3{}
	}
	first, _ := d.history.First()
	last, _ := d.history.Last()

	elapsed := last.Timestamp - first.Timestamp
	if elapsed < minReleaseTime {
		return dynamo.Vec3{}
	}

	v := last.Position.Sub(first.Position).Scale(1 / elapsed)
	return v.ClampLength(d.maxReleaseSpeed)
}

func (d *DragController) clear() {
	d.history.Clear()
	d.targetID = 0
	d.active = false
	d.mode = Idle
}
