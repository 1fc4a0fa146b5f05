package interaction_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/interaction"
	"github.com/san-kum/chargesim/internal/physics"
)

type sliceStore struct {
	particles []physics.Particle
}

func (s *sliceStore) Lookup(id uint64) *physics.Particle {
	for i := range s.particles {
		if s.particles[i].ID == id {
			return &s.particles[i]
		}
	}
	return nil
}

func rayThrough(from, to dynamo.Vec3) dynamo.Ray {
	return dynamo.NewRay(from, to.Sub(from))
}

var _ = Describe("DragController", func() {
	var (
		store  *sliceStore
		clock  *dynamo.ManualClock
		logs   *observer.ObservedLogs
		drag   *interaction.DragController
		camera dynamo.Vec3
	)

	particle := func() *physics.Particle { return &store.particles[0] }

	BeforeEach(func() {
		p := physics.NewCustom(dynamo.Vec3{}, 1e-9, 1e-3)
		p.ID = 7
		store = &sliceStore{particles: []physics.Particle{p}}
		clock = dynamo.NewManualClock(0)
		camera = dynamo.Vec3{Z: 10}

		var core zapcore.Core
		core, logs = observer.New(zap.DebugLevel)
		drag = interaction.NewDragController(store, interaction.Options{
			MaxReleaseSpeed: physics.MaxReleaseSpeed,
			Clock:           clock,
			Logger:          zap.New(core),
		})
	})

	Describe("BeginDrag", func() {
		It("enters Dragging and flags the particle", func() {
			Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(Succeed())

			Expect(drag.Mode()).To(Equal(interaction.Dragging))
			Expect(particle().Dragged).To(BeTrue())
			id, ok := drag.Target()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(uint64(7)))
			Expect(logs.FilterMessage("drag started").Len()).To(Equal(1))
		})

		It("faces the plane toward the camera", func() {
			Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(Succeed())

			point, normal := drag.Plane()
			Expect(point).To(Equal(dynamo.Vec3{}))
			Expect(normal.Z).To(BeNumerically("~", -1, 1e-12))
			Expect(normal.Length()).To(BeNumerically("~", 1, 1e-12))
		})

		It("falls back to world up when the camera sits on the hit point", func() {
			hit := dynamo.Vec3{X: 1}
			Expect(drag.BeginDrag(particle(), hit, hit)).To(Succeed())

			_, normal := drag.Plane()
			Expect(normal).To(Equal(dynamo.Up))
		})

		It("refuses a second concurrent drag", func() {
			Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(Succeed())
			Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(MatchError(interaction.ErrAlreadyDragging))
		})

		It("rejects a nil particle", func() {
			Expect(drag.BeginDrag(nil, dynamo.Vec3{}, camera)).To(MatchError(interaction.ErrNilParticle))
			Expect(drag.Mode()).To(Equal(interaction.Idle))
		})
	})

	Describe("UpdateDrag", func() {
		It("requires an active drag", func() {
			Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{}))).To(MatchError(interaction.ErrNotDragging))
		})

		Context("while dragging", func() {
			BeforeEach(func() {
				particle().Velocity = dynamo.Vec3{X: 5}
				Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(Succeed())
			})

			It("moves the particle onto the drag plane and zeroes its velocity", func() {
				Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{X: 1, Y: 2}))).To(Succeed())

				pos := particle().Position
				Expect(pos.X).To(BeNumerically("~", 1, 1e-9))
				Expect(pos.Y).To(BeNumerically("~", 2, 1e-9))
				Expect(pos.Z).To(BeNumerically("~", 0, 1e-9))
				Expect(particle().Velocity).To(Equal(dynamo.Vec3{}))
				Expect(drag.Samples()).To(HaveLen(1))
			})

			It("ignores intersections behind the ray origin", func() {
				away := dynamo.NewRay(camera, dynamo.Vec3{Z: 1})
				Expect(drag.UpdateDrag(away)).To(Succeed())

				Expect(particle().Position).To(Equal(dynamo.Vec3{}))
				Expect(drag.Samples()).To(BeEmpty())
			})

			It("projects onto the horizontal plane when the ray is parallel to the drag plane", func() {
				ray := dynamo.NewRay(dynamo.Vec3{Y: 5}, dynamo.Vec3{X: 1, Y: -1})
				Expect(drag.UpdateDrag(ray)).To(Succeed())

				pos := particle().Position
				Expect(pos.X).To(BeNumerically("~", 5, 1e-9))
				Expect(pos.Y).To(BeNumerically("~", 0, 1e-9))
			})

			It("leaves the particle when the ray is parallel to both planes", func() {
				ray := dynamo.NewRay(dynamo.Vec3{Y: 5}, dynamo.Vec3{X: 1})
				Expect(drag.UpdateDrag(ray)).To(Succeed())

				Expect(particle().Position).To(Equal(dynamo.Vec3{}))
			})

			It("keeps only the most recent samples", func() {
				for i := 0; i < 25; i++ {
					clock.Advance(0.01)
					Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{X: float64(i)}))).To(Succeed())
				}
				Expect(drag.Samples()).To(HaveLen(interaction.HistoryCapacity))
			})

			It("cancels when the particle disappears", func() {
				store.particles = nil

				Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{}))).To(MatchError(interaction.ErrNotDragging))
				Expect(drag.Mode()).To(Equal(interaction.Idle))
				_, ok := drag.Target()
				Expect(ok).To(BeFalse())
			})

			It("cancels without touching a particle restored underneath it", func() {
				restored := physics.NewCustom(dynamo.Vec3{Y: 3}, 1e-9, 1e-3)
				restored.ID = 7
				store.particles[0] = restored

				Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{X: 1}))).To(MatchError(interaction.ErrNotDragging))
				Expect(drag.Mode()).To(Equal(interaction.Idle))
				Expect(particle().Position).To(Equal(dynamo.Vec3{Y: 3}))
				Expect(particle().Dragged).To(BeFalse())
				Expect(logs.FilterMessage("dragged particle lost its drag flag, cancelling drag").Len()).To(Equal(1))
			})
		})
	})

	Describe("EndDrag", func() {
		It("requires an active drag", func() {
			_, err := drag.EndDrag()
			Expect(err).To(MatchError(interaction.ErrNotDragging))
		})

		Context("after a two-sample drag", func() {
			BeforeEach(func() {
				Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(Succeed())
				clock.Set(1)
				Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{X: 1}))).To(Succeed())
				clock.Set(2)
				Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{X: 3, Y: -1}))).To(Succeed())
			})

			It("infers velocity from the first and last samples", func() {
				v, err := drag.EndDrag()
				Expect(err).NotTo(HaveOccurred())

				Expect(v.X).To(BeNumerically("~", 2, 1e-9))
				Expect(v.Y).To(BeNumerically("~", -1, 1e-9))
				Expect(v.Z).To(BeNumerically("~", 0, 1e-9))
				Expect(particle().Velocity).To(Equal(v))
			})

			It("caps the release speed preserving direction", func() {
				Expect(drag.SetMaxReleaseSpeed(1)).To(Succeed())

				v, err := drag.EndDrag()
				Expect(err).NotTo(HaveOccurred())

				Expect(v.Length()).To(BeNumerically("~", 1, 1e-9))
				Expect(v.X / -v.Y).To(BeNumerically("~", 2, 1e-9))
			})

			It("returns to Idle and clears the drag flag", func() {
				_, err := drag.EndDrag()
				Expect(err).NotTo(HaveOccurred())

				Expect(drag.Mode()).To(Equal(interaction.Idle))
				Expect(particle().Dragged).To(BeFalse())
				Expect(drag.Samples()).To(BeEmpty())
				Expect(logs.FilterMessage("drag ended").Len()).To(Equal(1))
			})
		})

		It("gives zero velocity with fewer than two samples", func() {
			Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(Succeed())
			Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{X: 1}))).To(Succeed())

			v, err := drag.EndDrag()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(dynamo.Vec3{}))
		})

		It("gives zero velocity when the samples are too close in time", func() {
			Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(Succeed())
			Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{X: 1}))).To(Succeed())
			clock.Advance(1e-8)
			Expect(drag.UpdateDrag(rayThrough(camera, dynamo.Vec3{X: 2}))).To(Succeed())

			v, err := drag.EndDrag()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(dynamo.Vec3{}))
		})
	})

	Describe("SetMaxReleaseSpeed", func() {
		It("rejects non-positive values", func() {
			for _, speed := range []float64{0, -1, math.NaN()} {
				Expect(drag.SetMaxReleaseSpeed(speed)).To(MatchError(dynamo.ErrParameterBounds))
			}
			Expect(drag.MaxReleaseSpeed()).To(Equal(physics.MaxReleaseSpeed))
		})
	})

	Describe("Cancel", func() {
		It("releases without a velocity", func() {
			Expect(drag.BeginDrag(particle(), dynamo.Vec3{}, camera)).To(Succeed())
			drag.Cancel()

			Expect(drag.Mode()).To(Equal(interaction.Idle))
			Expect(particle().Dragged).To(BeFalse())
			Expect(particle().Velocity).To(Equal(dynamo.Vec3{}))
		})
	})
})
