package fieldlines_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/physics"
)

var _ = Describe("Manager", func() {
	var (
		clock     *dynamo.ManualClock
		logs      *observer.ObservedLogs
		manager   *fieldlines.Manager
		particles []physics.Particle
		cfg       fieldlines.Config
	)

	BeforeEach(func() {
		clock = dynamo.NewManualClock(100)

		var core zapcore.Core
		core, logs = observer.New(zap.DebugLevel)
		manager = fieldlines.NewManager(fieldlines.ManagerOptions{
			Clock:  clock,
			Logger: zap.New(core),
		})

		pos := physics.NewCustom(dynamo.Vec3{X: -1}, 1e-9, 1)
		neg := physics.NewCustom(dynamo.Vec3{X: 1}, -1e-9, 1)
		pos.VisualRadius, neg.VisualRadius = 0.2, 0.2
		particles = []physics.Particle{pos, neg}

		cfg = fieldlines.DefaultConfig()
		cfg.SeedsPerParticle = 6
		cfg.MaxStepsPerLine = 100
	})

	It("starts dirty with the default rate", func() {
		Expect(manager.Dirty()).To(BeTrue())
		Expect(manager.MaxRegenerationRate()).To(Equal(fieldlines.DefaultMaxRegenerationRate))
		_, ok := manager.LastRegeneration()
		Expect(ok).To(BeFalse())
	})

	It("generates on the first request", func() {
		lines := manager.FieldLines(particles, cfg)

		Expect(lines).NotTo(BeEmpty())
		Expect(manager.Dirty()).To(BeFalse())
		Expect(manager.Regenerations()).To(Equal(1))
		at, ok := manager.LastRegeneration()
		Expect(ok).To(BeTrue())
		Expect(at).To(Equal(100.0))
		Expect(logs.FilterMessage("regenerated field lines").Len()).To(Equal(1))
	})

	It("returns the identical cached set for a stationary scene", func() {
		a := manager.FieldLines(particles, cfg)
		clock.Advance(0.01)
		b := manager.FieldLines(particles, cfg)

		Expect(b).To(HaveLen(len(a)))
		Expect(&b[0]).To(BeIdenticalTo(&a[0]))
		Expect(manager.Regenerations()).To(Equal(1))
	})

	It("keeps serving the cache long after generation while nothing changes", func() {
		manager.FieldLines(particles, cfg)
		clock.Advance(60)
		manager.FieldLines(particles, cfg)

		Expect(manager.Regenerations()).To(Equal(1))
	})

	Context("when a change arrives too soon", func() {
		BeforeEach(func() {
			manager.FieldLines(particles, cfg)
			clock.Advance(0.05)
			manager.MarkDirty()
		})

		It("serves the stale set and stays dirty", func() {
			stale := manager.Lines()
			got := manager.FieldLines(particles, cfg)

			Expect(&got[0]).To(BeIdenticalTo(&stale[0]))
			Expect(manager.Dirty()).To(BeTrue())
			Expect(manager.Regenerations()).To(Equal(1))
		})

		It("regenerates once the interval has passed", func() {
			manager.FieldLines(particles, cfg)
			clock.Advance(0.1)
			manager.FieldLines(particles, cfg)

			Expect(manager.Dirty()).To(BeFalse())
			Expect(manager.Regenerations()).To(Equal(2))
		})
	})

	It("regenerates when a particle moves", func() {
		manager.FieldLines(particles, cfg)
		clock.Advance(0.2)

		particles[0].Position.X += 1e-6
		manager.FieldLines(particles, cfg)
		Expect(manager.Regenerations()).To(Equal(2))
	})

	It("ignores sub-threshold movement", func() {
		manager.FieldLines(particles, cfg)
		clock.Advance(0.2)

		particles[0].Position.X += 1e-13
		manager.FieldLines(particles, cfg)
		Expect(manager.Regenerations()).To(Equal(1))
	})

	It("regenerates when the particle count changes", func() {
		manager.FieldLines(particles, cfg)
		clock.Advance(0.2)

		manager.FieldLines(particles[:1], cfg)
		Expect(manager.Regenerations()).To(Equal(2))
	})

	It("regenerates when the configuration changes", func() {
		manager.FieldLines(particles, cfg)
		clock.Advance(0.2)

		cfg.SeedsPerParticle = 3
		manager.FieldLines(particles, cfg)
		Expect(manager.Regenerations()).To(Equal(2))
	})

	Describe("Reset", func() {
		It("regenerates at once after the clock is rewound", func() {
			manager.FieldLines(particles, cfg)
			clock.Advance(5)
			manager.MarkDirty()
			manager.FieldLines(particles, cfg)
			Expect(manager.Regenerations()).To(Equal(2))

			clock.Set(0)
			manager.Reset()
			Expect(manager.Dirty()).To(BeTrue())
			Expect(manager.Lines()).To(BeEmpty())
			_, ok := manager.LastRegeneration()
			Expect(ok).To(BeFalse())

			Expect(manager.FieldLines(particles, cfg)).NotTo(BeEmpty())
			Expect(manager.Regenerations()).To(Equal(3))

			clock.Advance(0.2)
			manager.MarkDirty()
			manager.FieldLines(particles, cfg)
			Expect(manager.Regenerations()).To(Equal(4))
		})

		It("keeps the configured rate", func() {
			Expect(manager.SetMaxRegenerationRate(2)).To(Succeed())
			manager.Reset()
			Expect(manager.MaxRegenerationRate()).To(Equal(2.0))

			manager.FieldLines(particles, cfg)
			clock.Advance(0.2)
			manager.MarkDirty()
			manager.FieldLines(particles, cfg)
			Expect(manager.Regenerations()).To(Equal(1))
		})
	})

	Describe("SetMaxRegenerationRate", func() {
		It("rejects non-positive rates", func() {
			Expect(manager.SetMaxRegenerationRate(0)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(manager.SetMaxRegenerationRate(-5)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(manager.MaxRegenerationRate()).To(Equal(fieldlines.DefaultMaxRegenerationRate))
		})

		It("tightens the gate", func() {
			Expect(manager.SetMaxRegenerationRate(1)).To(Succeed())
			manager.FieldLines(particles, cfg)

			clock.Advance(0.5)
			manager.MarkDirty()
			manager.FieldLines(particles, cfg)
			Expect(manager.Regenerations()).To(Equal(1))

			clock.Advance(0.6)
			manager.FieldLines(particles, cfg)
			Expect(manager.Regenerations()).To(Equal(2))
		})
	})
})
