package pipeline_test

import (
	"context"
	"errors"
	"io"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/san-kum/kinefig/internal/integrators"
	"github.com/san-kum/kinefig/internal/metrics"
	"github.com/san-kum/kinefig/internal/physics"
	"github.com/san-kum/kinefig/internal/pipeline"
	"github.com/san-kum/kinefig/internal/scene"
	"github.com/san-kum/kinefig/internal/sim"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newSolver() *sim.Solver {
	s := sim.New(integrators.NewRK45(), sim.DefaultConfig())
	s.SetLogger(quietLogger())
	return s
}

func mustGrid(duration, dt float64) dynamo.TimeGrid {
	g, err := dynamo.NewTimeGrid(duration, dt)
	Expect(err).NotTo(HaveOccurred())
	return g
}

// cube has three state components, which no mapper accepts.
type cube struct{}

func (cube) Name() string                                  { return "cube" }
func (cube) StateDim() int                                 { return 3 }
func (cube) Derive(x dynamo.State, t float64) dynamo.State { return dynamo.State{0, 0, 0} }

// blowup has a derivative that turns non-finite after t = 0.5.
type blowup struct{}

func (blowup) Name() string  { return "blowup" }
func (blowup) StateDim() int { return 2 }
func (blowup) Derive(x dynamo.State, t float64) dynamo.State {
	if t > 0.5 {
		return dynamo.State{math.Inf(1), 0}
	}
	return dynamo.State{x[1], 0}
}

var _ = Describe("Pipeline", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("damped pendulum", func() {
		var (
			pend *physics.Pendulum
			p    *pipeline.Pipeline
			grid dynamo.TimeGrid
			x0   dynamo.State
		)

		BeforeEach(func() {
			var err error
			pend, err = physics.NewPendulum(physics.DefaultPendulumParams())
			Expect(err).NotTo(HaveOccurred())

			p = pipeline.New(pend, nil, scene.NewPendulumMapper(pend.Params().Length), newSolver())
			p.SetLogger(quietLogger())
			p.AddMetric(metrics.NewEnergyGain(pend))

			grid = mustGrid(20, 0.055)
			x0 = dynamo.State{-math.Pi / 6, 0}
		})

		It("produces one frame per grid instant", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Trajectory.Len()).To(Equal(grid.Len()))
			Expect(res.Frames).To(HaveLen(grid.Len()))
			for i, f := range res.Frames {
				Expect(f.Index).To(Equal(i))
				Expect(f.Time).To(Equal(grid.Times[i]))
			}
		})

		It("starts exactly at the initial state and settles toward rest", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Trajectory.States[0]).To(Equal(x0))

			last := res.Trajectory.States[res.Trajectory.Len()-1]
			Expect(math.Abs(last[0])).To(BeNumerically("<", 0.05))
			Expect(math.Abs(last[0])).To(BeNumerically("<", math.Abs(x0[0])))
		})

		It("never gains energy", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Metrics).To(HaveKey("energy_gain"))
			Expect(res.Metrics["energy_gain"]).To(BeNumerically("<", 1e-5))
			Expect(res.Metrics).NotTo(HaveKey("bounces"))
		})

		It("keeps the rod length on every frame", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())

			L := pend.Params().Length
			for _, f := range res.Frames {
				var bob scene.Marker
				for _, s := range f.Shapes {
					if m, ok := s.(scene.Marker); ok {
						bob = m
					}
				}
				r := math.Hypot(bob.Center.X, bob.Center.Y)
				Expect(r).To(BeNumerically("~", L, 1e-9))
			}
		})

		It("streams the same number of frames as a full run", func() {
			n := 0
			for f, err := range p.Stream(ctx, x0, grid) {
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Index).To(Equal(n))
				n++
			}
			Expect(n).To(Equal(grid.Len()))
		})

		It("steps along the same solve path as a full run", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())

			s, err := p.Start(x0, grid)
			Expect(err).NotTo(HaveOccurred())
			for i := 1; i < grid.Len(); i++ {
				s, _, err = p.Step(ctx, s, grid)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.X.Equal(res.Trajectory.States[i])).To(BeTrue(), "step %d", i)
			}
		})

		It("stops streaming when the consumer breaks", func() {
			n := 0
			for range p.Stream(ctx, x0, grid) {
				n++
				if n == 5 {
					break
				}
			}
			Expect(n).To(Equal(5))
		})
	})

	Describe("undamped spring", func() {
		It("conserves energy", func() {
			spring, err := physics.NewSpringMass(physics.DefaultSpringMassParams())
			Expect(err).NotTo(HaveOccurred())

			p := pipeline.New(spring, nil, scene.NewSpringMassMapper(), newSolver())
			p.SetLogger(quietLogger())
			p.AddMetric(metrics.NewEnergyDrift(spring))

			res, err := p.Run(ctx, dynamo.State{1, 0}, mustGrid(20, 0.05))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(HaveLen(400))
			Expect(res.Metrics["energy_drift"]).To(BeNumerically("<", 1e-3))
		})
	})

	Describe("damped spring", func() {
		It("never gains energy", func() {
			params := physics.DefaultSpringMassParams()
			params.Damping = 0.5
			spring, err := physics.NewSpringMass(params)
			Expect(err).NotTo(HaveOccurred())

			p := pipeline.New(spring, nil, scene.NewSpringMassMapper(), newSolver())
			p.SetLogger(quietLogger())
			p.AddMetric(metrics.NewEnergyGain(spring))

			res, err := p.Run(ctx, dynamo.State{1, 0}, mustGrid(20, 0.05))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics["energy_gain"]).To(BeNumerically("<", 1e-5))
			Expect(spring.Energy(res.Trajectory.States[res.Trajectory.Len()-1])).To(BeNumerically("<", spring.Energy(dynamo.State{1, 0})))
		})
	})

	Describe("undamped pendulum", func() {
		It("conserves energy", func() {
			params := physics.DefaultPendulumParams()
			params.Damping = 0
			pend, err := physics.NewPendulum(params)
			Expect(err).NotTo(HaveOccurred())

			p := pipeline.New(pend, nil, scene.NewPendulumMapper(params.Length), newSolver())
			p.SetLogger(quietLogger())
			p.AddMetric(metrics.NewEnergyDrift(pend))

			res, err := p.Run(ctx, dynamo.State{-math.Pi / 6, 0}, mustGrid(20, 0.055))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics["energy_drift"]).To(BeNumerically("<", 1e-3))
		})
	})

	Describe("bouncing ball", func() {
		var (
			ball *physics.BouncingBall
			p    *pipeline.Pipeline
			grid dynamo.TimeGrid
			x0   dynamo.State
		)

		BeforeEach(func() {
			var err error
			ball, err = physics.NewBouncingBall(physics.DefaultBouncingBallParams())
			Expect(err).NotTo(HaveOccurred())

			grid = mustGrid(20, 0.06)
			x0 = dynamo.State{5, 0}
			mapper := scene.NewBouncingBallMapper(ball.Params().HorizontalVelocity, grid.Duration, x0[0])

			p = pipeline.New(ball, ball.Corrector(), mapper, newSolver())
			p.SetLogger(quietLogger())
		})

		It("registers the first bounce within one step of the true impact", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Corrections).NotTo(BeEmpty())

			impact := math.Sqrt(2 * x0[0] / physics.DefaultGravity)
			first := res.Corrections[0]
			Expect(first.Time).To(BeNumerically(">=", impact))
			Expect(first.Time - impact).To(BeNumerically("<=", grid.Dt))
		})

		It("applies the restitution law at every bounce", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())

			e := ball.Params().Restitution
			for _, c := range res.Corrections {
				Expect(c.Before[1]).To(BeNumerically("<", 0))
				Expect(c.After[0]).To(Equal(physics.GroundLevel))
				Expect(math.Abs(c.After[1])).To(BeNumerically("~", e*math.Abs(c.Before[1]), 1e-12))
				Expect(res.Trajectory.States[c.Step]).To(Equal(c.After))
			}
			Expect(res.Metrics["bounces"]).To(BeNumerically("==", len(res.Corrections)))
			Expect(res.Bounces()).To(Equal(len(res.Corrections)))
		})

		It("keeps every accepted height above the ground", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())

			for _, x := range res.Trajectory.States {
				Expect(x[0]).To(BeNumerically(">=", physics.GroundLevel))
			}
		})

		It("streams frames identical to the materialized run", func() {
			res, err := p.Run(ctx, x0, grid)
			Expect(err).NotTo(HaveOccurred())

			var streamed []scene.Frame
			for f, err := range p.Stream(ctx, x0, grid) {
				Expect(err).NotTo(HaveOccurred())
				streamed = append(streamed, f)
			}
			Expect(streamed).To(Equal(res.Frames))
		})

		It("does not mutate the input state while stepping", func() {
			s, err := p.Start(x0, grid)
			Expect(err).NotTo(HaveOccurred())

			before := s.X.Clone()
			next, _, err := p.Step(ctx, s, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.X).To(Equal(before))
			Expect(next.Index).To(Equal(1))
			Expect(next.Time).To(Equal(grid.Times[1]))
		})

		It("rejects a step past the end of the grid", func() {
			last := pipeline.SimulationState{Index: grid.Len() - 1, Time: grid.Times[grid.Len()-1], X: dynamo.State{1, 0}}
			_, _, err := p.Step(ctx, last, grid)
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
		})
	})

	Describe("failures", func() {
		It("tags integration failures with the system and stage", func() {
			p := pipeline.New(blowup{}, nil, scene.NewSpringMassMapper(), newSolver())
			p.SetLogger(quietLogger())

			res, err := p.Run(ctx, dynamo.State{0, 1}, mustGrid(2, 0.1))
			Expect(res).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrIntegration)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("blowup: solve: step "))

			var ie *dynamo.IntegrationError
			Expect(errors.As(err, &ie)).To(BeTrue())
			Expect(ie.Time).To(BeNumerically(">", 0.5))
		})

		It("tags mapping failures with the map stage", func() {
			p := pipeline.New(cube{}, nil, scene.NewSpringMassMapper(), newSolver())
			p.SetLogger(quietLogger())

			_, err := p.Run(ctx, dynamo.State{0, 0, 0}, mustGrid(1, 0.1))
			Expect(errors.Is(err, dynamo.ErrGeometryMapping)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("cube: map: "))
		})

		It("rejects invalid restitution before integrating", func() {
			_, err := physics.NewBouncingBall(physics.BouncingBallParams{Gravity: 9.81, HorizontalVelocity: 1, Restitution: 1.5})
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
		})

		It("yields the error from a stream and stops", func() {
			p := pipeline.New(blowup{}, nil, scene.NewSpringMassMapper(), newSolver())
			p.SetLogger(quietLogger())

			var errs []error
			frames := 0
			for _, err := range p.Stream(ctx, dynamo.State{0, 1}, mustGrid(2, 0.1)) {
				if err != nil {
					errs = append(errs, err)
					continue
				}
				frames++
			}
			Expect(errs).To(HaveLen(1))
			Expect(errors.Is(errs[0], dynamo.ErrIntegration)).To(BeTrue())
			Expect(frames).To(BeNumerically(">", 0))
			Expect(frames).To(BeNumerically("<", 20))
		})

		It("honours cancellation", func() {
			pend, err := physics.NewPendulum(physics.DefaultPendulumParams())
			Expect(err).NotTo(HaveOccurred())
			p := pipeline.New(pend, nil, scene.NewPendulumMapper(pend.Params().Length), newSolver())
			p.SetLogger(quietLogger())

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err = p.Run(cctx, dynamo.State{0.1, 0}, mustGrid(1, 0.05))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})
})
