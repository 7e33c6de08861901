package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pistonlab/pistonsim/internal/dynamo"
	"github.com/pistonlab/pistonsim/internal/integrators"
	"github.com/pistonlab/pistonsim/internal/models"
	"github.com/pistonlab/pistonsim/internal/sim"
)

// divergent returns NaN derivatives after a trigger time.
type divergent struct {
	after float64
}

func (d *divergent) StateDim() int { return 2 }

func (d *divergent) Derive(x dynamo.State, t float64) dynamo.State {
	if t >= d.after {
		return dynamo.State{math.NaN(), math.NaN()}
	}
	return dynamo.State{x[1], -x[0]}
}

// exponential is x' = x, whose exact solution exp(t) pins every sample to
// its recorded time.
type exponential struct{}

func (exponential) StateDim() int { return 1 }

func (exponential) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[0]}
}

// gated blocks inside Derive until released, to hold a run in flight.
type gated struct {
	release chan struct{}
	once    bool
}

func (g *gated) StateDim() int { return 2 }

func (g *gated) Derive(x dynamo.State, t float64) dynamo.State {
	if !g.once {
		g.once = true
		<-g.release
	}
	return dynamo.State{x[1], 0}
}

func launcherConfig(samples int) dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.EndTime = 0.02
	cfg.Samples = samples
	cfg.MaxDt = 0.002
	return cfg
}

var _ = Describe("Simulator", func() {
	var (
		dyn *models.DartPlunger
		s   *sim.Simulator
	)

	BeforeEach(func() {
		dyn = models.NewDartPlunger()
		s = sim.New(dyn, integrators.NewRK45())
	})

	It("produces exactly the requested number of samples on the grid", func() {
		cfg := launcherConfig(250)

		result, err := s.Run(context.Background(), dynamo.State{0, 0, 0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Times).To(HaveLen(250))
		Expect(result.States).To(HaveLen(250))
		Expect(result.Times[0]).To(Equal(0.0))
		Expect(result.Times[249]).To(Equal(cfg.EndTime))

		// Evenly spaced grid.
		step := cfg.EndTime / 249
		for i, tt := range result.Times {
			Expect(tt).To(BeNumerically("~", float64(i)*step, 1e-12))
		}
	})

	It("fills derived series consistent with the derivative internals", func() {
		cfg := launcherConfig(100)

		result, err := s.Run(context.Background(), dynamo.State{0, 0, 0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Pressure).To(HaveLen(100))
		Expect(result.Volume).To(HaveLen(100))
		Expect(result.SpringForce).To(HaveLen(100))

		for i, x := range result.States {
			Expect(result.Pressure[i]).To(Equal(dyn.Pressure(x)))
			Expect(result.Volume[i]).To(Equal(dyn.Volume(x)))
			Expect(result.SpringForce[i]).To(Equal(dyn.SpringForce(x)))
		}
	})

	It("launches the dart forward", func() {
		result, err := s.Run(context.Background(), dynamo.State{0, 0, 0, 0}, launcherConfig(500))
		Expect(err).NotTo(HaveOccurred())

		final := result.Final()
		Expect(final[0]).To(BeNumerically(">", 0), "dart position")
		Expect(final[2]).To(BeNumerically(">", 0), "plunger position")
	})

	It("keeps the final state stable under sample-grid refinement", func() {
		coarse, err := s.Run(context.Background(), dynamo.State{0, 0, 0, 0}, launcherConfig(200))
		Expect(err).NotTo(HaveOccurred())

		fine, err := s.Run(context.Background(), dynamo.State{0, 0, 0, 0}, launcherConfig(400))
		Expect(err).NotTo(HaveOccurred())

		cf := coarse.Final()
		ff := fine.Final()

		// Same sign and rough magnitude; exact floats differ.
		Expect(cf[0] * ff[0]).To(BeNumerically(">", 0))
		Expect(ff[0]).To(BeNumerically("~", cf[0], math.Abs(cf[0])*0.05))
		Expect(ff[2]).To(BeNumerically("~", cf[2], math.Abs(cf[2])*0.05+1e-9))
	})

	It("keeps sample times consistent with the state when steps are rejected", func() {
		// A huge initial step hint forces error-control rejections from the
		// very first step. Every recorded sample must still match the exact
		// solution exp(t) at its recorded time.
		exp := sim.New(exponential{}, integrators.NewRK45())

		cfg := dynamo.DefaultConfig()
		cfg.EndTime = 1.0
		cfg.Samples = 11
		cfg.Dt = 1.0
		cfg.MaxDt = 1.0
		cfg.Tolerance = 1e-10

		result, err := exp.Run(context.Background(), dynamo.State{1.0}, cfg)
		Expect(err).NotTo(HaveOccurred())

		for i, tt := range result.Times {
			want := math.Exp(tt)
			Expect(result.States[i][0]).To(BeNumerically("~", want, want*1e-6),
				"sample %d at t=%f", i, tt)
		}
	})

	It("fails the whole run on non-finite states", func() {
		bad := sim.New(&divergent{after: 0.005}, integrators.NewRK4())

		cfg := launcherConfig(100)
		cfg.Dt = 1e-4

		result, err := bad.Run(context.Background(), dynamo.State{1, 0}, cfg)
		Expect(result).To(BeNil())
		Expect(err).To(MatchError(dynamo.ErrNonConvergence))

		var simErr *dynamo.SimulationError
		Expect(err).To(BeAssignableToTypeOf(simErr))
	})

	It("rejects invalid configs", func() {
		cfg := launcherConfig(100)
		cfg.EndTime = 0

		_, err := s.Run(context.Background(), dynamo.State{0, 0, 0, 0}, cfg)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))

		cfg = launcherConfig(1)
		_, err = s.Run(context.Background(), dynamo.State{0, 0, 0, 0}, cfg)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("honors context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Run(ctx, dynamo.State{0, 0, 0, 0}, launcherConfig(100))
		Expect(err).To(MatchError(context.Canceled))
	})

	It("feeds metrics once per sample", func() {
		counter := &sampleCounter{}
		s.AddMetric(counter)

		result, err := s.Run(context.Background(), dynamo.State{0, 0, 0, 0}, launcherConfig(123))
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Metrics).To(HaveKey("samples"))
		Expect(result.Metrics["samples"]).To(Equal(123.0))
	})
})

var _ = Describe("Runner", func() {
	It("rejects a second run while one is in flight", func() {
		gate := &gated{release: make(chan struct{})}
		runner := sim.NewRunner()
		blocked := sim.New(gate, integrators.NewRK4())

		cfg := launcherConfig(10)
		cfg.Dt = 1e-3

		done := make(chan error, 1)
		go func() {
			_, err := runner.Do(context.Background(), blocked, dynamo.State{0, 0}, cfg)
			done <- err
		}()

		Eventually(runner.Busy).Should(BeTrue())

		_, err := runner.Do(context.Background(), blocked, dynamo.State{0, 0}, cfg)
		Expect(err).To(MatchError(dynamo.ErrRunInFlight))

		close(gate.release)
		Eventually(done).Should(Receive(BeNil()))
		Eventually(runner.Busy).Should(BeFalse())
	})

	It("allows sequential runs", func() {
		runner := sim.NewRunner()
		s := sim.New(models.NewDartPlunger(), integrators.NewRK45())

		for i := 0; i < 3; i++ {
			_, err := runner.Do(context.Background(), s, dynamo.State{0, 0, 0, 0}, launcherConfig(50))
			Expect(err).NotTo(HaveOccurred())
		}
	})
})

type sampleCounter struct {
	n int
}

func (c *sampleCounter) Name() string                      { return "samples" }
func (c *sampleCounter) Observe(x dynamo.State, t float64) { c.n++ }
func (c *sampleCounter) Value() float64                    { return float64(c.n) }
func (c *sampleCounter) Reset()                            { c.n = 0 }
