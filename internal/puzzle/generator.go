package puzzle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/werhatvorfahrt/werhatvorfahrt/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Size limits of a puzzle.
const (
	MinSides = 2
	MaxSides = 4
	MinCars  = 2
	MaxCars  = 4
)

// maxDestinationDraws bounds the destination resampling loop. With at least
// two active sides each draw succeeds with probability >= 1/2, so this cap is
// only reached by a broken source.
const maxDestinationDraws = 1000

// ErrInvalidConfiguration is returned when the requested side and car counts
// cannot form a puzzle.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source.
func WithRand(r Rand) Option {
	return func(g *Generator) {
		g.rand = r
	}
}

// WithSeed uses a deterministic source for the given seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rand = NewSeededRand(seed)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMeter records the generator counters on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(g *Generator) {
		g.meter = m
	}
}

// Generator builds random signs. It is not safe for concurrent use; the
// package-level NewSign serializes access to the shared default generator.
type Generator struct {
	rand   Rand
	logger Logger
	meter  metric.Meter

	generated metric.Int64Counter
	rejected  metric.Int64Counter
	resamples metric.Int64Counter
}

// New creates a generator. Without WithRand or WithSeed it draws from a
// runtime-seeded source. Without WithMeter, metrics go to the global OTel
// meter (no-op if not configured).
func New(opts ...Option) (*Generator, error) {
	g := &Generator{logger: nopLogger{}}
	for _, opt := range opts {
		opt(g)
	}
	if g.rand == nil {
		g.rand = newRuntimeRand()
	}

	if g.meter == nil {
		g.meter = meter()
	}

	if err := g.initMetrics(g.meter); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) initMetrics(m metric.Meter) error {
	var err error

	g.generated, err = m.Int64Counter(
		"puzzle.signs.generated",
		metric.WithDescription("Total signs generated"),
	)
	if err != nil {
		return fmt.Errorf("creating generated counter: %w", err)
	}

	g.rejected, err = m.Int64Counter(
		"puzzle.signs.rejected",
		metric.WithDescription("Sign requests rejected as invalid"),
	)
	if err != nil {
		return fmt.Errorf("creating rejected counter: %w", err)
	}

	g.resamples, err = m.Int64Counter(
		"puzzle.destination.resamples",
		metric.WithDescription("Destination draws that hit the car's own origin"),
	)
	if err != nil {
		return fmt.Errorf("creating resamples counter: %w", err)
	}

	return nil
}

// Rand exposes the generator's random source, e.g. for RandomShape.
func (g *Generator) Rand() Rand {
	return g.rand
}

// ValidateShape checks that nSides and nCars are within range and that there
// is a distinct side for every car.
func ValidateShape(nSides, nCars int) error {
	if nSides < MinSides || nSides > MaxSides {
		return fmt.Errorf("%w: sides must be between %d and %d, got %d", ErrInvalidConfiguration, MinSides, MaxSides, nSides)
	}
	if nCars < MinCars || nCars > MaxCars {
		return fmt.Errorf("%w: cars must be between %d and %d, got %d", ErrInvalidConfiguration, MinCars, MaxCars, nCars)
	}
	if nCars > nSides {
		return fmt.Errorf("%w: number of cars (%d) must not exceed number of sides (%d)", ErrInvalidConfiguration, nCars, nSides)
	}
	return nil
}

// NewSign draws a random sign with nSides active roads and nCars cars.
// The shape is validated before any randomness is consumed, so a rejected
// request leaves the source untouched.
func (g *Generator) NewSign(nSides, nCars int) (*core.Sign, error) {
	ctx := context.Background()
	shape := metric.WithAttributes(
		attribute.Int("sides", nSides),
		attribute.Int("cars", nCars),
	)

	if err := ValidateShape(nSides, nCars); err != nil {
		g.rejected.Add(ctx, 1, shape)
		g.logger.Error("rejected sign request", "sides", nSides, "cars", nCars, "error", err)
		return nil, err
	}

	sides := sample(g.rand, core.AllDirections(), nSides)
	vorfahrt := sample(g.rand, sides, 2)
	colors := sample(g.rand, core.Palette(), nCars)
	origins := sample(g.rand, sides, nCars)

	cars := make([]core.Car, 0, nCars)
	for i, origin := range origins {
		destination, err := g.drawDestination(ctx, sides, origin)
		if err != nil {
			return nil, err
		}
		cars = append(cars, core.NewCar(colors[i], origin, destination))
	}

	sign := &core.Sign{
		Sides:    sides,
		Vorfahrt: [2]core.Direction{vorfahrt[0], vorfahrt[1]},
		Cars:     cars,
	}
	if err := sign.Validate(); err != nil {
		return nil, fmt.Errorf("generated sign is malformed: %w", err)
	}

	g.generated.Add(ctx, 1, shape)
	g.logger.Debug("generated sign", "sign", sign.String())
	return sign, nil
}

// drawDestination picks a side uniformly, resampling until it differs from origin.
func (g *Generator) drawDestination(ctx context.Context, sides []core.Direction, origin core.Direction) (core.Direction, error) {
	for attempt := 0; attempt < maxDestinationDraws; attempt++ {
		d := sides[g.rand.IntN(len(sides))]
		if d != origin {
			return d, nil
		}
		g.resamples.Add(ctx, 1)
	}
	return 0, fmt.Errorf("no destination different from %s after %d draws", origin, maxDestinationDraws)
}

var (
	defaultMu  sync.Mutex
	defaultGen *Generator
)

// defaultGenerator returns the process-wide generator. Callers must hold defaultMu.
func defaultGenerator() *Generator {
	if defaultGen == nil {
		defaultGen = newFallback(newRuntimeRand())
	}
	return defaultGen
}

// newFallback builds a generator, falling back to no-op metrics if the global
// meter refuses the instruments.
func newFallback(r Rand) *Generator {
	g, err := New(WithRand(r))
	if err != nil {
		g = &Generator{rand: r, logger: nopLogger{}}
		_ = g.initMetrics(noop.Meter{})
	}
	return g
}

// Seed replaces the process-wide generator with one using a deterministic
// source for seed.
func Seed(seed uint64) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultGen = newFallback(NewSeededRand(seed))
}

// NewSign draws a sign from the process-wide generator.
func NewSign(nSides, nCars int) (*core.Sign, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultGenerator().NewSign(nSides, nCars)
}
