package puzzle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/werhatvorfahrt/werhatvorfahrt/pkg/core"
)

// scriptedRand replays a fixed sequence of draws and records the bounds asked for.
type scriptedRand struct {
	t      *testing.T
	values []int
	bounds []int
}

func (s *scriptedRand) IntN(n int) int {
	s.t.Helper()
	require.NotEmpty(s.t, s.values, "script exhausted")
	v := s.values[0]
	s.values = s.values[1:]
	require.Less(s.t, v, n, "scripted value out of range")
	s.bounds = append(s.bounds, n)
	return v
}

// constRand always returns the same value.
type constRand int

func (c constRand) IntN(n int) int { return int(c) % n }

func newTestGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	g, err := New(opts...)
	require.NoError(t, err)
	return g
}

func TestNewSign_ValidShapes(t *testing.T) {
	g := newTestGenerator(t, WithSeed(42))

	for nSides := MinSides; nSides <= MaxSides; nSides++ {
		for nCars := MinCars; nCars <= nSides; nCars++ {
			for i := 0; i < 50; i++ {
				sign, err := g.NewSign(nSides, nCars)
				require.NoError(t, err)

				assert.Len(t, sign.Sides, nSides)
				assert.Len(t, sign.Cars, nCars)
				require.NoError(t, sign.Validate())

				sides := map[core.Direction]bool{}
				for _, s := range sign.Sides {
					sides[s] = true
				}
				assert.Len(t, sides, nSides, "sides must be distinct")

				assert.NotEqual(t, sign.Vorfahrt[0], sign.Vorfahrt[1])
				assert.True(t, sides[sign.Vorfahrt[0]])
				assert.True(t, sides[sign.Vorfahrt[1]])

				origins := map[core.Direction]bool{}
				colors := map[string]bool{}
				for _, car := range sign.Cars {
					assert.False(t, origins[car.Origin], "origins must be distinct")
					origins[car.Origin] = true
					colors[car.Color.Name] = true

					assert.NotEqual(t, car.Origin, car.Destination)
					assert.True(t, sides[car.Origin])
					assert.True(t, sides[car.Destination])
					assert.Equal(t, core.PathFor(car.Origin, car.Destination), car.Path)
				}
				assert.Len(t, colors, nCars, "colors must be distinct")
			}
		}
	}
}

func TestNewSign_TwoSidesVorfahrtIsWholeSet(t *testing.T) {
	g := newTestGenerator(t, WithSeed(7))

	for i := 0; i < 20; i++ {
		sign, err := g.NewSign(2, 2)
		require.NoError(t, err)
		assert.ElementsMatch(t, sign.Sides, sign.Vorfahrt[:])

		// with two roads each car must drive to the other one
		for _, car := range sign.Cars {
			assert.True(t, sign.HasSide(car.Destination))
			assert.NotEqual(t, car.Origin, car.Destination)
		}
	}
}

func TestNewSign_MoreCarsThanSides(t *testing.T) {
	script := &scriptedRand{t: t}
	g := newTestGenerator(t, WithRand(script))

	sign, err := g.NewSign(2, 3)
	require.Error(t, err)
	assert.Nil(t, sign)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Empty(t, script.bounds, "no randomness may be consumed on rejection")
}

func TestNewSign_OutOfDomain(t *testing.T) {
	g := newTestGenerator(t, WithSeed(1))

	tests := []struct {
		name          string
		nSides, nCars int
	}{
		{"one side", 1, 1},
		{"five sides", 5, 2},
		{"one car", 3, 1},
		{"zero cars", 4, 0},
		{"five cars", 4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.NewSign(tt.nSides, tt.nCars)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestNewSign_ScriptedScenario(t *testing.T) {
	script := &scriptedRand{t: t, values: []int{
		2, 0, 1, // sides: [N E S W] -> [S E W]
		1, 1, // vorfahrt: [S E W] -> [E W]
		3, 0, // colors: [red blue orange green] -> [green blue]
		2, 1, // origins: [S E W] -> [W S]
		2, 0, // car 0 from West: draws West (rejected), then South
		1, // car 1 from South: draws East
	}}
	g := newTestGenerator(t, WithRand(script))

	sign, err := g.NewSign(3, 2)
	require.NoError(t, err)

	want := &core.Sign{
		Sides:    []core.Direction{core.South, core.East, core.West},
		Vorfahrt: [2]core.Direction{core.East, core.West},
		Cars: []core.Car{
			core.NewCar(core.Color{Name: "green"}, core.West, core.South),
			core.NewCar(core.Color{Name: "blue"}, core.South, core.East),
		},
	}
	assert.Equal(t, want, sign)
	assert.Equal(t, []int{4, 3, 2, 3, 2, 4, 3, 3, 2, 3, 3, 3}, script.bounds)
	assert.Empty(t, script.values)
}

func TestNewSign_SameSeedSameSign(t *testing.T) {
	a := newTestGenerator(t, WithSeed(2024))
	b := newTestGenerator(t, WithSeed(2024))

	for i := 0; i < 25; i++ {
		nSides, nCars := RandomShape(a.Rand())
		nSides2, nCars2 := RandomShape(b.Rand())
		require.Equal(t, nSides, nSides2)
		require.Equal(t, nCars, nCars2)

		sa, err := a.NewSign(nSides, nCars)
		require.NoError(t, err)
		sb, err := b.NewSign(nSides, nCars)
		require.NoError(t, err)
		assert.Equal(t, sa, sb)
	}
}

func TestNewSign_BrokenSourceTerminates(t *testing.T) {
	// constRand(0) always picks the first element, so the first car's
	// destination always equals its origin.
	g := newTestGenerator(t, WithRand(constRand(0)))

	_, err := g.NewSign(2, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no destination")
	assert.False(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestSample_DistinctAndUntouched(t *testing.T) {
	items := []int{10, 20, 30, 40}
	r := NewSeededRand(3)

	for k := 0; k <= len(items); k++ {
		got := sample(r, items, k)
		assert.Len(t, got, k)

		seen := map[int]bool{}
		for _, v := range got {
			assert.False(t, seen[v])
			seen[v] = true
			assert.Contains(t, items, v)
		}
	}
	assert.Equal(t, []int{10, 20, 30, 40}, items)
}

func TestRandomShape_InRange(t *testing.T) {
	r := NewSeededRand(99)
	counts := map[[2]int]int{}

	for i := 0; i < 2000; i++ {
		nSides, nCars := RandomShape(r)
		require.NoError(t, ValidateShape(nSides, nCars))
		counts[[2]int{nSides, nCars}]++
	}

	// (2,2) (3,2) (3,3) (4,2) (4,3) (4,4)
	assert.Len(t, counts, 6)
}

func TestPackageLevel_SeedIsReproducible(t *testing.T) {
	Seed(11)
	first, err := NewSign(4, 3)
	require.NoError(t, err)

	Seed(11)
	second, err := NewSign(4, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	_, err = NewSign(2, 4)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestWithLogger_RecordsRejection(t *testing.T) {
	logger := &testLogger{}
	g := newTestGenerator(t, WithSeed(5), WithLogger(logger))

	_, err := g.NewSign(3, 4)
	require.Error(t, err)

	_, err = g.NewSign(3, 3)
	require.NoError(t, err)

	require.Len(t, logger.messages, 2)
	assert.Contains(t, logger.messages[0], "ERROR: rejected sign request")
	assert.Contains(t, logger.messages[1], "DEBUG: generated sign")
}

func TestResolveShape(t *testing.T) {
	r := NewSeededRand(17)

	for i := 0; i < 200; i++ {
		nSides, nCars := ResolveShape(r, 0, 3)
		assert.Equal(t, 3, nCars)
		assert.GreaterOrEqual(t, nSides, 3)
		assert.LessOrEqual(t, nSides, MaxSides)

		nSides, nCars = ResolveShape(r, 3, 0)
		assert.Equal(t, 3, nSides)
		assert.GreaterOrEqual(t, nCars, MinCars)
		assert.LessOrEqual(t, nCars, 3)
	}

	nSides, nCars := ResolveShape(r, 2, 4)
	assert.Equal(t, 2, nSides)
	assert.Equal(t, 4, nCars)

	// out of range counts are passed through for NewSign to reject
	nSides, nCars = ResolveShape(r, 0, 6)
	assert.Equal(t, 6, nSides)
	assert.Equal(t, 6, nCars)
	assert.ErrorIs(t, ValidateShape(nSides, nCars), ErrInvalidConfiguration)

	nSides, nCars = ResolveShape(r, 1, 0)
	assert.Equal(t, 1, nSides)
	assert.Equal(t, MinCars, nCars)
}

func counterTotals(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	return totals
}

func TestWithMeter_CountsSigns(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	// first car from West draws West once before South
	script := &scriptedRand{t: t, values: []int{2, 0, 1, 1, 1, 3, 0, 2, 1, 2, 0, 1}}
	g := newTestGenerator(t, WithRand(script), WithMeter(provider.Meter(InstrumentationName)))

	_, err := g.NewSign(3, 2)
	require.NoError(t, err)
	_, err = g.NewSign(2, 4)
	require.Error(t, err)

	totals := counterTotals(t, reader)
	assert.Equal(t, int64(1), totals["puzzle.signs.generated"])
	assert.Equal(t, int64(1), totals["puzzle.signs.rejected"])
	assert.Equal(t, int64(1), totals["puzzle.destination.resamples"])
}
