package sammon

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CK6170/Sammon-go/matrix"
)

func quietOptions() Options {
	o := DefaultOptions()
	o.Display = DisplaySilent
	return o
}

func unitSquare() *matrix.Matrix {
	return matrix.FromRows([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
}

func randomPoints(n, f int, seed uint64) *matrix.Matrix {
	r := rand.New(rand.NewPCG(seed, seed+1))
	m := matrix.NewMatrix(n, f)
	for i := range m.Values {
		for j := range m.Values[i] {
			m.Values[i][j] = r.NormFloat64()
		}
	}
	return m
}

func requireDistancesMatch(t *testing.T, want, got *matrix.Matrix, tol float64) {
	t.Helper()
	for i := range want.Values {
		for j := range want.Values[i] {
			require.InDelta(t, want.Values[i][j], got.Values[i][j], tol, "pair (%d,%d)", i, j)
		}
	}
}

func TestMap_UnitSquare(t *testing.T) {
	x := unitSquare()
	res, err := Map(x, quietOptions())
	require.NoError(t, err)

	require.Equal(t, 4, res.Y.Rows)
	require.Equal(t, 2, res.Y.Cols)
	assert.Less(t, res.Stress, 1e-9)
	assert.GreaterOrEqual(t, res.Stress, 0.0)

	D, err := Distances(x, InputRaw)
	require.NoError(t, err)
	requireDistancesMatch(t, D, pairwise(res.Y), 1e-6)
}

func TestMap_RandomPointsTerminates(t *testing.T) {
	x := randomPoints(10, 5, 7)
	opts := quietOptions()
	opts.MaxIter = 100

	res, err := Map(x, opts)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Stress) || math.IsInf(res.Stress, 0))
	assert.GreaterOrEqual(t, res.Stress, 0.0)
	assert.LessOrEqual(t, res.Iterations, 100)
	assert.Contains(t, []Termination{TerminationConverged, TerminationExhausted}, res.Termination)
	if res.Termination == TerminationExhausted {
		assert.Equal(t, 100, res.Iterations)
	}
}

func TestMap_AcceptedStepsDecreaseStress(t *testing.T) {
	x := randomPoints(12, 4, 11)
	opts := quietOptions()
	opts.MaxIter = 60

	res, err := Map(x, opts)
	require.NoError(t, err)
	require.NotEmpty(t, res.History)
	for i, st := range res.History {
		assert.GreaterOrEqual(t, st.Stress, 0.0)
		if i > 0 && st.Accepted {
			assert.LessOrEqual(t, st.Stress, res.History[i-1].Stress, "iteration %d", i)
		}
	}
}

func TestOptimize_RealizableConfigurationConverges(t *testing.T) {
	truth := matrix.FromRows([][]float64{
		{0, 0}, {2, 0}, {0, 3}, {3, 3}, {1, 1.5}, {4, 1},
	})
	D := pairwise(truth)
	nudge := [][]float64{{0.05, -0.05}, {-0.05, 0.02}, {0.03, 0.04}, {-0.02, -0.05}, {0.04, 0.01}, {-0.03, 0.05}}
	y0 := truth.Add(matrix.FromRows(nudge))

	opts := quietOptions()
	opts.Input = InputDistance
	before := Stress(withUnitDiagonal(D), Reciprocal(D), withUnitDiagonal(pairwise(y0))) * Scale(D)

	res := optimize(D, y0, opts)
	assert.Less(t, res.Stress, 1e-5)
	assert.Less(t, res.Stress, before)
	requireDistancesMatch(t, D, pairwise(res.Y), 1e-2)
}

func kiteDistances() *matrix.Matrix {
	return pairwise(matrix.FromRows([][]float64{{0, 0}, {3, 0}, {3, 2}, {0, 2}, {1.5, 4}}))
}

// PCA of a distance matrix is a poor start: it may settle in a local minimum,
// but it must never end above where it began.
func TestMap_DistanceInputPCANeverIncreasesStress(t *testing.T) {
	opts := quietOptions()
	opts.Input = InputDistance

	res, err := Map(kiteDistances(), opts)
	require.NoError(t, err)
	require.NotEmpty(t, res.History)
	assert.LessOrEqual(t, res.History[len(res.History)-1].Stress, res.History[0].Stress)
	assert.GreaterOrEqual(t, res.Stress, 0.0)
	assert.False(t, math.IsNaN(res.Stress))
}

func TestBestOf_RealizableDistancesReachZeroStress(t *testing.T) {
	D := kiteDistances()
	opts := quietOptions()
	opts.Input = InputDistance
	opts.Seed = 1

	// runs 1..4 use random starts seeded 2..5
	res, err := BestOf(context.Background(), D, opts, 5, 2)
	require.NoError(t, err)
	assert.Less(t, res.Stress, 1e-9)
	requireDistancesMatch(t, D, pairwise(res.Y), 1e-4)
}

func TestMap_ThreeDimensionalOutput(t *testing.T) {
	x := matrix.FromRows([][]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 2, 0}, {0, 0, 3}, {1, 1, 1},
	})
	opts := quietOptions()
	opts.Dims = 3

	res, err := Map(x, opts)
	require.NoError(t, err)
	require.Equal(t, 3, res.Y.Cols)
	assert.Less(t, res.Stress, 1e-9)
	requireDistancesMatch(t, pairwise(x), pairwise(res.Y), 1e-6)
}

func TestMap_SeededRandomInitIsReproducible(t *testing.T) {
	x := randomPoints(8, 3, 3)
	opts := quietOptions()
	opts.Init = InitRandom
	opts.Seed = 42
	opts.MaxIter = 50

	a, err := Map(x, opts)
	require.NoError(t, err)
	b, err := Map(x, opts)
	require.NoError(t, err)

	assert.True(t, a.Y.Equal(b.Y))
	assert.Equal(t, a.History, b.History)
	assert.Equal(t, a.Stress, b.Stress)
}

func TestMap_InputErrors(t *testing.T) {
	ragged := &matrix.Matrix{Rows: 2, Cols: 2, Values: [][]float64{{0, 1}, {2}}}
	nonSquare := matrix.FromRows([][]float64{{0, 1, 2}, {1, 0, 3}})
	withNaN := matrix.FromRows([][]float64{{0, 1}, {math.NaN(), 2}})
	dup := matrix.FromRows([][]float64{{0, 1}, {2, 3}, {0, 1}})

	distance := quietOptions()
	distance.Input = InputDistance
	tooManyDims := quietOptions()
	tooManyDims.Dims = 3
	badInit := quietOptions()
	badInit.Init = "tsne"

	cases := []struct {
		name string
		x    *matrix.Matrix
		opts Options
		want error
	}{
		{"nil", nil, quietOptions(), ErrShapeMismatch},
		{"single point", matrix.FromRows([][]float64{{1, 2}}), quietOptions(), ErrShapeMismatch},
		{"ragged", ragged, quietOptions(), ErrShapeMismatch},
		{"non-square distance", nonSquare, distance, ErrShapeMismatch},
		{"pca dims exceed features", unitSquare(), tooManyDims, ErrShapeMismatch},
		{"nan", withNaN, quietOptions(), ErrInvalidInput},
		{"duplicates", dup, quietOptions(), ErrInvalidInput},
		{"unknown init", unitSquare(), badInit, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Map(tc.x, tc.opts)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestMap_AllowDuplicatesDegradesSilently(t *testing.T) {
	x := matrix.FromRows([][]float64{{0, 1}, {2, 3}, {0, 1}, {4, -1}})
	opts := quietOptions()
	opts.AllowDuplicates = true
	opts.MaxIter = 20

	res, err := Map(x, opts)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Stress))
	assert.GreaterOrEqual(t, res.Stress, 0.0)
}

func TestMap_ReportsByDisplayLevel(t *testing.T) {
	x := randomPoints(10, 5, 21)

	var verbose bytes.Buffer
	opts := DefaultOptions()
	opts.MaxIter = 3
	opts.Reporter = NewTextReporter(&verbose)
	_, err := Map(x, opts)
	require.NoError(t, err)
	assert.Contains(t, verbose.String(), "epoch = 0: E = ")

	var silent bytes.Buffer
	opts.Display = DisplaySilent
	opts.Reporter = NewTextReporter(&silent)
	_, err = Map(x, opts)
	require.NoError(t, err)
	assert.Empty(t, silent.String())
}

func TestMap_HalvingExhaustionIsAWarning(t *testing.T) {
	x := randomPoints(10, 5, 7)
	var out bytes.Buffer
	opts := DefaultOptions()
	opts.MaxHalves = 1
	opts.MaxIter = 200
	opts.Init = InitRandom
	opts.Seed = 3
	opts.Display = DisplayTermination
	opts.Reporter = NewTextReporter(&out)

	res, err := Map(x, opts)
	require.NoError(t, err)
	require.Positive(t, res.HalvingExceeded)

	rejected := 0
	for _, st := range res.History {
		if !st.Accepted {
			rejected++
			assert.Equal(t, 1, st.Halvings)
		}
	}
	assert.Equal(t, res.HalvingExceeded, rejected)
	assert.Equal(t, res.HalvingExceeded, strings.Count(out.String(), "Warning: maxhalves exceeded."))
	assert.NotContains(t, out.String(), "epoch =")
	assert.False(t, math.IsNaN(res.Stress) || math.IsInf(res.Stress, 0))
	assert.GreaterOrEqual(t, res.Stress, 0.0)
	if res.Termination == TerminationExhausted {
		assert.Equal(t, opts.MaxIter, res.Iterations)
	}
}

type recordingReporter struct {
	epochs, warnings, converged int
}

func (r *recordingReporter) Epoch(int, float64)     { r.epochs++ }
func (r *recordingReporter) HalvingExceeded(int)    { r.warnings++ }
func (r *recordingReporter) Converged(int, float64) { r.converged++ }

func TestLevelReporter_Filters(t *testing.T) {
	rec := &recordingReporter{}
	l := levelReporter{level: DisplayTermination, r: rec}
	l.Epoch(0, 1)
	l.HalvingExceeded(0)
	l.Converged(1, 0.5)
	assert.Equal(t, 0, rec.epochs)
	assert.Equal(t, 1, rec.warnings)
	assert.Equal(t, 1, rec.converged)

	var buf bytes.Buffer
	tr := NewTextReporter(&buf)
	tr.HalvingExceeded(3)
	tr.Converged(4, 0)
	assert.Equal(t, "Warning: maxhalves exceeded. Sammon mapping may not converge...\nTolFun exceeded: Optimisation terminated\n", buf.String())
}

func TestBestOf_NoWorseThanSingleRun(t *testing.T) {
	x := randomPoints(10, 5, 5)
	opts := quietOptions()
	opts.MaxIter = 80
	opts.Seed = 9

	single, err := Map(x, opts)
	require.NoError(t, err)
	best, err := BestOf(context.Background(), x, opts, 4, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, best.Stress, single.Stress)
}

func TestBestOf_Errors(t *testing.T) {
	_, err := BestOf(context.Background(), unitSquare(), quietOptions(), 0, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = BestOf(ctx, unitSquare(), quietOptions(), 3, 1)
	require.ErrorIs(t, err, context.Canceled)
}
