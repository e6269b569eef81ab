// Package sammon implements Sammon's nonlinear mapping: it embeds N points in
// n dimensions so that embedding distances approximate the original pairwise
// distances, minimizing Sammon's stress with a pseudo-Newton step and a
// step-halving line search.
//
// A run is single-threaded and keeps all state local, so independent runs may
// be executed concurrently (see BestOf).
package sammon

import (
	"fmt"
	"math"

	"github.com/CK6170/Sammon-go/matrix"
)

// Termination describes why the optimizer stopped.
type Termination string

const (
	TerminationConverged Termination = "converged"
	TerminationExhausted Termination = "iteration-exhausted"
)

// Step records one optimizer iteration.
type Step struct {
	Iteration int     `json:"iteration"`
	Stress    float64 `json:"stress"`
	Halvings  int     `json:"halvings"`
	Accepted  bool    `json:"accepted"`
}

// Result is the outcome of a run. Stress is scaled by 0.5 / sum(D).
type Result struct {
	Y               *matrix.Matrix
	Stress          float64
	Iterations      int
	Termination     Termination
	HalvingExceeded int
	History         []Step
}

// Map computes the Sammon embedding of x.
//
// x holds one point per row, or a precomputed distance matrix when
// opts.Input is InputDistance. Coincident points are rejected with
// ErrInvalidInput unless opts.AllowDuplicates is set.
func Map(x *matrix.Matrix, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkInput(x); err != nil {
		return nil, err
	}
	D, err := Distances(x, opts.Input)
	if err != nil {
		return nil, err
	}
	if !opts.AllowDuplicates {
		if i, j, dup := hasCoincidentPoints(D); dup {
			return nil, fmt.Errorf("points %d and %d coincide: %w", i, j, ErrInvalidInput)
		}
	}
	y, err := Initialize(x, opts.Dims, opts.Init, opts.Seed)
	if err != nil {
		return nil, err
	}
	return optimize(D, y, opts), nil
}

func checkInput(x *matrix.Matrix) error {
	if x == nil || x.Rows < 2 || x.Cols < 1 {
		return fmt.Errorf("need at least 2 points: %w", ErrShapeMismatch)
	}
	if x.IsRagged() {
		return fmt.Errorf("rows differ in length: %w", ErrShapeMismatch)
	}
	for i, row := range x.Values {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("x[%d][%d] = %g: %w", i, j, v, ErrInvalidInput)
			}
		}
	}
	return nil
}

// optimize runs the iteration loop from y against targets D. y is owned by
// the run and replaced on every iteration.
func optimize(D, y *matrix.Matrix, opts Options) *Result {
	rep := opts.reporter()
	scale := Scale(D)

	xD := D.Clone()
	xD.FillDiagonal(1)
	xDinv := Reciprocal(D)

	yD := pairwise(y)
	yD.FillDiagonal(1)
	yDinv := Reciprocal(yD)

	E := Stress(xD, xDinv, yD)
	res := &Result{Y: y, Termination: TerminationExhausted}
	if E == 0 {
		res.Termination = TerminationConverged
		rep.Converged(0, 0)
		return res
	}

	for i := 0; i < opts.MaxIter; i++ {
		s := direction(y, xDinv, yDinv)

		var yNew, dNew *matrix.Matrix
		eNew := math.Inf(1)
		halvings := 0
		accepted := false
		for ; halvings < opts.MaxHalves; halvings++ {
			yNew = y.Add(s)
			dNew = pairwise(yNew)
			dNew.FillDiagonal(1)
			eNew = Stress(xD, xDinv, dNew)
			if eNew < E {
				accepted = true
				break
			}
			s.Scale(0.5)
		}
		if !accepted {
			res.HalvingExceeded++
			rep.HalvingExceeded(i)
		}

		y = yNew
		yDinv = Reciprocal(dNew)
		res.Iterations = i + 1
		res.History = append(res.History, Step{Iteration: i, Stress: eNew * scale, Halvings: halvings, Accepted: accepted})

		if eNew == 0 || math.Abs((E-eNew)/E) < opts.TolFun {
			E = eNew
			res.Termination = TerminationConverged
			rep.Converged(i, E*scale)
			break
		}

		E = eNew
		rep.Epoch(i, E*scale)
	}

	res.Y = y
	res.Stress = E * scale
	return res
}

// direction returns the pseudo-Newton step -g / |H| for every coordinate,
// where g and H are the gradient and the diagonal of the Hessian of the
// stress (both up to a common factor). Coordinates with a zero Hessian entry
// do not move.
func direction(y, xDinv, yDinv *matrix.Matrix) *matrix.Matrix {
	delta := yDinv.Sub(xDinv)
	deltaOne := delta.RowSums()
	deltaY := delta.Mul(y)

	dinv3 := yDinv.Apply(func(v float64) float64 { return v * v * v })
	y2 := y.Apply(func(v float64) float64 { return v * v })
	dinv3y2 := dinv3.Mul(y2)
	dinv3y := dinv3.Mul(y)
	dinv3One := dinv3.RowSums()

	s := matrix.NewMatrix(y.Rows, y.Cols)
	for i := range s.Values {
		for k := range s.Values[i] {
			g := deltaY.Values[i][k] - y.Values[i][k]*deltaOne.Values[i]
			h := dinv3y2.Values[i][k] - deltaOne.Values[i] -
				2*y.Values[i][k]*dinv3y.Values[i][k] +
				y2.Values[i][k]*dinv3One.Values[i]
			if h == 0 {
				continue
			}
			s.Values[i][k] = -g / math.Abs(h)
		}
	}
	return s
}
