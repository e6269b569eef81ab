package sammon

import (
	"fmt"
	"math"

	"github.com/viterin/vek"

	"github.com/CK6170/Sammon-go/matrix"
)

// Distances builds the target distance matrix D. In raw mode it holds the
// Euclidean distances between the rows of x; in distance mode x already is
// the distance matrix and is returned as a copy.
func Distances(x *matrix.Matrix, mode InputMode) (*matrix.Matrix, error) {
	switch mode {
	case InputRaw:
		return pairwise(x), nil
	case InputDistance:
		if x.Rows != x.Cols {
			return nil, fmt.Errorf("distance input is %dx%d: %w", x.Rows, x.Cols, ErrShapeMismatch)
		}
		return x.Clone(), nil
	default:
		return nil, fmt.Errorf("input mode %q: %w", mode, ErrInvalidInput)
	}
}

// pairwise returns the symmetric matrix of Euclidean distances between the
// rows of y. Only the upper triangle is computed.
func pairwise(y *matrix.Matrix) *matrix.Matrix {
	d := matrix.NewMatrix(y.Rows, y.Rows)
	for i := 0; i < y.Rows; i++ {
		for j := i + 1; j < y.Rows; j++ {
			v := vek.Distance(y.Values[i], y.Values[j])
			d.Values[i][j] = v
			d.Values[j][i] = v
		}
	}
	return d
}

// Reciprocal returns the inverse-weight matrix of a distance matrix: the
// diagonal is set to 1 before inversion, any Inf or NaN reciprocal becomes 0,
// and the diagonal of the result is 0. d is not modified.
func Reciprocal(d *matrix.Matrix) *matrix.Matrix {
	unit := d.Clone()
	unit.FillDiagonal(1)
	inv := unit.Apply(func(v float64) float64 {
		r := 1 / v
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return 0
		}
		return r
	})
	inv.FillDiagonal(0)
	return inv
}

// hasCoincidentPoints reports whether any off-diagonal distance is zero.
func hasCoincidentPoints(d *matrix.Matrix) (int, int, bool) {
	for i := 0; i < d.Rows; i++ {
		for j := i + 1; j < d.Cols; j++ {
			if d.Values[i][j] == 0 {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
