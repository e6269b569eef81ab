// Package matrix holds the small dense row-major matrix type shared by the
// Sammon core, the file loaders and the server. Heavy lifting (products, SVD)
// is delegated to gonum; this type exists so callers can index rows directly
// and hand them to vector kernels without copying.
package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const MatrixLine = "------------------------------------------------------------------"

type Matrix struct {
	Rows, Cols int
	Values     [][]float64
}

func NewMatrix(rows, cols int) *Matrix {
	values := make([][]float64, rows)
	for i := range values {
		values[i] = make([]float64, cols)
	}
	return &Matrix{Rows: rows, Cols: cols, Values: values}
}

// FromRows copies rows into a new Matrix. Cols is taken from the first row;
// callers that accept user data should check IsRagged first.
func FromRows(rows [][]float64) *Matrix {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m := &Matrix{Rows: len(rows), Cols: cols, Values: make([][]float64, len(rows))}
	for i, r := range rows {
		m.Values[i] = append([]float64(nil), r...)
	}
	return m
}

// IsRagged reports whether any row length differs from Cols.
func (m *Matrix) IsRagged() bool {
	for _, r := range m.Values {
		if len(r) != m.Cols {
			return true
		}
	}
	return len(m.Values) != m.Rows
}

func (m *Matrix) Clone() *Matrix {
	return FromRows(m.Values)
}

// Sum returns the sum of every element.
func (m *Matrix) Sum() float64 {
	sum := 0.0
	for i := range m.Values {
		sum += floats.Sum(m.Values[i])
	}
	return sum
}

func (m *Matrix) Add(other *Matrix) *Matrix {
	result := NewMatrix(m.Rows, m.Cols)
	for i := range m.Values {
		for j := range m.Values[i] {
			result.Values[i][j] = m.Values[i][j] + other.Values[i][j]
		}
	}
	return result
}

func (m *Matrix) Sub(other *Matrix) *Matrix {
	result := NewMatrix(m.Rows, m.Cols)
	for i := range m.Values {
		for j := range m.Values[i] {
			result.Values[i][j] = m.Values[i][j] - other.Values[i][j]
		}
	}
	return result
}

// Scale multiplies every element by f in place and returns m.
func (m *Matrix) Scale(f float64) *Matrix {
	for i := range m.Values {
		for j := range m.Values[i] {
			m.Values[i][j] *= f
		}
	}
	return m
}

// Apply returns a new matrix with fn applied element-wise.
func (m *Matrix) Apply(fn func(v float64) float64) *Matrix {
	result := NewMatrix(m.Rows, m.Cols)
	for i := range m.Values {
		for j, v := range m.Values[i] {
			result.Values[i][j] = fn(v)
		}
	}
	return result
}

// FillDiagonal sets m[i][i] = v for every i < min(Rows, Cols).
func (m *Matrix) FillDiagonal(v float64) {
	for i := 0; i < m.Rows && i < m.Cols; i++ {
		m.Values[i][i] = v
	}
}

// Mul returns the matrix product m * other. It returns nil when the inner
// dimensions do not agree.
func (m *Matrix) Mul(other *Matrix) *Matrix {
	if m.Cols != other.Rows {
		return nil
	}
	var prod mat.Dense
	prod.Mul(m.Dense(), other.Dense())
	return FromDense(&prod)
}

// RowSums returns the vector of per-row sums, i.e. m * 1.
func (m *Matrix) RowSums() *Vector {
	v := NewVector(m.Rows)
	for i := range m.Values {
		for _, x := range m.Values[i] {
			v.Values[i] += x
		}
	}
	return v
}

// Dense copies m into a gonum Dense.
func (m *Matrix) Dense() *mat.Dense {
	a := mat.NewDense(m.Rows, m.Cols, nil)
	for i := 0; i < m.Rows; i++ {
		a.SetRow(i, m.Values[i])
	}
	return a
}

// FromDense copies any gonum matrix into a Matrix.
func FromDense(a mat.Matrix) *Matrix {
	r, c := a.Dims()
	m := NewMatrix(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Values[i][j] = a.At(i, j)
		}
	}
	return m
}

// Equal reports element-wise bit equality.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.Rows != other.Rows || m.Cols != other.Cols {
		return false
	}
	for i := range m.Values {
		for j := range m.Values[i] {
			if math.Float64bits(m.Values[i][j]) != math.Float64bits(other.Values[i][j]) {
				return false
			}
		}
	}
	return true
}

// PrintMatrix dumps a trimmed view of the matrix. For debugging only.
func PrintMatrix(m *Matrix, title string, debug bool) {
	// Yellow for debug matrices
	if debug {
		fmt.Print("\033[33m")
	}
	fmt.Println(MatrixLine)
	fmt.Println(title, " (", m.Rows, "x", m.Cols, ")")
	maxRows := m.Rows
	if maxRows > 12 { // limit output for readability
		maxRows = 12
	}
	for i := 0; i < maxRows; i++ {
		row := m.Values[i]
		line := fmt.Sprintf("[%03d]", i)
		maxCols := len(row)
		if maxCols > 16 {
			maxCols = 16
		}
		for j := 0; j < maxCols; j++ {
			line += fmt.Sprintf(" %12.6f", row[j])
		}
		if len(row) > maxCols {
			line += " ..."
		}
		fmt.Println(line)
	}
	if m.Rows > maxRows {
		fmt.Println("...")
	}
	fmt.Println(MatrixLine)
	if debug {
		fmt.Print("\033[0m")
	}
}
