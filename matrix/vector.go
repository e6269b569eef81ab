package matrix

import "fmt"

// Vector is a dense length-N vector of float64 values.
type Vector struct {
	Length int
	Values []float64
}

// NewVector allocates a vector of the given length initialized with zeros.
func NewVector(length int) *Vector {
	return &Vector{Length: length, Values: make([]float64, length)}
}

// Max returns the largest element, or 0 for an empty vector.
func (v *Vector) Max() float64 {
	if v.Length == 0 {
		return 0
	}
	m := v.Values[0]
	for _, val := range v.Values[1:] {
		if val > m {
			m = val
		}
	}
	return m
}

// PrintVector prints a trimmed view of a vector for debugging.
//
// When debug is true, output is colored (ANSI) to visually distinguish debug
// vectors.
func PrintVector(v *Vector, title string, debug bool) {
	if debug {
		fmt.Print("\033[33m")
	}
	fmt.Println(MatrixLine)
	fmt.Println(title, " (", v.Length, ")")
	max := v.Length
	if max > 24 {
		max = 24
	}
	for i := 0; i < max; i++ {
		fmt.Printf("[%03d] %12.6f\n", i, v.Values[i])
	}
	if v.Length > max {
		fmt.Println("...")
	}
	fmt.Println(MatrixLine)
	if debug {
		fmt.Print("\033[0m")
	}
}
