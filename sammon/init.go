package sammon

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/CK6170/Sammon-go/matrix"
)

// Initialize produces the starting configuration Y0 (N×n).
//
// InitPCA projects the uncentred rows of x on its n leading singular
// directions; it is deterministic. InitRandom draws every coordinate from
// N(0, 1) using seed (0 selects a time-based seed).
func Initialize(x *matrix.Matrix, n int, mode InitMode, seed uint64) (*matrix.Matrix, error) {
	switch mode {
	case InitPCA:
		if n > min(x.Rows, x.Cols) {
			return nil, fmt.Errorf("pca init needs n <= min(%d, %d), got %d: %w", x.Rows, x.Cols, n, ErrShapeMismatch)
		}
		y, ok := x.LeadingComponents(n)
		if !ok {
			return nil, ErrSVDFailed
		}
		return y, nil
	case InitRandom:
		normal := distuv.Normal{Mu: 0, Sigma: 1, Src: newSource(seed)}
		y := matrix.NewMatrix(x.Rows, n)
		for i := range y.Values {
			for j := range y.Values[i] {
				y.Values[i][j] = normal.Rand()
			}
		}
		return y, nil
	default:
		return nil, fmt.Errorf("init mode %q: %w", mode, ErrInvalidInput)
	}
}

func newSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
