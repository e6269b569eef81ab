package sammon

import "github.com/CK6170/Sammon-go/matrix"

// Stress returns sum_ij (D_ij - d_ij)^2 * Dinv_ij, the unscaled Sammon stress
// of the embedding distances d against the targets D. Dinv must come from
// Reciprocal, so the diagonal never contributes.
func Stress(D, Dinv, d *matrix.Matrix) float64 {
	e := 0.0
	for i := range D.Values {
		for j, t := range D.Values[i] {
			diff := t - d.Values[i][j]
			e += diff * diff * Dinv.Values[i][j]
		}
	}
	return e
}

// Scale is the factor 0.5 / sum(D) that maps the optimizer's stress onto the
// value reported in Sammon's paper.
func Scale(D *matrix.Matrix) float64 {
	return 0.5 / D.Sum()
}
