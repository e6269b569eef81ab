package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// LeadingComponents returns the first k left singular vectors of m scaled by
// their singular values (U[:, :k] * S[:k]), i.e. the rows of m projected on
// its k leading right singular vectors. The data is not centred.
//
// ok is false when the factorization fails or when m has fewer than k
// singular values.
func (m *Matrix) LeadingComponents(k int) (*Matrix, bool) {
	var svd mat.SVD
	if !svd.Factorize(m.Dense(), mat.SVDThin) {
		return nil, false
	}
	s := svd.Values(nil)
	if k > len(s) {
		return nil, false
	}
	var u mat.Dense
	svd.UTo(&u)

	out := NewMatrix(m.Rows, k)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < k; j++ {
			out.Values[i][j] = u.At(i, j) * s[j]
		}
	}
	return out, true
}
