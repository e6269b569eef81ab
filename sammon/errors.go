package sammon

import "errors"

// Every message is prefixed with "sammon:". Wrap with fmt.Errorf("ctx: %w")
// when adding context; callers match with errors.Is.
var (
	// ErrShapeMismatch is returned for empty, ragged or wrongly sized inputs:
	// fewer than two points, a non-square matrix in distance mode, or an output
	// dimensionality the initializer cannot provide.
	ErrShapeMismatch = errors.New("sammon: shape mismatch")

	// ErrInvalidInput is returned for inputs with the right shape but unusable
	// content (duplicate points, NaN/Inf, unknown modes, non-positive budgets).
	ErrInvalidInput = errors.New("sammon: invalid input")

	// ErrSVDFailed is returned when the PCA initializer's factorization does
	// not converge.
	ErrSVDFailed = errors.New("sammon: SVD factorization failed")
)
