package sammon

import (
	"fmt"
	"os"
)

// InputMode selects how the input matrix is interpreted.
type InputMode string

const (
	// InputRaw treats rows as points; distances are Euclidean.
	InputRaw InputMode = "raw"
	// InputDistance treats the input as a precomputed N×N distance matrix.
	InputDistance InputMode = "distance"
)

// InitMode selects the initial configuration.
type InitMode string

const (
	InitPCA    InitMode = "pca"
	InitRandom InitMode = "random"
)

// Display levels.
const (
	DisplaySilent      = 0
	DisplayTermination = 1
	DisplayIterations  = 2
)

// Options configures a mapping run. Start from DefaultOptions; the zero value
// is not usable.
type Options struct {
	// Dims is the output dimensionality n.
	Dims int `json:"dims" yaml:"dims"`
	// Display is the verbosity of the status stream: 0 silent, 1 warnings and
	// termination, 2 per-iteration progress.
	Display int `json:"display" yaml:"display"`
	// Input selects raw points or a precomputed distance matrix.
	Input InputMode `json:"input" yaml:"input"`
	// MaxHalves bounds the step-halving line search of one iteration.
	MaxHalves int `json:"maxhalves" yaml:"maxhalves"`
	// MaxIter bounds the number of optimizer iterations.
	MaxIter int `json:"maxiter" yaml:"maxiter"`
	// TolFun is the relative stress change below which the run has converged.
	TolFun float64 `json:"tolfun" yaml:"tolfun"`
	// Init selects the initializer.
	Init InitMode `json:"init" yaml:"init"`
	// Seed drives the random initializer. 0 picks a time-based seed.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	// AllowDuplicates skips the duplicate point check. Duplicate points then
	// get zero weight through the reciprocal fix-up and the embedding quality
	// is undefined.
	AllowDuplicates bool `json:"allowDuplicates,omitempty" yaml:"allowDuplicates,omitempty"`

	// Reporter receives progress events. Nil means a TextReporter on stdout.
	Reporter Reporter `json:"-" yaml:"-"`
}

// DefaultOptions returns {n: 2, display: 2, input: raw, maxhalves: 20,
// maxiter: 500, tolfun: 1e-9, init: pca}.
func DefaultOptions() Options {
	return Options{
		Dims:      2,
		Display:   DisplayIterations,
		Input:     InputRaw,
		MaxHalves: 20,
		MaxIter:   500,
		TolFun:    1e-9,
		Init:      InitPCA,
	}
}

// Validate checks option values independently of any input.
func (o Options) Validate() error {
	switch {
	case o.Dims < 1:
		return fmt.Errorf("dims %d: %w", o.Dims, ErrShapeMismatch)
	case o.Display < DisplaySilent || o.Display > DisplayIterations:
		return fmt.Errorf("display %d: %w", o.Display, ErrInvalidInput)
	case o.Input != InputRaw && o.Input != InputDistance:
		return fmt.Errorf("input mode %q: %w", o.Input, ErrInvalidInput)
	case o.Init != InitPCA && o.Init != InitRandom:
		return fmt.Errorf("init mode %q: %w", o.Init, ErrInvalidInput)
	case o.MaxHalves < 1:
		return fmt.Errorf("maxhalves %d: %w", o.MaxHalves, ErrInvalidInput)
	case o.MaxIter < 1:
		return fmt.Errorf("maxiter %d: %w", o.MaxIter, ErrInvalidInput)
	case !(o.TolFun > 0):
		return fmt.Errorf("tolfun %g: %w", o.TolFun, ErrInvalidInput)
	}
	return nil
}

// reporter returns the configured Reporter filtered by Display.
func (o Options) reporter() Reporter {
	r := o.Reporter
	if r == nil {
		r = NewTextReporter(os.Stdout)
	}
	return levelReporter{level: o.Display, r: r}
}
