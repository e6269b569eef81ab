package sammon

import (
	"fmt"
	"io"
)

// Reporter receives the optimizer's status events. Implementations must not
// retain the run's matrices; only scalars are passed.
type Reporter interface {
	// Epoch is called after every iteration that did not converge, with the
	// scaled stress.
	Epoch(iter int, stress float64)
	// HalvingExceeded is called when the line search ran out of halvings.
	HalvingExceeded(iter int)
	// Converged is called once when the tolerance test terminates the run.
	Converged(iter int, stress float64)
}

// TextReporter writes the classic human-readable status lines.
type TextReporter struct {
	w io.Writer
}

func NewTextReporter(w io.Writer) *TextReporter { return &TextReporter{w: w} }

func (t *TextReporter) Epoch(iter int, stress float64) {
	fmt.Fprintf(t.w, "epoch = %d: E = %g\n", iter, stress)
}

func (t *TextReporter) HalvingExceeded(iter int) {
	fmt.Fprintln(t.w, "Warning: maxhalves exceeded. Sammon mapping may not converge...")
}

func (t *TextReporter) Converged(iter int, stress float64) {
	fmt.Fprintln(t.w, "TolFun exceeded: Optimisation terminated")
}

// levelReporter drops events above the configured display level.
type levelReporter struct {
	level int
	r     Reporter
}

func (l levelReporter) Epoch(iter int, stress float64) {
	if l.level >= DisplayIterations {
		l.r.Epoch(iter, stress)
	}
}

func (l levelReporter) HalvingExceeded(iter int) {
	if l.level >= DisplayTermination {
		l.r.HalvingExceeded(iter)
	}
}

func (l levelReporter) Converged(iter int, stress float64) {
	if l.level >= DisplayTermination {
		l.r.Converged(iter, stress)
	}
}
