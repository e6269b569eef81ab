package ui

import (
	"fmt"
	"io"
)

// ColorReporter renders optimizer progress on a terminal: epochs in light
// blue on a single in-place line, warnings in yellow, termination in green.
// It satisfies sammon.Reporter.
type ColorReporter struct {
	w       io.Writer
	inPlace bool
	dirty   bool
}

// NewColorReporter returns a reporter writing to w. With inPlace set, epoch
// lines overwrite each other using a carriage return.
func NewColorReporter(w io.Writer, inPlace bool) *ColorReporter {
	return &ColorReporter{w: w, inPlace: inPlace}
}

func (c *ColorReporter) Epoch(iter int, stress float64) {
	if c.inPlace {
		fmt.Fprintf(c.w, "\r\033[96m[EPOCH %04d] E = %.12g\033[0m          ", iter, stress)
		c.dirty = true
		return
	}
	fmt.Fprintf(c.w, "\033[96mepoch = %d: E = %g\033[0m\n", iter, stress)
}

func (c *ColorReporter) HalvingExceeded(iter int) {
	c.newline()
	fmt.Fprintf(c.w, "\033[93mWarning: maxhalves exceeded at epoch %d. Sammon mapping may not converge...\033[0m\n", iter)
}

func (c *ColorReporter) Converged(iter int, stress float64) {
	c.newline()
	fmt.Fprintf(c.w, "\033[92mTolFun exceeded: Optimisation terminated (epoch %d, E = %g)\033[0m\n", iter, stress)
}

// Finish terminates a pending in-place line.
func (c *ColorReporter) Finish() { c.newline() }

func (c *ColorReporter) newline() {
	if c.dirty {
		fmt.Fprintln(c.w)
		c.dirty = false
	}
}
