// Package models defines the JSON/YAML-serialized structures shared between
// the CLI, the web server and the offline tools.
//
// These types mirror the shape of dataset files (`dataset.json`,
// `dataset.yaml`) and of saved results (`*_sammon.json`).
package models

import (
	"github.com/CK6170/Sammon-go/matrix"
	"github.com/CK6170/Sammon-go/sammon"
)

// DATASET is the primary input model.
//
// X holds one point per row, or a square distance matrix when
// OPTIONS.Input is "distance". LABELS optionally names the rows. OPTIONS is
// decoded on top of sammon.DefaultOptions, so omitted fields keep their
// defaults.
type DATASET struct {
	X       [][]float64    `json:"X" yaml:"X"`
	LABELS  []string       `json:"LABELS,omitempty" yaml:"LABELS,omitempty"`
	OPTIONS sammon.Options `json:"OPTIONS" yaml:"OPTIONS"`
}

// NewDATASET returns an empty dataset carrying default options.
func NewDATASET() *DATASET {
	return &DATASET{OPTIONS: sammon.DefaultOptions()}
}

// Matrix copies X into a matrix.Matrix.
func (d *DATASET) Matrix() *matrix.Matrix {
	return matrix.FromRows(d.X)
}

// RESULT is the saved outcome of a mapping run.
//
// STRESS is the scaled Sammon stress. HISTORY is omitted when empty.
type RESULT struct {
	Y               [][]float64    `json:"Y"`
	LABELS          []string       `json:"LABELS,omitempty"`
	STRESS          float64        `json:"STRESS"`
	ITERATIONS      int            `json:"ITERATIONS"`
	TERMINATION     string         `json:"TERMINATION"`
	HALVINGEXCEEDED int            `json:"HALVING_EXCEEDED"`
	OPTIONS         sammon.Options `json:"OPTIONS"`
	HISTORY         []sammon.Step  `json:"HISTORY,omitempty"`
}

// NewRESULT flattens a sammon.Result into its serialized form.
func NewRESULT(res *sammon.Result, labels []string, opts sammon.Options) *RESULT {
	y := make([][]float64, 0, res.Y.Rows)
	for _, row := range res.Y.Values {
		y = append(y, append([]float64(nil), row...))
	}
	return &RESULT{
		Y:               y,
		LABELS:          labels,
		STRESS:          res.Stress,
		ITERATIONS:      res.Iterations,
		TERMINATION:     string(res.Termination),
		HALVINGEXCEEDED: res.HalvingExceeded,
		OPTIONS:         opts,
		HISTORY:         res.History,
	}
}
