package ui

import (
	"fmt"
	"io"

	"github.com/CK6170/Sammon-go/matrix"
)

// PrintEmbedding prints one line per point: index, optional label and the
// embedding coordinates, followed by the final stress in orange.
func PrintEmbedding(w io.Writer, y *matrix.Matrix, labels []string, stress float64) {
	fmt.Fprintln(w, matrix.MatrixLine)
	for i, row := range y.Values {
		line := fmt.Sprintf("[%03d]", i)
		if i < len(labels) {
			line += fmt.Sprintf(" %-12.12s", labels[i])
		}
		for _, v := range row {
			line += fmt.Sprintf("  % .8f", v)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, matrix.MatrixLine)
	fmt.Fprintf(w, "\033[38;5;208mstress E = %.12g\033[0m\n", stress)
}
