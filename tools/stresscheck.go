package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/CK6170/Sammon-go/file"
	"github.com/CK6170/Sammon-go/matrix"
	"github.com/CK6170/Sammon-go/sammon"
	"github.com/CK6170/Sammon-go/ui"
)

// stresscheck recomputes the Sammon stress of a saved result against its
// dataset and reports how well the embedding preserves the distances.
//
//	go run ./tools -dataset points.json -result points_sammon.json
func main() {
	var (
		dataset = flag.String("dataset", "", "dataset file (json, yaml or csv)")
		result  = flag.String("result", "", "result file written by `sammon map`")
		verbose = flag.Bool("v", false, "print both distance matrices")
	)
	flag.Parse()
	log.SetFlags(0)
	log.SetOutput(ui.NewRedWriter(os.Stderr))
	if *dataset == "" || *result == "" {
		log.Fatal("usage: stresscheck -dataset <file> -result <file>")
	}

	ds, err := file.LoadDataset(*dataset)
	if err != nil {
		log.Fatalf("dataset: %v", err)
	}
	res, err := file.LoadResult(*result)
	if err != nil {
		log.Fatalf("result: %v", err)
	}
	if len(res.Y) != len(ds.X) {
		log.Fatalf("result has %d points, dataset has %d", len(res.Y), len(ds.X))
	}

	input := res.OPTIONS.Input
	if input == "" {
		input = ds.OPTIONS.Input
	}
	D, err := sammon.Distances(ds.Matrix(), input)
	if err != nil {
		log.Fatalf("distances: %v", err)
	}
	d, _ := sammon.Distances(matrix.FromRows(res.Y), sammon.InputRaw)
	if *verbose {
		matrix.PrintMatrix(D, "D (input)", true)
		matrix.PrintMatrix(d, "d (embedding)", true)
	}

	rep := check(D, d)
	matrix.PrintVector(rep.perPoint, "mean |D-d| per point", false)
	ui.Greenf("points:          %d\n", len(ds.X))
	ui.Greenf("stress (saved):  %.12g\n", res.STRESS)
	ui.Greenf("stress (check):  %.12g\n", rep.stress)
	fmt.Printf("abs error  max:  %.6g (points %d, %d)\n", rep.maxErr, rep.maxI, rep.maxJ)
	fmt.Printf("abs error  mean: %.6g  std: %.6g\n", rep.meanErr, rep.stdErr)
	fmt.Printf("worst point:     %d (mean abs error %.6g)\n", rep.worstPoint, rep.worstPointErr)
	if math.Abs(rep.stress-res.STRESS) > 1e-9*math.Max(1, res.STRESS) {
		ui.Warningf("saved stress differs from the recomputed one\n")
		os.Exit(1)
	}
}

type report struct {
	stress          float64
	maxErr          float64
	maxI, maxJ      int
	meanErr, stdErr float64

	// perPoint is the mean absolute error of each point's distances.
	perPoint      *matrix.Vector
	worstPoint    int
	worstPointErr float64
}

// check compares the input distances D with the embedding distances d over
// the upper triangle.
func check(D, d *matrix.Matrix) report {
	var (
		errs  []float64
		pairs [][2]int
	)
	for i := 0; i < D.Rows; i++ {
		for j := i + 1; j < D.Cols; j++ {
			errs = append(errs, math.Abs(D.Values[i][j]-d.Values[i][j]))
			pairs = append(pairs, [2]int{i, j})
		}
	}
	r := report{
		stress:   sammon.Stress(D, sammon.Reciprocal(D), d) * sammon.Scale(D),
		perPoint: perPointError(D, d),
	}
	if len(errs) == 0 {
		return r
	}
	r.worstPoint = floats.MaxIdx(r.perPoint.Values)
	r.worstPointErr = r.perPoint.Max()
	k := floats.MaxIdx(errs)
	r.maxErr, r.maxI, r.maxJ = errs[k], pairs[k][0], pairs[k][1]
	r.meanErr, r.stdErr = stat.MeanStdDev(errs, nil)
	return r
}

func perPointError(D, d *matrix.Matrix) *matrix.Vector {
	v := D.Sub(d).Apply(math.Abs).RowSums()
	if D.Rows > 1 {
		floats.Scale(1/float64(D.Rows-1), v.Values)
	}
	return v
}
