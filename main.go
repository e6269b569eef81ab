package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/CK6170/Sammon-go/file"
	"github.com/CK6170/Sammon-go/matrix"
	"github.com/CK6170/Sammon-go/models"
	"github.com/CK6170/Sammon-go/sammon"
	"github.com/CK6170/Sammon-go/ui"
)

// App version variables. Set these at build time with -ldflags if desired.
var (
	AppVersion = "dev"
	AppBuild   = "local"
)

type mapFlags struct {
	dims        int
	init        string
	input       string
	maxIter     int
	maxHalves   int
	tolFun      float64
	display     int
	seed        uint64
	options     string
	out         string
	restarts    int
	workers     int
	interactive bool
	debug       bool
	history     string
}

func main() {
	// Route the standard logger output through the red writer
	log.SetFlags(0)
	log.SetOutput(ui.NewRedWriter(os.Stderr))

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sammon",
		Short:         "Sammon's nonlinear mapping of high-dimensional points",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMapCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

func versionString() string {
	return strings.TrimSpace(fmt.Sprintf("%s [build %s]", AppVersion, AppBuild))
}

func newMapCmd() *cobra.Command {
	f := &mapFlags{}
	def := sammon.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "map <dataset>",
		Short: "Embed a dataset (json, yaml or csv) and save the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd, args[0], f)
		},
	}
	fl := cmd.Flags()
	fl.IntVarP(&f.dims, "dims", "n", def.Dims, "output dimensionality")
	fl.StringVar(&f.init, "init", string(def.Init), "initialization: pca or random")
	fl.StringVar(&f.input, "input", string(def.Input), "input: raw points or a distance matrix")
	fl.IntVar(&f.maxIter, "maxiter", def.MaxIter, "iteration budget")
	fl.IntVar(&f.maxHalves, "maxhalves", def.MaxHalves, "step-halving budget per iteration")
	fl.Float64Var(&f.tolFun, "tolfun", def.TolFun, "relative stress tolerance")
	fl.IntVar(&f.display, "display", def.Display, "0 silent, 1 termination and warnings, 2 every epoch")
	fl.Uint64Var(&f.seed, "seed", 0, "random init seed (0 = time based)")
	fl.StringVar(&f.options, "options", "", "options file (yaml or json)")
	fl.StringVarP(&f.out, "out", "o", "", "result file (default <dataset>_sammon.json)")
	fl.IntVar(&f.restarts, "restarts", 1, "independent runs, the lowest stress wins")
	fl.IntVar(&f.workers, "workers", 0, "parallel restarts (0 = all at once)")
	fl.BoolVarP(&f.interactive, "interactive", "i", false, "prompt to rerun, save or exit after each run")
	fl.BoolVar(&f.debug, "debug", false, "print the distance matrix and the embedding")
	fl.StringVar(&f.history, "history", "", "append the per-epoch stress history to this file")
	return cmd
}

// resolveOptions layers the options: defaults, dataset OPTIONS, the options
// file, then the flags the user actually set.
func resolveOptions(cmd *cobra.Command, base sammon.Options, f *mapFlags) (sammon.Options, error) {
	opts := base
	if f.options != "" {
		var err error
		if opts, err = file.LoadOptions(f.options, opts); err != nil {
			return opts, err
		}
	}
	fl := cmd.Flags()
	if fl.Changed("dims") {
		opts.Dims = f.dims
	}
	if fl.Changed("init") {
		opts.Init = sammon.InitMode(f.init)
	}
	if fl.Changed("input") {
		opts.Input = sammon.InputMode(f.input)
	}
	if fl.Changed("maxiter") {
		opts.MaxIter = f.maxIter
	}
	if fl.Changed("maxhalves") {
		opts.MaxHalves = f.maxHalves
	}
	if fl.Changed("tolfun") {
		opts.TolFun = f.tolFun
	}
	if fl.Changed("display") {
		opts.Display = f.display
	}
	if fl.Changed("seed") {
		opts.Seed = f.seed
	}
	return opts, opts.Validate()
}

func runMap(cmd *cobra.Command, path string, f *mapFlags) error {
	ds, err := file.LoadDataset(path)
	if err != nil {
		return err
	}
	opts, err := resolveOptions(cmd, ds.OPTIONS, f)
	if err != nil {
		return err
	}
	out := f.out
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "_sammon.json"
	}
	x := ds.Matrix()

	for {
		if f.interactive {
			ui.ClearScreen()
		}
		ui.Greenf("Sammon mapping version: %s [build %s]\n", AppVersion, AppBuild)
		ui.Greenf("--------------------------------------------\n")
		ui.Debugf(f.debug, "dataset %s: %d points x %d features, init %s, seed %d\n",
			path, x.Rows, x.Cols, opts.Init, opts.Seed)
		if f.debug {
			if d, err := sammon.Distances(x, opts.Input); err == nil {
				matrix.PrintMatrix(d, "D", true)
			}
		}

		res, err := run(cmd.Context(), x, opts, f)
		if err != nil {
			return err
		}
		ui.PrintEmbedding(os.Stdout, res.Y, ds.LABELS, res.Stress)
		if f.debug {
			matrix.PrintMatrix(res.Y, "Y", true)
		}
		if res.HalvingExceeded > 0 {
			ui.Warningf("maxhalves exceeded %d time(s)\n", res.HalvingExceeded)
		}
		if f.history != "" {
			file.AppendToFile(f.history, historyLog(path, opts, res))
		}

		result := models.NewRESULT(res, ds.LABELS, opts)
		if !f.interactive {
			return file.SaveResult(out, result, AppVersion, AppBuild)
		}
		switch ui.NextRerunSaveOrExit() {
		case 'S':
			return file.SaveResult(out, result, AppVersion, AppBuild)
		case 'R':
			opts = nextRandomStart(opts)
			continue
		default:
			return nil
		}
	}
}

func run(ctx context.Context, x *matrix.Matrix, opts sammon.Options, f *mapFlags) (*sammon.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.restarts > 1 {
		ui.Debugf(true, "running %d restarts\n", f.restarts)
		return sammon.BestOf(ctx, x, opts, f.restarts, f.workers)
	}
	rep := ui.NewColorReporter(os.Stdout, inPlaceOutput())
	defer rep.Finish()
	opts.Reporter = rep
	return sammon.Map(x, opts)
}

// nextRandomStart switches to random initialization and advances the seed so
// every rerun starts from a different, reproducible configuration.
func nextRandomStart(opts sammon.Options) sammon.Options {
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	if opts.Init == sammon.InitRandom {
		opts.Seed++
	}
	opts.Init = sammon.InitRandom
	return opts
}

func historyLog(path string, opts sammon.Options, res *sammon.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s init=%s seed=%d dims=%d termination=%s\n",
		time.Now().Format(time.RFC3339), path, opts.Init, opts.Seed, opts.Dims, res.Termination)
	for _, s := range res.History {
		fmt.Fprintf(&b, "%d,%.12g,%d,%t\n", s.Iteration, s.Stress, s.Halvings, s.Accepted)
	}
	return b.String()
}

// inPlaceOutput reports whether epochs can overwrite each other on one line,
// i.e. stdout is a terminal wide enough for an epoch line.
func inPlaceOutput() bool {
	w, ok := getTerminalWidth()
	return ok && w >= 40
}

func getTerminalWidth() (int, bool) {
	cmd := exec.Command("stty", "size")
	cmd.Stdin = os.Stdin
	out, err := cmd.Output()
	if err != nil {
		return 80, false
	}
	parts := strings.Fields(string(out))
	if len(parts) < 2 {
		return 80, false
	}
	w, err := strconv.Atoi(parts[1])
	if err != nil {
		return 80, false
	}
	return w, true
}
