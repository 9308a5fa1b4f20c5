package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"text/tabwriter"

	"github.com/born-ml/born-mup/internal/mup"
	"github.com/born-ml/born-mup/internal/nn"
	"github.com/born-ml/born-mup/internal/parallel"
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
	"gonum.org/v1/gonum/stat"
)

// coordConfig holds the flags of the coord command.
type coordConfig struct {
	BaseWidth int
	Widths    []int
	Depth     int
	Batch     int
	InputDim  int
	Seed      uint64
	Workers   int    // 0 uses one worker per CPU
	SavePath  string // Checkpoint of the last muP model, if set
}

// runCoord initializes an MLP at several widths, with and without muP, and
// prints the standard deviation of the readout output for each.
func runCoord(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("coord", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseWidth := fs.Int("base-width", 32, "hidden width of the base model")
	widths := fs.String("widths", "64,128,256,512", "comma-separated hidden widths to compare")
	depth := fs.Int("depth", 2, "number of hidden layers")
	batch := fs.Int("batch", 64, "number of random inputs")
	inputDim := fs.Int("in", 16, "input features")
	seed := fs.Uint64("seed", 0, "random seed")
	workers := fs.Int("workers", 0, "widths processed concurrently (0: one per CPU)")
	save := fs.String("save", "", "write the last width's muP parameters to this .born file")
	verbose := fs.Bool("v", false, "log every recorded multiplier")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := coordConfig{
		BaseWidth: *baseWidth,
		Depth:     *depth,
		Batch:     *batch,
		InputDim:  *inputDim,
		Seed:      *seed,
		Workers:   *workers,
		SavePath:  *save,
	}
	for _, w := range splitList(*widths) {
		n, err := strconv.Atoi(w)
		if err != nil || n <= 0 {
			return fmt.Errorf("coord: invalid width %q", w)
		}
		cfg.Widths = append(cfg.Widths, n)
	}

	rows, err := coordCheck(cfg, newLogger(stderr, *verbose))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WIDTH\tSP_STD\tMUP_STD")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\n", r.Width, r.StandardStd, r.MupStd)
	}
	return tw.Flush()
}

type coordRow struct {
	Width       int
	StandardStd float64 // Output std under the standard parametrization
	MupStd      float64 // Output std under muP
}

// coordCheck compares the spread of the readout output under the standard
// parametrization and under muP for each configured width. Widths are
// processed concurrently, each with its own Mup.
func coordCheck(cfg coordConfig, logger *slog.Logger) ([]coordRow, error) {
	x := nn.Normal{Std: 1}.Init(tensor.Shape{cfg.Batch, cfg.InputDim}, tensor.Float64, rand.NewPCG(cfg.Seed, cfg.Seed+1))

	baseParams, err := nn.Transform(mlpForward(cfg.BaseWidth, cfg.Depth)).Init(cfg.Seed, x)
	if err != nil {
		return nil, fmt.Errorf("init base model: %w", err)
	}
	base := mup.Shapes(baseParams)

	pcfg := parallel.DefaultConfig()
	if cfg.Workers > 0 {
		pcfg = parallel.Config{Enabled: cfg.Workers > 1, NumWorkers: cfg.Workers}
	}

	rows := make([]coordRow, len(cfg.Widths))
	err = parallel.ForErr(context.Background(), len(cfg.Widths), func(_ context.Context, i int) error {
		width := cfg.Widths[i]
		row, params, tracker, err := coordWidth(width, cfg, base, x, logger.With("width", width))
		if err != nil {
			return fmt.Errorf("width %d: %w", width, err)
		}
		rows[i] = row

		if cfg.SavePath != "" && i == len(cfg.Widths)-1 {
			return tracker.Save(cfg.SavePath, params, "mlp")
		}
		return nil
	}, pcfg)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func coordWidth(width int, cfg coordConfig, base mup.BaseShapes, x *tensor.Tensor, logger *slog.Logger) (coordRow, tree.Tree, *mup.Mup, error) {
	forward := mlpForward(width, cfg.Depth)
	row := coordRow{Width: width}

	standard := nn.Transform(forward)
	params, err := standard.Init(cfg.Seed, x)
	if err != nil {
		return row, nil, nil, err
	}
	out, err := standard.Apply(params, x)
	if err != nil {
		return row, nil, nil, err
	}
	row.StandardStd = stat.StdDev(out.Data(), nil)

	tracker := mup.New(mup.WithLogger(logger))
	model := tracker.Transform(forward)
	err = tracker.InitContext(base, func() (err error) {
		params, err = model.Init(cfg.Seed, x)
		return err
	})
	if err != nil {
		return row, nil, nil, err
	}
	if out, err = model.Apply(params, x); err != nil {
		return row, nil, nil, err
	}
	row.MupStd = stat.StdDev(out.Data(), nil)

	logger.Debug("coord check", "sp_std", row.StandardStd, "mup_std", row.MupStd)
	return row, params, tracker, nil
}

func mlpForward(width, depth int) nn.ForwardFunc {
	hidden := make([]int, depth)
	for i := range hidden {
		hidden[i] = width
	}
	return func(b *nn.Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
		return nn.NewMLP("mlp", hidden, 1).Forward(b, x)
	}
}
