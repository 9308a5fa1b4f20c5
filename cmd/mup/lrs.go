package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/born-mup/internal/mup"
	"github.com/born-ml/born-mup/internal/nn"
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
	"gopkg.in/yaml.v3"
)

// shapeFile is the on-disk form of a shape tree:
//
//	mlp/linear_0:
//	  w: [4, 256]
//	  b: [256]
type shapeFile map[string]map[string][]int

// report is the YAML output of the lrs command.
type report struct {
	LearningRates tree.Nested[mup.LR] `yaml:"learning_rates"`
	ReadoutMults  mup.ReadoutMults    `yaml:"readout_mults,omitempty"`
}

func runLRs(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lrs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	basePath := fs.String("base", "", "YAML shape file or .born checkpoint of the base model")
	targetPath := fs.String("target", "", "YAML shape file or .born checkpoint of the target model")
	readouts := fs.String("readout", "", "comma-separated scopes of readout modules")
	format := fs.String("format", "table", "output format: table or yaml")
	verbose := fs.Bool("v", false, "log every recorded multiplier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *basePath == "" || *targetPath == "" {
		return fmt.Errorf("lrs: -base and -target are required")
	}

	base, err := loadShapes(*basePath)
	if err != nil {
		return err
	}
	target, err := loadShapes(*targetPath)
	if err != nil {
		return err
	}

	tracker := mup.New(mup.WithLogger(newLogger(stderr, *verbose)))
	if err := initShapes(tracker, base, target, splitList(*readouts)); err != nil {
		return err
	}

	switch *format {
	case "table":
		return writeTable(stdout, tracker, target)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		err := enc.Encode(report{
			LearningRates: tracker.LearningRates().All(),
			ReadoutMults:  tracker.ReadoutMults(),
		})
		if err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("lrs: unknown format %q", *format)
	}
}

// loadShapes reads a shape tree from a YAML shape file or from the header of
// a .born checkpoint.
func loadShapes(path string) (mup.BaseShapes, error) {
	if filepath.Ext(path) == ".born" {
		return mup.LoadBaseShapes(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f shapeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	shapes := mup.BaseShapes{}
	for scope, params := range f {
		for name, dims := range params {
			shape := tensor.Shape(dims)
			if err := shape.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %s: %w", path, tree.JoinName(scope, name), err)
			}
			shapes.Set(scope, name, shape)
		}
	}
	return shapes, nil
}

// initShapes runs the muP creator over every target parameter without
// materializing any tensor.
func initShapes(tracker *mup.Mup, base, target mup.BaseShapes, readouts []string) error {
	isReadout := make(map[string]bool, len(readouts))
	for _, scope := range readouts {
		isReadout[scope] = true
	}

	create := tracker.Creator()
	skip := func(tensor.Shape, tensor.DataType, nn.Initializer) (*tensor.Tensor, error) {
		return nil, nil
	}

	return tracker.InitContext(base, func() error {
		var err error
		target.Walk(func(scope, name string, shape tensor.Shape) {
			if err != nil {
				return
			}
			kind := nn.KindModule
			if isReadout[scope] {
				kind = nn.KindReadout
			}
			ctx := nn.ParamContext{
				FullName: tree.JoinName(scope, name),
				Module:   nn.ModuleInfo{Name: scope, Kind: kind},
			}
			_, err = create(skip, shape, tensor.Float32, nn.Zeros, ctx)
		})
		return err
	})
}

func writeTable(w io.Writer, tracker *mup.Mup, target mup.BaseShapes) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAM\tSHAPE\tSGD_LR\tADAM_LR\tREADOUT_MULT")

	target.Walk(func(scope, name string, shape tensor.Shape) {
		lr, _ := tracker.LearningRates().Get(scope, name)
		readout := "-"
		if mult, ok := tracker.ReadoutMult(scope); ok {
			readout = fmt.Sprintf("%g", mult)
		}
		fmt.Fprintf(tw, "%s\t%v\t%g\t%g\t%s\n", tree.JoinName(scope, name), shape, lr.SGD, lr.Adam, readout)
	})
	return tw.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
