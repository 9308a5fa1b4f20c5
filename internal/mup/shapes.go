package mup

import (
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// BaseShapes maps parent scope -> parameter name -> base shape.
type BaseShapes = tree.Nested[tensor.Shape]

// Shapes returns the shape tree of params, typically the base model's.
func Shapes(params tree.Tree) BaseShapes {
	return tree.Shapes(params)
}

// Ratios describes how a parameter's shape differs from its base shape.
type Ratios struct {
	Count  int       // Number of infinite (rescaled) dimensions, 0 to 2
	Values []float64 // actual/base for each infinite dimension, in order
}

// WidthMult returns the ratio of the first infinite dimension, or 1.
func (r Ratios) WidthMult() float64 {
	if r.Count == 0 {
		return 1
	}
	return r.Values[0]
}

// Analyze compares base and actual dimension by dimension.
//
// A dimension is infinite when its size differs from the base. More than two
// infinite dimensions is a *DimensionError. Shapes of different rank are
// compared over their common prefix.
func Analyze(param string, base, actual tensor.Shape) (Ratios, error) {
	var r Ratios
	for i := 0; i < min(len(base), len(actual)); i++ {
		if base[i] != actual[i] {
			r.Count++
			r.Values = append(r.Values, float64(actual[i])/float64(base[i]))
		}
	}

	if r.Count > 2 {
		return Ratios{}, &DimensionError{
			Param:  param,
			Base:   base.Clone(),
			Actual: actual.Clone(),
			Count:  r.Count,
		}
	}
	return r, nil
}

// LearningRates derives the SGD and Adam multipliers for r.
//
//	0 infinite dims: sgd = 1, adam = 1
//	1 infinite dim:  sgd = width_mult, adam = 1
//	2 infinite dims: sgd = 1/(width_mult/r2), adam = 1/width_mult
func LearningRates(r Ratios) LR {
	widthMult := r.WidthMult()
	switch r.Count {
	case 2:
		faninFanoutRatio := widthMult / r.Values[1]
		return LR{SGD: 1 / faninFanoutRatio, Adam: 1 / widthMult}
	case 1:
		return LR{SGD: widthMult, Adam: 1}
	default:
		return LR{SGD: 1, Adam: 1}
	}
}
