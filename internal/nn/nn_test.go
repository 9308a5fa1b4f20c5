package nn

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func ones(rows, cols int) *tensor.Tensor {
	return tensor.Full(tensor.Shape{rows, cols}, 1, tensor.Float32)
}

func TestLinear_InitAndApply(t *testing.T) {
	model := Transform(func(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
		return NewLinear("linear", 3).WithWeightInit(Constant(0.5)).Forward(b, x)
	})

	params, err := model.Init(0, ones(2, 4))
	require.NoError(t, err)

	assert.Equal(t, tree.Nested[tensor.Shape]{
		"linear": {"w": {4, 3}, "b": {3}},
	}, tree.Shapes(params))

	out, err := model.Apply(params, ones(2, 4))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	for _, v := range out.Data() {
		assert.InDelta(t, 2.0, v, 1e-6) // 4 * 0.5 + 0
	}
}

func TestLinear_RejectsNon2DInput(t *testing.T) {
	b := NewBuilder(0)
	_, err := NewLinear("linear", 3).Forward(b, tensor.Zeros(tensor.Shape{4}, tensor.Float32))
	assert.Error(t, err)
}

func TestApply_MissingParam(t *testing.T) {
	model := Transform(func(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
		return NewLinear("linear", 3).Forward(b, x)
	})

	_, err := model.Apply(tree.Tree{}, ones(1, 2))
	assert.ErrorIs(t, err, ErrMissingParam)
}

func TestApply_ShapeMismatch(t *testing.T) {
	model := Transform(func(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
		return NewLinear("linear", 3).Forward(b, x)
	})

	params, err := model.Init(0, ones(1, 2))
	require.NoError(t, err)

	_, err = model.Apply(params, ones(1, 5))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestParam_OutsideModule(t *testing.T) {
	b := NewBuilder(0)
	_, err := b.Param("w", tensor.Shape{1}, tensor.Float32, Zeros)
	assert.ErrorIs(t, err, ErrNoModule)
}

func TestMLP_Scopes(t *testing.T) {
	mlp := NewMLP("mlp", []int{8, 8}, 2)
	var seen []ParamContext

	b := NewBuilder(1)
	release := b.PushCreator(func(next NextCreator, shape tensor.Shape, dtype tensor.DataType, init Initializer, ctx ParamContext) (*tensor.Tensor, error) {
		seen = append(seen, ctx)
		return next(shape, dtype, init)
	})
	defer release()

	out, err := mlp.Forward(b, ones(3, 4))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())

	assert.Equal(t, tree.Nested[tensor.Shape]{
		"mlp/linear_0": {"w": {4, 8}, "b": {8}},
		"mlp/linear_1": {"w": {8, 8}, "b": {8}},
		"mlp/readout":  {"w": {8, 2}, "b": {2}},
	}, tree.Shapes(b.Params()))

	require.Len(t, seen, 6)
	assert.Equal(t, "mlp/linear_0/w", seen[0].FullName)
	assert.Equal(t, KindModule, seen[0].Module.Kind)
	assert.Equal(t, "mlp/readout/w", seen[4].FullName)
	assert.True(t, seen[4].Module.IsReadout())
	assert.Equal(t, "mlp/readout", seen[4].Module.Name)
}

func TestCreatorChain_Order(t *testing.T) {
	var order []string
	creator := func(tag string) Creator {
		return func(next NextCreator, shape tensor.Shape, dtype tensor.DataType, init Initializer, _ ParamContext) (*tensor.Tensor, error) {
			order = append(order, tag)
			return next(shape, dtype, init)
		}
	}

	b := NewBuilder(0)
	releaseA := b.PushCreator(creator("a"))
	releaseB := b.PushCreator(creator("b"))

	_, err := NewLinear("l", 1).WithoutBias().Forward(b, ones(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)

	releaseA()
	releaseA()
	releaseB()

	order = nil
	_, err = NewLinear("m", 1).WithoutBias().Forward(b, ones(1, 1))
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestCreator_ReplacesInitializer(t *testing.T) {
	b := NewBuilder(0)
	release := b.PushCreator(func(next NextCreator, shape tensor.Shape, dtype tensor.DataType, _ Initializer, _ ParamContext) (*tensor.Tensor, error) {
		return next(shape, dtype, Constant(7))
	})
	defer release()

	_, err := NewLinear("l", 2).Forward(b, ones(1, 2))
	require.NoError(t, err)

	w, _ := b.Params().Get("l", "w")
	assert.Equal(t, []float64{7, 7, 7, 7}, w.Data())
}

func TestCreator_ErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	model := Transform(func(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
		release := b.PushCreator(func(NextCreator, tensor.Shape, tensor.DataType, Initializer, ParamContext) (*tensor.Tensor, error) {
			return nil, boom
		})
		defer release()
		return NewLinear("l", 2).Forward(b, x)
	})

	_, err := model.Init(0, ones(1, 2))
	assert.ErrorIs(t, err, boom)
}

func TestGetter_TransformsReadsNotStorage(t *testing.T) {
	model := Transform(func(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
		release := b.PushGetter(func(next NextGetter, value *tensor.Tensor, _ ParamContext) (*tensor.Tensor, error) {
			v, err := next(value)
			if err != nil {
				return nil, err
			}
			return v.Scale(2), nil
		})
		defer release()
		return NewLinear("l", 1).WithoutBias().WithWeightInit(Constant(1)).Forward(b, x)
	})

	params, err := model.Init(0, ones(1, 1))
	require.NoError(t, err)

	out, err := model.Apply(params, ones(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, out.Data())

	w, _ := params.Get("l", "w")
	assert.Equal(t, []float64{1}, w.Data(), "stored parameter must not change")
}

func TestInitializers(t *testing.T) {
	shape := tensor.Shape{100, 100}
	src := rand.NewPCG(1, 2)

	normal := Normal{Std: 0.5}.Init(shape, tensor.Float64, src)
	mean, std := stat.MeanStdDev(normal.Data(), nil)
	assert.InDelta(t, 0, mean, 0.02)
	assert.InDelta(t, 0.5, std, 0.02)

	uniform := Uniform{Min: -1, Max: 1}.Init(shape, tensor.Float64, src)
	for _, v := range uniform.Data() {
		assert.True(t, v >= -1 && v < 1)
	}

	bound := math.Sqrt(6.0 / 200)
	xavier := Xavier{}.Init(shape, tensor.Float64, src)
	for _, v := range xavier.Data() {
		assert.LessOrEqual(t, math.Abs(v), bound)
	}

	assert.Equal(t, []float64{3, 3}, Constant(3).Init(tensor.Shape{2}, tensor.Float64, nil).Data())
}

func TestScaleStd(t *testing.T) {
	shape := tensor.Shape{64, 64}
	base := Normal{Std: 1}.Init(shape, tensor.Float64, rand.NewPCG(7, 7))
	scaled := ScaleStd(Normal{Std: 1}, 1.0/8).Init(shape, tensor.Float64, rand.NewPCG(7, 7))

	for i := range base.Data() {
		assert.InDelta(t, base.Data()[i]/8, scaled.Data()[i], 1e-12)
	}
	assert.InDelta(t, stat.StdDev(base.Data(), nil)/8, stat.StdDev(scaled.Data(), nil), 1e-12)
}

func TestEmbedding_Lookup(t *testing.T) {
	table, err := tensor.FromSlice([]float64{0, 1, 10, 11, 20, 21}, tensor.Shape{3, 2}, tensor.Float32)
	require.NoError(t, err)
	model := Transform(func(b *Builder, ids *tensor.Tensor) (*tensor.Tensor, error) {
		return NewEmbedding("embed", 3, 2).Forward(b, ids)
	})

	ids, err := tensor.FromSlice([]float64{2, 0, 2}, tensor.Shape{3}, tensor.Float32)
	require.NoError(t, err)

	params, err := model.Init(0, ids)
	require.NoError(t, err)
	assert.Equal(t, tree.Nested[tensor.Shape]{"embed": {"table": {3, 2}}}, tree.Shapes(params))

	params.Set("embed", "table", table)
	out, err := model.Apply(params, ids)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float64{20, 21, 0, 1, 20, 21}, out.Data())
}

func TestEmbedding_RejectsBadIndices(t *testing.T) {
	model := Transform(func(b *Builder, ids *tensor.Tensor) (*tensor.Tensor, error) {
		return NewEmbedding("embed", 3, 2).WithInit(Zeros).Forward(b, ids)
	})

	for _, v := range []float64{-1, 3, 0.5} {
		ids := tensor.Full(tensor.Shape{1}, v, tensor.Float64)
		_, err := model.Init(0, ids)
		assert.Error(t, err, "index %v", v)
	}

	_, err := model.Init(0, ones(2, 2))
	assert.Error(t, err)
}
