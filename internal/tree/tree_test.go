package tree

import (
	"errors"
	"testing"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		full  string
		scope string
		name  string
		ok    bool
	}{
		{"linear/w", "linear", "w", true},
		{"mlp/~/linear_1/b", "mlp/~/linear_1", "b", true},
		{"w", "", "", false},
		{"/w", "", "", false},
		{"linear/", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.full, func(t *testing.T) {
			scope, name, ok := SplitName(tt.full)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.scope, scope)
			assert.Equal(t, tt.name, name)
			if ok {
				assert.Equal(t, tt.full, JoinName(scope, name))
			}
		})
	}
}

func TestNestedSetGetWalk(t *testing.T) {
	n := Nested[int]{}
	n.Set("b", "y", 3)
	n.Set("a", "z", 2)
	n.Set("a", "x", 1)

	v, ok := n.Get("a", "z")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = n.Get("c", "x")
	assert.False(t, ok)
	assert.Equal(t, 3, n.Len())

	var order []string
	n.Walk(func(scope, name string, _ int) {
		order = append(order, JoinName(scope, name))
	})
	assert.Equal(t, []string{"a/x", "a/z", "b/y"}, order)

	clone := n.Clone()
	clone.Set("a", "x", 100)
	v, _ = n.Get("a", "x")
	assert.Equal(t, 1, v, "Clone must copy inner maps")
}

func TestMap2(t *testing.T) {
	a := Nested[float64]{"l": {"w": 2, "b": 3}}
	b := Nested[float64]{"l": {"w": 10, "b": 100}}

	out, err := Map2(a, b, func(_, _ string, x, y float64) (float64, error) {
		return x * y, nil
	})
	require.NoError(t, err)
	assert.Equal(t, Nested[float64]{"l": {"w": 20, "b": 300}}, out)
}

func TestMap2_StructureMismatch(t *testing.T) {
	mul := func(_, _ string, x, y float64) (float64, error) { return x * y, nil }

	tests := []struct {
		name string
		b    Nested[float64]
	}{
		{"missing scope", Nested[float64]{"other": {"w": 1}}},
		{"extra scope", Nested[float64]{"l": {"w": 1}, "m": {"w": 1}}},
		{"missing leaf", Nested[float64]{"l": {"b": 1}}},
		{"extra leaf", Nested[float64]{"l": {"w": 1, "b": 1}}},
	}

	a := Nested[float64]{"l": {"w": 1}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Map2(a, tt.b, mul)
			assert.True(t, errors.Is(err, ErrStructureMismatch), "got %v", err)
		})
	}
}

func TestMap2_CallbackError(t *testing.T) {
	boom := errors.New("boom")
	a := Nested[int]{"l": {"w": 1}}

	_, err := Map2(a, a, func(_, _ string, _, _ int) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestShapes(t *testing.T) {
	params := Tree{
		"linear": {
			"w": tensor.Zeros(tensor.Shape{4, 8}, tensor.Float32),
			"b": tensor.Zeros(tensor.Shape{8}, tensor.Float32),
		},
	}

	shapes := Shapes(params)
	assert.Equal(t, Nested[tensor.Shape]{
		"linear": {"w": {4, 8}, "b": {8}},
	}, shapes)
}
