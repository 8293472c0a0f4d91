package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFlow_TopLevelHasNoReturn(t *testing.T) {
	t.Parallel()

	f := New()
	require.False(t, f.HasReturn())
	require.False(t, f.ExpectsValue())

	// Returning from a top-level flow does nothing.
	f.Return(cty.NumberIntVal(1))
	assert.False(t, f.Returned())
}

func TestFlow_WithReturn(t *testing.T) {
	t.Parallel()

	var got []cty.Value
	f := New().WithReturn(func(v cty.Value) { got = append(got, v) }, cty.Number)

	require.True(t, f.HasReturn())
	require.True(t, f.ExpectsValue())
	require.Equal(t, cty.Number, f.ReturnType())

	f.Return(cty.NumberIntVal(7))
	f.Return(cty.NumberIntVal(8))

	require.True(t, f.Returned())
	require.Len(t, got, 1, "only the first return reaches the sink")
	assert.True(t, got[0].RawEquals(cty.NumberIntVal(7)))
}

func TestFlow_DepthGuard(t *testing.T) {
	t.Parallel()

	f := NewWithLimit(2)
	require.NoError(t, f.Enter())
	require.NoError(t, f.Enter())

	err := f.Enter()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDepthExceeded))
	require.Equal(t, 2, f.Depth())

	f.Leave()
	require.NoError(t, f.Enter())
}

func TestFlow_DepthGuardDisabled(t *testing.T) {
	t.Parallel()

	f := NewWithLimit(0)
	for i := 0; i < 5000; i++ {
		require.NoError(t, f.Enter())
	}
	require.Equal(t, 5000, f.Depth())
}

func TestFlow_WithReturnInheritsLimit(t *testing.T) {
	t.Parallel()

	f := NewWithLimit(1).WithReturn(func(cty.Value) {}, cty.NilType)
	require.True(t, f.HasReturn())
	require.False(t, f.ExpectsValue())
	require.NoError(t, f.Enter())
	require.ErrorIs(t, f.Enter(), ErrDepthExceeded)
}
