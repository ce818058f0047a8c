package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xodrun/internal/node"
)

func TestNewTable_AssignsBitsToDirtyableOutputsOnly(t *testing.T) {
	tbl, err := NewTable([]Shape{
		{Inputs: 0, Dirtyable: []bool{true, false, true}},
	})
	require.NoError(t, err)

	outs := tbl.Outputs(0)
	require.Len(t, outs, 3)
	assert.Equal(t, node.OutputBit(0), outs[0].Bit)
	assert.False(t, outs[1].Dirtyable)
	assert.Zero(t, outs[1].Bit)
	assert.Equal(t, node.OutputBit(1), outs[2].Bit)
}

func TestNewTable_RejectsTooManyDirtyableOutputs(t *testing.T) {
	dirtyable := make([]bool, node.MaxDirtyableOutputs+1)
	for i := range dirtyable {
		dirtyable[i] = true
	}

	_, err := NewTable([]Shape{{Dirtyable: dirtyable}})

	require.ErrorIs(t, err, ErrTooManyOutputs)
}

func TestLink(t *testing.T) {
	// --- Arrange ---
	tbl, err := NewTable([]Shape{
		{Dirtyable: []bool{true, false}},
		{Inputs: 2},
		{Inputs: 1},
	})
	require.NoError(t, err)

	// --- Act ---
	require.NoError(t, tbl.Link(PinRef{0, 0}, PinRef{1, 0}))
	require.NoError(t, tbl.Link(PinRef{0, 0}, PinRef{2, 0}))
	require.NoError(t, tbl.Link(PinRef{0, 1}, PinRef{1, 1}))

	// --- Assert ---
	assert.Equal(t, []PinRef{{1, 0}, {2, 0}}, tbl.Downstream(PinRef{0, 0}))
	assert.Equal(t, []PinRef{{1, 1}}, tbl.Downstream(PinRef{0, 1}))

	in := tbl.Inputs(1)
	assert.Equal(t, FromOutput, in[0].Kind)
	assert.True(t, in[0].Dirtyable)
	assert.Equal(t, node.OutputBit(0), in[0].Bit)
	assert.Equal(t, FromOutput, in[1].Kind)
	assert.False(t, in[1].Dirtyable)
}

func TestLink_Errors(t *testing.T) {
	tbl, err := NewTable([]Shape{
		{Dirtyable: []bool{true}},
		{Inputs: 1},
	})
	require.NoError(t, err)
	require.NoError(t, tbl.BindConstant(PinRef{1, 0}, 0))

	testCases := []struct {
		name     string
		from, to PinRef
		want     error
	}{
		{name: "bound input", from: PinRef{0, 0}, to: PinRef{1, 0}, want: ErrInputBound},
		{name: "missing output pin", from: PinRef{0, 3}, to: PinRef{1, 0}, want: ErrNoSuchPin},
		{name: "missing input node", from: PinRef{0, 0}, to: PinRef{5, 0}, want: ErrNoSuchPin},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tbl.Link(tc.from, tc.to)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFreeze(t *testing.T) {
	tbl, err := NewTable([]Shape{{Dirtyable: []bool{true}}, {Inputs: 1}})
	require.NoError(t, err)

	tbl.Freeze()

	assert.True(t, tbl.Frozen())
	assert.ErrorIs(t, tbl.Link(PinRef{0, 0}, PinRef{1, 0}), ErrFrozen)
	assert.ErrorIs(t, tbl.BindConstant(PinRef{1, 0}, 0), ErrFrozen)
}
