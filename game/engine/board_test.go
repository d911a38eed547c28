package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_Combinations(t *testing.T) {
	f := None.With(Object).With(Goal)
	assert.True(t, f.Has(Object))
	assert.True(t, f.Has(Goal))
	assert.True(t, f.Has(Object|Goal))
	assert.False(t, f.Has(Actor))
	assert.False(t, f.Has(None))

	f = f.Without(Object)
	assert.Equal(t, Goal, f)
}

func TestEncodeDecodeCell(t *testing.T) {
	tests := []struct {
		flags Flag
		glyph byte
	}{
		{None, ' '},
		{Object, 'o'},
		{Actor, 'p'},
		{Goal, '.'},
		{Object | Goal, 'O'},
		{Actor | Goal, 'P'},
	}

	for _, tt := range tests {
		t.Run(string(tt.glyph), func(t *testing.T) {
			assert.Equal(t, tt.glyph, EncodeCell(tt.flags))
			decoded, ok := DecodeCell(tt.glyph)
			require.True(t, ok)
			assert.Equal(t, tt.flags, decoded)
		})
	}

	f, ok := DecodeCell('-')
	assert.True(t, ok)
	assert.Equal(t, None, f)

	_, ok = DecodeCell('#')
	assert.False(t, ok)
}

func TestBoard_SetClearAndRows(t *testing.T) {
	b := NewBoard(3, 2)
	assert.Equal(t, 3, b.Width())
	assert.Equal(t, 2, b.Height())

	b.Set(Coordinate{0, 0}, Goal)
	b.Set(Coordinate{0, 0}, Object)
	b.Set(Coordinate{2, 1}, Actor)
	assert.Equal(t, []string{"O  ", "  p"}, b.Rows())
	assert.Equal(t, 1, b.Count(Goal))

	b.Clear(Coordinate{0, 0}, Object)
	assert.Equal(t, Goal, b.At(Coordinate{0, 0}))
}

func TestBoard_CloneIsIndependent(t *testing.T) {
	b := NewBoard(2, 1)
	clone := b.Clone()
	clone.Set(Coordinate{1, 0}, Object)
	assert.Equal(t, None, b.At(Coordinate{1, 0}))
	assert.Equal(t, Object, clone.At(Coordinate{1, 0}))
}

func TestBoard_AtPanicsOutOfBounds(t *testing.T) {
	b := NewBoard(2, 2)
	assert.Panics(t, func() { b.At(Coordinate{2, 0}) })
	assert.Panics(t, func() { b.Set(Coordinate{0, -1}, Object) })
}
