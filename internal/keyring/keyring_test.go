package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDropsBlankEntries(t *testing.T) {
	t.Parallel()

	r := New([]string{" k1 ", "", "k2", "   "}, nil)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "k1", r.Current())
}

func TestAdvanceWrapsAround(t *testing.T) {
	t.Parallel()

	r := New([]string{"a", "b", "c"}, nil)
	assert.Equal(t, "a", r.Current())
	assert.Equal(t, 1, r.Position())

	assert.Equal(t, "b", r.Advance())
	assert.Equal(t, "c", r.Advance())
	assert.Equal(t, "a", r.Advance())
	assert.Equal(t, 1, r.Position())
	assert.Equal(t, "a", r.Current())
}

func TestAdvanceSingleKey(t *testing.T) {
	t.Parallel()

	r := New([]string{"only"}, nil)
	assert.Equal(t, "only", r.Advance())
	assert.Equal(t, "only", r.Current())
	assert.Equal(t, 1, r.Position())
}

func TestEmptyRing(t *testing.T) {
	t.Parallel()

	r := New(nil, nil)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "", r.Current())
	assert.Equal(t, "", r.Advance())
	assert.Equal(t, 1, r.Position())
}

func TestNotifyFiresOnEveryAdvance(t *testing.T) {
	t.Parallel()

	type move struct{ position, total int }
	var moves []move
	r := New([]string{"a", "b"}, func(position, total int) {
		moves = append(moves, move{position, total})
	})

	r.Advance()
	r.Advance()
	r.Advance()

	assert.Equal(t, []move{{2, 2}, {1, 2}, {2, 2}}, moves)
}

func TestNotifyNotFiredOnEmptyRing(t *testing.T) {
	t.Parallel()

	called := false
	r := New(nil, func(int, int) { called = true })
	r.Advance()
	assert.False(t, called)
}
