package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	MaxSize int
}

func TestWorld_InsertGetRemove(t *testing.T) {
	w := New()

	_, ok := Get[settings](w)
	assert.False(t, ok)
	assert.False(t, Has[settings](w))

	Insert(w, settings{MaxSize: 1024})
	Insert(w, &settings{MaxSize: 7})

	v, ok := Get[settings](w)
	require.True(t, ok)
	assert.Equal(t, 1024, v.MaxSize)

	p := MustGet[*settings](w)
	assert.Equal(t, 7, p.MaxSize)
	assert.Equal(t, 2, w.Len())

	Insert(w, settings{MaxSize: 2048})
	assert.Equal(t, 2048, MustGet[settings](w).MaxSize)

	removed, ok := Remove[settings](w)
	require.True(t, ok)
	assert.Equal(t, 2048, removed.MaxSize)
	assert.False(t, Has[settings](w))
	assert.Equal(t, 1, w.Len())
}

func TestWorld_GetOr(t *testing.T) {
	w := New()
	assert.Equal(t, settings{MaxSize: 1}, GetOr(w, settings{MaxSize: 1}))

	var nilWorld *World
	assert.Equal(t, 3, GetOr(nilWorld, 3))
}

func TestWorld_MustGetPanics(t *testing.T) {
	w := New()
	assert.Panics(t, func() { MustGet[settings](w) })
}
