package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector(t *testing.T) {
	v := NewVector(3, []float64{1, 2, 3})
	w := v.Copy().Scale(2)
	assert.Equal(t, []float64{1, 2, 3}, v.Data())
	assert.Equal(t, []float64{2, 4, 6}, w.Data())
	assert.Equal(t, 28., v.Dot(w))
	assert.Equal(t, 6., v.Sum())
	assert.Equal(t, []float64{1, 4, 9}, v.Copy().POW(2).Data())
	assert.Panics(t, func() { NewVector(2, []float64{1}) })
}

func TestIndex(t *testing.T) {
	r := NewRange(2, 5)
	assert.Equal(t, Index{2, 3, 4, 5}, r)
	assert.Equal(t, Index{}, NewRange(3, 2))
	assert.Equal(t, Index{0, 1, 6}, r.Complement(7))
	assert.Equal(t, Index{2, 3, 4, 5, 9}, r.Append(Index{9}))
}
