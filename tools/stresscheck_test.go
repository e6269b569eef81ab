package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CK6170/Sammon-go/matrix"
	"github.com/CK6170/Sammon-go/sammon"
)

func TestCheck_ExactEmbedding(t *testing.T) {
	x := matrix.FromRows([][]float64{{0, 0}, {3, 0}, {0, 4}})
	D, err := sammon.Distances(x, sammon.InputRaw)
	require.NoError(t, err)

	r := check(D, D.Clone())
	assert.Zero(t, r.stress)
	assert.Zero(t, r.maxErr)
	assert.Zero(t, r.meanErr)
	assert.Equal(t, []float64{0, 0, 0}, r.perPoint.Values)
}

func TestCheck_ReportsWorstPair(t *testing.T) {
	D := matrix.FromRows([][]float64{{0, 3, 4}, {3, 0, 5}, {4, 5, 0}})
	d := matrix.FromRows([][]float64{{0, 3, 4}, {3, 0, 7}, {4, 7, 0}})

	r := check(D, d)
	assert.Equal(t, 2.0, r.maxErr)
	assert.Equal(t, 1, r.maxI)
	assert.Equal(t, 2, r.maxJ)
	assert.InDelta(t, 2.0/3, r.meanErr, 1e-12)
	// points 1 and 2 each carry the 2.0 error over two neighbours
	assert.Equal(t, []float64{0, 1, 1}, r.perPoint.Values)
	assert.Equal(t, 1, r.worstPoint)
	assert.Equal(t, 1.0, r.worstPointErr)
	// (5-7)^2/5 over both triangles, scaled by 0.5/24
	assert.InDelta(t, 2*(4.0/5)*0.5/24, r.stress, 1e-12)
}
