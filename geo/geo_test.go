package geo

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/agroapi/agro"
)

// roughly 1.6 km x 1.2 km around Modesto, CA
var field = agro.Geometry{
	Type: "Polygon",
	Coordinates: [][][]float64{{
		{-121.1958, 37.6683},
		{-121.1779, 37.6683},
		{-121.1779, 37.6792},
		{-121.1958, 37.6792},
		{-121.1958, 37.6683},
	}},
}

func TestBounds(t *testing.T) {
	b, err := Bounds(field)
	require.NoError(t, err)
	assert.Equal(t, BBox{MinLon: -121.1958, MinLat: 37.6683, MaxLon: -121.1779, MaxLat: 37.6792}, b)
	assert.Equal(t, []float64{-121.1958, 37.6683, -121.1779, 37.6792}, b.Slice())

	_, err = Bounds(agro.Geometry{Type: "Polygon"})
	assert.ErrorIs(t, err, agro.ErrInvalidPolygon)
}

func TestCells(t *testing.T) {
	cells, err := Cells(field, 9)
	require.NoError(t, err)
	require.NotEmpty(t, cells)
	assert.True(t, sort.StringsAreSorted(cells))

	seen := make(map[string]bool, len(cells))
	for _, c := range cells {
		assert.False(t, seen[c], "duplicate cell %s", c)
		seen[c] = true
	}

	finer, err := Cells(field, 10)
	require.NoError(t, err)
	assert.Greater(t, len(finer), len(cells))
}

func TestCellsErrors(t *testing.T) {
	_, err := Cells(field, 16)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = Cells(field, -1)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	open := agro.Geometry{Type: "Polygon", Coordinates: [][][]float64{{{0, 0}, {1, 0}, {1, 1}}}}
	_, err = Cells(open, 5)
	assert.ErrorIs(t, err, agro.ErrInvalidPolygon)
}

func TestCenterCell(t *testing.T) {
	cell, err := CenterCell([]float64{-121.1867, 37.67356}, 9)
	require.NoError(t, err)
	assert.Len(t, cell, 15)

	again, err := CenterCell([]float64{-121.1867, 37.67356}, 9)
	require.NoError(t, err)
	assert.Equal(t, cell, again)

	_, err = CenterCell([]float64{1}, 9)
	assert.Error(t, err)

	_, err = CenterCell([]float64{1, 2}, 20)
	assert.ErrorIs(t, err, ErrInvalidResolution)
}
