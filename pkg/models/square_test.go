package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquare_Validate(t *testing.T) {
	assert.NoError(t, Square{LatMin: 1, LonMin: 1, LatMax: 1, LonMax: 1}.Validate())
	assert.NoError(t, Square{LatMin: -10, LonMin: -10, LatMax: 10, LonMax: 10}.Validate())
	assert.Error(t, Square{LatMin: 2, LonMin: 0, LatMax: 1, LonMax: 1}.Validate())
	assert.Error(t, Square{LatMin: 0, LonMin: 2, LatMax: 1, LonMax: 1}.Validate())
}

func TestSquare_ContainsEdges(t *testing.T) {
	square := Square{LatMin: 55, LonMin: 37, LatMax: 56, LonMax: 38}

	assert.True(t, square.Contains(55, 37))
	assert.True(t, square.Contains(56, 38))
	assert.True(t, square.Contains(55.5, 37.5))
	assert.False(t, square.Contains(54.999, 37.5))
	assert.False(t, square.Contains(55.5, 38.001))
}
