package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsOf(t *testing.T) {
	_, ok := BoundsOf(nil)
	assert.False(t, ok)

	box, ok := BoundsOf([]GeoPoint{
		{Lat: 18.52, Lon: 73.86},
		{Lat: 18.50, Lon: 73.90},
		{Lat: 18.55, Lon: 73.85},
	})
	assert.True(t, ok)
	assert.Equal(t, GeoPoint{Lat: 18.50, Lon: 73.85}, box.BottomLeft)
	assert.Equal(t, GeoPoint{Lat: 18.55, Lon: 73.90}, box.TopRight)

	assert.True(t, box.Contains(GeoPoint{Lat: 18.52, Lon: 73.86}))
	assert.True(t, box.Contains(box.TopRight))
	assert.False(t, box.Contains(GeoPoint{Lat: 18.60, Lon: 73.86}))
}
