package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPoint struct {
	id  string
	lat float64
	lon float64
}

func (p testPoint) Coordinates() (latitude, longitude float64) {
	return p.lat, p.lon
}

func TestHaversineKm(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, HaversineKm(17.41, 78.48, 17.41, 78.48))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := HaversineKm(17.4100, 78.4800, 17.4500, 78.5200)
		d2 := HaversineKm(17.4500, 78.5200, 17.4100, 78.4800)
		assert.Equal(t, d1, d2)
	})

	t.Run("nearby points round to 2 decimal places", func(t *testing.T) {
		d := HaversineKm(17.4100, 78.4800, 17.4105, 78.4790)
		assert.InDelta(t, 0.12, d, 0.05)
		assert.Equal(t, d, float64(int(d*100))/100)
	})

	t.Run("known city distance", func(t *testing.T) {
		// Hyderabad to Bangalore, roughly 500 km great circle
		d := HaversineKm(17.3850, 78.4867, 12.9716, 77.5946)
		assert.InDelta(t, 500, d, 10)
	})
}

func TestEstimateTravelMinutes(t *testing.T) {
	t.Run("rounds up to the next minute", func(t *testing.T) {
		// 1 km at 40 km/h is 1.5 minutes
		assert.Equal(t, 2, EstimateTravelMinutes(1))
	})

	t.Run("zero distance is zero minutes", func(t *testing.T) {
		assert.Equal(t, 0, EstimateTravelMinutes(0))
	})

	t.Run("ten km in city traffic", func(t *testing.T) {
		assert.Equal(t, 15, EstimateTravelMinutes(10))
	})
}

func TestRankByDistance(t *testing.T) {
	origin := Coordinate{Latitude: 17.4100, Longitude: 78.4800}

	t.Run("sorts ascending by distance", func(t *testing.T) {
		candidates := []testPoint{
			{id: "far", lat: 17.5000, lon: 78.5800},
			{id: "near", lat: 17.4110, lon: 78.4810},
			{id: "mid", lat: 17.4400, lon: 78.5100},
		}

		ranked := RankByDistance(origin, candidates, 50)
		require.Len(t, ranked, 3)
		assert.Equal(t, "near", ranked[0].Item.id)
		assert.Equal(t, "mid", ranked[1].Item.id)
		assert.Equal(t, "far", ranked[2].Item.id)
		assert.LessOrEqual(t, ranked[0].Distance, ranked[1].Distance)
		assert.LessOrEqual(t, ranked[1].Distance, ranked[2].Distance)
	})

	t.Run("excludes candidates beyond the radius", func(t *testing.T) {
		candidates := []testPoint{
			{id: "inside", lat: 17.4150, lon: 78.4850},
			{id: "outside", lat: 18.5000, lon: 79.5000},
		}

		ranked := RankByDistance(origin, candidates, 10)
		require.Len(t, ranked, 1)
		assert.Equal(t, "inside", ranked[0].Item.id)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		ranked := RankByDistance(origin, []testPoint{}, 10)
		assert.Empty(t, ranked)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		candidates := []testPoint{
			{id: "first", lat: 17.4200, lon: 78.4800},
			{id: "second", lat: 17.4200, lon: 78.4800},
		}

		ranked := RankByDistance(origin, candidates, 10)
		require.Len(t, ranked, 2)
		assert.Equal(t, "first", ranked[0].Item.id)
		assert.Equal(t, "second", ranked[1].Item.id)
	})
}

func TestIsValidCoordinate(t *testing.T) {
	assert.True(t, IsValidCoordinate(17.41, 78.48))
	assert.True(t, IsValidCoordinate(-90, -180))
	assert.True(t, IsValidCoordinate(90, 180))
	assert.False(t, IsValidCoordinate(91, 0))
	assert.False(t, IsValidCoordinate(0, 181))
	assert.False(t, IsValidCoordinate(-91, 0))
}
