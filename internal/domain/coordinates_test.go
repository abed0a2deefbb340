package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineIdentityAndSymmetry(t *testing.T) {
	mumbai := Coordinates{Lat: 19.0760, Lng: 72.8777}
	pune := Coordinates{Lat: 18.5204, Lng: 73.8567}

	assert.Equal(t, 0.0, Haversine(mumbai, mumbai))
	assert.InDelta(t, Haversine(mumbai, pune), Haversine(pune, mumbai), 1e-9)
	assert.Equal(t, Haversine(mumbai, pune), mumbai.DistanceKm(pune))
}

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinates
		want float64
	}{
		{
			name: "one degree of latitude",
			a:    Coordinates{Lat: 0, Lng: 0},
			b:    Coordinates{Lat: 1, Lng: 0},
			want: EarthRadiusKm * math.Pi / 180,
		},
		{
			name: "quarter of the equator",
			a:    Coordinates{Lat: 0, Lng: 0},
			b:    Coordinates{Lat: 0, Lng: 90},
			want: EarthRadiusKm * math.Pi / 2,
		},
		{
			name: "antipodal points",
			a:    Coordinates{Lat: 0, Lng: 0},
			b:    Coordinates{Lat: 0, Lng: 180},
			want: EarthRadiusKm * math.Pi,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Haversine(tt.a, tt.b), 1e-6)
		})
	}
}
