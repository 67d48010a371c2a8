package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineKm(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100 || d > 140 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestDistanceMZero(t *testing.T) {
	if d := DistanceM(48.8584, 2.2945, 48.8584, 2.2945); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestDistanceMPureLatitude(t *testing.T) {
	// Along a meridian the haversine reduces to R*dLat, so a latitude
	// offset of d/R radians is exactly d meters away.
	const meters = 150.0
	dLat := meters / 6371000.0 * 180 / math.Pi
	d := DistanceM(48.8584, 2.2945, 48.8584+dLat, 2.2945)
	if d < meters-0.01 || d > meters+0.01 {
		t.Fatalf("expected ~%v m, got %v", meters, d)
	}
}
