package helpers

import "testing"

func TestParseLatLon(t *testing.T) {
	tests := []struct {
		input string
		lat   float64
		lon   float64
		ok    bool
	}{
		{"40.71, -74.00", 40.71, -74.00, true},
		{"40.71,-74.00", 40.71, -74.00, true},
		{"40.71; -74.00", 40.71, -74.00, true},
		{"40.71 -74.00", 40.71, -74.00, true},
		{"  -33.87 , 151.21  ", -33.87, 151.21, true},
		{"90, 180", 90, 180, true},
		{"-90, -180", -90, -180, true},
		{"91, 0", 0, 0, false},
		{"0, 181", 0, 0, false},
		{"springfield", 0, 0, false},
		{"40.71", 0, 0, false},
		{"", 0, 0, false},
		{"a, b", 0, 0, false},
	}

	for _, tt := range tests {
		lat, lon, ok := ParseLatLon(tt.input)
		if ok != tt.ok {
			t.Errorf("%q: ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && (lat != tt.lat || lon != tt.lon) {
			t.Errorf("%q: got (%v, %v), want (%v, %v)", tt.input, lat, lon, tt.lat, tt.lon)
		}
	}
}
