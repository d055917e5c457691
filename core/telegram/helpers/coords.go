package helpers

import (
	"strconv"
	"strings"
)

// ParseLatLon extracts a coordinate pair from free text such as
// "40.71, -74.00", "40.71; -74.00" or "40.71 -74.00". Only dot decimals
// are accepted; a decimal comma is ambiguous with the pair separator.
// It returns false when the text is not a plausible coordinate pair.
func ParseLatLon(input string) (float64, float64, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, 0, false
	}
	for _, sep := range []string{",", ";", " "} {
		parts := strings.SplitN(s, sep, 2)
		if len(parts) != 2 {
			continue
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return 0, 0, false
		}
		return lat, lon, true
	}
	return 0, 0, false
}
