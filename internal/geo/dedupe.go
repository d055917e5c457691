package geo

// duplicateMaxSqrDistance is the same-place heuristic in raw lat/lon
// degree space (degrees squared, not geodesic). Intentionally coarse:
// points about 1.4 degrees apart collapse into one candidate.
const duplicateMaxSqrDistance = 2.0

func sqrDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return dLat*dLat + dLon*dLon
}

// Dedupe removes candidates that are closer than the squared-distance
// threshold to an already kept candidate. First seen wins and input order
// is preserved, so the result is stable and deduplicating twice is a
// no-op. O(n²) with n capped at the search limit.
func Dedupe(places []Place) []Place {
	kept := make([]Place, 0, len(places))
	for _, p := range places {
		duplicate := false
		for _, k := range kept {
			if sqrDistance(p.Lat, p.Lon, k.Lat, k.Lon) < duplicateMaxSqrDistance {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, p)
		}
	}
	return kept
}
