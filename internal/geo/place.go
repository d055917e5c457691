package geo

import "strings"

// Place is one geocoding candidate offered to the user for confirmation.
// The slice index of a candidate is its selection key for the lifetime of
// one clarification turn.
type Place struct {
	Label string
	Lat   float64
	Lon   float64
}

// address mirrors the address sub-object of the geocoding responses.
// Field priority for the label follows the normalized-city synonyms the
// service may return.
type address struct {
	City          string `json:"city"`
	CityDistrict  string `json:"city_district"`
	Locality      string `json:"locality"`
	Town          string `json:"town"`
	Borough       string `json:"borough"`
	Municipality  string `json:"municipality"`
	Village       string `json:"village"`
	Hamlet        string `json:"hamlet"`
	Quarter       string `json:"quarter"`
	Neighbourhood string `json:"neighbourhood"`
	State         string `json:"state"`
	Country       string `json:"country"`
	Name          string `json:"name"`
	Postcode      string `json:"postcode"`
}

// buildPlaceLabel assembles a display label from the prioritized address
// fields: city-level name, then state, then country, joined with ", ",
// plus a trailing " [postcode]" when present. A nil or empty address
// yields "".
func buildPlaceLabel(a *address) string {
	if a == nil {
		return ""
	}
	var parts []string
	citySubs := []string{
		a.City, a.CityDistrict, a.Locality, a.Town, a.Borough,
		a.Municipality, a.Village, a.Hamlet, a.Quarter, a.Neighbourhood,
	}
	for _, v := range citySubs {
		if v != "" {
			parts = append(parts, v)
			break
		}
	}
	if a.State != "" {
		parts = append(parts, a.State)
	}
	for _, v := range []string{a.Country, a.Name} {
		if v != "" {
			parts = append(parts, v)
			break
		}
	}
	label := strings.Join(parts, ", ")
	if label != "" && a.Postcode != "" {
		label += " [" + a.Postcode + "]"
	}
	return label
}
