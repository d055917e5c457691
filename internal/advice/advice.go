// Package advice derives outerwear recommendations and hazard warnings
// from a current-weather reading. Everything here is pure and
// deterministic given the reading.
package advice

import (
	"fmt"
	"strings"

	"weatherbot/internal/weather"
)

// dangerousCodes are condition codes treated as hazardous on their own:
// heavy thunderstorm, extreme rain, freezing rain and tornado.
var dangerousCodes = map[int]struct{}{
	212: {},
	504: {},
	511: {},
	781: {},
}

const (
	dangerousWindMPS = 30.0
	dangerousColdC   = -40.0
	dangerousHeatC   = 50.0
	uvWarningAbove   = 3.0
)

// clothing brackets, ascending, with exclusive upper bounds on the
// feels-like temperature. A feels-like exactly at a bound falls into the
// next bracket up.
type bracket struct {
	belowC float64
	wear   string
}

var clothingTable = []bracket{
	{-15, "an extra thick insulated coat"},
	{5, "a thick winter coat or a puffer"},
	{13, "a coat or a jacket with a sweater"},
	{21, "a light jacket or a sweater"},
	{30, "light clothes"},
}

const clothingAboveAll = "extra light clothes"

const (
	uvWarning = "The UV index is high right now. " +
		"Put on some sunscreen if you are going outside."
	rainWarning = "It is raining there at the moment, " +
		"so take an umbrella or a raincoat with you."
	dangerWarning = "The weather looks dangerous right now. " +
		"Better stay inside unless you absolutely have to go out."
)

// Outerwear composes the advice message for a reading: a clothing
// recommendation from the feels-like temperature, then warning blocks in
// fixed order (UV, rain, danger).
func Outerwear(r weather.Reading) string {
	raining, snowing, dangerous := classifyConditions(r.ConditionCodes)
	_ = snowing // tracked but does not alter the message

	if r.WindSpeedMPS > dangerousWindMPS {
		dangerous = true
	}
	if r.FeelsLikeC <= dangerousColdC || r.FeelsLikeC >= dangerousHeatC {
		dangerous = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "My advice is to wear %s.", clothingFor(r.FeelsLikeC))
	if r.UVIndex > uvWarningAbove {
		b.WriteString("\n\n")
		b.WriteString(uvWarning)
	}
	if raining {
		b.WriteString("\n\n")
		b.WriteString(rainWarning)
	}
	if dangerous {
		b.WriteString("\n\n")
		b.WriteString(dangerWarning)
	}
	return b.String()
}

// classifyConditions flags rain, snow and inherently dangerous weather
// from the condition codes. Groups: 2xx thunderstorm, 3xx drizzle (heavy
// variants above 301 count as rain), 5xx rain, 6xx snow.
func classifyConditions(codes []int) (raining, snowing, dangerous bool) {
	for _, code := range codes {
		group := code / 100
		if group == 2 || group == 5 || (group == 3 && code > 301) {
			raining = true
		}
		if group == 6 {
			snowing = true
		}
		if _, ok := dangerousCodes[code]; ok {
			dangerous = true
		}
	}
	return raining, snowing, dangerous
}

func clothingFor(feelsLikeC float64) string {
	for _, br := range clothingTable {
		if feelsLikeC < br.belowC {
			return br.wear
		}
	}
	return clothingAboveAll
}
