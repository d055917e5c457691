package advice

import (
	"strings"
	"testing"

	"weatherbot/internal/weather"
)

func TestClothingBrackets(t *testing.T) {
	tests := []struct {
		feelsLike float64
		want      string
	}{
		{-40, "an extra thick insulated coat"},
		{-15.01, "an extra thick insulated coat"},
		{-15, "a thick winter coat or a puffer"},
		{4.99, "a thick winter coat or a puffer"},
		{5, "a coat or a jacket with a sweater"},
		{12.99, "a coat or a jacket with a sweater"},
		{13, "a light jacket or a sweater"},
		{21, "light clothes"},
		{29.99, "light clothes"},
		{30, "extra light clothes"},
		{45, "extra light clothes"},
	}

	for _, tt := range tests {
		got := Outerwear(weather.Reading{FeelsLikeC: tt.feelsLike})
		want := "My advice is to wear " + tt.want + "."
		if !strings.HasPrefix(got, want) {
			t.Errorf("feels-like %.2f: got %q, want prefix %q", tt.feelsLike, got, want)
		}
	}
}

func TestWarningOrder(t *testing.T) {
	// Heavy thunderstorm: raining and dangerous, plus a high UV index.
	got := Outerwear(weather.Reading{
		ConditionCodes: []int{212},
		FeelsLikeC:     10,
		UVIndex:        5,
	})

	blocks := strings.Split(got, "\n\n")
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d: %q", len(blocks), got)
	}
	if blocks[1] != uvWarning {
		t.Errorf("block 1: got %q", blocks[1])
	}
	if blocks[2] != rainWarning {
		t.Errorf("block 2: got %q", blocks[2])
	}
	if blocks[3] != dangerWarning {
		t.Errorf("block 3: got %q", blocks[3])
	}
}

func TestRainClassification(t *testing.T) {
	tests := []struct {
		name  string
		codes []int
		rain  bool
	}{
		{"thunderstorm", []int{200}, true},
		{"light drizzle", []int{300}, false},
		{"drizzle boundary", []int{301}, false},
		{"heavy drizzle", []int{302}, true},
		{"rain", []int{500}, true},
		{"snow", []int{600}, false},
		{"clear", []int{800}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Outerwear(weather.Reading{ConditionCodes: tt.codes, FeelsLikeC: 10})
			if gotRain := strings.Contains(got, rainWarning); gotRain != tt.rain {
				t.Fatalf("rain warning = %v, want %v (%q)", gotRain, tt.rain, got)
			}
		})
	}
}

func TestDangerTriggers(t *testing.T) {
	tests := []struct {
		name    string
		reading weather.Reading
		danger  bool
	}{
		{"freezing rain", weather.Reading{ConditionCodes: []int{511}, FeelsLikeC: 0}, true},
		{"tornado", weather.Reading{ConditionCodes: []int{781}, FeelsLikeC: 20}, true},
		{"storm wind", weather.Reading{FeelsLikeC: 20, WindSpeedMPS: 30.5}, true},
		{"wind at threshold", weather.Reading{FeelsLikeC: 20, WindSpeedMPS: 30}, false},
		{"extreme cold", weather.Reading{FeelsLikeC: -40}, true},
		{"extreme heat", weather.Reading{FeelsLikeC: 50}, true},
		{"mild", weather.Reading{ConditionCodes: []int{800}, FeelsLikeC: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Outerwear(tt.reading)
			if gotDanger := strings.Contains(got, dangerWarning); gotDanger != tt.danger {
				t.Fatalf("danger warning = %v, want %v (%q)", gotDanger, tt.danger, got)
			}
		})
	}
}

func TestUVThresholdIsExclusive(t *testing.T) {
	at := Outerwear(weather.Reading{FeelsLikeC: 20, UVIndex: 3})
	if strings.Contains(at, uvWarning) {
		t.Fatalf("UV index 3 must not warn: %q", at)
	}
	above := Outerwear(weather.Reading{FeelsLikeC: 20, UVIndex: 3.1})
	if !strings.Contains(above, uvWarning) {
		t.Fatalf("UV index 3.1 must warn: %q", above)
	}
}

func TestSnowAloneAddsNoWarning(t *testing.T) {
	got := Outerwear(weather.Reading{ConditionCodes: []int{602}, FeelsLikeC: -5})
	if strings.Contains(got, "\n\n") {
		t.Fatalf("snow alone must not add warnings: %q", got)
	}
}
