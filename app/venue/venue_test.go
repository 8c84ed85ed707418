package venue

import (
	"slices"
	"strings"
	"testing"
)

func TestAreasFixedOrder(t *testing.T) {
	areas := Areas()
	expected := []Area{AreaChuyo, AreaToyo, AreaNanyo}
	if !slices.Equal(areas, expected) {
		t.Errorf("Expected areas %v, got %v", expected, areas)
	}

	// Mutating the returned slice must not leak into the table
	areas[0] = "changed"
	if Areas()[0] != AreaChuyo {
		t.Error("Areas returned a shared slice")
	}
}

func TestVenuesIn(t *testing.T) {
	tests := []struct {
		area     Area
		expected []string
	}{
		{AreaChuyo, []string{"Double-u Studio", "necco", "oto-doke", "SALONKITTY & KITTYHALL", "WStudioRED"}},
		{AreaToyo, []string{"JamSounds", "JEANDORE", "MusicBoxHACO"}},
		{AreaNanyo, []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.area), func(t *testing.T) {
			venues, err := VenuesIn(tt.area)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(venues, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, venues)
			}
		})
	}

	if _, err := VenuesIn("北予"); err == nil {
		t.Error("Expected error for unknown area")
	}
}

func TestAllVenuesSorted(t *testing.T) {
	venues := AllVenues()
	if len(venues) != 8 {
		t.Fatalf("Expected 8 venues, got %d", len(venues))
	}
	if venues[0] != "Double-u Studio" || venues[len(venues)-1] != "WStudioRED" {
		t.Errorf("Unexpected ordering: %v", venues)
	}
}

func TestAreaOf(t *testing.T) {
	area, ok := AreaOf("musicboxhaco")
	if !ok || area != AreaToyo {
		t.Errorf("Expected MusicBoxHACO in %s, got %s (%v)", AreaToyo, area, ok)
	}

	if _, ok := AreaOf("Unknown Hall"); ok {
		t.Error("Expected unknown venue to have no area")
	}
}

func TestParseArea(t *testing.T) {
	if area, err := ParseArea(" 東予 "); err != nil || area != AreaToyo {
		t.Errorf("Expected %s, got %s (%v)", AreaToyo, area, err)
	}
	if _, err := ParseArea("somewhere"); err == nil {
		t.Error("Expected error for unknown area")
	}
}

func TestDataSources(t *testing.T) {
	sources := DataSources()
	if len(sources) != 8 {
		t.Fatalf("Expected 8 data sources, got %d", len(sources))
	}

	for i := 1; i < len(sources); i++ {
		if strings.ToLower(sources[i-1].Venue) > strings.ToLower(sources[i].Venue) {
			t.Errorf("Data sources not sorted at %d: %s > %s", i, sources[i-1].Venue, sources[i].Venue)
		}
	}

	kinds := map[string]MethodKind{}
	for _, s := range sources {
		kinds[s.Venue] = s.Kind()
		if _, ok := AreaOf(s.Venue); !ok {
			t.Errorf("Data source venue %s has no area", s.Venue)
		}
	}

	if kinds["WStudioRED"] != MethodFeed {
		t.Errorf("Expected WStudioRED to be a feed source, got %s", kinds["WStudioRED"])
	}
	if kinds["JEANDORE"] != MethodScraping {
		t.Errorf("Expected JEANDORE to be a scraping source, got %s", kinds["JEANDORE"])
	}
	if kinds["Double-u Studio"] != MethodNone {
		t.Errorf("Expected Double-u Studio to have no method, got %s", kinds["Double-u Studio"])
	}
}

func TestReliabilityLevel(t *testing.T) {
	tests := map[string]string{
		"Very High": "very-high",
		"High":      "high",
		"Medium":    "medium",
		"":          "unknown",
	}
	for input, expected := range tests {
		if got := (DataSource{Reliability: input}).ReliabilityLevel(); got != expected {
			t.Errorf("ReliabilityLevel(%q) = %s, expected %s", input, got, expected)
		}
	}
}

func TestExtractionRules(t *testing.T) {
	if len(ExtractionRules()) != 5 {
		t.Errorf("Expected 5 extraction rules, got %d", len(ExtractionRules()))
	}
}
