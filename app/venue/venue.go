package venue

import (
	"fmt"
	"slices"
	"strings"
)

type Area string

const (
	AreaChuyo Area = "中予"
	AreaToyo  Area = "東予"
	AreaNanyo Area = "南予"
)

// areaVenues is the fixed area grouping. Nanyo has no covered venues yet.
var areaVenues = map[Area][]string{
	AreaChuyo: {"Double-u Studio", "necco", "oto-doke", "SALONKITTY & KITTYHALL", "WStudioRED"},
	AreaToyo:  {"JEANDORE", "JamSounds", "MusicBoxHACO"},
	AreaNanyo: {},
}

var areaOrder = []Area{AreaChuyo, AreaToyo, AreaNanyo}

func Areas() []Area {
	return slices.Clone(areaOrder)
}

func ParseArea(s string) (Area, error) {
	area := Area(strings.TrimSpace(s))
	if _, ok := areaVenues[area]; !ok {
		return "", fmt.Errorf("unknown area '%s'", s)
	}
	return area, nil
}

// VenuesIn returns the venues of an area sorted A to Z.
func VenuesIn(area Area) ([]string, error) {
	venues, ok := areaVenues[area]
	if !ok {
		return nil, fmt.Errorf("unknown area '%s'", area)
	}
	return sortVenues(slices.Clone(venues)), nil
}

func AllVenues() []string {
	var venues []string
	for _, area := range areaOrder {
		venues = append(venues, areaVenues[area]...)
	}
	return sortVenues(venues)
}

// AreaOf reports the area a venue belongs to.
func AreaOf(name string) (Area, bool) {
	for _, area := range areaOrder {
		for _, v := range areaVenues[area] {
			if strings.EqualFold(v, name) {
				return area, true
			}
		}
	}
	return "", false
}

func IsKnown(name string) bool {
	_, ok := AreaOf(name)
	return ok
}

func sortVenues(venues []string) []string {
	slices.SortFunc(venues, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return venues
}
