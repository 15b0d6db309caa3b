package domain

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const metersPerMile = 1609.344

// MetersToMiles переводит метры в мили с округлением до сотых
func MetersToMiles(m float64) float64 {
	return math.Round(m/metersPerMile*100) / 100
}

// StateNeighbors сухопутные соседи штатов, у AK/HI/PR их нет
var StateNeighbors = map[string][]string{
	"AL": {"TN", "GA", "FL", "MS"},
	"AK": {},
	"AZ": {"CA", "NV", "UT", "CO", "NM"},
	"AR": {"MO", "TN", "MS", "LA", "TX", "OK"},
	"CA": {"OR", "NV", "AZ"},
	"CO": {"WY", "NE", "KS", "OK", "NM", "AZ", "UT"},
	"CT": {"NY", "MA", "RI"},
	"DE": {"MD", "PA", "NJ"},
	"FL": {"AL", "GA"},
	"GA": {"FL", "AL", "TN", "NC", "SC"},
	"HI": {},
	"ID": {"WA", "MT", "WY", "UT", "NV", "OR"},
	"IL": {"WI", "IA", "MO", "KY", "IN"},
	"IN": {"MI", "OH", "KY", "IL"},
	"IA": {"MN", "SD", "NE", "MO", "IL", "WI"},
	"KS": {"NE", "MO", "OK", "CO"},
	"KY": {"IL", "IN", "OH", "WV", "VA", "TN", "MO"},
	"LA": {"TX", "AR", "MS"},
	"ME": {"NH"},
	"MD": {"VA", "WV", "PA", "DE"},
	"MA": {"NY", "VT", "NH", "CT", "RI"},
	"MI": {"OH", "IN", "WI"},
	"MN": {"ND", "SD", "IA", "WI"},
	"MS": {"TN", "AL", "LA", "AR"},
	"MO": {"IA", "IL", "KY", "TN", "AR", "OK", "KS", "NE"},
	"MT": {"ND", "SD", "WY", "ID"},
	"NE": {"SD", "IA", "MO", "KS", "CO", "WY"},
	"NV": {"OR", "ID", "UT", "AZ", "CA"},
	"NH": {"ME", "VT", "MA"},
	"NJ": {"NY", "PA", "DE"},
	"NM": {"AZ", "UT", "CO", "OK", "TX"},
	"NY": {"PA", "NJ", "CT", "MA", "VT"},
	"NC": {"VA", "TN", "GA", "SC"},
	"ND": {"MT", "SD", "MN"},
	"OH": {"MI", "PA", "WV", "KY", "IN"},
	"OK": {"CO", "KS", "MO", "AR", "TX", "NM"},
	"OR": {"WA", "ID", "NV", "CA"},
	"PA": {"NY", "NJ", "DE", "MD", "WV", "OH"},
	"RI": {"CT", "MA"},
	"SC": {"NC", "GA"},
	"SD": {"ND", "MT", "WY", "NE", "IA", "MN"},
	"TN": {"KY", "VA", "NC", "GA", "AL", "MS", "AR", "MO"},
	"TX": {"NM", "OK", "AR", "LA"},
	"UT": {"ID", "WY", "CO", "NM", "AZ", "NV"},
	"VT": {"NY", "NH", "MA"},
	"VA": {"NC", "TN", "KY", "WV", "MD"},
	"WA": {"OR", "ID"},
	"WV": {"OH", "PA", "MD", "VA", "KY"},
	"WI": {"MN", "IA", "IL", "MI"},
	"WY": {"MT", "SD", "NE", "CO", "UT", "ID"},
	"PR": {},
}

var stateNameToCode = map[string]string{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR", "California": "CA", "Colorado": "CO",
	"Connecticut": "CT", "Delaware": "DE", "District Of Columbia": "DC", "Florida": "FL", "Georgia": "GA",
	"Hawaii": "HI", "Idaho": "ID", "Illinois": "IL", "Indiana": "IN", "Iowa": "IA", "Kansas": "KS",
	"Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD", "Massachusetts": "MA",
	"Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS", "Missouri": "MO", "Montana": "MT",
	"Nebraska": "NE", "Nevada": "NV", "New Hampshire": "NH", "New Jersey": "NJ", "New Mexico": "NM",
	"New York": "NY", "North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH", "Oklahoma": "OK",
	"Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC", "South Dakota": "SD",
	"Tennessee": "TN", "Texas": "TX", "Utah": "UT", "Vermont": "VT", "Virginia": "VA", "Washington": "WA",
	"West Virginia": "WV", "Wisconsin": "WI", "Wyoming": "WY", "Puerto Rico": "PR",
}

var stateCodes = func() map[string]bool {
	m := make(map[string]bool, len(stateNameToCode))
	for _, code := range stateNameToCode {
		m[code] = true
	}
	return m
}()

// NormalizeStateCode принимает код или полное название штата, "" если не распознан
func NormalizeStateCode(raw string) string {
	v := strings.Join(strings.Fields(raw), " ")
	if v == "" {
		return ""
	}
	if up := strings.ToUpper(v); len(up) == 2 && stateCodes[up] {
		return up
	}
	return stateNameToCode[cases.Title(language.English).String(strings.ToLower(v))]
}
