package constants

import "strings"

// Region is a two-letter administrative region code (US state or territory).
type Region string

// regions holds the accepted region codes for direct submissions.
// The PDF extractor is intentionally not filtered by this set.
var regions = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {},
	"IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {}, "MA": {},
	"MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {},
	"NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {},
	"OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {}, "TN": {},
	"TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {},
	"WY": {}, "DC": {}, "PR": {},
}

// IsRegion reports whether code is a known region code.
func IsRegion(code string) bool {
	_, ok := regions[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// NormalizeRegion uppercases and trims a region code, returning ok=false
// when the result is not in the accepted set.
func NormalizeRegion(code string) (Region, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := regions[c]; !ok {
		return "", false
	}
	return Region(c), true
}
