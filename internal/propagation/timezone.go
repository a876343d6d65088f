package propagation

import (
	"strings"
	"time"
)

// Timezone is a supported display timezone for propagation reports.
type Timezone struct {
	Token string
	Loc   *time.Location
}

// Fixed-offset zones for the supported abbreviation set. Abbreviations are
// ambiguous in the IANA database, so each token pins one offset.
var zones = map[string]*time.Location{
	"EST":  time.FixedZone("EST", -5*3600),
	"EDT":  time.FixedZone("EDT", -4*3600),
	"CST":  time.FixedZone("CST", -6*3600),
	"CDT":  time.FixedZone("CDT", -5*3600),
	"MST":  time.FixedZone("MST", -7*3600),
	"MDT":  time.FixedZone("MDT", -6*3600),
	"PST":  time.FixedZone("PST", -8*3600),
	"PDT":  time.FixedZone("PDT", -7*3600),
	"AKST": time.FixedZone("AKST", -9*3600),
	"AKDT": time.FixedZone("AKDT", -8*3600),
	"HST":  time.FixedZone("HST", -10*3600),
	"AST":  time.FixedZone("AST", -4*3600),
	"CHST": time.FixedZone("ChST", 10*3600),
	"GST":  time.FixedZone("GST", 10*3600),
	"UTC":  time.UTC,
	"GMT":  time.FixedZone("GMT", 0),
}

// canonical token spellings keyed by their upper-cased form.
var tokens = map[string]string{
	"EST": "EST", "EDT": "EDT", "CST": "CST", "CDT": "CDT",
	"MST": "MST", "MDT": "MDT", "PST": "PST", "PDT": "PDT",
	"AKST": "AKST", "AKDT": "AKDT", "HST": "HST", "AST": "AST",
	"CHST": "ChST", "GST": "GST", "UTC": "UTC", "GMT": "GMT",
}

// ParseTimezone resolves a timezone token, case-insensitively.
func ParseTimezone(token string) (Timezone, bool) {
	upper := strings.ToUpper(strings.TrimSpace(token))
	loc, ok := zones[upper]
	if !ok {
		return Timezone{}, false
	}
	return Timezone{Token: tokens[upper], Loc: loc}, true
}

// SupportedTokens lists the accepted timezone tokens in display order.
func SupportedTokens() []string {
	return []string{
		"EST", "EDT", "CST", "CDT", "MST", "MDT", "PST", "PDT",
		"AKST", "AKDT", "HST", "AST", "ChST", "GST", "UTC", "GMT",
	}
}

// Eastern and Pacific back the legacy hampuffe/hampuffp tokens. They track
// civil time where the tz database is available and fall back to standard
// offsets where it is not.
func Eastern() Timezone { return legacyZone("Eastern", "America/New_York", "EST") }

func Pacific() Timezone { return legacyZone("Pacific", "America/Los_Angeles", "PST") }

func legacyZone(name, iana, fallback string) Timezone {
	if loc, err := time.LoadLocation(iana); err == nil {
		return Timezone{Token: name, Loc: loc}
	}
	tz, _ := ParseTimezone(fallback)
	tz.Token = name
	return tz
}
