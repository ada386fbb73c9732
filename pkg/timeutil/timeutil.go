// Package timeutil handles the wall-clock timestamp strings stored in post
// headers. Stored values carry no zone; they are read and written in one
// fixed location.
package timeutil

import (
	"regexp"
	"strings"
	"time"
)

// Layout is the stored timestamp format
const Layout = "2006-01-02 15:04:05"

// DefaultZone is used when no zone is configured
const DefaultZone = "Asia/Shanghai"

// Epoch is returned for missing or unparseable timestamps so they sort last
var Epoch = time.Unix(0, 0).UTC()

var zoneSuffix = regexp.MustCompile(`(Z|z|[+-]\d{2}:?\d{2})$`)

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05 -0700",
}

var localLayouts = []string{
	Layout,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadLocation resolves a zone name, falling back to a fixed UTC+8 zone
// when the tz database is unavailable.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultZone {
			return time.FixedZone("CST", 8*60*60), nil
		}
		return nil, err
	}
	return loc, nil
}

// Parse reads a stored timestamp. It accepts ISO-8601 with an explicit
// offset, "YYYY-MM-DD HH:mm:ss" and "YYYY-MM-DDTHH:mm:ss" in loc, and a bare
// "YYYY-MM-DD" as midnight in loc. Anything else yields Epoch.
func Parse(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return Epoch
	}
	if loc == nil {
		loc = time.UTC
	}

	if zoneSuffix.MatchString(s) {
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return Epoch
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return Epoch
}

// Format renders t in loc using Layout
func Format(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(Layout)
}

// Stringify converts a decoded header value into its stored string form.
// YAML decoders may hand back time.Time for unquoted timestamps.
func Stringify(v any, loc *time.Location) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(tv)
	case time.Time:
		if tv.IsZero() {
			return ""
		}
		return Format(tv, loc)
	case *time.Time:
		if tv == nil || tv.IsZero() {
			return ""
		}
		return Format(*tv, loc)
	default:
		return ""
	}
}

// IsEpoch reports whether t is the sentinel for an unknown time
func IsEpoch(t time.Time) bool {
	return t.Equal(Epoch)
}
