package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidSlug is returned for slugs that cannot address a post
var ErrInvalidSlug = errors.New("invalid slug")

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+(/[a-z0-9-]+)*$`)
	slugDisallowed = regexp.MustCompile(`[^a-z0-9/]+`)
	slugSlashes    = regexp.MustCompile(`/{2,}`)
)

// SanitizeSlug normalises user input into a slug. Input containing ".." is
// rejected. Runs of characters outside [a-z0-9/] collapse to one hyphen and
// every segment is trimmed of leading and trailing hyphens.
//
//	"My Cool Post!! 2024" -> "my-cool-post-2024"
func SanitizeSlug(input string) (string, error) {
	if strings.Contains(input, "..") {
		return "", ErrInvalidSlug
	}

	s := strings.ToLower(strings.TrimSpace(input))
	s = slugDisallowed.ReplaceAllString(s, "-")
	s = slugSlashes.ReplaceAllString(s, "/")

	segments := strings.Split(s, "/")
	kept := segments[:0]
	for _, seg := range segments {
		seg = strings.Trim(seg, "-")
		if seg != "" {
			kept = append(kept, seg)
		}
	}
	s = strings.Join(kept, "/")

	if s == "" {
		return "", ErrInvalidSlug
	}
	return s, nil
}

// ValidateSlug reports whether slug is already in canonical form
func ValidateSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// WithMonthPrefix puts a bare leaf name under yyyy/mm of now
func WithMonthPrefix(slug string, now time.Time) string {
	if slug == "" || strings.Contains(slug, "/") {
		return slug
	}
	return now.Format("2006/01") + "/" + slug
}
