package elections

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^0-9a-z]+`)

// NormalizeName lowercases `s` and turns every run of characters other than
// ascii letters and digits into a single underscore, it is used for filenames.
func NormalizeName(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}

// Slugify lowercases `s` and joins its alphanumeric runs with dashes, it is the
// identifier contests and candidates are deduplicated by.
func Slugify(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
