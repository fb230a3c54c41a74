package players

import (
	"regexp"
	"strings"
)

var (
	suffixRe   = regexp.MustCompile(`(?i)\s(jr|sr|[ivx]+)\.?$`)
	nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Normalize turns a player name into its reference-table lookup key:
// generational suffixes are dropped, punctuation removed and the result lowercased.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.TrimSpace(suffixRe.ReplaceAllString(name, ""))
	name = nonAlnumRe.ReplaceAllString(name, "")
	name = spaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
	return strings.ToLower(name)
}
