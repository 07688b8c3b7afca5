// Package title parses and normalizes media titles from file and folder names.
package title

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// yearRegex matches a bracketed or trailing release year, e.g. "(1951)".
var yearRegex = regexp.MustCompile(`\(((?:19|20)\d{2})\)`)

// episodeRegex matches SxxEyy episode markers, case-insensitive.
var episodeRegex = regexp.MustCompile(`(?i)\bS(\d{1,2})[\s._-]*E(\d{1,3})\b`)

// seasonDirRegex matches season folder names like "Season 01" or "season 1".
var seasonDirRegex = regexp.MustCompile(`(?i)^season[\s._-]*(\d{1,3})$`)

// ParseName extracts a search title and year from a file or folder name.
// A "(YYYY)" pattern is stripped from the title and returned separately;
// the year defaults to 0 when absent. The extension is removed for files.
func ParseName(name string) (string, int) {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	year := 0
	if m := yearRegex.FindStringSubmatch(base); m != nil {
		year, _ = strconv.Atoi(m[1])
		base = yearRegex.ReplaceAllString(base, "")
	}

	return strings.Join(strings.Fields(base), " "), year
}

// ParseEpisode extracts season and episode numbers from an SxxEyy marker.
// Returns ok=false when the name carries no episode marker.
func ParseEpisode(name string) (season, episode int, ok bool) {
	m := episodeRegex.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	season, _ = strconv.Atoi(m[1])
	episode, _ = strconv.Atoi(m[2])
	return season, episode, true
}

// ParseSeasonDir extracts a season number from a season folder name.
// "Specials" maps to season 0. Returns ok=false for other folder names.
func ParseSeasonDir(name string) (season int, ok bool) {
	if strings.EqualFold(strings.TrimSpace(name), "specials") {
		return 0, true
	}
	m := seasonDirRegex.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, false
	}
	season, _ = strconv.Atoi(m[1])
	return season, true
}

// CleanTitle normalizes a title for comparison purposes.
// Lowercases, strips accents and leading articles, and normalizes punctuation
// so that provider titles and filesystem names compare consistently.
func CleanTitle(title string) string {
	s := strings.ToLower(title)
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", " ")

	// Split on colon to handle subtitles (e.g., "Léon: The Professional")
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
