// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
	"unicode"
)

// Extension is the suffix of every mirrored document.
const Extension = ".md"

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	hyphenRuns    = regexp.MustCompile(`-+`)
	reservedChars = regexp.MustCompile(`[/\\:*?"<>|]`)
	dotRuns       = regexp.MustCompile(`\.{2,}`)
)

// Slugify derives a filesystem-safe file name from a page title. Empty or
// whitespace-only titles fall back to the first eight characters of the
// page id. ASCII titles are lowercased and hyphenated; titles with any
// non-ASCII rune (Japanese and the like) keep their casing and words, with
// path-reserved characters replaced and runs of dots collapsed so the name
// cannot traverse directories.
func Slugify(title, pageID string) string {
	if strings.TrimSpace(title) == "" {
		return idPrefix(pageID, 8) + Extension
	}

	if isASCII(title) {
		s := strings.ToLower(title)
		s = nonSlugChars.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		s = whitespaceRuns.ReplaceAllString(s, "-")
		s = hyphenRuns.ReplaceAllString(s, "-")
		s = strings.Trim(s, "-")
		if s == "" {
			s = idPrefix(pageID, 8)
		}
		return s + Extension
	}

	s := strings.TrimSpace(title)
	s = reservedChars.ReplaceAllString(s, "-")
	s = dotRuns.ReplaceAllString(s, ".")
	return s + Extension
}

// ResolveSlugConflict disambiguates a file name already taken within the
// same sync pass by appending the first four characters of the page id
// before the extension. The extension appears exactly once in the result.
func ResolveSlugConflict(slug, pageID string) string {
	base := strings.TrimSuffix(slug, Extension)
	return base + "-" + idPrefix(pageID, 4) + Extension
}

func idPrefix(id string, n int) string {
	if len(id) < n {
		return id
	}
	return id[:n]
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
