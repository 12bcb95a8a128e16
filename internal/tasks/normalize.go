// Title and artist normalization for duplicate detection
package tasks

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// markerRe matches release markers ignored in relaxed mode: remaster suffixes,
// mono/stereo versions, radio/clean/explicit edits and featuring credits.
var markerRe = regexp.MustCompile(`(?i)` + strings.Join([]string{
	`\s*-\s*remaster(?:ed)?\s*(?:\d{2,4})?`,
	`\s*-\s*(?:mono|stereo)\s*version`,
	`\s*-\s*(?:radio|clean|explicit)\s*edit`,
	`\s*\((?:feat\.?|featuring) [^)]*\)`,
	`\s*\[(?:feat\.?|featuring) [^\]]*\]`,
	`\s*\((?:version|edit|remaster[^)]*)\)`,
}, "|"))

var punctRe = regexp.MustCompile("[‘’“”—\\-–:,.;!?'\"]")

// hasCJK reports whether the string contains Chinese, Japanese or Korean
// characters. Those get destroyed by compatibility decomposition, so
// normalization must skip accent stripping for them.
func hasCJK(s string) bool {
	for _, r := range s {
		if (r >= 0x3040 && r <= 0x30FF) || (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF) {
			return true
		}
	}
	return false
}

// stripAccentsLatin decomposes the string and drops combining marks, turning
// accented Latin letters into their base form.
func stripAccentsLatin(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// NormalizeTitle produces the canonical form of a track title.
//
// In strict mode only casing, accents, punctuation and whitespace are
// normalized, so "Notion - Remastered" and "Notion" stay distinct. In relaxed
// mode release markers are stripped as well, and the two collapse to the same
// key. CJK titles keep their characters and only have punctuation and
// whitespace normalized.
func NormalizeTitle(title string, strict bool) string {
	s := strings.TrimSpace(norm.NFKC.String(title))
	if s == "" {
		return ""
	}

	cjk := hasCJK(s)
	s = strings.ToLower(s)

	if !strict {
		s = markerRe.ReplaceAllString(s, "")
	}

	if cjk {
		s = punctRe.ReplaceAllString(s, " ")
	} else {
		s = stripAccentsLatin(s)
		s = punctRe.ReplaceAllString(s, " ")
		s = strings.ReplaceAll(s, "&", " and ")
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeArtists normalizes each artist name strictly, removes duplicates
// and sorts the result, so artist ordering differences between releases do not
// defeat duplicate matching.
func NormalizeArtists(artists []string) []string {
	set := make(map[string]bool)
	for _, artist := range artists {
		if s := NormalizeTitle(artist, true); s != "" {
			set[s] = true
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
