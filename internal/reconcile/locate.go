package reconcile

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultPadding is the snippet window, in runes, on each side of a match.
const DefaultPadding = 80

const ellipsis = "…"

// spaceRun matches what unicode.IsSpace accepts, including the no-break
// spaces that DOCX and PDF text is full of. RE2's \s is ASCII only.
const spaceRun = `[\s\v\x{85}\p{Z}]+`

// Locate finds the first occurrence of pattern in text.
//
// The search runs in tiers and stops at the first tier that finds anything:
// an exact match, then a case-insensitive match, then a match where any run of
// whitespace in the pattern may stand for any run of whitespace in the text.
// Only the first tier produces an exact Match.
func Locate(text, pattern string, padding int) (Match, bool) {
	matches := locate(text, pattern, padding, 1)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// LocateAll returns every non-overlapping occurrence of pattern, using the
// first search tier that yields any match.
func LocateAll(text, pattern string, padding int) []Match {
	return locate(text, pattern, padding, -1)
}

func locate(text, pattern string, padding, limit int) []Match {
	pattern = strings.TrimSpace(pattern)
	if text == "" || pattern == "" {
		return nil
	}
	if padding < 0 {
		padding = 0
	}

	if spans := indexAll(text, pattern, limit); len(spans) > 0 {
		return toMatches(text, spans, padding, true)
	}

	caseless := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(pattern))
	if spans := caseless.FindAllStringIndex(text, limit); len(spans) > 0 {
		return toMatches(text, spans, padding, false)
	}

	words := strings.Fields(pattern)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	loose := regexp.MustCompile(`(?i)` + strings.Join(quoted, spaceRun))
	if spans := loose.FindAllStringIndex(text, limit); len(spans) > 0 {
		return toMatches(text, spans, padding, false)
	}
	return nil
}

func indexAll(text, pattern string, limit int) [][]int {
	var spans [][]int
	offset := 0
	for limit < 0 || len(spans) < limit {
		i := strings.Index(text[offset:], pattern)
		if i < 0 {
			break
		}
		start := offset + i
		spans = append(spans, []int{start, start + len(pattern)})
		offset = start + len(pattern)
	}
	return spans
}

func toMatches(text string, spans [][]int, padding int, exact bool) []Match {
	out := make([]Match, 0, len(spans))
	for _, s := range spans {
		out = append(out, Match{
			Start:   s[0],
			End:     s[1],
			Snippet: Snippet(text, s[0], s[1], padding),
			Exact:   exact,
		})
	}
	return out
}

// Snippet returns text[start:end] with up to padding runes of context on each
// side. The window is widened to the nearest word boundary, whitespace is
// collapsed, and an ellipsis marks each truncated end.
func Snippet(text string, start, end, padding int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		return ""
	}
	if padding < 0 {
		padding = 0
	}

	left := start
	for n := 0; n < padding && left > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:left])
		left -= size
	}
	for left > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:left])
		if unicode.IsSpace(r) {
			break
		}
		left -= size
	}

	right := end
	for n := 0; n < padding && right < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[right:])
		right += size
	}
	for right < len(text) {
		r, size := utf8.DecodeRuneInString(text[right:])
		if unicode.IsSpace(r) {
			break
		}
		right += size
	}

	snippet := strings.Join(strings.Fields(text[left:right]), " ")
	if strings.TrimSpace(text[:left]) != "" {
		snippet = ellipsis + snippet
	}
	if strings.TrimSpace(text[right:]) != "" {
		snippet += ellipsis
	}
	return snippet
}
