package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	nonKeyChars = regexp.MustCompile(`[^a-z0-9_]+`)
	underscores = regexp.MustCompile(`_+`)
)

// NormalizeHeader turns a display header into the key used to join template
// selectors with extracted columns: lower case, whitespace and other
// characters folded to single underscores, trimmed. It is idempotent.
func NormalizeHeader(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = whitespace.ReplaceAllString(t, "_")
	t = nonKeyChars.ReplaceAllString(t, "_")
	t = underscores.ReplaceAllString(t, "_")
	return strings.Trim(t, "_")
}

// UnnamedPrefix marks generated names for blank header cells.
const UnnamedPrefix = "unnamed_"

// NormalizeHeaders normalizes a header row and makes the keys usable as a
// row map: blank cells become unnamed_<n> (1-based column) and repeated
// names get _2, _3... suffixes.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		n := NormalizeHeader(h)
		if n == "" {
			n = UnnamedPrefix + strconv.Itoa(i+1)
		}
		seen[n]++
		if c := seen[n]; c > 1 {
			cand := n + "_" + strconv.Itoa(c)
			for ; seen[cand] > 0; c++ {
				cand = n + "_" + strconv.Itoa(c+1)
			}
			seen[n] = c
			n = cand
			seen[n]++
		}
		out[i] = n
	}
	return out
}

// IsPlaceholder reports whether a normalized header was generated for a
// blank cell.
func IsPlaceholder(h string) bool {
	return h == "" || strings.HasPrefix(h, UnnamedPrefix) || strings.HasPrefix(h, "unnamed")
}
