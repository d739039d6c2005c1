package detect

import (
	"strings"
)

// sniffLines is how many non-blank lines the delimiter sniff looks at.
const sniffLines = 12

// FallbackDelimiters are always tried after the sniffed delimiter.
var FallbackDelimiters = []string{";", ",", "\t", "|"}

var sniffChars = []string{";", ",", "\t", "|", ":"}

// SniffDelimiter guesses the delimiter from the first non-blank lines: the
// character whose per-line count is non-zero and most consistent wins.
// Ties go to more columns, then to the order of sniffChars.
func SniffDelimiter(lines []string) (string, bool) {
	var sample []string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		sample = append(sample, l)
		if len(sample) == sniffLines {
			break
		}
	}
	if len(sample) == 0 {
		return "", false
	}

	best, bestAgree, bestWidth := "", 0, 0
	for _, c := range sniffChars {
		freq := make(map[int]int)
		for _, l := range sample {
			if n := strings.Count(l, c); n > 0 {
				freq[n]++
			}
		}
		width, agree := 0, 0
		for n, k := range freq {
			if k > agree || (k == agree && n > width) {
				width, agree = n, k
			}
		}
		if agree > bestAgree || (agree == bestAgree && agree > 0 && width > bestWidth) {
			best, bestAgree, bestWidth = c, agree, width
		}
	}
	return best, best != ""
}

// Delimiters returns the sniffed delimiter followed by the fallbacks,
// without duplicates.
func Delimiters(lines []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(d string) {
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	if d, ok := SniffDelimiter(lines); ok {
		add(d)
	}
	for _, d := range FallbackDelimiters {
		add(d)
	}
	return out
}

// splitLines splits decoded text into lines numbered like the CSV reader
// numbers them.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
