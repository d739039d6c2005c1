package normalize

import (
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Supported template date formats.
const (
	FormatISO         = "yyyy-mm-dd"
	FormatDotted      = "dd.mm.yyyy"
	FormatDottedYY    = "dd.mm.yy"
	isoLayout         = "2006-01-02"
	dottedLayout      = "02.01.2006"
	dottedShortLayout = "02.01.06"
)

// DefaultDateFormats is used when a template lists none.
var DefaultDateFormats = []string{FormatISO, FormatDotted, FormatDottedYY}

var layouts = map[string]string{
	FormatISO:      isoLayout,
	FormatDotted:   dottedLayout,
	FormatDottedYY: dottedShortLayout,
}

var (
	isoDate         = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dottedDate      = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	dottedShortDate = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{2}$`)
)

// KnownDateFormat reports whether f is a supported format name.
func KnownDateFormat(f string) bool {
	_, ok := layouts[f]
	return ok
}

// LooksLikeDate is a structural check used to tell dated rows from
// continuation rows without parsing.
func LooksLikeDate(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	return isoDate.MatchString(t) || dottedDate.MatchString(t) || dottedShortDate.MatchString(t)
}

// ParseDate tries the ISO fast path and then each format in order.
//
// Two-digit years pivot at 69: 00-68 map to 2000-2068, 69-99 to 1969-1999.
func ParseDate(text string, formats []string) (civil.Date, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return civil.Date{}, false
	}
	if isoDate.MatchString(t) {
		if d, err := civil.ParseDate(t); err == nil {
			return d, true
		}
	}

	if len(formats) == 0 {
		formats = DefaultDateFormats
	}
	for _, f := range formats {
		layout, ok := layouts[f]
		if !ok {
			continue
		}
		// time.Parse applies the same 69/70 pivot for "06".
		tm, err := time.Parse(layout, t)
		if err != nil {
			continue
		}
		return civil.DateOf(tm), true
	}
	return civil.Date{}, false
}

// ParseDateToISO returns the date as yyyy-mm-dd, or "" when unparseable.
func ParseDateToISO(text string, formats []string) string {
	d, ok := ParseDate(text, formats)
	if !ok {
		return ""
	}
	return d.String()
}
