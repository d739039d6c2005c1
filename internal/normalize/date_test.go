package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDateToISO(t *testing.T) {
	tests := []struct {
		in      string
		formats []string
		want    string
	}{
		{"2024-03-01", DefaultDateFormats, "2024-03-01"},
		{"2024-03-01", nil, "2024-03-01"},
		{"01.03.2024", DefaultDateFormats, "2024-03-01"},
		{"01.03.24", []string{FormatDottedYY}, "2024-03-01"},
		{" 31.12.2023 ", []string{FormatDotted}, "2023-12-31"},
		{"01.03.2024", []string{FormatISO}, ""},
		{"2024-13-01", DefaultDateFormats, ""},
		{"32.01.2024", DefaultDateFormats, ""},
		{"yesterday", DefaultDateFormats, ""},
		{"", DefaultDateFormats, ""},
		{"01.03.24", []string{"mm/dd/yy"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDateToISO(tt.in, tt.formats), "ParseDateToISO(%q, %v)", tt.in, tt.formats)
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	formats := []string{FormatDottedYY}
	assert.Equal(t, "2000-01-15", ParseDateToISO("15.01.00", formats))
	assert.Equal(t, "2068-01-15", ParseDateToISO("15.01.68", formats))
	assert.Equal(t, "1969-01-15", ParseDateToISO("15.01.69", formats))
	assert.Equal(t, "1999-01-15", ParseDateToISO("15.01.99", formats))
}

func TestParseDate_FirstFormatWins(t *testing.T) {
	d, ok := ParseDate("05.06.2024", []string{FormatDottedYY, FormatDotted})
	assert.True(t, ok)
	assert.Equal(t, 2024, d.Year)
	assert.Equal(t, 6, int(d.Month))
	assert.Equal(t, 5, d.Day)
}

func TestLooksLikeDate(t *testing.T) {
	for _, s := range []string{"2024-01-05", "05.01.2024", "05.01.24", " 05.01.24 "} {
		assert.True(t, LooksLikeDate(s), s)
	}
	for _, s := range []string{"", "5.1.2024", "2024/01/05", "Saldo", "05.01.2024 10:00"} {
		assert.False(t, LooksLikeDate(s), s)
	}
}

func TestKnownDateFormat(t *testing.T) {
	assert.True(t, KnownDateFormat(FormatDotted))
	assert.False(t, KnownDateFormat("dd/mm/yyyy"))
}
