// Package detect proposes how an uploaded bank export should be read: its
// encoding, delimiter and header row, each with a confidence score.
package detect

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
	"github.com/cleared-dev/stmtimport/internal/table"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file is empty")
	ErrUnreadableTable = errors.New("unreadable table")
	ErrNoCandidates    = errors.New("no valid table found")
)

// Search limits.
const (
	headerScanLines  = 20
	maxHeaderRows    = 8
	maxCandidates    = 5
	previewRows      = 5
	xlsxConfidence   = 0.9
	maxConfidence    = 0.99
	xlsxReason       = "Detected first worksheet table"
	earlyHeaderLines = 10
)

// EncodingXLSX is reported as the encoding of spreadsheet candidates.
const EncodingXLSX = "xlsx"

// Header rows often start with one of these.
var datumTokens = []string{"datum", "buchungsdatum", "abschlussdatum", "date", "booking date"}

// Statement-specific markers seen on header lines of Swiss bank exports.
var markerTokens = []string{
	"buchungstext", "avisierungstext", "zahlungszweck", "valuta", "saldo",
	"belastung", "gutschrift", "einzelbetrag", "transaction date",
}

// keywords are the header vocabulary used for scoring.
var keywords = []string{
	"datum", "date", "valuta", "value",
	"buchungstext", "text", "beschreibung", "description", "details", "mitteilung",
	"saldo", "balance",
	"gutschrift", "credit", "haben",
	"belastung", "lastschrift", "debit", "soll",
	"betrag", "amount", "summe", "total", "waehrung", "währung", "currency",
}

// Analyze returns up to five candidate interpretations of raw ordered by
// confidence. ext is the file extension with or without a leading dot.
func Analyze(raw []byte, ext string) ([]model.Candidate, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "csv":
		return analyzeCSV(raw)
	case "xlsx":
		return analyzeXLSX(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

func analyzeCSV(raw []byte) ([]model.Candidate, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyFile
	}
	text, enc, err := table.Decode(raw, table.EncodingAuto)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableTable, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFile
	}

	lines := splitLines(text)
	var (
		out      []model.Candidate
		parsed   int
		seen     = make(map[string]bool)
		firstErr error
	)
	for _, delim := range Delimiters(lines) {
		g, err := table.ReadCSV(text, delim)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		parsed++

		for _, hr := range headerRows(lines, delim) {
			c, ok := candidate(g, hr, enc, delim)
			if !ok {
				continue
			}
			key := fmt.Sprintf("%s|%d|%s", c.HeaderSignature, c.HeaderRow, c.Delimiter)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}

	if parsed == 0 {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableTable, firstErr)
	}
	if len(out) == 0 {
		return nil, ErrNoCandidates
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out, nil
}

// headerRows returns the 1-based lines within the scan window that may hold
// the header for delim, in line order.
func headerRows(lines []string, delim string) []int {
	var rows []int
	for i, l := range lines {
		if i >= headerScanLines || len(rows) == maxHeaderRows {
			break
		}
		if isHeaderLine(l, delim) {
			rows = append(rows, i+1)
		}
	}
	return rows
}

func isHeaderLine(line, delim string) bool {
	if strings.Count(line, delim) >= 1 {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(line), `"`)))
	for _, t := range datumTokens {
		if strings.HasPrefix(lower, t) {
			return true
		}
	}
	for _, t := range markerTokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// candidate extracts the table with its header on line hr and scores it.
func candidate(g table.Grid, hr int, enc, delim string) (model.Candidate, bool) {
	headers, rows, err := table.Extract(g, hr, hr+1)
	if err != nil {
		return model.Candidate{}, false
	}
	named := namedHeaders(headers)
	if named < 2 {
		return model.Candidate{}, false
	}

	hits := keywordHits(headers)
	score := 0.05*float64(min(len(headers), 12)) +
		0.04*float64(min(named, 12)) +
		0.08*float64(min(hits, 8)) +
		0.01*float64(min(len(rows), 20))
	if hr <= earlyHeaderLines {
		score += 0.05
	}
	score = math.Round(math.Min(score, maxConfidence)*10000) / 10000

	return model.Candidate{
		Encoding:          enc,
		Delimiter:         delim,
		HeaderRow:         hr,
		DataStartRow:      hr + 1,
		HeadersNormalized: headers,
		HeaderSignature:   Signature(headers),
		PreviewRows:       preview(rows),
		Confidence:        score,
		Reason: fmt.Sprintf("delimiter %q, header on line %d: %d columns, %d keyword hits, %d data rows",
			delim, hr, len(headers), hits, len(rows)),
	}, true
}

func analyzeXLSX(raw []byte) ([]model.Candidate, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyFile
	}
	g, _, err := table.ReadXLSX(raw, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableTable, err)
	}
	if len(g.Records) == 0 {
		return nil, ErrEmptyFile
	}

	for _, rec := range g.Records {
		filled := 0
		for _, c := range rec.Cells {
			if strings.TrimSpace(c) != "" {
				filled++
			}
		}
		if filled < 2 {
			continue
		}
		headers, rows, err := table.Extract(g, rec.Line, rec.Line+1)
		if err != nil || namedHeaders(headers) < 2 {
			return nil, ErrNoCandidates
		}
		return []model.Candidate{{
			Encoding:          EncodingXLSX,
			HeaderRow:         rec.Line,
			DataStartRow:      rec.Line + 1,
			HeadersNormalized: headers,
			HeaderSignature:   Signature(headers),
			PreviewRows:       preview(rows),
			Confidence:        xlsxConfidence,
			Reason:            xlsxReason,
		}}, nil
	}
	return nil, ErrNoCandidates
}

// Signature fingerprints a header layout so a known bank can be recognized.
func Signature(headers []string) string {
	sum := sha256.Sum256([]byte(strings.Join(headers, "|")))
	return hex.EncodeToString(sum[:])
}

func namedHeaders(headers []string) int {
	n := 0
	for _, h := range headers {
		if h != "" && !normalize.IsPlaceholder(h) {
			n++
		}
	}
	return n
}

func keywordHits(headers []string) int {
	hits := 0
	for _, h := range headers {
		for _, k := range keywords {
			if strings.Contains(h, k) {
				hits++
				break
			}
		}
	}
	return hits
}

func preview(rows []model.RawRow) []model.RawRow {
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	if rows == nil {
		rows = []model.RawRow{}
	}
	return rows
}
