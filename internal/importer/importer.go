// Package importer is the engine entry point: it proposes table layouts for
// uploaded bank exports and applies mapping templates to them.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/stmtimport/internal/detect"
	"github.com/cleared-dev/stmtimport/internal/mapping"
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/posting"
	"github.com/cleared-dev/stmtimport/internal/table"
	"github.com/cleared-dev/stmtimport/internal/template"
)

// ErrNoTemplate is returned when ApplyMapping is called without a template.
var ErrNoTemplate = errors.New("no mapping template")

// ErrKindMismatch is returned when the bytes contradict the template's
// input kind: a workbook for a csv template or text for a table template.
var ErrKindMismatch = errors.New("input does not match template kind")

var zipMagic = []byte("PK\x03\x04")

// ApplyParams carries everything ApplyMapping needs besides the bytes and
// the template.
type ApplyParams struct {
	ImportID       string // generated when empty
	SourceFileName string
	BankAccount    string // postings are only built when set
	VATEnabled     bool
	DefaultVAT     posting.VATDefaults
	Rules          []posting.Rule
}

// AnalyzeCandidates proposes up to five interpretations of raw.
func AnalyzeCandidates(raw []byte, ext string) ([]model.Candidate, error) {
	return detect.Analyze(raw, ext)
}

// ApplyMapping reads raw according to tpl and returns canonical
// transactions, rejected rows and draft postings. Structural problems
// (invalid template, bytes of the wrong kind, undecodable bytes, header row
// out of range, unreadable workbook) fail the whole call; row-level problems are reported in the
// result.
func ApplyMapping(ctx context.Context, raw []byte, tpl *template.Template, p ApplyParams) (*model.ImportResult, error) {
	if tpl == nil {
		return nil, ErrNoTemplate
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if p.ImportID == "" {
		p.ImportID = uuid.NewString()
	}
	log := zerolog.Ctx(ctx).With().Str("import_id", p.ImportID).Str("file", p.SourceFileName).Logger()

	g, meta, err := readGrid(raw, tpl)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("encoding", meta.EncodingUsed).Str("delimiter", meta.Delimiter).Str("sheet", meta.Sheet).Msg("table read")

	headers, rows, err := table.Extract(g, tpl.Input.Table.HeaderRow, tpl.Input.Table.DataStartRow)
	if err != nil {
		return nil, fmt.Errorf("extracting rows: %w", err)
	}

	out := mapping.NewApplier(tpl, headers).Apply(log.WithContext(ctx), rows, p.ImportID, p.SourceFileName)

	res := &model.ImportResult{
		Errors:        out.Errors,
		Transactions:  out.Transactions,
		PostingsDraft: []model.DraftPosting{},
		Meta:          meta,
	}
	res.RowsError = len(out.Errors)
	for _, tx := range out.Transactions {
		if tx.Status == model.RowOK {
			res.RowsOK++
		} else {
			res.RowsError++
		}
	}

	if p.BankAccount != "" {
		res.PostingsDraft = posting.BuildDrafts(out.Transactions, posting.Options{
			BankAccount: p.BankAccount,
			VATEnabled:  p.VATEnabled,
			DefaultVAT:  p.DefaultVAT,
			Rules:       p.Rules,
		})
	}

	log.Info().Int("rows_ok", res.RowsOK).Int("rows_error", res.RowsError).Msg("mapping applied")
	return res, nil
}

// readGrid tokenizes raw as the template's input kind says: a workbook for
// kind table, delimited text for kind csv.
func readGrid(raw []byte, tpl *template.Template) (table.Grid, model.ImportMeta, error) {
	workbook := bytes.HasPrefix(raw, zipMagic)

	if tpl.Input.Kind == template.KindTable {
		if !workbook {
			return table.Grid{}, model.ImportMeta{}, fmt.Errorf("%w: template kind %q expects a workbook", ErrKindMismatch, tpl.Input.Kind)
		}
		g, sheet, err := table.ReadXLSX(raw, tpl.Input.Table.Sheet)
		if err != nil {
			return table.Grid{}, model.ImportMeta{}, fmt.Errorf("reading workbook: %w", err)
		}
		return g, model.ImportMeta{EncodingUsed: detect.EncodingXLSX, Sheet: sheet}, nil
	}

	if workbook {
		return table.Grid{}, model.ImportMeta{}, fmt.Errorf("%w: template kind %q expects delimited text, got a workbook", ErrKindMismatch, tpl.Input.Kind)
	}

	text, enc, err := table.Decode(raw, tpl.Input.CSV.Encoding)
	if err != nil {
		return table.Grid{}, model.ImportMeta{}, fmt.Errorf("decoding input: %w", err)
	}

	delim := tpl.Input.CSV.Delimiter
	if delim == "" || delim == "auto" {
		delim = detect.Delimiters(strings.Split(text, "\n"))[0]
	}

	g, err := table.ReadCSV(text, delim)
	if err != nil {
		return table.Grid{}, model.ImportMeta{}, err
	}
	return g, model.ImportMeta{EncodingUsed: enc, Delimiter: delim}, nil
}
