// Package template defines the versioned mapping-template schema that tells
// the importer how to read one bank's export layout.
package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/normalize"
)

// SchemaVersion is the current template schema version.
const SchemaVersion = "mapping_template_v1"

// Input kinds.
const (
	KindCSV   = "csv"
	KindTable = "table"
)

// Amount modes.
const (
	ModeSigned      = "signed"
	ModeDebitCredit = "debit_credit"
)

// DefaultCurrency applies when neither a fixed currency nor a currency
// column yields a value.
const DefaultCurrency = "CHF"

// ErrInvalidTemplate wraps every validation failure.
var ErrInvalidTemplate = errors.New("invalid mapping template")

// Template is a declarative description of one export layout. It is
// immutable once loaded.
type Template struct {
	SchemaVersion string        `yaml:"schema_version" json:"schema_version"`
	Name          string        `yaml:"name" json:"name"`
	Input         Input         `yaml:"input" json:"input"`
	Mapping       Mapping       `yaml:"mapping" json:"mapping"`
	Validation    Validation    `yaml:"validation" json:"validation"`
	Preprocessing Preprocessing `yaml:"preprocessing" json:"preprocessing"`
}

// Input describes how to tokenize the file.
type Input struct {
	Kind  string     `yaml:"kind" json:"kind"`
	CSV   CSVInput   `yaml:"csv" json:"csv"`
	Table TableInput `yaml:"table" json:"table"`
}

// CSVInput holds text-level settings. "auto" is allowed for every field.
type CSVInput struct {
	Delimiter          string `yaml:"delimiter" json:"delimiter"`
	Encoding           string `yaml:"encoding" json:"encoding"`
	DecimalSeparator   string `yaml:"decimal_separator" json:"decimal_separator"`
	ThousandsSeparator string `yaml:"thousands_separator" json:"thousands_separator"`
}

// TableInput locates the header and the first data row (1-based).
type TableInput struct {
	HeaderRow    int    `yaml:"header_row" json:"header_row"`
	DataStartRow int    `yaml:"data_start_row" json:"data_start_row"`
	Sheet        string `yaml:"sheet,omitempty" json:"sheet,omitempty"`
}

// Column selects a column by header name. The name is normalized on load.
type Column struct {
	Header string `yaml:"header" json:"header"`
}

// Key returns the normalized header the column joins on.
func (c *Column) Key() string {
	if c == nil {
		return ""
	}
	return normalize.NormalizeHeader(c.Header)
}

// Mapping assigns columns to canonical fields.
type Mapping struct {
	DateColumn       Column        `yaml:"date_column" json:"date_column"`
	TextColumns      []Column      `yaml:"text_columns" json:"text_columns"`
	Amount           AmountMapping `yaml:"amount" json:"amount"`
	ValutaDateColumn *Column       `yaml:"valuta_date_column,omitempty" json:"valuta_date_column,omitempty"`
	CurrencyColumn   *Column       `yaml:"currency_column,omitempty" json:"currency_column,omitempty"`
	BalanceColumn    *Column       `yaml:"balance_column,omitempty" json:"balance_column,omitempty"`
	FixedCurrency    string        `yaml:"fixed_currency,omitempty" json:"fixed_currency,omitempty"`
}

// TextKeys returns the normalized text column keys in template order.
func (m Mapping) TextKeys() []string {
	keys := make([]string, 0, len(m.TextColumns))
	for i := range m.TextColumns {
		if k := m.TextColumns[i].Key(); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// AmountMapping selects either one signed column or a debit/credit pair.
type AmountMapping struct {
	Mode         string  `yaml:"mode" json:"mode"`
	SignedColumn *Column `yaml:"signed_column,omitempty" json:"signed_column,omitempty"`
	DebitColumn  *Column `yaml:"debit_column,omitempty" json:"debit_column,omitempty"`
	CreditColumn *Column `yaml:"credit_column,omitempty" json:"credit_column,omitempty"`
}

// Validation configures date parsing and error policy.
type Validation struct {
	DateFormats []string `yaml:"date_formats" json:"date_formats"`
	// MaxParseErrorsBeforeFail: 0 moves error rows into the error report.
	// Any other value keeps them in the transaction list with status error.
	MaxParseErrorsBeforeFail int `yaml:"max_parse_errors_before_fail" json:"max_parse_errors_before_fail"`
}

// Preprocessing toggles row-stream rewrites.
type Preprocessing struct {
	ExplodeCompoundRows *bool `yaml:"explode_compound_rows,omitempty" json:"explode_compound_rows,omitempty"`
}

// Explode reports whether compound rows are expanded; it defaults to true.
func (p Preprocessing) Explode() bool {
	return p.ExplodeCompoundRows == nil || *p.ExplodeCompoundRows
}

// ApplyDefaults fills unset fields with their documented defaults.
func (t *Template) ApplyDefaults() {
	if t.SchemaVersion == "" {
		t.SchemaVersion = SchemaVersion
	}
	if t.Input.Kind == "" {
		t.Input.Kind = KindCSV
	}
	c := &t.Input.CSV
	c.Delimiter = canonicalDelimiter(c.Delimiter)
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
	if c.Encoding == "" {
		c.Encoding = normalize.Auto
	}
	if c.DecimalSeparator == "" {
		c.DecimalSeparator = normalize.Auto
	}
	if c.ThousandsSeparator == "" {
		c.ThousandsSeparator = normalize.Auto
	}
	if t.Input.Table.HeaderRow == 0 {
		t.Input.Table.HeaderRow = 1
	}
	if t.Input.Table.DataStartRow == 0 {
		t.Input.Table.DataStartRow = t.Input.Table.HeaderRow + 1
	}
	if t.Mapping.Amount.Mode == "" {
		t.Mapping.Amount.Mode = ModeSigned
	}
	if len(t.Validation.DateFormats) == 0 {
		t.Validation.DateFormats = append([]string(nil), normalize.DefaultDateFormats...)
	}
}

// Validate reports the first schema violation, wrapped in ErrInvalidTemplate.
func (t *Template) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, fmt.Sprintf(format, args...))
	}

	if t.SchemaVersion != SchemaVersion {
		return fail("unsupported schema_version %q", t.SchemaVersion)
	}
	switch t.Input.Kind {
	case KindCSV, KindTable:
	default:
		return fail("input.kind must be %q or %q, got %q", KindCSV, KindTable, t.Input.Kind)
	}
	if t.Input.Kind == KindCSV && t.Input.CSV.Delimiter != "auto" && len([]rune(t.Input.CSV.Delimiter)) != 1 {
		return fail("input.csv.delimiter must be a single character, got %q", t.Input.CSV.Delimiter)
	}
	for _, sep := range []string{t.Input.CSV.DecimalSeparator, t.Input.CSV.ThousandsSeparator} {
		if sep != normalize.Auto && len([]rune(sep)) != 1 {
			return fail("separator must be \"auto\" or a single character, got %q", sep)
		}
	}
	if t.Input.Table.HeaderRow < 1 {
		return fail("input.table.header_row must be >= 1")
	}
	if t.Input.Table.DataStartRow <= t.Input.Table.HeaderRow {
		return fail("input.table.data_start_row must follow header_row")
	}
	if t.Mapping.DateColumn.Key() == "" {
		return fail("mapping.date_column is required")
	}

	a := t.Mapping.Amount
	switch a.Mode {
	case ModeSigned:
		if a.SignedColumn.Key() == "" {
			return fail("mapping.amount.signed_column is required in mode %q", ModeSigned)
		}
	case ModeDebitCredit:
		if a.DebitColumn.Key() == "" && a.CreditColumn.Key() == "" {
			return fail("mapping.amount needs debit_column or credit_column in mode %q", ModeDebitCredit)
		}
	default:
		return fail("mapping.amount.mode must be %q or %q, got %q", ModeSigned, ModeDebitCredit, a.Mode)
	}

	for _, f := range t.Validation.DateFormats {
		if !normalize.KnownDateFormat(f) {
			return fail("unknown date format %q", f)
		}
	}
	if t.Validation.MaxParseErrorsBeforeFail < 0 {
		return fail("validation.max_parse_errors_before_fail must be >= 0")
	}
	return nil
}

func canonicalDelimiter(d string) string {
	switch strings.ToLower(d) {
	case "tab", `\t`:
		return "\t"
	case "semicolon":
		return ";"
	case "comma":
		return ","
	case "pipe":
		return "|"
	}
	return d
}
