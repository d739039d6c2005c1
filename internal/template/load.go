package template

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML or JSON template, migrates older schema versions,
// applies defaults and validates the result.
func Parse(data []byte) (*Template, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidTemplate)
	}
	if err := Migrate(doc); err != nil {
		return nil, err
	}

	migrated, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encoding template: %w", err)
	}

	var t Template
	dec := yaml.NewDecoder(bytes.NewReader(migrated))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}

	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads and parses a template file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Save writes a template as YAML.
func Save(path string, t *Template) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	return nil
}

// Example returns a template for a typical Swiss debit/credit export.
func Example() *Template {
	t := &Template{
		SchemaVersion: SchemaVersion,
		Name:          "example-bank",
		Input: Input{
			Kind: KindCSV,
			CSV:  CSVInput{Delimiter: ";"},
		},
		Mapping: Mapping{
			DateColumn:       Column{Header: "Datum"},
			TextColumns:      []Column{{Header: "Buchungstext"}, {Header: "Details"}},
			ValutaDateColumn: &Column{Header: "Valuta"},
			BalanceColumn:    &Column{Header: "Saldo"},
			Amount: AmountMapping{
				Mode:         ModeDebitCredit,
				DebitColumn:  &Column{Header: "Belastung"},
				CreditColumn: &Column{Header: "Gutschrift"},
			},
		},
	}
	t.ApplyDefaults()
	return t
}
