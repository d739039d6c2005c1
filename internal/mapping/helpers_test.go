package mapping

import (
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/template"
)

func signedTemplate() *template.Template {
	tpl := &template.Template{
		Mapping: template.Mapping{
			DateColumn:  template.Column{Header: "Datum"},
			TextColumns: []template.Column{{Header: "Text"}},
			Amount: template.AmountMapping{
				Mode:         template.ModeSigned,
				SignedColumn: &template.Column{Header: "Betrag"},
			},
		},
	}
	tpl.ApplyDefaults()
	return tpl
}

func debitCreditTemplate() *template.Template {
	tpl := &template.Template{
		Mapping: template.Mapping{
			DateColumn:  template.Column{Header: "Datum"},
			TextColumns: []template.Column{{Header: "Text"}},
			Amount: template.AmountMapping{
				Mode:         template.ModeDebitCredit,
				DebitColumn:  &template.Column{Header: "Belastung"},
				CreditColumn: &template.Column{Header: "Gutschrift"},
			},
		},
	}
	tpl.ApplyDefaults()
	return tpl
}

// rows builds RawRows numbered from line 2 onwards.
func rows(headers []string, cells ...[]string) []model.RawRow {
	out := make([]model.RawRow, 0, len(cells))
	for i, c := range cells {
		out = append(out, model.NewRawRow(i+2, headers, c))
	}
	return out
}
