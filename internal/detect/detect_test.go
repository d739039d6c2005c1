package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const zkbExport = "Kontoauszug\n" +
	"Konto: CH12 3456\n" +
	"\n" +
	"Datum;Buchungstext;Belastung;Gutschrift;Valuta;Saldo\n" +
	"01.03.2024;Migros;84.35;;01.03.2024;915.65\n" +
	"02.03.2024;Lohn;;5200.00;02.03.2024;6115.65\n" +
	"04.03.2024;Miete;1850.00;;04.03.2024;4265.65\n"

func TestAnalyze_CSV(t *testing.T) {
	got, err := Analyze([]byte(zkbExport), "csv")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 5)

	best := got[0]
	assert.Equal(t, ";", best.Delimiter)
	assert.Equal(t, "utf-8", best.Encoding)
	assert.Equal(t, 4, best.HeaderRow)
	assert.Equal(t, 5, best.DataStartRow)
	assert.Equal(t, []string{"datum", "buchungstext", "belastung", "gutschrift", "valuta", "saldo"}, best.HeadersNormalized)
	assert.InDelta(t, 0.99, best.Confidence, 1e-9)
	assert.Len(t, best.HeaderSignature, 64)
	require.Len(t, best.PreviewRows, 3)
	assert.Equal(t, "Migros", best.PreviewRows[0].Get("buchungstext"))
	assert.Equal(t, 5, best.PreviewRows[0].Line)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Confidence, got[i].Confidence)
		assert.LessOrEqual(t, got[i].Confidence, 0.99)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	first, err := Analyze([]byte(zkbExport), ".CSV")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Analyze([]byte(zkbExport), "csv")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAnalyze_Latin1(t *testing.T) {
	raw := []byte("Datum;Buchungstext;Betrag\n01.01.2024;Z\xfcrich;-5\n")
	got, err := Analyze(raw, "csv")
	require.NoError(t, err)
	assert.Equal(t, "iso-8859-1", got[0].Encoding)
	assert.Equal(t, "Zürich", got[0].PreviewRows[0].Get("buchungstext"))
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ext  string
		want error
	}{
		{"unsupported", "a;b", "pdf", ErrUnsupportedType},
		{"empty", "", "csv", ErrEmptyFile},
		{"whitespace", " \n\n ", "csv", ErrEmptyFile},
		{"no table", "just some words\nno table here\n", "csv", ErrNoCandidates},
		{"single column", "Datum\n01.01.2024\n", "csv", ErrNoCandidates},
		{"broken workbook", "not a zip", "xlsx", ErrUnreadableTable},
		{"empty workbook", "", "xlsx", ErrEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze([]byte(tt.raw), tt.ext)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestAnalyze_XLSX(t *testing.T) {
	raw := workbook(t,
		[]any{"Kontoauszug"},
		[]any{"Datum", "Text", "Betrag"},
		[]any{"05.01.2024", "Migros", "-12.30"},
		[]any{"06.01.2024", "Coop", "-8.10"},
	)

	got, err := Analyze(raw, "xlsx")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, EncodingXLSX, got[0].Encoding)
	assert.Equal(t, "", got[0].Delimiter)
	assert.Equal(t, 2, got[0].HeaderRow)
	assert.Equal(t, 3, got[0].DataStartRow)
	assert.Equal(t, 0.9, got[0].Confidence)
	assert.Equal(t, "Detected first worksheet table", got[0].Reason)
	assert.Len(t, got[0].PreviewRows, 2)
}

func TestSignature(t *testing.T) {
	a := Signature([]string{"datum", "betrag"})
	assert.Equal(t, a, Signature([]string{"datum", "betrag"}))
	assert.NotEqual(t, a, Signature([]string{"betrag", "datum"}))
}
