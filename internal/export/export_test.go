package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/model"
)

func sampleResult() *model.ImportResult {
	booked := civil.Date{Year: 2024, Month: 3, Day: 2}
	vat := "VM81"
	txs := []model.CanonicalTransaction{
		{
			SchemaVersion: model.SchemaVersion, ImportID: "imp-1", RowIndex: 6, SourceFileName: "zkb.csv",
			BookingDate: &booked, Currency: "CHF",
			AmountSigned: decimal.NewNullDecimal(decimal.RequireFromString("-50")),
			Direction:    model.DirectionDebit, TextRaw: "Migros, Zürich",
			Raw: model.NewRawRow(6, []string{"datum"}, []string{"02.03.2024"}), Status: model.RowOK, Issues: []model.Issue{},
		},
	}
	return &model.ImportResult{
		RowsOK:    1,
		RowsError: 1,
		Errors: []model.RowError{{
			RowIndex: 10,
			Issues:   []model.Issue{{Code: model.IssueInvalidDate, Message: "could not parse booking date", Field: "booking_date"}},
			Raw:      model.NewRawRow(10, []string{"datum", "text"}, []string{"31.02.2024", "Coop"}),
		}},
		Transactions: txs,
		PostingsDraft: []model.DraftPosting{{
			Label: "Migros, Zürich", Amount: decimal.NewFromInt(50), Currency: "CHF", ExchangeRate: decimal.NewFromInt(1),
			CreditAccount: "1020", SuggestedAccount: "4200", VATCode: &vat,
		}},
		Meta: model.ImportMeta{EncodingUsed: "windows-1252", Delimiter: ";"},
	}
}

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, sampleResult().Transactions))

	recs := readCSV(t, buf.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, transactionHeader, recs[0])
	assert.Equal(t, []string{"6", "2024-03-02", "", "CHF", "-50", "DBIT", "Migros, Zürich", "", "ok", "imp-1", "zkb.csv"}, recs[1])
}

func TestWritePostings(t *testing.T) {
	res := sampleResult()
	var buf bytes.Buffer
	require.NoError(t, WritePostings(&buf, res.Transactions, res.PostingsDraft))

	recs := readCSV(t, buf.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"6", "Migros, Zürich", "50.00", "CHF", "1", "", "1020", "4200", "VM81", ""}, recs[1])

	assert.Error(t, WritePostings(&buf, res.Transactions, nil))
}

func TestWriteErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteErrors(&buf, sampleResult().Errors))

	recs := readCSV(t, buf.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, "10", recs[1][0])
	assert.Equal(t, "invalid_date", recs[1][1])
	assert.JSONEq(t, `{"datum":"31.02.2024","text":"Coop"}`, recs[1][3])
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultJSON(&buf, sampleResult()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.EqualValues(t, 1, doc["rows_ok"])
	txs := doc["transactions"].([]any)
	tx := txs[0].(map[string]any)
	assert.Equal(t, "2024-03-02", tx["booking_date"])
	assert.Equal(t, "DBIT", tx["direction"])
	assert.Nil(t, tx["valuta_date"])
}

func TestServiceWrite(t *testing.T) {
	dir := t.TempDir()
	out, err := NewService(dir).Write("imp-1", sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "imp-1"), out)

	for _, name := range []string{TransactionsFile, PostingsFile, ErrorsFile, ResultFile} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestServiceWrite_NoPostings(t *testing.T) {
	res := sampleResult()
	res.PostingsDraft = []model.DraftPosting{}

	out, err := NewService(t.TempDir()).Write("imp-2", res)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, PostingsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestServiceWrite_EmptyID(t *testing.T) {
	_, err := NewService(t.TempDir()).Write("", sampleResult())
	assert.Error(t, err)
}
