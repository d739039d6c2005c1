package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	text := "Export vom 03.01.2024\nDatum;Buchungstext;Betrag;\n01.01.2024;Kauf;-10,00;\n;;;\n02.01.2024;Lohn;5000\n03.01.2024;Zu;viele;Zellen;x\n"
	g, err := ReadCSV(text, ";")
	require.NoError(t, err)

	headers, rows, err := Extract(g, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"datum", "buchungstext", "betrag", "unnamed_4"}, headers)
	require.Len(t, rows, 3)

	assert.Equal(t, 3, rows[0].Line)
	assert.Equal(t, "-10,00", rows[0].Get("betrag"))

	// blank row on line 4 skipped, short row padded
	assert.Equal(t, 5, rows[1].Line)
	assert.Equal(t, "", rows[1].Get("unnamed_4"))
	_, present := rows[1].Cells["unnamed_4"]
	assert.True(t, present)

	// long row truncated
	assert.Len(t, rows[2].Cells, 4)
	assert.Equal(t, "Zellen", rows[2].Get("unnamed_4"))
}

func TestExtract_DataStartAfterGap(t *testing.T) {
	g, err := ReadCSV("Datum;Betrag\nEinheit;CHF\n01.01.2024;1\n", ";")
	require.NoError(t, err)

	_, rows, err := Extract(g, 1, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "01.01.2024", rows[0].Get("datum"))
}

func TestExtract_HeaderOutOfRange(t *testing.T) {
	g, err := ReadCSV("Datum;Betrag\n01.01.2024;1\n", ";")
	require.NoError(t, err)

	_, _, err = Extract(g, 9, 10)
	assert.ErrorIs(t, err, ErrHeaderOutOfRange)
}
