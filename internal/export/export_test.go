package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/cardsift/cardsift/internal/model"
)

func sampleRecords() []model.CardRecord {
	fee := "$95"
	rewards := "2x points on dining and travel"
	return []model.CardRecord{
		{CardName: "Platinum Rewards Card", AnnualFee: &fee, Rewards: &rewards},
		{CardName: "Everyday Card"},
	}
}

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"json", "csv", "excel", "all"} {
		f, err := ParseFormat(ok)
		require.NoError(t, err)
		assert.Equal(t, Format(ok), f)
	}
	_, err := ParseFormat("parquet")
	require.Error(t, err)
}

func TestWriteJSON_NullsAndShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, WriteJSON(sampleRecords(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	// Shape complete: every field key present on every object.
	for _, f := range model.AllFields() {
		_, present := decoded[0][string(f)]
		assert.True(t, present, "missing key %s", f)
		_, present = decoded[1][string(f)]
		assert.True(t, present, "missing key %s", f)
	}

	assert.Equal(t, "Platinum Rewards Card", decoded[0]["card_name"])
	assert.Equal(t, "$95", decoded[0]["annual_fee"])
	assert.Nil(t, decoded[0]["cashback"])
	assert.Nil(t, decoded[1]["annual_fee"])
}

func TestWriteJSON_EmptyIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, WriteJSON(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteCSV_FixedColumnsEmptyCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.csv")
	require.NoError(t, WriteCSV(sampleRecords(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columns(), rows[0])
	assert.Equal(t, "card_name", rows[0][0])
	assert.Equal(t, "Platinum Rewards Card", rows[1][0])
	assert.Equal(t, "$95", rows[1][3])
	assert.Equal(t, "", rows[2][3], "unresolved field is an empty cell")
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.xlsx")
	require.NoError(t, WriteXLSX(sampleRecords(), path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Cards", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "card_name", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "Platinum Rewards Card", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "$95", sheet.Rows[1].Cells[3].Value)
}

func TestWriteAll(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")

	paths, err := WriteAll(sampleRecords(), base, FormatAll)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err, "expected %s to exist", p)
	}

	paths, err = WriteAll(sampleRecords(), base, FormatJSON)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, base+".json", paths[0])
}
