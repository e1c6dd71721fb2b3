package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addy1947/web-scrapping/internal/models"
)

func fptr(v float64) *float64 { return &v }

func testRecords() []models.MedicineRecord {
	return []models.MedicineRecord{
		{
			URL:             "https://site/drug/a",
			Status:          models.StatusSuccess,
			Name:            "Dolo 650",
			MRP:             fptr(30),
			DiscountedPrice: fptr(27),
			Quantity:        "15 tablets",
		},
		{
			URL:    "https://site/drug/b",
			Status: models.StatusFailed,
			Error:  "timeout",
		},
	}
}

func TestWriteCSVIsUniformlyTabular(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, testRecords()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records

	assert.Equal(t, models.Header(), rows[0])
	assert.Equal(t, "https://site/drug/a", rows[1][0])
	assert.Equal(t, "success", rows[1][1])
	assert.Equal(t, "30.00", rows[1][3])

	// Failed record keeps the same column set, with sentinels.
	assert.Len(t, rows[2], len(models.Header()))
	assert.Equal(t, "failed", rows[2][1])
	assert.Equal(t, models.NotFound, rows[2][2])
	assert.Equal(t, "timeout", rows[2][9])
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, testRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded []models.MedicineRecord
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Len(t, loaded, 2)
	assert.Equal(t, "Dolo 650", loaded[0].Name)
	assert.Equal(t, models.StatusFailed, loaded[1].Status)
}

func TestWriteAllProducesThreeFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "medicines.csv")
	require.NoError(t, WriteAll(base, testRecords()))

	for _, ext := range []string{".csv", ".json", ".xlsx"} {
		_, err := os.Stat(filepath.Join(dir, "medicines"+ext))
		assert.NoError(t, err, ext)
	}
}
