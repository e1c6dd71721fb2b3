package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/addy1947/web-scrapping/internal/models"
)

// Writers for the completed record set. These are downstream adapters
// over the uniform tabular view (models.Header / Row); the batch core
// never depends on them.

func WriteCSV(path string, records []models.MedicineRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			return fmt.Errorf("write row for %s: %w", rec.URL, err)
		}
	}
	w.Flush()
	return w.Error()
}

func WriteJSON(path string, records []models.MedicineRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func WriteXLSX(path string, records []models.MedicineRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, 0, len(models.Header()))
	for _, h := range models.Header() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+2, err)
		}
		row := make([]interface{}, 0, len(rec.Row()))
		for _, v := range rec.Row() {
			row = append(row, v)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row for %s: %w", rec.URL, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteAll writes the record set next to basePath in all three formats,
// swapping the extension for each.
func WriteAll(basePath string, records []models.MedicineRecord) error {
	base := strings.TrimSuffix(basePath, filepath.Ext(basePath))

	if err := WriteCSV(base+".csv", records); err != nil {
		return err
	}
	if err := WriteJSON(base+".json", records); err != nil {
		return err
	}
	return WriteXLSX(base+".xlsx", records)
}
