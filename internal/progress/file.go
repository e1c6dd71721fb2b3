package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/addy1947/web-scrapping/internal/models"
)

// FileSink checkpoints the cumulative record set to a JSON file after
// every record. The file always holds a complete, loadable snapshot, so
// a crash mid-batch loses at most the URL in flight.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

type checkpointFile struct {
	BatchID string                  `json:"batch_id"`
	Records []models.MedicineRecord `json:"records"`
}

func (s *FileSink) Persist(_ context.Context, batchID string, records []models.MedicineRecord) error {
	data, err := json.MarshalIndent(checkpointFile{BatchID: batchID, Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	// Write to temp file first for atomicity
	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return os.Rename(tmpFile, s.path)
}

// Load reads a previously written checkpoint, for inspecting what a
// crashed batch had committed.
func (s *FileSink) Load() (string, []models.MedicineRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", nil, err
	}

	var cp checkpointFile
	if err := json.Unmarshal(data, &cp); err != nil {
		return "", nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return cp.BatchID, cp.Records, nil
}
