package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"NewsLabeler/internal/domain"
	"NewsLabeler/internal/ports"
)

// File names inside the output directory.
const (
	checkpointFile = "checkpoint.json"
	resultsFile    = "classification_results.json"
	summaryFile    = "processing_summary.json"
	finalCSVFile   = "final_results.csv"
)

// FileStore persists run state as flat JSON files in one output directory.
// The result log is append-only at the record level but rewritten as a whole
// file on each flush.
type FileStore struct {
	dir string
}

var _ ports.ResultStore = (*FileStore)(nil)

// NewFileStore creates the output directory if needed and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the output directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// FinalCSVPath is where the joined dataset lands.
func (s *FileStore) FinalCSVPath() string {
	return filepath.Join(s.dir, finalCSVFile)
}

// LoadCheckpoint reads the checkpoint; found is false when no run has been
// checkpointed yet.
func (s *FileStore) LoadCheckpoint() (domain.Checkpoint, bool, error) {
	var cp domain.Checkpoint

	raw, err := os.ReadFile(filepath.Join(s.dir, checkpointFile))
	if errors.Is(err, os.ErrNotExist) {
		return cp, false, nil
	}
	if err != nil {
		return cp, false, fmt.Errorf("read checkpoint: %w", err)
	}

	if err := json.Unmarshal(raw, &cp); err != nil {
		return cp, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	return cp, true, nil
}

// SaveCheckpoint overwrites the checkpoint file.
func (s *FileStore) SaveCheckpoint(cp domain.Checkpoint) error {
	return s.writeJSON(checkpointFile, cp)
}

// AppendResults merges new outcomes into the result log and rewrites it.
func (s *FileStore) AppendResults(outcomes []domain.Outcome) error {
	existing, err := s.LoadResults()
	if err != nil {
		return err
	}
	return s.writeJSON(resultsFile, append(existing, outcomes...))
}

// LoadResults returns the full result log; an absent file is an empty log.
func (s *FileStore) LoadResults() ([]domain.Outcome, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, resultsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	var outcomes []domain.Outcome
	if err := json.Unmarshal(raw, &outcomes); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return outcomes, nil
}

// SaveSummary writes the end-of-run aggregate statistics.
func (s *FileStore) SaveSummary(sum domain.Summary) error {
	return s.writeJSON(summaryFile, sum)
}

// WriteFinalCSV writes the joined dataset and returns its path.
func (s *FileStore) WriteFinalCSV(header []string, rows [][]string) (string, error) {
	path := s.FinalCSVPath()

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create final csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}

func (s *FileStore) writeJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
