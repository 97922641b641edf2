package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/galpop/internal/pop"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one saved run. Counts are filled in by Save.
type RunMetadata struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Seed       int64     `json:"seed"`
	Horizon    float64   `json:"horizon"` // Myr
	Cadence    float64   `json:"cadence"` // Myr
	Potential  string    `json:"potential"`
	Stepper    string    `json:"stepper"`
	Integrator string    `json:"integrator"`
	Workers    int       `json:"workers"`
	Systems    int       `json:"systems"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

// FailureRecord is the persisted form of a per-system failure. Errors are
// flattened to strings; the structured chain does not survive a reload.
type FailureRecord struct {
	SystemID int    `json:"system_id"`
	Error    string `json:"error"`
}

// Save writes a run directory under the store's base dir and returns the run
// id. A missing ID gets a fresh UUID; a zero Timestamp gets the current time.
func (s *Store) Save(meta RunMetadata, result *pop.RunResult) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	meta.Systems = len(result.Histories) + len(result.Failures)
	meta.Succeeded = len(result.Histories)
	meta.Failed = len(result.Failures)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "histories.json"), result.Histories); err != nil {
		return "", err
	}

	if len(result.Failures) > 0 {
		recs := make([]FailureRecord, len(result.Failures))
		for i, f := range result.Failures {
			recs[i] = FailureRecord{SystemID: f.SystemID, Error: f.Err.Error()}
		}
		if err := writeJSON(filepath.Join(runDir, "failures.json"), recs); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

// List returns the metadata of every readable run, skipping directories with
// missing or malformed metadata.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadHistories reloads a run's full history log, ordered by system id as it
// was saved.
func (s *Store) LoadHistories(runID string) ([]*pop.History, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "histories.json"))
	if err != nil {
		return nil, err
	}

	var histories []*pop.History
	if err := json.Unmarshal(data, &histories); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return histories, nil
}

// LoadFailures returns the persisted failures for a run, or an empty slice
// when the run had none.
func (s *Store) LoadFailures(runID string) ([]FailureRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "failures.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return []FailureRecord{}, nil
		}
		return nil, err
	}

	var recs []FailureRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}

	return recs, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
