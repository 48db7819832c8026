// Package storage persists configurations and run output. Each run gets
// a directory under the store root holding metadata.json, the per-step
// observables as CSV, and the block/final configuration snapshots.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/shearmd/internal/observe"
	"github.com/san-kum/shearmd/internal/system"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	N          int                `json:"n"`
	Box        float64            `json:"box"`
	Density    float64            `json:"density"`
	Cutoff     float64            `json:"r_cut"`
	Dt         float64            `json:"dt"`
	StrainRate float64            `json:"strain_rate"`
	Strain     float64            `json:"final_strain"`
	Blocks     int                `json:"blocks"`
	Steps      int                `json:"steps_per_block"`
	Averages   map[string]float64 `json:"averages"`
}

// Begin creates a fresh run directory and returns its ID.
func (s *Store) Begin() (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	if err := os.MkdirAll(filepath.Join(s.baseDir, runID), 0755); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) runDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// SaveBlockSnapshot writes the configuration at a block boundary.
func (s *Store) SaveBlockSnapshot(runID string, block int, st *system.State) error {
	path := filepath.Join(s.runDir(runID), fmt.Sprintf("cnf.%03d", block))
	return WriteSnapshot(path, st)
}

// Finish writes the final snapshot, metadata and observables time series.
// It is only called for a run that completed cleanly; an aborted run
// leaves no final configuration behind.
func (s *Store) Finish(runID string, meta RunMetadata, st *system.State, rec *observe.Recorder) error {
	if err := WriteSnapshot(filepath.Join(s.runDir(runID), "cnf.out"), st); err != nil {
		return err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	metaFile, err := os.Create(filepath.Join(s.runDir(runID), "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	if rec == nil {
		return nil
	}
	return s.writeObservables(runID, rec)
}

func (s *Store) writeObservables(runID string, rec *observe.Recorder) error {
	file, err := os.Create(filepath.Join(s.runDir(runID), "observables.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := append([]string{"time"}, observe.Names...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range rec.Sets {
		row := []string{strconv.FormatFloat(rec.Times[i], 'f', 6, 64)}
		for _, v := range rec.Sets[i].Values() {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadObservables reads the stored time series back as columns keyed by
// observable name, plus the time column.
func (s *Store) LoadObservables(runID string) (map[string][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.runDir(runID), "observables.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return map[string][]float64{}, []float64{}, nil
	}

	header := records[0]
	cols := make(map[string][]float64, len(header)-1)
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != len(header) {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				val = 0
			}
			cols[header[j]] = append(cols[header[j]], val)
		}
	}
	return cols, times, nil
}
