package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

// Store keeps one directory per run under baseDir, named by run id.
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
	ID              string             `json:"id"`
	Scenario        string             `json:"scenario"`
	Timestamp       time.Time          `json:"timestamp"`
	Bodies          int                `json:"bodies"`
	Dim             int                `json:"dim"`
	Colors          []string           `json:"colors,omitempty"`
	G               float64            `json:"g"`
	Dt              float64            `json:"dt"`
	Steps           int                `json:"steps"`
	Time            float64            `json:"time"`
	EnergyDrift     float64            `json:"energy_drift"`
	CloseEncounters int                `json:"close_encounters"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Save writes meta and the recorded trajectory under meta.ID.
func (s *Store) Save(meta RunMetadata, rec *Recorder) error {
	if meta.ID == "" {
		return errors.New("run metadata has no id")
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeTrajectory(w, meta.Bodies, meta.Dim, rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeTrajectory(w *csv.Writer, bodies, dim int, rec *Recorder) error {
	axes := []string{"x", "y", "z"}[:dim]
	header := []string{"step", "time"}
	for i := 0; i < bodies; i++ {
		for _, a := range axes {
			header = append(header, fmt.Sprintf("b%d_%s", i, a))
		}
		for _, a := range axes {
			header = append(header, fmt.Sprintf("b%d_v%s", i, a))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	for _, sample := range rec.Samples() {
		row := []string{
			strconv.Itoa(sample.Step),
			strconv.FormatFloat(sample.Time, 'g', -1, 64),
		}
		for _, body := range sample.Rows {
			for _, val := range body {
				row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns saved runs, oldest first. Directories without readable
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads back the recorded samples of a run.
func (s *Store) LoadTrajectory(runID string) ([]Sample, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	width := 2 * meta.Dim
	samples := make([]Sample, 0, len(records)-1)
	for n, record := range records[1:] {
		if len(record) != 2+meta.Bodies*width {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", trajectoryFile, n+2, 2+meta.Bodies*width, len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", trajectoryFile, n+2, err)
		}
		vals := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", trajectoryFile, n+2, err)
			}
			vals[j] = v
		}

		rows := make([][]float64, meta.Bodies)
		for i := range rows {
			rows[i] = vals[1+i*width : 1+(i+1)*width]
		}
		samples = append(samples, Sample{Step: step, Time: vals[0], Rows: rows})
	}
	return samples, nil
}
