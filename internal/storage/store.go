package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/virtdrone/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	telemetryFile = "telemetry.csv"
)

var ErrNoTelemetry = errors.New("storage: run has no telemetry")

// Store keeps one directory per run under baseDir.
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
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	SpeedLaw   string             `json:"speed_law"`
	TargetM    float64            `json:"target_m"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and telemetry.csv for a finished run. ID,
// Timestamp and Metrics on meta are filled in from the run.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if meta.Preset == "" {
		meta.Preset = "custom"
	}
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Preset, now.UnixNano())
	meta.Timestamp = now
	meta.Metrics = result.Metrics
	if meta.Steps == 0 {
		meta.Steps = result.StepsTaken
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, telemetryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTelemetryCSV(csvFile, result.Telemetry); err != nil {
		return "", fmt.Errorf("writing telemetry: %w", err)
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
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
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTelemetry(runID string) ([]sim.Telemetry, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadTelemetryCSV(file)
}
