package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/virtdrone/internal/sim"
)

type ExportData struct {
	Preset     string             `json:"preset"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	SpeedLaw   string             `json:"speed_law"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	TargetM    float64            `json:"target_m"`
	Telemetry  []sim.Telemetry    `json:"telemetry"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

func newExportData(meta RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		Preset:     meta.Preset,
		Integrator: meta.Integrator,
		Controller: meta.Controller,
		SpeedLaw:   meta.SpeedLaw,
		Dt:         meta.Dt,
		Steps:      result.StepsTaken,
		TargetM:    meta.TargetM,
		Telemetry:  result.Telemetry,
		Metrics:    result.Metrics,
	}
	for _, err := range result.Errors {
		data.Errors = append(data.Errors, err.Error())
	}
	return data
}

// WriteJSON encodes the run as indented JSON.
func WriteJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, result))
}

func ExportJSON(path string, meta RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, result)
}

func ExportCSV(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteTelemetryCSV(file, result.Telemetry)
}
