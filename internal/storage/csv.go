package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/virtdrone/internal/sim"
)

var baseColumns = []string{
	"step", "time", "dt", "altitude_m", "velocity_mps", "target_m",
	"rpm_ref", "thrust_n", "current_a", "battery_v", "soc_percent",
}

var motorColumns = []string{"rpm", "current_a", "temp_c"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteTelemetryCSV writes one row per sample. Motor columns are named
// after the motors of the first sample.
func WriteTelemetryCSV(out io.Writer, samples []sim.Telemetry) error {
	w := csv.NewWriter(out)

	header := append([]string{}, baseColumns...)
	if len(samples) > 0 {
		for _, m := range samples[0].Motors {
			for _, col := range motorColumns {
				header = append(header, m.Name+"_"+col)
			}
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range samples {
		row := []string{
			strconv.Itoa(t.Step),
			formatFloat(t.Time),
			formatFloat(t.Dt),
			formatFloat(t.AltitudeM),
			formatFloat(t.VelocityMps),
			formatFloat(t.TargetM),
			formatFloat(t.RPMRef),
			formatFloat(t.ThrustN),
			formatFloat(t.CurrentA),
			formatFloat(t.BatteryV),
			formatFloat(t.SoCPercent),
		}
		for _, m := range t.Motors {
			row = append(row, formatFloat(m.SpeedRPM), formatFloat(m.CurrentA), formatFloat(m.TemperatureC))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ReadTelemetryCSV parses what WriteTelemetryCSV wrote.
func ReadTelemetryCSV(in io.Reader) ([]sim.Telemetry, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []sim.Telemetry{}, nil
	}

	header := records[0]
	if len(header) < len(baseColumns) || header[0] != baseColumns[0] {
		return nil, fmt.Errorf("unexpected telemetry header %q", strings.Join(header, ","))
	}

	var motorNames []string
	for i := len(baseColumns); i+len(motorColumns) <= len(header); i += len(motorColumns) {
		motorNames = append(motorNames, strings.TrimSuffix(header[i], "_"+motorColumns[0]))
	}

	samples := make([]sim.Telemetry, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line+2, len(header), len(record))
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: step: %w", line+2, err)
		}
		vals := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			if vals[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line+2, header[j+1], err)
			}
		}

		t := sim.Telemetry{
			Step:        step,
			Time:        vals[0],
			Dt:          vals[1],
			AltitudeM:   vals[2],
			VelocityMps: vals[3],
			TargetM:     vals[4],
			RPMRef:      vals[5],
			ThrustN:     vals[6],
			CurrentA:    vals[7],
			BatteryV:    vals[8],
			SoCPercent:  vals[9],
		}
		off := len(baseColumns) - 1
		for k, name := range motorNames {
			base := off + k*len(motorColumns)
			t.Motors = append(t.Motors, sim.MotorTelemetry{
				Name:         name,
				SpeedRPM:     vals[base],
				CurrentA:     vals[base+1],
				TemperatureC: vals[base+2],
			})
		}
		samples = append(samples, t)
	}
	return samples, nil
}
