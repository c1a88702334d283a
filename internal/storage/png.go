package storage

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/virtdrone/internal/sim"
)

// Series picks one value out of every telemetry sample.
type Series struct {
	Name  string
	Label string
	Value func(t sim.Telemetry) float64
}

var (
	AltitudeSeries = Series{Name: "altitude", Label: "altitude (m)", Value: func(t sim.Telemetry) float64 { return t.AltitudeM }}
	TargetSeries   = Series{Name: "target", Label: "altitude (m)", Value: func(t sim.Telemetry) float64 { return t.TargetM }}
	SoCSeries      = Series{Name: "soc", Label: "state of charge (%)", Value: func(t sim.Telemetry) float64 { return t.SoCPercent }}
	RPMRefSeries   = Series{Name: "rpm_ref", Label: "speed reference (RPM)", Value: func(t sim.Telemetry) float64 { return t.RPMRef }}
	TempSeries     = Series{Name: "motor_temp", Label: "temperature (C)", Value: func(t sim.Telemetry) float64 { return t.MaxMotorTempC() }}
)

// SeriesByName maps CLI names to series.
var SeriesByName = map[string]Series{
	AltitudeSeries.Name: AltitudeSeries,
	TargetSeries.Name:   TargetSeries,
	SoCSeries.Name:      SoCSeries,
	RPMRefSeries.Name:   RPMRefSeries,
	TempSeries.Name:     TempSeries,
}

// ExportPNG draws the given series against time. With no series it plots
// altitude and target. The path extension selects the image format, so a
// .svg or .pdf path works too.
func ExportPNG(path, title string, samples []sim.Telemetry, series ...Series) error {
	if len(samples) == 0 {
		return ErrNoTelemetry
	}
	if len(series) == 0 {
		series = []Series{AltitudeSeries, TargetSeries}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = series[0].Label
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := make(plotter.XYs, len(samples))
		for j, t := range samples {
			pts[j].X = t.Time
			pts[j].Y = s.Value(t)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		if i > 0 {
			line.LineStyle.Dashes = plotutil.Dashes(i)
		}
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
