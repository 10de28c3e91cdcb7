package app

import (
	"context"
	"errors"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"

	"rail-controls/internal/dataset"
	"rail-controls/internal/domain"
)

// Export runs the evaluation and renders the metrics table as a PNG bar
// chart and/or a standalone CSV.
func (a *App) Export(_ context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	_, result, err := a.runEngine()
	if err != nil {
		return err
	}

	metrics := result.Metrics
	if len(metrics) == 0 {
		a.Logger.Info().Msg("no control produced any hit; nothing to export")
		return nil
	}
	if limit := a.Config.Export.MaxControls; len(metrics) > limit {
		metrics = metrics[:limit]
	}

	a.Logger.Info().Int("controls", len(metrics)).Msg("exporting metrics")

	if opts.CSVPath != "" {
		if err := dataset.WriteMetrics(opts.CSVPath, metrics); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := a.writeMetricsPNG(opts.PNGPath, metrics); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) writeMetricsPNG(path string, metrics []domain.Metric) error {
	bars := make([]chart.Value, 0, len(metrics))
	for _, m := range metrics {
		bars = append(bars, chart.Value{
			Label: m.ControlID,
			Value: float64(m.Hits),
		})
	}

	graph := chart.BarChart{
		Title:    "Control hits",
		Width:    a.Config.Export.ChartWidth,
		Height:   a.Config.Export.ChartHeight,
		BarWidth: 60,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		Bars: bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
