package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// ViewsChartName is the Content-Id of the views chart image.
const ViewsChartName = "views_chart"

// Chart is a rendered PNG image referenced from the report by name.
type Chart struct {
	Name string
	PNG  []byte
}

// PlotViews draws the daily views and unique visitors as two lines.
func PlotViews(views []models.DayTraffic) ([]byte, error) {
	if len(views) < 2 {
		return nil, fmt.Errorf("plot views: need at least 2 points, got %d", len(views))
	}

	xs := make([]time.Time, 0, len(views))
	counts := make([]float64, 0, len(views))
	uniques := make([]float64, 0, len(views))
	maxY := 1.0
	for _, v := range views {
		xs = append(xs, v.Timestamp)
		counts = append(counts, float64(v.Count))
		uniques = append(uniques, float64(v.Uniques))
		if float64(v.Count) > maxY {
			maxY = float64(v.Count)
		}
	}

	graph := chart.Chart{
		Width:  1200,
		Height: 300,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "count", XValues: xs, YValues: counts},
			chart.TimeSeries{Name: "uniques", XValues: xs, YValues: uniques},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("plot views: %w", err)
	}
	return buf.Bytes(), nil
}
