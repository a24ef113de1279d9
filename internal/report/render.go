package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
)

//go:embed templates/report.mjml
var templates embed.FS

// Rendered is a report ready to be converted to HTML and mailed.
type Rendered struct {
	Subject string
	Markup  string
	Charts  []Chart
}

// Renderer turns report data into MJML markup plus chart images.
type Renderer struct {
	tmpl   *template.Template
	logger *logrus.Logger
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.UTC().Format("02 Jan 2006")
	},
	"datetime": func(t time.Time) string {
		return t.UTC().Format("02 Jan 2006 15:04 MST")
	},
	"deref": func(v *int) int {
		if v == nil {
			return 0
		}
		return *v
	},
	"signed": func(v int) string {
		return fmt.Sprintf("%+d", v)
	},
	"percent": func(v *float64) string {
		return fmt.Sprintf("%+.1f%%", *v*100)
	},
	"deltaColor": func(v int) string {
		return deltaColor(float64(v))
	},
	"percentColor": func(v *float64) string {
		return deltaColor(*v)
	},
}

func deltaColor(v float64) string {
	switch {
	case v > 0:
		return "#1a7f37"
	case v < 0:
		return "#cf222e"
	}
	return "#57606a"
}

// NewRenderer parses the embedded report template.
func NewRenderer(logger *logrus.Logger) (*Renderer, error) {
	tmpl, err := template.New("report.mjml").Funcs(funcs).ParseFS(templates, "templates/report.mjml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// Subject is the email subject of a report.
func Subject(d *Data) string {
	return fmt.Sprintf("Daily updates of %s (%s)", d.FullName(), d.GeneratedAt.UTC().Format("02 Jan 2006"))
}

type templateData struct {
	Subject        string
	Data           *Data
	Counters       []CounterMetric
	TrafficMetrics []TrafficMetric
	ViewsChartSrc  template.URL
}

// Render draws the charts and fills the MJML template.
func (r *Renderer) Render(d *Data) (*Rendered, error) {
	png, err := PlotViews(d.Traffic)
	if err != nil {
		return nil, apperrors.NewRenderOrDispatchError("failed to plot views", err)
	}

	subject := Subject(d)
	var buf bytes.Buffer
	err = r.tmpl.Execute(&buf, templateData{
		Subject:        subject,
		Data:           d,
		Counters:       []CounterMetric{d.Stars, d.Downloads, d.OpenIssues},
		TrafficMetrics: []TrafficMetric{d.Views, d.Uniques},
		ViewsChartSrc:  template.URL("cid:" + ViewsChartName),
	})
	if err != nil {
		return nil, apperrors.NewRenderOrDispatchError("failed to execute report template", err)
	}

	r.logger.WithFields(logrus.Fields{
		"repo":   d.FullName(),
		"markup": buf.Len(),
		"chart":  len(png),
	}).Debug("Rendered report")

	return &Rendered{
		Subject: subject,
		Markup:  buf.String(),
		Charts:  []Chart{{Name: ViewsChartName, PNG: png}},
	}, nil
}
