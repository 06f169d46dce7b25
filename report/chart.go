package report

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Capturer turns one series into a PNG image.
type Capturer interface {
	Capture(ctx context.Context, s Series) ([]byte, error)
}

// ChartCapturer draws series with go-chart.
type ChartCapturer struct {
	Width  int
	Height int
}

func NewChartCapturer() *ChartCapturer {
	return &ChartCapturer{Width: 1110, Height: 660}
}

func (c *ChartCapturer) Capture(ctx context.Context, s Series) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	var err error
	if s.Kind == Pie && s.Total() > 0 {
		err = c.pie(s).Render(chart.PNG, &buf)
	} else {
		err = c.bar(s).Render(chart.PNG, &buf)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "report.capture(%s)", s.ID)
	}
	return buf.Bytes(), nil
}

func (c *ChartCapturer) pie(s Series) chart.PieChart {
	values := make([]chart.Value, 0, len(s.Points))
	for _, p := range s.Points {
		values = append(values, chart.Value{Label: p.Label, Value: p.Value, Style: fill(p.Color)})
	}
	return chart.PieChart{
		Title:  s.Title,
		Width:  c.Width,
		Height: c.Height,
		Values: values,
	}
}

// bar also renders empty and all-zero series, as a single empty bar on a 0..1 axis.
func (c *ChartCapturer) bar(s Series) chart.BarChart {
	bars := make([]chart.Value, 0, len(s.Points))
	max := 0.0
	for _, p := range s.Points {
		bars = append(bars, chart.Value{Label: p.Label, Value: p.Value, Style: fill(p.Color)})
		if p.Value > max {
			max = p.Value
		}
	}
	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: "No data"})
	}
	if max == 0 {
		max = 1
	}

	barWidth := 60
	if n := len(bars); n > 6 {
		barWidth = c.Width / (n * 2)
	}
	return chart.BarChart{
		Title:    s.Title,
		Width:    c.Width,
		Height:   c.Height,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max},
		},
		Bars: bars,
	}
}

func fill(hex string) chart.Style {
	if hex == "" {
		hex = defaultColor
	}
	color := drawing.ColorFromHex(hex)
	return chart.Style{FillColor: color, StrokeColor: color}
}
