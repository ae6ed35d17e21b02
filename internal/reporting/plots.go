package reporting

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/stats"
)

var (
	colorObserved = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	colorTrend    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorForecast = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorBand95   = color.RGBA{R: 31, G: 119, B: 180, A: 40}
	colorBand80   = color.RGBA{R: 31, G: 119, B: 180, A: 80}
	colorBound    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// monthX maps a month to a fractional-year X coordinate.
func monthX(m domain.Month) float64 {
	return float64(m.Year) + float64(int(m.Month)-1)/12
}

// PlotObservedTrend renders the observed series with the trend overlaid on
// the original scale.
func PlotObservedTrend(title string, points []*domain.ComponentPoint, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Interest"

	observed := make(plotter.XYs, 0, len(points))
	trend := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		x := monthX(pt.Month)
		observed = append(observed, plotter.XY{X: x, Y: pt.Observed})
		if !math.IsNaN(pt.Trend) {
			trend = append(trend, plotter.XY{X: x, Y: math.Exp(pt.Trend)})
		}
	}

	obsLine, err := plotter.NewLine(observed)
	if err != nil {
		return fmt.Errorf("observed line: %w", err)
	}
	obsLine.Color = colorObserved

	trendLine, err := plotter.NewLine(trend)
	if err != nil {
		return fmt.Errorf("trend line: %w", err)
	}
	trendLine.Color = colorTrend
	trendLine.Width = vg.Points(2)

	p.Add(plotter.NewGrid(), obsLine, trendLine)
	p.Legend.Add("observed", obsLine)
	p.Legend.Add("trend", trendLine)
	p.Legend.Top = true

	return p.Save(9*vg.Inch, 4*vg.Inch, path)
}

// PlotDecomposition renders the log series and its three components as
// stacked panels.
func PlotDecomposition(title string, points []*domain.ComponentPoint, path string) error {
	panels := []struct {
		name   string
		values func(*domain.ComponentPoint) float64
	}{
		{"log", func(p *domain.ComponentPoint) float64 { return p.Log }},
		{"trend", func(p *domain.ComponentPoint) float64 { return p.Trend }},
		{"seasonal", func(p *domain.ComponentPoint) float64 { return p.Seasonal }},
		{"residual", func(p *domain.ComponentPoint) float64 { return p.Residual }},
	}

	plots := make([][]*plot.Plot, len(panels))
	for i, panel := range panels {
		pl := plot.New()
		pl.Y.Label.Text = panel.name
		if i == 0 {
			pl.Title.Text = title
		}
		if i == len(panels)-1 {
			pl.X.Label.Text = "Year"
		}

		xys := make(plotter.XYs, 0, len(points))
		for _, pt := range points {
			v := panel.values(pt)
			if math.IsNaN(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: monthX(pt.Month), Y: v})
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("%s line: %w", panel.name, err)
		}
		line.Color = colorObserved
		pl.Add(plotter.NewGrid(), line)

		plots[i] = []*plot.Plot{pl}
	}

	img := vgimg.New(9*vg.Inch, 10*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: len(panels), Cols: 1}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// PlotResidualACF renders the residual correlogram with 95% bounds.
func PlotResidualACF(title string, residuals []float64, maxLag int, path string) error {
	corr := stats.ACFWithConfidence(residuals, maxLag)
	if corr == nil {
		return fmt.Errorf("cannot compute acf over %d residuals", len(residuals))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Lag"
	p.Y.Label.Text = "ACF"

	// Skip lag 0, always 1.
	bars := make(plotter.Values, len(corr.Values)-1)
	copy(bars, corr.Values[1:])

	chart, err := plotter.NewBarChart(bars, vg.Points(4))
	if err != nil {
		return fmt.Errorf("acf bars: %w", err)
	}
	chart.Color = colorForecast
	chart.XMin = 1

	p.Add(plotter.NewGrid(), chart)

	for _, bound := range []float64{corr.ConfBounds, -corr.ConfBounds} {
		line, err := plotter.NewLine(plotter.XYs{
			{X: 0, Y: bound},
			{X: float64(len(bars)) + 1, Y: bound},
		})
		if err != nil {
			return fmt.Errorf("bound line: %w", err)
		}
		line.Color = colorBound
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(line)
	}

	return p.Save(7*vg.Inch, 4*vg.Inch, path)
}

// PlotForecast renders observed history with the forecast path and shaded
// 80/95% interval bands.
func PlotForecast(title string, history []*domain.ComponentPoint, forecast []*domain.ForecastPoint, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Interest"

	observed := make(plotter.XYs, 0, len(history))
	for _, pt := range history {
		observed = append(observed, plotter.XY{X: monthX(pt.Month), Y: pt.Observed})
	}
	obsLine, err := plotter.NewLine(observed)
	if err != nil {
		return fmt.Errorf("observed line: %w", err)
	}
	obsLine.Color = colorObserved

	band95, err := intervalBand(forecast,
		func(p *domain.ForecastPoint) float64 { return p.Lo95 },
		func(p *domain.ForecastPoint) float64 { return p.Hi95 },
		colorBand95)
	if err != nil {
		return err
	}
	band80, err := intervalBand(forecast,
		func(p *domain.ForecastPoint) float64 { return p.Lo80 },
		func(p *domain.ForecastPoint) float64 { return p.Hi80 },
		colorBand80)
	if err != nil {
		return err
	}

	path95 := make(plotter.XYs, 0, len(forecast))
	for _, pt := range forecast {
		path95 = append(path95, plotter.XY{X: monthX(pt.Month), Y: pt.Point})
	}
	fcLine, err := plotter.NewLine(path95)
	if err != nil {
		return fmt.Errorf("forecast line: %w", err)
	}
	fcLine.Color = colorForecast
	fcLine.Width = vg.Points(2)

	p.Add(plotter.NewGrid(), band95, band80, obsLine, fcLine)
	p.Legend.Add("observed", obsLine)
	p.Legend.Add("forecast", fcLine)
	p.Legend.Top = true

	return p.Save(9*vg.Inch, 4*vg.Inch, path)
}

// intervalBand builds a filled polygon spanning [lo, hi] over the forecast.
func intervalBand(forecast []*domain.ForecastPoint, lo, hi func(*domain.ForecastPoint) float64, c color.Color) (*plotter.Polygon, error) {
	xys := make(plotter.XYs, 0, 2*len(forecast))
	for _, pt := range forecast {
		xys = append(xys, plotter.XY{X: monthX(pt.Month), Y: hi(pt)})
	}
	for i := len(forecast) - 1; i >= 0; i-- {
		xys = append(xys, plotter.XY{X: monthX(forecast[i].Month), Y: lo(forecast[i])})
	}

	poly, err := plotter.NewPolygon(xys)
	if err != nil {
		return nil, fmt.Errorf("interval band: %w", err)
	}
	poly.Color = c
	poly.LineStyle.Width = 0
	return poly, nil
}
