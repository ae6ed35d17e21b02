package reporting

import (
	"fmt"
	"math"
	"strings"

	"search-interest-lab/internal/domain"
)

// RenderComponentsCSV renders decomposition components as CSV string.
// Undefined trend and residual values render as empty fields.
func RenderComponentsCSV(points []*domain.ComponentPoint) string {
	var sb strings.Builder

	sb.WriteString("month,observed,log,trend,seasonal,residual\n")
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%s,%.6f,%s\n",
			p.Month,
			p.Observed,
			p.Log,
			csvFloat(p.Trend),
			p.Seasonal,
			csvFloat(p.Residual),
		))
	}

	return sb.String()
}

// RenderForecastCSV renders forecast points as CSV string.
func RenderForecastCSV(points []*domain.ForecastPoint) string {
	var sb strings.Builder

	sb.WriteString("month,horizon,point,lo80,hi80,lo95,hi95\n")
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%d,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			p.Month,
			p.Horizon,
			p.Point,
			p.Lo80,
			p.Hi80,
			p.Lo95,
			p.Hi95,
		))
	}

	return sb.String()
}

func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}
