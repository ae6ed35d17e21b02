package reporting

import (
	"fmt"
	"strings"
	"time"

	"search-interest-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	title := r.Term
	if r.Geo != "" {
		title = fmt.Sprintf("%s (%s)", r.Term, r.Geo)
	}
	sb.WriteString(fmt.Sprintf("# Search Interest Report: %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Series: %s | Status: %s\n\n", r.RunID, r.SeriesID, r.Status))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Range | %s to %s |\n", r.StartMonth, r.EndMonth))
	sb.WriteString(fmt.Sprintf("| Observations | %d |\n", r.NObs))
	sb.WriteString(fmt.Sprintf("| Imputed Months | %d |\n", len(r.ImputedMonths)))
	sb.WriteString(fmt.Sprintf("| Below-One Months | %d |\n", r.BelowOneMonths))
	sb.WriteString(fmt.Sprintf("| Min | %.2f |\n", r.ValueMin))
	sb.WriteString(fmt.Sprintf("| Max | %.2f |\n", r.ValueMax))
	sb.WriteString(fmt.Sprintf("| Mean | %.2f |\n", r.ValueMean))
	sb.WriteString("\n")

	if len(r.ImputedMonths) > 0 {
		sb.WriteString("Imputed months: " + strings.Join(r.ImputedMonths, ", ") + "\n\n")
	}

	if r.Status != domain.RunStatusCompleted {
		sb.WriteString(fmt.Sprintf("**Analysis did not complete.** Status: %s\n", r.Status))
		return sb.String()
	}

	// Transform
	sb.WriteString("## Transform\n\n")
	sb.WriteString(fmt.Sprintf("Box-Cox lambda estimate: %.2f. ", r.BoxCoxLambda))
	sb.WriteString("Analysis uses the natural log transform throughout.\n\n")

	// Seasonal pattern
	sb.WriteString("## Seasonal Pattern\n\n")
	if len(r.SeasonalEffects) > 0 {
		sb.WriteString("| Month | Effect (log) | Factor |\n")
		sb.WriteString("|-------|--------------|--------|\n")
		for _, e := range r.SeasonalEffects {
			sb.WriteString(fmt.Sprintf("| %s | %+.4f | %.3f |\n", e.Month, e.Effect, e.Factor))
		}
	} else {
		sb.WriteString("No seasonal pattern available.\n")
	}
	sb.WriteString("\n")

	// Model Selection
	sb.WriteString("## Residual Model Selection\n\n")
	sb.WriteString(fmt.Sprintf("Models tried: %d\n\n", r.ModelsTried))
	if len(r.Candidates) > 0 {
		sb.WriteString("| Order | AIC | AICc | BIC | LogLik | Selected |\n")
		sb.WriteString("|-------|-----|------|-----|--------|----------|\n")
		for i, m := range r.Candidates {
			if i >= 10 {
				break
			}
			selected := ""
			if m.Selected {
				selected = "yes"
			}
			sb.WriteString(fmt.Sprintf("| ARMA(%d,%d) | %.2f | %.2f | %.2f | %.2f | %s |\n",
				m.Order.P, m.Order.Q, m.AIC, m.AICc, m.BIC, m.LogLik, selected))
		}
		sb.WriteString("\n")

		sb.WriteString(fmt.Sprintf("Selected: ARMA(%d,%d), fitted on %d residuals.\n\n",
			r.Selected.Order.P, r.Selected.Order.Q, r.Selected.NObs))
		if len(r.Selected.ARCoeffs) > 0 {
			sb.WriteString(fmt.Sprintf("AR coefficients: %s\n\n", formatCoeffs(r.Selected.ARCoeffs)))
		}
		if len(r.Selected.MACoeffs) > 0 {
			sb.WriteString(fmt.Sprintf("MA coefficients: %s\n\n", formatCoeffs(r.Selected.MACoeffs)))
		}
		sb.WriteString(fmt.Sprintf("Intercept: %.5f | Innovation variance: %.6f\n\n",
			r.Selected.Intercept, r.Selected.Variance))
	} else {
		sb.WriteString("No candidate models available.\n\n")
	}

	// Diagnostics
	sb.WriteString("## Residual Diagnostics\n\n")
	d := r.Diagnostics
	sb.WriteString(fmt.Sprintf("Ljung-Box Q(%d) = %.3f, df = %d, p = %.4f\n\n",
		d.LjungBoxLags, d.LjungBoxStatistic, d.LjungBoxDOF, d.LjungBoxPValue))
	if d.ResidualsWhite {
		sb.WriteString("No significant residual autocorrelation detected.\n\n")
	} else {
		sb.WriteString("**Residual autocorrelation remains.** The selected model may underfit.\n\n")
	}
	if len(d.SignificantACFLags) > 0 {
		sb.WriteString(fmt.Sprintf("ACF lags outside the 95%% band: %v\n\n", d.SignificantACFLags))
	}

	// Forecast
	sb.WriteString("## Forecast\n\n")
	if len(r.Forecast) > 0 {
		sb.WriteString("| Month | Point | Lo80 | Hi80 | Lo95 | Hi95 |\n")
		sb.WriteString("|-------|-------|------|------|------|------|\n")
		for _, f := range r.Forecast {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				f.Month, f.Point, f.Lo80, f.Hi80, f.Lo95, f.Hi95))
		}
	} else {
		sb.WriteString("No forecast available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func formatCoeffs(coeffs []float64) string {
	parts := make([]string, len(coeffs))
	for i, c := range coeffs {
		parts[i] = fmt.Sprintf("%+.4f", c)
	}
	return strings.Join(parts, ", ")
}
