package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
)

// metricLabels maps metric keys to report display names.
var metricLabels = map[string]string{
	"arr":           "ARR",
	"cac":           "CAC",
	"ltv":           "LTV",
	"ltv_cac_ratio": "LTV/CAC",
	"churn_rate":    "Churn",
	"growth_rate":   "Growth",
}

var usdPrinter = message.NewPrinter(language.English)

// formatMetricValue renders v in the unit conventional for the metric.
func formatMetricValue(metric string, v float64) string {
	switch metric {
	case "arr", "cac", "ltv":
		return usdPrinter.Sprintf("$%.0f", v)
	case "churn_rate", "growth_rate":
		return fmt.Sprintf("%.1f%%", v*100)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// formatBenchmarkReport writes a human-readable benchmark report. The
// detailed flags carry severity and recommendations that the result's
// flat descriptions omit.
func formatBenchmarkReport(out io.Writer, result *model.BenchmarkResult, flags []model.RedFlag) {
	c := result.Company

	_, _ = fmt.Fprintf(out, "Benchmark: %s\n", c.Name)
	if c.Industry != "" {
		_, _ = fmt.Fprintf(out, "Industry:  %s\n", c.Industry)
	}
	if c.Stage != "" {
		_, _ = fmt.Fprintf(out, "Stage:     %s\n", c.Stage)
	}
	_, _ = fmt.Fprintln(out)

	formatPeerGroup(out, result.PeerCompanies)
	formatComparisonTable(out, result.MetricsComparison)
	formatRedFlags(out, flags)

	if len(result.Insights) > 0 {
		_, _ = fmt.Fprintln(out, "Insights:")
		for _, insight := range result.Insights {
			_, _ = fmt.Fprintf(out, "  - %s\n", insight)
		}
		_, _ = fmt.Fprintln(out)
	}

	_, _ = fmt.Fprintf(out, "Risk score:     %.2f / 1.00\n", result.RiskScore)
	_, _ = fmt.Fprintf(out, "Recommendation: %s\n", result.Recommendation)
}

func formatPeerGroup(out io.Writer, peerCompanies []model.Company) {
	if len(peerCompanies) == 0 {
		_, _ = fmt.Fprintln(out, "Peer group: none (index has no comparable companies)")
		_, _ = fmt.Fprintln(out)
		return
	}

	names := make([]string, len(peerCompanies))
	for i, p := range peerCompanies {
		names[i] = p.Name
	}
	_, _ = fmt.Fprintf(out, "Peer group (%d): %s\n\n", len(names), strings.Join(names, ", "))
}

func formatComparisonTable(out io.Writer, comparisons map[string]model.MetricComparison) {
	if len(comparisons) == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METRIC\tCOMPANY\tPEER MEDIAN\tP25\tP75\tPCTL\tVS MEDIAN")
	_, _ = fmt.Fprintln(w, "------\t-------\t-----------\t---\t---\t----\t---------")

	for _, metric := range peers.BenchmarkMetrics {
		cmp, ok := comparisons[metric]
		if !ok {
			continue
		}

		label := metricLabels[metric]
		if label == "" {
			label = metric
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f\t%+.1f%%\n",
			label,
			formatMetricValue(metric, cmp.CompanyValue),
			formatMetricValue(metric, cmp.PeerMedian),
			formatMetricValue(metric, cmp.PeerP25),
			formatMetricValue(metric, cmp.PeerP75),
			cmp.CompanyPercentile,
			cmp.VsMedian*100,
		)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
}

func formatRedFlags(out io.Writer, flags []model.RedFlag) {
	if len(flags) == 0 {
		_, _ = fmt.Fprintln(out, "Red flags: none")
		_, _ = fmt.Fprintln(out)
		return
	}

	_, _ = fmt.Fprintf(out, "Red flags (%d):\n", len(flags))
	for _, f := range flags {
		_, _ = fmt.Fprintf(out, "  [%s] %s\n", f.Severity, f.Description)
		if f.Recommendation != "" {
			_, _ = fmt.Fprintf(out, "      -> %s\n", f.Recommendation)
		}
	}
	_, _ = fmt.Fprintln(out)
}
