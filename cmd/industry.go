package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/diligence-cli/internal/benchmark"
)

var industryCmd = &cobra.Command{
	Use:   "industry <name>",
	Short: "Show descriptive statistics for an industry cohort",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indexPath, _ := cmd.Flags().GetString("index")
		idx, err := loadIndex(indexPath)
		if err != nil {
			return err
		}

		rules, err := engineRules()
		if err != nil {
			return err
		}
		engine := benchmark.NewEngine(idx, rules)

		industry := args[0]
		analysis, err := engine.IndustryAnalysis(industry)
		if err != nil {
			if errors.Is(err, benchmark.ErrNoCohort) {
				fmt.Fprintf(os.Stderr, "No companies found for industry: %s\n", industry)
				return nil
			}
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, analysis)
		}

		_, _ = fmt.Fprintf(os.Stdout, "Industry: %s (%d companies)\n\n", industry, analysis.TotalCompanies)

		sections := []struct {
			metric string
			stats  map[string]float64
		}{
			{"arr", analysis.ARRStats},
			{"cac", analysis.CACStats},
			{"ltv", analysis.LTVStats},
			{"churn_rate", analysis.ChurnStats},
			{"growth_rate", analysis.GrowthStats},
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "METRIC\tCOUNT\tMEAN\tMEDIAN\tSTD\tMIN\tMAX\tP25\tP75")
		_, _ = fmt.Fprintln(w, "------\t-----\t----\t------\t---\t---\t---\t---\t---")
		for _, s := range sections {
			if len(s.stats) == 0 {
				continue
			}

			label := metricLabels[s.metric]
			if label == "" {
				label = s.metric
			}

			_, _ = fmt.Fprintf(w, "%s\t%.0f\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				label,
				s.stats["count"],
				formatMetricValue(s.metric, s.stats["mean"]),
				formatMetricValue(s.metric, s.stats["median"]),
				formatMetricValue(s.metric, s.stats["std"]),
				formatMetricValue(s.metric, s.stats["min"]),
				formatMetricValue(s.metric, s.stats["max"]),
				formatMetricValue(s.metric, s.stats["p25"]),
				formatMetricValue(s.metric, s.stats["p75"]),
			)
		}
		return w.Flush()
	},
}

func init() {
	industryCmd.Flags().String("index", "", "index snapshot path prefix (default from config)")
	industryCmd.Flags().Bool("json", false, "print the analysis as JSON")
	rootCmd.AddCommand(industryCmd)
}
