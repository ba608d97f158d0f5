package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Query the peer similarity index",
	Long:  "Commands for nearest-neighbor retrieval, criteria filtering and industry benchmarks.",
}

// -- peers similar --

var peersSimilarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find the companies most similar to a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		company, err := resolveCompany(cmd)
		if err != nil {
			return err
		}
		if company.Name == "" {
			return eris.New("no target company: pass --scenario, --file or --name")
		}

		indexPath, _ := cmd.Flags().GetString("index")
		idx, err := loadIndex(indexPath)
		if err != nil {
			return err
		}

		k, _ := cmd.Flags().GetInt("count")
		results := idx.Search(company, k)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, results)
		}

		if len(results) == 0 {
			fmt.Fprintln(os.Stderr, "No similar companies found.")
			return nil
		}
		formatSearchResults(os.Stdout, results)
		return nil
	},
}

// -- peers find --

var peersFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Filter indexed companies by criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		indexPath, _ := cmd.Flags().GetString("index")
		idx, err := loadIndex(indexPath)
		if err != nil {
			return err
		}

		criteria, err := criteriaFromFlags(cmd)
		if err != nil {
			return err
		}

		entries, err := idx.FindByCriteria(criteria)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, entries)
		}

		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No companies match the criteria.")
			return nil
		}
		formatEntries(os.Stdout, entries)
		return nil
	},
}

// -- peers benchmarks --

var peersBenchmarksCmd = &cobra.Command{
	Use:   "benchmarks <industry>",
	Short: "Show metric benchmarks for an industry cohort",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indexPath, _ := cmd.Flags().GetString("index")
		idx, err := loadIndex(indexPath)
		if err != nil {
			return err
		}

		industry := args[0]
		benchmarks := idx.IndustryBenchmarks(industry)
		if len(benchmarks) == 0 {
			fmt.Fprintf(os.Stderr, "No companies found for industry: %s\n", industry)
			return nil
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, benchmarks)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "METRIC\tMEDIAN\tMEAN\tP25\tP75")
		_, _ = fmt.Fprintln(w, "------\t------\t----\t---\t---")
		for _, metric := range peers.BenchmarkMetrics {
			b, ok := benchmarks[metric]
			if !ok {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				metric,
				formatMetricValue(metric, b.Median),
				formatMetricValue(metric, b.Mean),
				formatMetricValue(metric, b.P25),
				formatMetricValue(metric, b.P75),
			)
		}
		return w.Flush()
	},
}

func init() {
	addCompanyFlags(peersSimilarCmd)
	peersSimilarCmd.Flags().String("scenario", "", "use a built-in scenario company as the target")
	peersSimilarCmd.Flags().String("file", "", "use the first company in this file as the target")
	peersSimilarCmd.Flags().Int("count", 10, "number of neighbors to return")

	peersFindCmd.Flags().String("industry", "", "industry filter (case-insensitive substring)")
	peersFindCmd.Flags().String("stage", "", "funding stage filter")
	peersFindCmd.Flags().Float64("min-arr", 0, "minimum ARR")
	peersFindCmd.Flags().Float64("max-arr", 0, "maximum ARR")
	peersFindCmd.Flags().Int("min-employees", 0, "minimum employee count")
	peersFindCmd.Flags().Int("max-employees", 0, "maximum employee count")

	for _, sub := range []*cobra.Command{peersSimilarCmd, peersFindCmd, peersBenchmarksCmd} {
		sub.Flags().String("index", "", "index snapshot path prefix (default from config)")
		sub.Flags().Bool("json", false, "print results as JSON")
		peersCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(peersCmd)
}

// criteriaFromFlags builds a Criteria from whichever filter flags were set.
func criteriaFromFlags(cmd *cobra.Command) (peers.Criteria, error) {
	f := cmd.Flags()
	var c peers.Criteria

	industry, _ := f.GetString("industry")
	c.Industry = industry

	if stage, _ := f.GetString("stage"); stage != "" {
		c.Stage = model.Stage(stage)
		if !c.Stage.IsValid() {
			return c, eris.Errorf("unknown stage %q", stage)
		}
	}

	if f.Changed("min-arr") {
		v, _ := f.GetFloat64("min-arr")
		c.MinARR = &v
	}
	if f.Changed("max-arr") {
		v, _ := f.GetFloat64("max-arr")
		c.MaxARR = &v
	}
	if f.Changed("min-employees") {
		v, _ := f.GetInt("min-employees")
		c.MinEmployees = &v
	}
	if f.Changed("max-employees") {
		v, _ := f.GetInt("max-employees")
		c.MaxEmployees = &v
	}

	return c, nil
}

func formatSearchResults(out io.Writer, results []peers.SearchResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COMPANY\tINDUSTRY\tSTAGE\tARR\tSIMILARITY")
	_, _ = fmt.Fprintln(w, "-------\t--------\t-----\t---\t----------")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3f\n",
			r.Company.Name,
			r.Company.Industry,
			r.Company.Stage,
			fmtMoneyPtr(r.Company.ARR),
			r.Similarity,
		)
	}
	_ = w.Flush()
}

func formatEntries(out io.Writer, entries []peers.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tINDUSTRY\tSTAGE\tARR\tEMPLOYEES")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t-----\t---\t---------")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Company.Name,
			e.Company.Industry,
			e.Company.Stage,
			fmtMoneyPtr(e.Company.ARR),
			fmtIntPtr(e.Company.EmployeeCount),
		)
	}
	_ = w.Flush()
}

// fmtMoneyPtr renders an optional dollar amount, "-" when absent.
func fmtMoneyPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return usdPrinter.Sprintf("$%.0f", *v)
}

// fmtIntPtr renders an optional count, "-" when absent.
func fmtIntPtr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
