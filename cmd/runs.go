package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect benchmark run history",
	Long:  "Commands for listing, viewing, and summarizing benchmark runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List benchmark runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		industry, _ := cmd.Flags().GetString("industry")
		stage, _ := cmd.Flags().GetString("stage")
		status, _ := cmd.Flags().GetString("status")
		minRisk, _ := cmd.Flags().GetFloat64("min-risk")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.RunFilter{
			Industry: industry,
			Stage:    model.Stage(stage),
			Status:   model.RunStatus(status),
			MinRisk:  minRisk,
			Limit:    limit,
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		return printJSON(os.Stdout, run)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, store.RunFilter{Limit: 10000})
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		stats := computeRunStats(runs)
		formatRunStats(os.Stdout, stats)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("industry", "", "filter by industry")
	runsListCmd.Flags().String("stage", "", "filter by funding stage")
	runsListCmd.Flags().String("status", "", "filter by run status (complete, failed)")
	runsListCmd.Flags().Float64("min-risk", 0, "only show runs at or above this risk score")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// runStats holds aggregate statistics computed from a set of runs.
type runStats struct {
	Total    int
	Complete int
	Failed   int
	HighRisk int
	AvgRisk  float64
	AvgFlags float64
}

// computeRunStats computes aggregate statistics from a list of runs.
// Averages cover completed runs only; HighRisk counts scores above 0.7.
func computeRunStats(runs []model.BenchmarkRun) runStats {
	var s runStats
	s.Total = len(runs)

	var riskTotal, flagTotal float64
	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			s.Complete++
			riskTotal += r.RiskScore
			flagTotal += float64(r.FlagCount)
			if r.RiskScore > 0.7 {
				s.HighRisk++
			}
		case model.RunStatusFailed:
			s.Failed++
		}
	}

	if s.Complete > 0 {
		s.AvgRisk = riskTotal / float64(s.Complete)
		s.AvgFlags = flagTotal / float64(s.Complete)
	}
	return s
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.BenchmarkRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tINDUSTRY\tSTAGE\tRISK\tFLAGS\tSTATUS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t-----\t----\t-----\t------\t-------")

	for _, r := range runs {
		company := r.CompanyName
		if len(company) > 30 {
			company = company[:27] + "..."
		}

		risk := "-"
		if r.Status == model.RunStatusComplete {
			risk = fmt.Sprintf("%.2f", r.RiskScore)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			truncateID(r.ID),
			company,
			r.Industry,
			r.Stage,
			risk,
			r.FlagCount,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRunStats writes aggregate stats to w.
func formatRunStats(out io.Writer, s runStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.Complete)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "High risk (>0.7):\t%d\n", s.HighRisk)
	if s.Complete > 0 {
		_, _ = fmt.Fprintf(w, "Avg risk score:\t%.2f\n", s.AvgRisk)
		_, _ = fmt.Fprintf(w, "Avg red flags:\t%.1f\n", s.AvgFlags)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
