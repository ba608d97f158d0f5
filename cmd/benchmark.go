package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/benchmark"
	"github.com/sells-group/diligence-cli/internal/enrich"
	"github.com/sells-group/diligence-cli/internal/estimate"
	"github.com/sells-group/diligence-cli/internal/extract"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/store"
	anthropicpkg "github.com/sells-group/diligence-cli/pkg/anthropic"
	"github.com/sells-group/diligence-cli/pkg/crunchbase"
	"github.com/sells-group/diligence-cli/pkg/linkedin"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Benchmark a company against its statistical peer group",
	Long: `Benchmark a target company against the indexed corpus: retrieve its
nearest peers, compare every metric against the industry cohort, detect
red flags and score the overall risk.

The target comes from --scenario, the first row of --file, or the
company flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		company, err := resolveCompany(cmd)
		if err != nil {
			return err
		}

		if deckPath, _ := cmd.Flags().GetString("pitch-deck"); deckPath != "" {
			if err := cfg.Validate("extract"); err != nil {
				return err
			}
			content, err := os.ReadFile(deckPath)
			if err != nil {
				return eris.Wrapf(err, "read pitch deck %s", deckPath)
			}

			extractor := extract.New(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens))
			extraction, err := extractor.PitchDeck(ctx, string(content))
			if err != nil {
				return err
			}

			zap.L().Info("pitch deck extracted",
				zap.String("company", extraction.Company.Name),
				zap.Float64("confidence", extraction.ExtractionConfidence),
				zap.Strings("missing", extraction.MissingFields))
			fillCompany(&company, extraction.Company)
			if company.Name == "" {
				company.Name = extraction.Company.Name
			}
		}

		if company.Name == "" {
			return eris.New("no target company: pass --scenario, --file, --name or --pitch-deck")
		}

		if doEnrich, _ := cmd.Flags().GetBool("enrich"); doEnrich {
			cbClient := crunchbase.NewClient(cfg.Crunchbase.Key, crunchbase.WithBaseURL(cfg.Crunchbase.BaseURL))
			liClient := linkedin.NewClient(cfg.LinkedIn.Key, linkedin.WithBaseURL(cfg.LinkedIn.BaseURL))

			company, err = enrich.New(cbClient, liClient).Enrich(ctx, company)
			if err != nil {
				return err
			}
		}

		indexPath, _ := cmd.Flags().GetString("index")
		idx, err := loadIndex(indexPath)
		if err != nil {
			return err
		}

		if doEstimate, _ := cmd.Flags().GetBool("estimate"); doEstimate && company.ARR == nil {
			est, err := estimate.NewEstimator(idx).ARR(company)
			if err != nil {
				zap.L().Warn("arr estimation skipped", zap.String("company", company.Name), zap.Error(err))
			} else {
				company.ARR = model.Ptr(est.ARR)
				company.DataSources = append(company.DataSources, "estimated")
				fmt.Fprintf(os.Stderr, "Estimated ARR %s from %d %s peers (confidence %.0f%%)\n",
					estimate.FormatARR(est.ARR), est.SampleSize, est.Cohort, est.Confidence*100)
			}
		}

		rules, err := engineRules()
		if err != nil {
			return err
		}
		engine := benchmark.NewEngine(idx, rules)

		peerCount, _ := cmd.Flags().GetInt("peers")
		if peerCount < 1 {
			peerCount = cfg.Index.PeerCount
		}

		result := engine.BenchmarkCompany(company, peerCount)

		if save, _ := cmd.Flags().GetBool("save"); save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run := store.NewRun(result)
			if err := st.SaveRun(ctx, run); err != nil {
				return eris.Wrap(err, "save run")
			}
			zap.L().Info("run saved", zap.String("run_id", run.ID))
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, result)
		}

		formatBenchmarkReport(os.Stdout, result, engine.Flags(result.Company))
		return nil
	},
}

func init() {
	addCompanyFlags(benchmarkCmd)
	benchmarkCmd.Flags().String("scenario", "", "benchmark a built-in scenario company")
	benchmarkCmd.Flags().String("file", "", "benchmark the first company in this file (xlsx, csv or json)")
	benchmarkCmd.Flags().String("pitch-deck", "", "extract company metrics from this pitch deck text before benchmarking")
	benchmarkCmd.Flags().Bool("enrich", false, "fill missing fields from Crunchbase and LinkedIn first")
	benchmarkCmd.Flags().Bool("estimate", false, "estimate missing ARR from peer ARR-per-employee ratios")
	benchmarkCmd.Flags().Int("peers", 0, "peer group size (default from config)")
	benchmarkCmd.Flags().String("index", "", "index snapshot path prefix (default from config)")
	benchmarkCmd.Flags().Bool("save", true, "record the run in the history store")
	benchmarkCmd.Flags().Bool("json", false, "print the full result as JSON instead of a report")
	rootCmd.AddCommand(benchmarkCmd)
}
