package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/export"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/store"
	"github.com/sells-group/diligence-cli/pkg/notion"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Publish benchmark runs to the Notion deal tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

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

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Industry: industry,
			Stage:    model.Stage(stage),
			Status:   model.RunStatus(status),
			MinRisk:  minRisk,
			Limit:    limit,
		})
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			zap.L().Info("no runs match the filter, nothing to export")
			return nil
		}

		client := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit))
		stats, err := export.New(client, cfg.Notion.DealDB).ExportRuns(ctx, runs)
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.Int("created", stats.Created),
			zap.Int("updated", stats.Updated),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("industry", "", "only export runs for this industry")
	exportCmd.Flags().String("stage", "", "only export runs for this funding stage")
	exportCmd.Flags().String("status", string(model.RunStatusComplete), "run status to export")
	exportCmd.Flags().Float64("min-risk", 0, "only export runs at or above this risk score")
	exportCmd.Flags().Int("limit", 100, "max number of runs to export")
	rootCmd.AddCommand(exportCmd)
}
