package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/corpus"
	"github.com/sells-group/diligence-cli/internal/peers"
)

var (
	seedCount   int
	seedValue   uint64
	seedOutput  string
	seedIndex   string
	seedToStore bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic fintech corpus and build the peer index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if seedCount < 1 {
			return eris.Errorf("count must be positive, got %d", seedCount)
		}

		gen := corpus.New(seedValue)
		companies := gen.Generate(seedCount)

		zap.L().Info("corpus generated",
			zap.Int("companies", len(companies)),
			zap.Uint64("seed", seedValue))

		if seedOutput != "" {
			if err := corpus.WriteJSON(seedOutput, companies); err != nil {
				return err
			}
			zap.L().Info("corpus written", zap.String("path", seedOutput))
		}

		idx := peers.New()
		if err := idx.Add(companies); err != nil {
			return eris.Wrap(err, "index corpus")
		}

		indexPath := seedIndex
		if indexPath == "" {
			indexPath = cfg.Index.Path
		}
		if err := idx.SaveSnapshot(indexPath); err != nil {
			return err
		}
		zap.L().Info("index saved",
			zap.String("path", indexPath),
			zap.Int("companies", idx.Count()))

		if seedToStore {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			n, err := st.SaveCompanies(ctx, companies)
			if err != nil {
				return eris.Wrap(err, "archive corpus")
			}
			zap.L().Info("corpus archived", zap.Int64("rows", n))
		}

		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 200, "number of companies to generate")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "RNG seed (0 = time-based)")
	seedCmd.Flags().StringVar(&seedOutput, "output", "", "also write the corpus as JSON to this path")
	seedCmd.Flags().StringVar(&seedIndex, "index", "", "index snapshot path prefix (default from config)")
	seedCmd.Flags().BoolVar(&seedToStore, "store", false, "also archive the corpus in the run store")
	rootCmd.AddCommand(seedCmd)
}
