package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/fetcher"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the peer index snapshot",
}

// -- index save --

var indexSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Build the index from a corpus file and save a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		companies, err := fetcher.ReadCompanies(file)
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			return eris.Errorf("%s holds no companies", file)
		}

		idx := peers.New()
		if err := idx.Add(companies); err != nil {
			return eris.Wrap(err, "index corpus")
		}

		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			path = cfg.Index.Path
		}
		if err := idx.SaveSnapshot(path); err != nil {
			return err
		}

		zap.L().Info("index saved",
			zap.String("path", path),
			zap.Int("companies", idx.Count()))
		return nil
	},
}

// -- index load --

var indexLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Verify that a snapshot loads cleanly",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		idx, err := loadIndex(path)
		if err != nil {
			return err
		}

		fmt.Printf("Snapshot OK: %d companies, reference year %d\n", idx.Count(), idx.ReferenceYear())
		return nil
	},
}

// -- index stats --

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index contents by stage and industry",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		idx, err := loadIndex(path)
		if err != nil {
			return err
		}

		st := idx.Stats()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(os.Stdout, st)
		}

		fmt.Printf("Companies:      %d\n", st.TotalCompanies)
		fmt.Printf("Vectors:        %d\n", st.IndexSize)
		fmt.Printf("Reference year: %d\n\n", idx.ReferenceYear())

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "STAGE\tCOUNT")
		_, _ = fmt.Fprintln(w, "-----\t-----")
		for _, stage := range model.Stages {
			if n := st.Stages[stage]; n > 0 {
				_, _ = fmt.Fprintf(w, "%s\t%d\n", stage, n)
			}
		}
		_, _ = fmt.Fprintln(w)

		industries := make([]string, 0, len(st.Industries))
		for industry := range st.Industries {
			industries = append(industries, industry)
		}
		sort.Strings(industries)

		_, _ = fmt.Fprintln(w, "INDUSTRY\tCOUNT")
		_, _ = fmt.Fprintln(w, "--------\t-----")
		for _, industry := range industries {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", industry, st.Industries[industry])
		}
		return w.Flush()
	},
}

func init() {
	indexSaveCmd.Flags().String("file", "", "corpus file to index (xlsx, csv or json, required)")
	_ = indexSaveCmd.MarkFlagRequired("file")

	indexStatsCmd.Flags().Bool("json", false, "print stats as JSON")

	for _, sub := range []*cobra.Command{indexSaveCmd, indexLoadCmd, indexStatsCmd} {
		sub.Flags().String("path", "", "snapshot path prefix (default from config)")
		indexCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(indexCmd)
}
