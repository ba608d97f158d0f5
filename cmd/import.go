package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/fetcher"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
)

var (
	importFile      string
	importSheet     string
	importDelimiter string
	importFromStore bool
	importIndustry  string
	importToStore   bool
	importIndexPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import companies into the archive and peer index",
	Long: `Import reads companies from an analyst file (xlsx, csv or json) into
the company archive, and optionally rebuilds the peer index snapshot from
the imported set. With --from-store the archive itself is the source and
only the index is rebuilt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var companies []model.Company

		switch {
		case importFromStore:
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			companies, err = st.ListCompanies(ctx, importIndustry)
			if err != nil {
				return err
			}
			if importIndexPath == "" {
				importIndexPath = cfg.Index.Path
			}

		case importFile != "":
			var err error
			companies, err = readImportFile(importFile)
			if err != nil {
				return err
			}

			if importToStore {
				st, err := initStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close() //nolint:errcheck

				n, err := st.SaveCompanies(ctx, companies)
				if err != nil {
					return err
				}
				zap.L().Info("companies archived",
					zap.Int64("rows", n),
					zap.String("file", importFile))
			}

		default:
			return eris.New("nothing to import: pass --file or --from-store")
		}

		if len(companies) == 0 {
			return eris.New("no companies to import")
		}

		if importIndexPath != "" {
			idx := peers.New()
			if err := idx.Add(companies); err != nil {
				return eris.Wrap(err, "index companies")
			}
			if err := idx.SaveSnapshot(importIndexPath); err != nil {
				return err
			}
			zap.L().Info("index saved",
				zap.String("path", importIndexPath),
				zap.Int("companies", idx.Count()))
		}

		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "companies file to import (xlsx, csv or json)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "worksheet name for xlsx files (default first sheet)")
	importCmd.Flags().StringVar(&importDelimiter, "delimiter", "", "field delimiter for csv files (default comma)")
	importCmd.Flags().BoolVar(&importFromStore, "from-store", false, "rebuild the index from archived companies instead of a file")
	importCmd.Flags().StringVar(&importIndustry, "industry", "", "industry filter for --from-store")
	importCmd.Flags().BoolVar(&importToStore, "store", true, "archive imported companies in the store")
	importCmd.Flags().StringVar(&importIndexPath, "index", "", "also rebuild the index snapshot at this path prefix")
	rootCmd.AddCommand(importCmd)
}

// readImportFile reads companies honoring the sheet and delimiter flags,
// which only apply to their respective formats.
func readImportFile(path string) ([]model.Company, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return fetcher.ReadCompaniesXLSX(path, fetcher.XLSXOptions{SheetName: importSheet})
	case ".csv":
		var delim rune
		if importDelimiter != "" {
			runes := []rune(importDelimiter)
			if len(runes) != 1 {
				return nil, eris.Errorf("delimiter must be a single character, got %q", importDelimiter)
			}
			delim = runes[0]
		}
		return fetcher.ReadCompaniesCSV(path, fetcher.CSVOptions{Delimiter: delim})
	default:
		return fetcher.ReadCompanies(path)
	}
}
