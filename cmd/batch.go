package main

import (
	"context"
	"encoding/json"
	"io"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/diligence-cli/internal/benchmark"
	"github.com/sells-group/diligence-cli/internal/fetcher"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/store"
)

var (
	batchFile        string
	batchLimit       int
	batchConcurrency int
	batchOutput      string
	batchPeers       int
	batchIndexPath   string
	batchSave        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Benchmark every company in a corpus file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		companies, err := fetcher.ReadCompanies(batchFile)
		if err != nil {
			return err
		}

		idx, err := loadIndex(batchIndexPath)
		if err != nil {
			return err
		}
		rules, err := engineRules()
		if err != nil {
			return err
		}
		engine := benchmark.NewEngine(idx, rules)

		peerCount := batchPeers
		if peerCount < 1 {
			peerCount = cfg.Index.PeerCount
		}

		var st store.Store
		if batchSave {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		out, closeOut, err := openOutput(batchOutput)
		if err != nil {
			return err
		}
		defer closeOut()

		concurrency := batchConcurrency
		if concurrency < 1 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		return processBatch(ctx, companies, batchLimit, concurrency, st, out, func(ctx context.Context, company model.Company) (*model.BenchmarkResult, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if company.Name == "" {
				return nil, eris.New("company has no name")
			}
			return engine.BenchmarkCompany(company, peerCount), nil
		})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "corpus file to benchmark (xlsx, csv or json, required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of companies to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel benchmarks (default from config)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write results as JSON lines to this path (default stdout)")
	batchCmd.Flags().IntVar(&batchPeers, "peers", 0, "peer group size (default from config)")
	batchCmd.Flags().StringVar(&batchIndexPath, "index", "", "index snapshot path prefix (default from config)")
	batchCmd.Flags().BoolVar(&batchSave, "save", true, "record each run in the history store")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// benchFunc is the callback signature for benchmarking one company.
type benchFunc func(ctx context.Context, company model.Company) (*model.BenchmarkResult, error)

// processBatch applies limit, then benchmarks companies concurrently. When
// st is non-nil every outcome is recorded there, failures included. Results
// stream to out as JSON lines in completion order.
func processBatch(ctx context.Context, companies []model.Company, limit, concurrency int, st store.Store, out io.Writer, bench benchFunc) error {
	if len(companies) == 0 {
		zap.L().Info("no companies to benchmark")
		return nil
	}

	if limit > 0 && len(companies) > limit {
		companies = companies[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("companies", len(companies)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	var mu sync.Mutex
	enc := json.NewEncoder(out)

	for _, company := range companies {
		g.Go(func() error {
			log := zap.L().With(zap.String("company", company.Name))

			result, err := bench(gctx, company)
			if err != nil {
				failed.Add(1)
				log.Error("benchmark failed", zap.Error(err))
				if st != nil {
					if sErr := st.SaveRun(gctx, store.NewFailedRun(company, err)); sErr != nil {
						log.Warn("save failed run", zap.Error(sErr))
					}
				}
				return nil // don't abort batch on individual failure
			}

			run := store.NewRun(result)
			if st != nil {
				if sErr := st.SaveRun(gctx, run); sErr != nil {
					log.Warn("save run", zap.Error(sErr))
				}
			}

			mu.Lock()
			wErr := enc.Encode(run)
			mu.Unlock()
			if wErr != nil {
				return eris.Wrap(wErr, "write result")
			}

			succeeded.Add(1)
			log.Info("benchmark complete",
				zap.Float64("risk_score", result.RiskScore),
				zap.Int("red_flags", len(result.RedFlags)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
