package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/api"
	"github.com/sells-group/diligence-cli/internal/benchmark"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the benchmark HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

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

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		server := api.NewServer(engine, idx, st)
		server.AllowedOrigins = cfg.Server.AllowedOrigins

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("companies", idx.Count()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().String("index", "", "index snapshot path prefix (default from config)")
	rootCmd.AddCommand(serveCmd)
}
