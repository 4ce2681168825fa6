package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/parsons/internal/config"
	"github.com/abhisek/parsons/internal/metrics"
	"github.com/abhisek/parsons/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the puzzle and validation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		logger := config.NewLogger(os.Stderr, cfg.Log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openSeeded(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(server.Deps{
			Puzzles:   st.PuzzleRepo(),
			Events:    st.EventRepo(),
			Explainer: newExplainer(ctx, cfg, st.EventRepo(), logger),
			Metrics:   metrics.New(),
			Logger:    logger,
			Ping: func(ctx context.Context) error {
				return st.DB().PingContext(ctx)
			},
		})
		return srv.Run(ctx, cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config and PARSONS_ADDR)")
}
