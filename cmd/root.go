package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/parsons/internal/catalog"
	"github.com/abhisek/parsons/internal/config"
	"github.com/abhisek/parsons/internal/llm"
	"github.com/abhisek/parsons/internal/store"
	"github.com/abhisek/parsons/internal/tutor"
)

var rootCmd = &cobra.Command{
	Use:   "parsons",
	Short: "Proof puzzles: arrange the steps, get scored",
	Long: "Parsons presents mathematical proofs as shuffled steps. Put them back in order\n" +
		"in the terminal, from the shell, or over the HTTP API, and get partial credit\n" +
		"and hints for every attempt.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PARSONS_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/parsons/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(puzzlesCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config, applies the
// environment and the --db flag, and validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, os.Getenv)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB = p
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, falling back to the
// default XDG location.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func openStore(cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.ContentDir != "" {
		return catalog.Load(cfg.ContentDir)
	}
	return catalog.Builtin()
}

// openSeeded opens the store and makes sure every catalog puzzle has been
// inserted at least once.
func openSeeded(ctx context.Context, cfg config.Config, logger *slog.Logger) (*store.Store, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	n, err := cat.Seed(ctx, st.PuzzleRepo())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("seed puzzles: %w", err)
	}
	if n > 0 {
		logger.Info("seeded puzzles", "count", n, "catalog", cat.Len())
	}
	return st, nil
}

// newExplainer builds the tutor. Without a configured provider it returns
// an Explainer that reports itself unavailable.
func newExplainer(ctx context.Context, cfg config.Config, events store.EventRepo, logger *slog.Logger) *tutor.Explainer {
	provider, err := llm.NewProvider(ctx, cfg.LLM, events, logger)
	switch {
	case errors.Is(err, llm.ErrDisabled):
		logger.Debug("LLM provider not configured; explanations disabled")
		return tutor.NewExplainer(nil, tutor.DefaultConfig())
	case err != nil:
		logger.Warn("LLM provider unavailable; explanations disabled", "error", err)
		return tutor.NewExplainer(nil, tutor.DefaultConfig())
	}
	logger.Debug("LLM provider ready", "provider", cfg.LLM.Provider, "model", provider.Model())
	return tutor.NewExplainer(provider, tutor.DefaultConfig())
}
