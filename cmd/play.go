package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/parsons/internal/app"
	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/screen"
	"github.com/abhisek/parsons/internal/screens/picker"
	"github.com/abhisek/parsons/internal/screens/play"
	"github.com/abhisek/parsons/internal/session"
	"github.com/abhisek/parsons/internal/store"
)

var playCmd = &cobra.Command{
	Use:   "play [puzzle-id]",
	Short: "Solve puzzles in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args)
	},
}

func init() {
	playCmd.Flags().Bool("strict", false, "Only accept steps placed in proof order (overrides config)")
}

// runPlay opens the store and launches the TUI on the picker, or directly
// on one puzzle when an id is given.
func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict, _ = cmd.Flags().GetBool("strict")
	}
	// Log lines would tear the alternate screen, so the TUI runs silent.
	logger := slog.New(slog.DiscardHandler)

	ctx := cmd.Context()
	st, err := openSeeded(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	events := st.EventRepo()
	explainer := newExplainer(ctx, cfg, events, logger)
	start := func(p proof.Puzzle) (screen.Screen, error) {
		v, err := proof.NewValidator(p)
		if err != nil {
			return nil, err
		}
		sess, err := session.New(v, session.Options{
			Strict:   cfg.Strict,
			Recorder: events,
			Source:   "tui",
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return play.New(sess, explainer), nil
	}

	if len(args) == 1 {
		rec, err := st.PuzzleRepo().Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load puzzle %s: %w", args[0], err)
		}
		first, err := start(rec.Puzzle)
		if err != nil {
			return err
		}
		return app.Run(first)
	}

	recs, _, err := st.PuzzleRepo().List(ctx, store.ListOpts{})
	if err != nil {
		return fmt.Errorf("list puzzles: %w", err)
	}
	puzzles := make([]proof.Puzzle, len(recs))
	for i, r := range recs {
		puzzles[i] = r.Puzzle
	}
	return app.Run(picker.New(puzzles, start))
}
