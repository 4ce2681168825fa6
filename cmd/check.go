package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/parsons/internal/config"
	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
	"github.com/abhisek/parsons/internal/tutor"
	"github.com/abhisek/parsons/internal/ui/render"
	"github.com/abhisek/parsons/internal/ui/theme"
)

var checkCmd = &cobra.Command{
	Use:   "check <puzzle-id> [step-id...]",
	Short: "Validate an ordering of steps",
	Long: "Validate an ordering of steps against a puzzle and print the score,\n" +
		"feedback and hints. Step ids are given in the order of the proof.",
	Example: "  parsons check proof2 block2-1 block2-2 block2-3",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		explain, _ := cmd.Flags().GetBool("explain")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := config.NewLogger(os.Stderr, cfg.Log)
		ctx := cmd.Context()

		st, err := openSeeded(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.PuzzleRepo().Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load puzzle %s: %w", args[0], err)
		}
		v, err := proof.NewValidator(rec.Puzzle)
		if err != nil {
			return err
		}

		order := args[1:]
		res := v.Validate(order)
		err = st.EventRepo().AppendAttempt(ctx, store.AttemptEventData{
			PuzzleID:  rec.ID,
			Source:    "cli",
			Order:     order,
			Score:     res.Score,
			Correct:   res.IsCorrect,
			HintCount: len(res.Hints),
		})
		if err != nil {
			logger.Warn("record attempt", "error", err)
		}

		var ex *tutor.Explanation
		if explain {
			ex, err = newExplainer(ctx, cfg, st.EventRepo(), logger).Explain(ctx, rec.Puzzle, order, res)
			switch {
			case errors.Is(err, tutor.ErrNothingToExplain):
				err = nil
			case err != nil:
				return fmt.Errorf("explain: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if ex != nil {
				return enc.Encode(struct {
					proof.ValidationResult
					Explanation *tutor.Explanation `json:"explanation"`
				}{res, ex})
			}
			return enc.Encode(res)
		}

		lipgloss.Fprintln(out, render.Result(rec.Puzzle, order, res, 100))
		if ex != nil {
			body := theme.Label.Render("Tutor") + "\n" + ex.Explanation
			if ex.Nudge != "" {
				body += "\n\n" + theme.Hint.Render(ex.Nudge)
			}
			lipgloss.Fprintln(out, "\n"+theme.Card.Width(80).Render(body))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().Bool("json", false, "Print the raw validation result as JSON")
	checkCmd.Flags().Bool("explain", false, "Ask the LLM tutor to explain the first hint")
}
