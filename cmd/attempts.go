package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/parsons/internal/store"
	"github.com/abhisek/parsons/internal/ui/render"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "Inspect recorded validation attempts",
}

var attemptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent attempts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := store.AttemptQuery{}
		q.Limit, _ = cmd.Flags().GetInt("limit")
		q.PuzzleID, _ = cmd.Flags().GetString("puzzle")
		q.SessionID, _ = cmd.Flags().GetString("session")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		attempts, err := st.EventRepo().QueryAttempts(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			fmt.Fprintln(out, "No attempts recorded.")
			return nil
		}

		rows := make([][]string, len(attempts))
		for i, a := range attempts {
			ok := "✗"
			if a.Correct {
				ok = "✓"
			}
			session := a.SessionID
			if len(session) > 8 {
				session = session[:8]
			}
			rows[i] = []string{
				strconv.Itoa(a.ID),
				a.Timestamp.Local().Format("2006-01-02 15:04:05"),
				a.PuzzleID,
				a.Source,
				session,
				strconv.Itoa(a.Score),
				ok,
				strconv.Itoa(a.HintCount),
				strconv.Itoa(len(a.Order)),
			}
		}
		lipgloss.Fprintln(out, render.Table(
			[]string{"ID", "Timestamp", "Puzzle", "Source", "Session", "Score", "OK", "Hints", "Steps"}, rows))
		return nil
	},
}

var attemptsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show every attempt of one session in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		attempts, err := st.EventRepo().QueryAttempts(cmd.Context(), store.AttemptQuery{SessionID: args[0]})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			return fmt.Errorf("session %s: %w", args[0], store.ErrNotFound)
		}
		for i := len(attempts) - 1; i >= 0; i-- {
			a := attempts[i]
			fmt.Fprintf(out, "%s  %-12s score %3d  %s\n",
				a.Timestamp.Local().Format("15:04:05"), a.PuzzleID, a.Score, strings.Join(a.Order, " "))
		}
		return nil
	},
}

func init() {
	attemptsListCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
	attemptsListCmd.Flags().String("puzzle", "", "Only attempts on this puzzle")
	attemptsListCmd.Flags().String("session", "", "Only attempts from this session")

	attemptsCmd.AddCommand(attemptsListCmd)
	attemptsCmd.AddCommand(attemptsShowCmd)
}
