package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/parsons/internal/catalog"
	"github.com/abhisek/parsons/internal/config"
	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
	"github.com/abhisek/parsons/internal/ui/render"
	"github.com/abhisek/parsons/internal/ui/theme"
)

var puzzlesCmd = &cobra.Command{
	Use:   "puzzles",
	Short: "Manage the puzzle collection",
}

var puzzlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active puzzles",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.ListOpts{}
		opts.Category, _ = cmd.Flags().GetString("category")
		opts.Difficulty, _ = cmd.Flags().GetString("difficulty")
		opts.Tags, _ = cmd.Flags().GetStringSlice("tag")
		opts.Search, _ = cmd.Flags().GetString("search")
		opts.Limit, _ = cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openSeeded(cmd.Context(), cfg, config.NewLogger(os.Stderr, cfg.Log))
		if err != nil {
			return err
		}
		defer st.Close()

		recs, total, err := st.PuzzleRepo().List(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("list puzzles: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No puzzles found.")
			return nil
		}

		rows := make([][]string, len(recs))
		for i, r := range recs {
			rows[i] = []string{
				r.ID,
				proof.Truncate(r.Name(), 48),
				string(r.Category),
				string(r.Difficulty),
				strconv.Itoa(len(r.SolutionOrder)),
				strings.Join(r.Tags, ","),
			}
		}
		lipgloss.Fprintln(out, render.Table([]string{"ID", "Title", "Category", "Difficulty", "Steps", "Tags"}, rows))
		if total > len(recs) {
			fmt.Fprintf(out, "%d of %d puzzles shown\n", len(recs), total)
		}
		return nil
	},
}

var puzzlesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a puzzle's statement and steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		solution, _ := cmd.Flags().GetBool("solution")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openSeeded(cmd.Context(), cfg, config.NewLogger(os.Stderr, cfg.Log))
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.PuzzleRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load puzzle %s: %w", args[0], err)
		}
		v, err := proof.NewValidator(rec.Puzzle)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Title.Render(rec.Name()))
		fmt.Fprintf(out, "id: %s   category: %s   difficulty: %s   tags: %s\n",
			rec.ID, rec.Category, rec.Difficulty, strings.Join(rec.Tags, ", "))
		if rec.Statement != "" {
			fmt.Fprintf(out, "\nProve: %s\n", rec.Statement)
		}

		// Steps are listed by id unless the solution is asked for.
		order := make([]string, 0, len(rec.Steps))
		if solution {
			order = append(order, rec.SolutionOrder...)
		} else {
			for _, s := range rec.Steps {
				order = append(order, s.ID)
			}
			sort.Strings(order)
		}
		rows := make([][]string, len(order))
		for i, id := range order {
			step, _ := v.Step(id)
			rows[i] = []string{strconv.Itoa(i + 1), id, step.Content}
		}
		fmt.Fprintln(out)
		lipgloss.Fprintln(out, render.Table([]string{"#", "Step", "Content"}, rows))

		stats := v.Statistics()
		fmt.Fprintf(out, "%d steps, estimated difficulty %s\n", stats.TotalBlocks, stats.Difficulty)
		return nil
	},
}

var puzzlesImportCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import puzzle files (JSON or YAML) into the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update, _ := cmd.Flags().GetBool("update")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		paths, err := contentFiles(args)
		if err != nil {
			return err
		}

		repo := st.PuzzleRepo()
		out := cmd.OutOrStdout()
		var created, updated, skipped int
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			f, err := catalog.Parse(filepath.Base(path), data)
			if err != nil {
				return err
			}
			for _, p := range f.Puzzles {
				_, err := repo.Create(cmd.Context(), p)
				switch {
				case err == nil:
					created++
				case errors.Is(err, store.ErrDuplicate) && update:
					if _, err := repo.Update(cmd.Context(), p); err != nil {
						return fmt.Errorf("update %s: %w", p.ID, err)
					}
					updated++
				case errors.Is(err, store.ErrDuplicate):
					fmt.Fprintf(out, "skipped %s: already exists (use --update to replace)\n", p.ID)
					skipped++
				default:
					return fmt.Errorf("import %s: %w", p.ID, err)
				}
			}
		}
		fmt.Fprintf(out, "imported %d, updated %d, skipped %d\n", created, updated, skipped)
		return nil
	},
}

// contentFiles expands directories into the puzzle files they contain.
func contentFiles(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && catalog.IsContentFile(e.Name()) {
				out = append(out, filepath.Join(arg, e.Name()))
			}
		}
	}
	return out, nil
}

var puzzlesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Deactivate a puzzle",
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

		if err := st.PuzzleRepo().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var puzzlesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count puzzles by category and difficulty",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openSeeded(cmd.Context(), cfg, config.NewLogger(os.Stderr, cfg.Log))
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.PuzzleRepo().Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("puzzle stats: %w", err)
		}

		var rows [][]string
		for _, c := range proof.AllCategories() {
			rows = append(rows, []string{"category", string(c), strconv.Itoa(stats.ByCategory[string(c)])})
		}
		for _, d := range []proof.Difficulty{proof.DifficultyEasy, proof.DifficultyMedium, proof.DifficultyHard} {
			rows = append(rows, []string{"difficulty", string(d), strconv.Itoa(stats.ByDifficulty[string(d)])})
		}
		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, render.Table([]string{"Group", "Value", "Puzzles"}, rows))
		fmt.Fprintf(out, "%d active puzzles\n", stats.Total)
		return nil
	},
}

func init() {
	puzzlesListCmd.Flags().String("category", "", "Filter by category (big-o, induction, set-theory, recursion)")
	puzzlesListCmd.Flags().String("difficulty", "", "Filter by difficulty (easy, medium, hard)")
	puzzlesListCmd.Flags().StringSlice("tag", nil, "Filter by tag; repeat or comma-separate to match any")
	puzzlesListCmd.Flags().String("search", "", "Case-insensitive search in titles and statements")
	puzzlesListCmd.Flags().IntP("limit", "n", 50, "Maximum puzzles to show")

	puzzlesShowCmd.Flags().Bool("solution", false, "List the steps in solution order")
	puzzlesImportCmd.Flags().Bool("update", false, "Replace puzzles whose id already exists")

	puzzlesCmd.AddCommand(puzzlesListCmd)
	puzzlesCmd.AddCommand(puzzlesShowCmd)
	puzzlesCmd.AddCommand(puzzlesImportCmd)
	puzzlesCmd.AddCommand(puzzlesDeleteCmd)
	puzzlesCmd.AddCommand(puzzlesStatsCmd)
}
