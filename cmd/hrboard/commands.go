package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/rhinspira/hrboard/pkg/store"
)

var flagRender bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a week or month as markdown",
}

var exportWeekCmd = &cobra.Command{
	Use:   "week [index]",
	Short: "Export a week (0 is the current week)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx := store.CurrentWeek
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("week index %q: %w", args[0], err)
			}
			idx = n
		}
		return withApp(cmd.Context(), func(a *app) error {
			w, err := a.board.Week(idx)
			if err != nil {
				return err
			}
			doc, err := store.ExportWeek(w, time.Now())
			if err != nil {
				return err
			}
			return printMarkdown(doc)
		})
	},
}

var exportMonthCmd = &cobra.Command{
	Use:   "month <key>",
	Short: "Export a monthly report with the semester goals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			doc, err := store.ExportMonth(store.MonthKey(strings.ToLower(args[0])), a.board.Strategic(), time.Now())
			if err != nil {
				return err
			}
			return printMarkdown(doc)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored dashboard as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			payload, err := store.EncodeSnapshot(a.board.Snapshot())
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, payload, "", "  "); err != nil {
				return err
			}
			fmt.Println(out.String())
			if at, ok := a.lastWritten(cmd.Context()); ok {
				fmt.Fprintf(os.Stderr, "Last written %s\n", at.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the dashboard to storage now",
	Long:  "Writes the loaded dashboard back to storage. On an empty medium this persists the seed data.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.syncer.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", a.syncer.Key())
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd.Context(), func(a *app) error {
			entries, err := a.history.Log(historyLimit)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(entries)
			}
			if len(entries) == 0 {
				fmt.Println("No saved versions yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %s  %s\n", shortHash(e.Hash), e.When.Local().Format("2006-01-02 15:04"), e.Message)
			}
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <rev>",
	Short: "Print a saved version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd.Context(), func(a *app) error {
			payload, err := a.history.Show(args[0])
			if err != nil {
				return err
			}
			fmt.Println(payload)
			return nil
		})
	},
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore <rev>",
	Short: "Restore a saved version and write it to storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd.Context(), func(a *app) error {
			payload, err := a.history.Show(args[0])
			if err != nil {
				return err
			}
			snap, err := store.DecodeSnapshot([]byte(payload))
			if err != nil {
				return fmt.Errorf("version %s: %w", args[0], err)
			}
			a.board.Replace(snap)
			if err := a.syncer.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Restored %s\n", args[0])
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search reports, candidates, priorities and goals",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withApp(cmd.Context(), func(a *app) error {
			hits := a.board.Search(query)
			if flagJSON {
				return outputJSON(hits)
			}
			if len(hits) == 0 {
				fmt.Printf("No matches for %q\n", query)
				return nil
			}
			for _, h := range hits {
				fmt.Printf("%s: %s\n", h.Where, h.Text)
			}
			return nil
		})
	},
}

const historyLimit = 50

func init() {
	exportCmd.PersistentFlags().BoolVar(&flagRender, "render", false, "render markdown for the terminal")
	exportCmd.AddCommand(exportWeekCmd)
	exportCmd.AddCommand(exportMonthCmd)

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRestoreCmd)
}

func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func withHistory(ctx context.Context, fn func(a *app) error) error {
	return withApp(ctx, func(a *app) error {
		if a.history == nil {
			return errors.New("history is disabled (set history: true in config.yaml)")
		}
		return fn(a)
	})
}

// printMarkdown writes an export, rendering the body through glamour when
// --render is set.
func printMarkdown(doc string) error {
	if !flagRender {
		fmt.Print(doc)
		return nil
	}
	_, body, err := store.ParseFrontmatter(doc)
	if err != nil {
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return err
	}
	out, err := r.Render(body)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
