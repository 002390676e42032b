// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curator/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Look up past briefings and articles",
}

var historyShowCmd = &cobra.Command{
	Use:   "show [ref]",
	Short: "Show one article's appearances, or a whole day with --date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		withEvents, _ := cmd.Flags().GetBool("events")
		if date == "" && len(args) == 0 {
			return fmt.Errorf("provide an article reference or --date")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg, true)
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := context.Background()

		if date != "" {
			if date == "today" {
				date = time.Now().Format("2006-01-02")
			}
			entries, err := st.history.Day(ctx, date)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("No briefing recorded for %s.\n", date)
				return nil
			}
			for _, e := range entries {
				for _, ap := range e.Appearances {
					if ap.Date == date {
						fmt.Printf("#%-3d %-12s [%s] %s\n", ap.Rank, e.ID, e.Source, e.Title)
					}
				}
			}
			return nil
		}

		e, err := st.history.Resolve(ctx, args[0], time.Now())
		if err != nil {
			return err
		}
		printEntry(e)

		if withEvents {
			evs, err := st.signals.ArticleHistory(ctx, e.ID)
			if err != nil {
				return err
			}
			fmt.Println("\nEvents:")
			for _, ev := range evs {
				fmt.Printf("  %s  %-16s %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04"), ev.Event, ev.SessionID)
			}
		}
		return nil
	},
}

func printEntry(e history.Entry) {
	fmt.Printf("%s\n  %s\n  id: %s  source: %s  category: %s\n", e.Title, e.URL, e.ID, e.Source, e.Category)
	fmt.Printf("  first seen %s, score %.1f\n", e.FirstSeen, e.Score)
	parts := make([]string, len(e.Appearances))
	for i, ap := range e.Appearances {
		parts[i] = fmt.Sprintf("%s #%d (%.1f)", ap.Date, ap.Rank, ap.Score)
	}
	fmt.Printf("  appearances: %s\n", strings.Join(parts, ", "))
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full history as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg, true)
		if err != nil {
			return err
		}
		defer st.Close()

		w := os.Stdout
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		ctx := context.Background()
		switch format {
		case "yaml", "":
			err = st.history.ExportYAML(ctx, w)
		case "json":
			var entries []history.Entry
			entries, err = st.history.All(ctx)
			if err == nil {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				err = enc.Encode(entries)
			}
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintf(os.Stderr, "Exported to %s\n", out)
		}
		return nil
	},
}

func init() {
	historyShowCmd.Flags().String("date", "", "show the briefing for YYYY-MM-DD (or today)")
	historyShowCmd.Flags().Bool("events", false, "include the article's event log entries")

	historyExportCmd.Flags().String("out", "", "write to a file instead of stdout")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
