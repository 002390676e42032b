// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curator/internal/enrich"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <bookmarks.json>",
	Short: "Learn trusted content domains from curator bookmarks",
	Long: `Enrich reads a JSON array of bookmarked items, each with the curator who
posted it, an optional folder, and its text, HTML or URLs. For every curator
it keeps the three domains they link most and weights each by how many of
their items were saved. Scores are added to the domain signals of the label
the folder maps to; unknown folders use the default domain.

Social hosts, shorteners, video platforms and links to the curator's own
site are ignored. Items already merged are remembered; --full reprocesses
everything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		items, err := enrich.LoadItems(args[0])
		if err != nil {
			return err
		}

		full, _ := cmd.Flags().GetBool("full")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		verbose, _ := cmd.Flags().GetBool("verbose")

		st, err := openStores(cfg, false)
		if err != nil {
			return err
		}
		e := &enrich.Enricher{Prefs: st.prefs, Config: cfg.Enrich, Log: logger}
		report, err := e.Run(items, enrich.Options{Full: full, DryRun: dryRun})
		if err != nil {
			return err
		}
		enrich.WriteReport(os.Stdout, report, cfg.Enrich.MinDomainScore, verbose)
		return nil
	},
}

func init() {
	enrichCmd.Flags().Bool("full", false, "ignore the processed-item cache")
	enrichCmd.Flags().Bool("dry-run", false, "score and report without saving")
	enrichCmd.Flags().BoolP("verbose", "v", false, "show contributing curators per domain")

	rootCmd.AddCommand(enrichCmd)
}
