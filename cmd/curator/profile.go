// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curator/internal/profile"
	"github.com/pdiddy/curator/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect the learned reading profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show what the curator has learned from your feedback",
	Long: `Show prints the learned sources, themes, content styles, avoid patterns
and domain signals with their weights.

--prompt prints the personalization text exactly as it is given to the
scoring model, after the cold-start floor and staleness gate. --json prints
the raw learned patterns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := openPrefs(cfg)
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		asPrompt, _ := cmd.Flags().GetBool("prompt")
		verbose, _ := cmd.Flags().GetBool("verbose")

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p.LearnedPatterns)
		}

		prof := profile.Build(p.LearnedPatterns, profile.Options{
			MinWeight:    cfg.Profile.MinWeight,
			ActiveDomain: cfg.Profile.ActiveDomain,
			Now:          time.Now(),
		})
		if asPrompt {
			text := prof.Text()
			if text == "" {
				fmt.Printf("(no personalization: %d of %d feedback signals needed)\n", prof.SampleSize, profile.ColdStartSamples)
				return nil
			}
			fmt.Println(text)
			return nil
		}

		v := profile.NewView(os.Stdout, cfg.Profile.ActiveDomain)
		v.Verbose = verbose
		return v.Write(os.Stdout, p, prof)
	},
}

var profileReserveCmd = &cobra.Command{
	Use:   "reserve <fraction>",
	Short: "Set the share of each briefing picked without personalization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil || v < 0 || v > 1 {
			return fmt.Errorf("reserve must be a number between 0 and 1, got %q", args[0])
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg, false)
		if err != nil {
			return err
		}
		_, err = st.prefs.Update(func(p *types.Preferences) error {
			p.CurationSettings.SerendipityReserve = v
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Printf("Serendipity reserve set to %.0f%%\n", v*100)
		return nil
	},
}

func init() {
	profileShowCmd.Flags().Bool("json", false, "print learned patterns as JSON")
	profileShowCmd.Flags().Bool("prompt", false, "print the personalization text given to the scoring model")
	profileShowCmd.Flags().BoolP("verbose", "v", false, "include recent feedback history")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileReserveCmd)
	rootCmd.AddCommand(profileCmd)
}
