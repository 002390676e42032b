// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curator/pkg/types"
)

var interestCmd = &cobra.Command{
	Use:   "interest",
	Short: "Flag articles whose category should be boosted or muted",
	Long: `Flagging an article adds its level's modifier to every candidate in the
same category until the flag expires:

  DEEP-DIVE  +50  3 days
  THIS-WEEK  +30  7 days
  BACKLOG    +10  no expiry
  MUTE       -20  7 days`,
}

var interestFlagCmd = &cobra.Command{
	Use:   "flag <ref> [reason...]",
	Short: "Flag an article from a briefing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, _ := cmd.Flags().GetString("level")
		level, err := types.ParseInterestLevel(lvl)
		if err != nil {
			return err
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

		now := time.Now()
		a, _, err := resolveArticle(context.Background(), st.history, args[0], now)
		if err != nil {
			return err
		}
		in, err := st.interests.Flag(level, a, strings.Join(args[1:], " "), now)
		if err != nil {
			return err
		}
		fmt.Printf("Flagged %s as %s: %+d on %s", titleOr(in.Title, in.URL), in.Level, in.Modifier, in.Category)
		if in.ExpiresAt != nil {
			fmt.Printf(" until %s", in.ExpiresAt.Local().Format("2006-01-02"))
		}
		fmt.Println()
		return nil
	},
}

var interestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active interests by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg, false)
		if err != nil {
			return err
		}
		byCat, err := st.interests.ActiveByCategory(time.Now())
		if err != nil {
			return err
		}
		if len(byCat) == 0 {
			fmt.Println("No active interests.")
			return nil
		}

		cats := make([]string, 0, len(byCat))
		for c := range byCat {
			cats = append(cats, string(c))
		}
		sort.Strings(cats)
		for _, c := range cats {
			ins := byCat[types.Category(c)]
			total := 0
			for _, in := range ins {
				total += in.Modifier
			}
			fmt.Printf("%s: %d flagged (%+d total)\n", c, len(ins), total)
			for _, in := range ins {
				fmt.Printf("  %-9s %s  [%s]\n", in.Level, titleOr(in.Title, in.URL), in.Source)
			}
		}
		return nil
	},
}

func init() {
	interestFlagCmd.Flags().String("level", string(types.InterestThisWeek), "DEEP-DIVE, THIS-WEEK, BACKLOG or MUTE")

	interestCmd.AddCommand(interestFlagCmd)
	interestCmd.AddCommand(interestListCmd)
	rootCmd.AddCommand(interestCmd)
}
