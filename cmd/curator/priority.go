// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/curator/internal/priority"
	"github.com/pdiddy/curator/pkg/types"
)

var priorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Manage short-lived keyword boosts",
	Long: `Priorities boost any article whose title or summary contains one of their
keywords during the personalized selection phase. The total priority boost
on one article is capped at +3.0.`,
}

var priorityAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Add a priority",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kw, _ := cmd.Flags().GetString("keywords")
		boost, _ := cmd.Flags().GetFloat64("boost")
		expires, _ := cmd.Flags().GetString("expires")

		ttl, err := parseTTL(expires)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg, false)
		if err != nil {
			return err
		}

		p, err := st.priorities.Add(strings.Join(args, " "), splitList(kw), boost, ttl)
		if err != nil {
			return err
		}
		if err := st.signals.PriorityAdded(p); err != nil {
			return err
		}
		fmt.Printf("Added %s %q (+%.1f) keywords: %s\n", p.ID, p.Label, p.Boost, strings.Join(p.Keywords, ", "))
		if p.ExpiresAt != nil {
			fmt.Printf("  expires %s\n", p.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// parseTTL accepts Go durations plus a day suffix (7d). Empty means never.
func parseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "never" {
		return 0, nil
	}
	if d, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(d)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid expiry %q: use e.g. 7d or 48h", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	ttl, err := time.ParseDuration(s)
	if err != nil || ttl <= 0 {
		return 0, fmt.Errorf("invalid expiry %q: use e.g. 7d or 48h", s)
	}
	return ttl, nil
}

var priorityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List priorities",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		asYAML, _ := cmd.Flags().GetBool("yaml")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg, false)
		if err != nil {
			return err
		}

		var ps []types.Priority
		if all {
			ps, err = st.priorities.List()
		} else {
			ps, err = st.priorities.Active(time.Now())
		}
		if err != nil {
			return err
		}

		switch {
		case asYAML:
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(priority.Document{Version: 1, Priorities: ps})
		case asJSON:
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ps)
		}

		if len(ps) == 0 {
			fmt.Println("No priorities.")
			return nil
		}
		fmt.Printf("%-6s  %-24s  %-6s  %-7s  %-16s  %s\n", "ID", "Label", "Boost", "Matches", "Expires", "Keywords")
		fmt.Println(strings.Repeat("-", 90))
		for _, p := range ps {
			exp := "never"
			if p.ExpiresAt != nil {
				exp = p.ExpiresAt.Local().Format("2006-01-02 15:04")
			}
			label := p.Label
			if !p.Active {
				label += " (off)"
			}
			fmt.Printf("%-6s  %-24s  %+6.1f  %7d  %-16s  %s\n", p.ID, label, p.Boost, p.MatchCount, exp, strings.Join(p.Keywords, ", "))
		}
		return nil
	},
}

var priorityExpireCmd = &cobra.Command{
	Use:   "expire [id]",
	Short: "Deactivate a priority, or every priority past its expiry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg, false)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			p, err := st.priorities.Deactivate(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deactivated %s %q\n", p.ID, p.Label)
			return nil
		}

		expired, err := st.priorities.ExpireDue(time.Now())
		if err != nil {
			return err
		}
		for _, p := range expired {
			if err := st.signals.PriorityExpired(p); err != nil {
				return err
			}
			fmt.Printf("Expired %s %q\n", p.ID, p.Label)
		}
		if len(expired) == 0 {
			fmt.Println("No priorities due to expire.")
		}
		return nil
	},
}

func init() {
	priorityAddCmd.Flags().String("keywords", "", "comma-separated keywords (required)")
	priorityAddCmd.Flags().Float64("boost", priority.DefaultBoost, "score boost when a keyword matches")
	priorityAddCmd.Flags().String("expires", "", "lifetime, e.g. 7d or 48h (default: never)")
	_ = priorityAddCmd.MarkFlagRequired("keywords")

	priorityListCmd.Flags().Bool("all", false, "include inactive and expired priorities")
	priorityListCmd.Flags().Bool("yaml", false, "output as YAML")
	priorityListCmd.Flags().Bool("json", false, "output as JSON")

	priorityCmd.AddCommand(priorityAddCmd)
	priorityCmd.AddCommand(priorityListCmd)
	priorityCmd.AddCommand(priorityExpireCmd)
	rootCmd.AddCommand(priorityCmd)
}
