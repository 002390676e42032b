// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curator/internal/signalstore"
	"github.com/pdiddy/curator/pkg/types"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Read the structured event log",
	Long: `Events prints entries from the append-only event log: article_scored,
feedback, priority_added, priority_expired, priority_match, source_change.
Every entry carries the session ID of the run that wrote it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		event, _ := cmd.Flags().GetString("event")
		article, _ := cmd.Flags().GetString("article")
		since, _ := cmd.Flags().GetDuration("since")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := signalstore.Open(cfg.Paths.EventLog, "")

		f := signalstore.Filter{Event: types.SignalEventType(event), ArticleID: article, Limit: limit}
		if since > 0 {
			f.Since = time.Now().Add(-since)
		}
		res, err := log.Read(context.Background(), f)
		if err != nil {
			return err
		}
		if res.Skipped > 0 {
			logger.Warn().Int("lines", res.Skipped).Msg("skipped malformed event log lines")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			for _, ev := range res.Events {
				if err := enc.Encode(ev); err != nil {
					return err
				}
			}
			return nil
		}

		for _, ev := range res.Events {
			keys := make([]string, 0, len(ev.Data))
			for k := range ev.Data {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fields := make([]string, 0, len(keys))
			for _, k := range keys {
				fields = append(fields, fmt.Sprintf("%s=%v", k, ev.Data[k]))
			}
			fmt.Printf("%s  %-16s %-12s %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.Event, ev.ArticleID, strings.Join(fields, " "))
		}
		fmt.Fprintf(os.Stderr, "%d events\n", len(res.Events))
		return nil
	},
}

func init() {
	eventsCmd.Flags().String("event", "", "only this event type")
	eventsCmd.Flags().String("article", "", "only events for this article ID")
	eventsCmd.Flags().Duration("since", 0, "only events newer than this, e.g. 24h")
	eventsCmd.Flags().Int("limit", 50, "keep only the most recent N (0 = all)")
	eventsCmd.Flags().Bool("json", false, "print raw JSONL")

	rootCmd.AddCommand(eventsCmd)
}
