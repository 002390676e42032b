// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich derives trusted content domains from curator-attributed
// bookmarks and merges them into the learned domain signals.
package enrich

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

// Item is one bookmarked post attributed to the curator who wrote it.
type Item struct {
	ID      string   `json:"id"`
	Curator string   `json:"curator"`
	Folder  string   `json:"folder"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
	URLs    []string `json:"urls"`
}

// LoadItems reads a JSON array of items.
func LoadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bookmarks: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing bookmarks %s: %w", path, err)
	}
	return items, nil
}

// noiseDomains are social hosts, media CDNs, shorteners and video
// platforms. They say nothing about where a curator finds content.
var noiseDomains = map[string]bool{
	"x.com":        true,
	"twitter.com":  true,
	"t.co":         true,
	"twimg.com":    true,
	"youtube.com":  true,
	"youtu.be":     true,
	"substack.com": true,
	"bit.ly":       true,
	"tinyurl.com":  true,
	"ow.ly":        true,
	"buff.ly":      true,
	"github.com":   true,
}

var bareURL = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// Links returns the distinct links in an item: explicit URLs, anchors in
// its HTML and bare URLs in its text.
func Links(it Item) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(u string) {
		u = strings.TrimRight(strings.TrimSpace(u), ".,;:!?")
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}

	for _, u := range it.URLs {
		add(u)
	}
	if it.HTML != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(it.HTML)); err == nil {
			doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
				if href, ok := s.Attr("href"); ok && strings.HasPrefix(href, "http") {
					add(href)
				}
			})
		}
	}
	for _, u := range bareURL.FindAllString(it.Text, -1) {
		add(u)
	}
	return out
}

// Domain returns the content domain of raw with any leading www.
// stripped. It reports false for unparseable links, noise domains and
// links back to the curator's own site.
func Domain(raw, curator string) (string, bool) {
	host := hostOf(raw)
	if host == "" || isNoise(host) {
		return "", false
	}
	if self := hostOf(curator); self != "" && (host == self || registrable(host) == registrable(self)) {
		return "", false
	}
	return host, true
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		// Bare hostnames such as a curator's site.
		if strings.ContainsAny(raw, "/@ ") || !strings.Contains(raw, ".") {
			return ""
		}
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func registrable(host string) string {
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

func isNoise(host string) bool {
	return noiseDomains[host] || noiseDomains[registrable(host)]
}

// Contribution is one curator's share of a domain score.
type Contribution struct {
	Curator string
	Weight  int
}

// DomainScore is a domain and its curator-weighted score.
type DomainScore struct {
	Domain       string
	Score        int
	Contributors []Contribution
}

// Stats summarises one scored batch.
type Stats struct {
	Items             int
	WithLinks         int
	TextOnly          int
	CuratorsWithLinks int
	TotalCurators     int
	UniqueDomains     int
	Strong            int
}

const unknownCurator = "unknown"

// Score weights each curator's top maxPerCurator domains by the number of
// items saved from that curator and sums across curators. Ties within a
// curator keep first-seen order. Results are ordered by score, then name.
func Score(items []Item, maxPerCurator, minScore int) ([]DomainScore, Stats) {
	if maxPerCurator <= 0 {
		maxPerCurator = 3
	}

	saves := make(map[string]int)
	perCurator := make(map[string][]string)
	var curatorOrder []string
	st := Stats{Items: len(items)}

	for _, it := range items {
		c := strings.TrimSpace(it.Curator)
		if c == "" {
			c = unknownCurator
		}
		saves[c]++

		var domains []string
		for _, l := range Links(it) {
			if d, ok := Domain(l, c); ok {
				domains = append(domains, d)
			}
		}
		if len(domains) == 0 {
			st.TextOnly++
			continue
		}
		st.WithLinks++
		if _, ok := perCurator[c]; !ok {
			curatorOrder = append(curatorOrder, c)
		}
		perCurator[c] = append(perCurator[c], domains...)
	}

	scores := make(map[string]*DomainScore)
	for _, c := range curatorOrder {
		weight := saves[c]
		for _, d := range topDomains(perCurator[c], maxPerCurator) {
			ds, ok := scores[d]
			if !ok {
				ds = &DomainScore{Domain: d}
				scores[d] = ds
			}
			ds.Score += weight
			ds.Contributors = append(ds.Contributors, Contribution{Curator: c, Weight: weight})
		}
	}

	out := make([]DomainScore, 0, len(scores))
	for _, ds := range scores {
		sort.SliceStable(ds.Contributors, func(i, j int) bool { return ds.Contributors[i].Weight > ds.Contributors[j].Weight })
		out = append(out, *ds)
		if ds.Score >= minScore {
			st.Strong++
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Domain < out[j].Domain
	})

	st.CuratorsWithLinks = len(perCurator)
	st.TotalCurators = len(saves)
	st.UniqueDomains = len(out)
	return out, st
}

// topDomains returns the n most frequent domains, ties in first-seen order.
func topDomains(domains []string, n int) []string {
	count := make(map[string]int)
	var order []string
	for _, d := range domains {
		if count[d] == 0 {
			order = append(order, d)
		}
		count[d]++
	}
	sort.SliceStable(order, func(i, j int) bool { return count[order[i]] > count[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}
