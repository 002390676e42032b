// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/curator/internal/errs"
	"github.com/pdiddy/curator/pkg/types"
)

// Row is one parsed model output line.
type Row struct {
	Index    int
	Category types.Category
	Score    float64
}

// ParseRows parses "index|category|score" lines for a pool of n articles.
// Lines without a pipe are model chatter and are skipped silently.
// Pipe-delimited lines that do not parse, that name an index outside the
// pool, or that repeat an index already seen are returned as row errors.
// Scores are clamped to [0, 10].
func ParseRows(text string, n int) (map[int]Row, []*errs.RowParseError) {
	rows := make(map[int]Row)
	var bad []*errs.RowParseError

	for _, line := range pipeLines(text) {
		parts := splitPipe(line.text)
		if len(parts) != 3 {
			bad = append(bad, rowErr(line, "want index|category|score"))
			continue
		}
		idx, reason := parseIndex(parts[0], n)
		if reason != "" {
			bad = append(bad, rowErr(line, reason))
			continue
		}
		cat, ok := types.ParseCategory(parts[1])
		if !ok {
			bad = append(bad, rowErr(line, "unknown category "+strconv.Quote(parts[1])))
			continue
		}
		score, ok := parseScore(parts[2])
		if !ok {
			bad = append(bad, rowErr(line, "bad score"))
			continue
		}
		if _, dup := rows[idx]; dup {
			bad = append(bad, rowErr(line, "duplicate index"))
			continue
		}
		rows[idx] = Row{Index: idx, Category: cat, Score: score}
	}
	return rows, bad
}

// ParseScores parses "index|score" lines with the same rules as ParseRows.
func ParseScores(text string, n int) (map[int]float64, []*errs.RowParseError) {
	scores := make(map[int]float64)
	var bad []*errs.RowParseError

	for _, line := range pipeLines(text) {
		parts := splitPipe(line.text)
		if len(parts) != 2 {
			bad = append(bad, rowErr(line, "want index|score"))
			continue
		}
		idx, reason := parseIndex(parts[0], n)
		if reason != "" {
			bad = append(bad, rowErr(line, reason))
			continue
		}
		score, ok := parseScore(parts[1])
		if !ok {
			bad = append(bad, rowErr(line, "bad score"))
			continue
		}
		if _, dup := scores[idx]; dup {
			bad = append(bad, rowErr(line, "duplicate index"))
			continue
		}
		scores[idx] = score
	}
	return scores, bad
}

type numberedLine struct {
	n    int
	text string
}

func pipeLines(text string) []numberedLine {
	var out []numberedLine
	for i, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || !strings.Contains(l, "|") {
			continue
		}
		out = append(out, numberedLine{n: i + 1, text: l})
	}
	return out
}

func splitPipe(line string) []string {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseIndex(s string, n int) (int, string) {
	idx, err := strconv.Atoi(s)
	switch {
	case err != nil || idx < 0:
		return 0, "bad index"
	case idx >= n:
		return 0, "index out of range"
	}
	return idx, ""
}

func parseScore(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return Clamp(v), true
}

func rowErr(l numberedLine, reason string) *errs.RowParseError {
	return &errs.RowParseError{Line: l.n, Text: l.text, Reason: reason}
}
