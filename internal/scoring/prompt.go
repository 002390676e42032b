// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/curator/pkg/types"
)

const (
	singleSummaryChars = 200
	rerankSummaryChars = 300
)

var singleTmpl = template.Must(template.New("single").Parse(
	`{{if .Profile}}PERSONALIZATION (learned from this reader's feedback):
{{.Profile}}

{{end}}You are scoring news articles for a reader who follows {{.Domain}}.

For each article below, assign a category and an importance score from 0 to 10.

Categories: {{.Categories}}

Articles:
{{range .Lines}}{{.}}
{{end}}
Respond with one line per article in exactly this format and nothing else:
index|category|score

Example:
0|monetary|7.5
`))

var prefilterTmpl = template.Must(template.New("prefilter").Parse(
	`{{if .Profile}}PERSONALIZATION (learned from this reader's feedback):
{{.Profile}}

{{end}}Quickly triage these articles for a reader who follows {{.Domain}}.
Assign each a category and a rough relevance score from 0 to 10.

Categories: {{.Categories}}

Articles:
{{range .Lines}}{{.}}
{{end}}
Respond with one line per article in exactly this format and nothing else:
index|category|score
`))

var rerankTmpl = template.Must(template.New("rerank").Parse(
	`{{if .Profile}}PERSONALIZATION (learned from this reader's feedback):
{{.Profile}}

{{end}}These articles passed a first relevance screen for a reader who follows {{.Domain}}.
Re-score each one from 0 to 10 with care. Favour analysis over headlines,
primary sources over aggregation, and novelty over repetition.

Articles:
{{range .Lines}}{{.}}
{{end}}
Respond with one line per article in exactly this format and nothing else:
index|score
`))

type promptData struct {
	Profile    string
	Domain     string
	Categories string
	Lines      []string
}

// articleLines renders one numbered block per article: the source-tagged
// title and a single-line summary truncated to summaryChars runes. With
// withCategory the article's current category is tagged too.
func articleLines(pool []types.Article, summaryChars int, withCategory bool) []string {
	lines := make([]string, len(pool))
	for i, a := range pool {
		tag := "[" + a.Source + "]"
		if withCategory {
			tag += " [" + string(a.Category) + "]"
		}
		lines[i] = fmt.Sprintf("%d. %s %s\n   %s...", i, tag, a.Title, flatten(a.Summary, summaryChars))
	}
	return lines
}

func flatten(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > max {
		r = r[:max]
	}
	return string(r)
}

func categoryList() string {
	names := make([]string, len(types.Categories))
	for i, c := range types.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
