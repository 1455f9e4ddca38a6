package frontend

import (
	"bytes"
	"html/template"
	"strconv"

	"lsasearch/internal/constants"
)

const Heading = "Results"

var resultsTemplate = template.Must(template.New("results").Parse(
	`<h2>{{.Heading}}</h2>` +
		`{{range .Items}}<div class="result"><strong>Document {{.Index}}</strong><p>{{.Text}}</p><br><strong>Similarity: {{.Similarity}}</strong></div>{{end}}`,
))

var failureTemplate = template.Must(template.New("failure").Parse(
	`<h2>{{.Heading}}</h2><div class="error">Search failed: {{.Reason}}</div>`,
))

type resultItem struct {
	Index      int
	Text       string
	Similarity string
}

// RenderResults replaces the container with a heading and one block per result, in order.
// Document text is escaped, so markup in a post shows up as text.
func RenderResults(container *Container, resp *constants.SearchResponse) error {
	if err := Validate(resp); err != nil {
		return err
	}

	items := make([]resultItem, len(resp.Documents))
	for i := range resp.Documents {
		items[i] = resultItem{
			Index:      resp.Indices[i],
			Text:       resp.Documents[i],
			Similarity: FormatSimilarity(resp.Similarities[i]),
		}
	}

	var buf bytes.Buffer
	err := resultsTemplate.Execute(&buf, struct {
		Heading string
		Items   []resultItem
	}{Heading, items})
	if err != nil {
		return err
	}
	container.Replace(template.HTML(buf.String()))
	return nil
}

// RenderFailure puts the "request failed" state into the container.
func RenderFailure(container *Container, reason error) {
	var buf bytes.Buffer
	err := failureTemplate.Execute(&buf, struct {
		Heading string
		Reason  string
	}{Heading, reason.Error()})
	if err != nil {
		container.Replace(template.HTML("<h2>" + Heading + "</h2><div class=\"error\">Search failed.</div>"))
		return
	}
	container.Replace(template.HTML(buf.String()))
}

// FormatSimilarity - Shortest decimal that round-trips, e.g. 0.87
func FormatSimilarity(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
