package frontend

import (
	"embed"
	"html/template"
	"io"
	"sync"
)

const (
	ResultsID = "results"
	CanvasID  = "similarity-chart"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Container - The results element. Its content is always replaced wholesale.
type Container struct {
	html template.HTML
}

func (c *Container) Replace(html template.HTML) {
	c.html = html
}

func (c *Container) Clear() {
	c.html = ""
}

func (c *Container) HTML() template.HTML {
	return c.html
}

// Page - The search page's mutable state: query field, results container and chart canvas.
// Mutations go through the page lock so only one of them happens at a time.
type Page struct {
	mu      sync.Mutex
	query   string
	results *Container
	canvas  *Canvas
}

func NewPage() *Page {
	return &Page{
		results: &Container{},
		canvas:  NewCanvas(CanvasID),
	}
}

// View - A consistent snapshot of the page for the template.
type View struct {
	Query     string
	ResultsID string
	Results   template.HTML
	CanvasID  string
	Chart     map[string]interface{}
}

func (p *Page) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := View{
		Query:     p.query,
		ResultsID: ResultsID,
		Results:   p.results.HTML(),
		CanvasID:  p.canvas.ID,
	}
	if chart := p.canvas.Current(); chart != nil {
		view.Chart = chart.Option()
	}
	return view
}

// Render writes the whole page document.
func (p *Page) Render(w io.Writer) error {
	return pageTemplate.Execute(w, p.Snapshot())
}

func (p *Page) update(fn func(results *Container, canvas *Canvas)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.results, p.canvas)
}
