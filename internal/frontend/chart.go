package frontend

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"lsasearch/internal/constants"
)

const SeriesName = "Similarity"

// Chart - One bar chart instance drawn on a canvas.
type Chart struct {
	Labels    []string
	Values    []float64
	bar       *charts.Bar
	destroyed bool
}

// Option - The echarts option object for the page script. Nil once destroyed.
func (c *Chart) Option() map[string]interface{} {
	if c.destroyed {
		return nil
	}
	return c.bar.JSON()
}

func (c *Chart) Destroy() {
	c.destroyed = true
	c.bar = nil
}

func (c *Chart) Destroyed() bool {
	return c.destroyed
}

// Canvas holds at most one live chart; installing a new one destroys the old one.
type Canvas struct {
	ID      string
	current *Chart
}

func NewCanvas(id string) *Canvas {
	return &Canvas{ID: id}
}

func (c *Canvas) Replace(chart *Chart) {
	if c.current != nil {
		c.current.Destroy()
	}
	c.current = chart
}

func (c *Canvas) Clear() {
	c.Replace(nil)
}

func (c *Canvas) Current() *Chart {
	return c.current
}

// Label - x axis label for a document id
func Label(index int) string {
	return fmt.Sprintf("Document %d", index)
}

// RenderChart draws one bar per result on the canvas, y axis starting at zero.
func RenderChart(canvas *Canvas, resp *constants.SearchResponse) (*Chart, error) {
	if err := Validate(resp); err != nil {
		return nil, err
	}

	labels := make([]string, len(resp.Indices))
	values := make([]float64, len(resp.Similarities))
	data := make([]opts.BarData, len(resp.Similarities))
	for i := range resp.Indices {
		labels[i] = Label(resp.Indices[i])
		values[i] = resp.Similarities[i]
		data[i] = opts.BarData{Value: resp.Similarities[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: canvas.ID}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0}),
	)
	bar.SetXAxis(labels).AddSeries(SeriesName, data,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:       "rgba(57, 192, 237, 0.2)",
			BorderColor: "rgba(255, 99, 132, 1)",
		}),
	)
	bar.Validate()

	chart := &Chart{Labels: labels, Values: values, bar: bar}
	canvas.Replace(chart)
	return chart, nil
}
