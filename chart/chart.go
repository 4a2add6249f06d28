// Package chart renders a matching run as a single self-contained HTML page.
//
// The page carries one panel per training series, overlaying the training
// points with the selected candidate curve, plus a master scatter of all
// classified test points colored by their assigned candidate. Charts render
// exclusively from stored selections and mapping results; nothing is
// recomputed here.
package chart

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/nebulacode/curvematch/internal/options"
	"github.com/nebulacode/curvematch/match"
	"github.com/nebulacode/curvematch/series"
)

// unassignedColor renders points no selection admitted.
const unassignedColor = "#9e9e9e"

// Renderer builds the HTML report page.
type Renderer struct {
	pageTitle string
}

// RendererOption configures a Renderer.
type RendererOption = options.Option[*Renderer]

// WithPageTitle overrides the HTML page title.
func WithPageTitle(title string) RendererOption {
	return options.NoError(func(r *Renderer) {
		r.pageTitle = title
	})
}

// NewRenderer creates a report renderer.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{pageTitle: "curvematch report"}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Render writes the full report page to w.
func (r *Renderer) Render(w io.Writer, ds *series.Dataset, selections []match.Selection, results []match.MappingResult) error {
	if ds == nil {
		return fmt.Errorf("nil dataset")
	}

	page := components.NewPage()
	page.PageTitle = r.pageTitle
	page.SetLayout(components.PageFlexLayout)

	for _, sel := range selections {
		panel, err := r.selectionPanel(ds, sel)
		if err != nil {
			return err
		}
		page.AddCharts(panel)
	}

	page.AddCharts(r.resultScatter(results))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}

// RenderFile writes the report page to a file at path.
func (r *Renderer) RenderFile(path string, ds *series.Dataset, selections []match.Selection, results []match.MappingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	if err := r.Render(f, ds, selections, results); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// selectionPanel overlays one training series with its selected candidate.
func (r *Renderer) selectionPanel(ds *series.Dataset, sel match.Selection) (*charts.Line, error) {
	if sel.TrainingLabel < 1 || sel.TrainingLabel > len(ds.Training) {
		return nil, fmt.Errorf("training label %d out of range", sel.TrainingLabel)
	}
	if sel.CandidateLabel < 1 || sel.CandidateLabel > len(ds.Candidates) {
		return nil, fmt.Errorf("candidate label %d out of range", sel.CandidateLabel)
	}

	training := ds.Training[sel.TrainingLabel-1]
	candidate := ds.Candidates[sel.CandidateLabel-1]

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("training y%d vs ideal y%d", sel.TrainingLabel, sel.CandidateLabel),
			Subtitle: fmt.Sprintf("SSE %.4g, threshold %.4g", sel.SSE, sel.Threshold),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	line.SetXAxis(ds.Grid).
		AddSeries(fmt.Sprintf("training y%d", sel.TrainingLabel), lineData(training.Y)).
		AddSeries(fmt.Sprintf("ideal y%d", sel.CandidateLabel), lineData(candidate.Y))

	return line, nil
}

// resultScatter plots every classified test point, grouped by assignment.
func (r *Renderer) resultScatter(results []match.MappingResult) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "test point classification",
			Subtitle: fmt.Sprintf("%d points, %d assigned", len(results), countAssigned(results)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	grouped := make(map[int][]opts.ScatterData)
	var unassigned []opts.ScatterData

	for _, res := range results {
		point := opts.ScatterData{
			Value:      []any{res.Point.X, res.Point.Y},
			SymbolSize: 8,
		}
		if res.Assigned {
			grouped[res.CandidateLabel] = append(grouped[res.CandidateLabel], point)
		} else {
			unassigned = append(unassigned, point)
		}
	}

	for label := 1; label <= series.CandidateCount; label++ {
		points, ok := grouped[label]
		if !ok {
			continue
		}
		scatter.AddSeries(fmt.Sprintf("ideal y%d", label), points)
	}

	if len(unassigned) > 0 {
		scatter.AddSeries("unassigned", unassigned,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: unassignedColor}))
	}

	return scatter
}

func lineData(ys []float64) []opts.LineData {
	data := make([]opts.LineData, len(ys))
	for i, y := range ys {
		data[i] = opts.LineData{Value: y}
	}

	return data
}

func countAssigned(results []match.MappingResult) int {
	n := 0
	for _, res := range results {
		if res.Assigned {
			n++
		}
	}

	return n
}
