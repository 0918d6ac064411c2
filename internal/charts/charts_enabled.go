//go:build !nocharts

package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/moamenhredeen/proxybench/internal/models"
	"github.com/moamenhredeen/proxybench/internal/presenter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Enabled reports whether this build can render charts
const Enabled = true

// Okabe-Ito palette for the proxies we usually compare
var proxyColors = map[string]color.Color{
	"caddy":   color.RGBA{R: 0xE6, G: 0x9F, B: 0x00, A: 0xFF},
	"nginx":   color.RGBA{R: 0x56, G: 0xB4, B: 0xE9, A: 0xFF},
	"traefik": color.RGBA{R: 0x00, G: 0x9E, B: 0x73, A: 0xFF},
}

var labelCaser = cases.Title(language.English)

const (
	barWidth     = 14
	titleHeight  = 28
	footerHeight = 20
)

func proxyColor(proxy string, i int) color.Color {
	if c, ok := proxyColors[proxy]; ok {
		return c
	}
	return plotutil.Color(i)
}

// metric picks the value one panel plots for a record
type metric func(m models.NormalizedMetrics) float64

// Render draws throughput, latency and error rate panels for the given
// scenarios and writes a PNG into opts.Dir. It returns the written path.
func Render(store *models.Store, scenarios []string, opts Options) (string, error) {
	opts = opts.withDefaults()

	scenarios = withData(store, scenarios)
	if len(scenarios) == 0 {
		return "", ErrNothingToPlot
	}
	proxies := store.AllProxies()

	throughput, err := groupedPanel(store, proxies, scenarios,
		"Successful requests/s (higher is better)", "Requests/s",
		func(m models.NormalizedMetrics) float64 { return m.SuccessfulRPS })
	if err != nil {
		return "", err
	}
	throughput.Legend.Top = true
	throughput.Legend.Left = true

	latency, err := latencyPanel(store, proxies, scenarios)
	if err != nil {
		return "", err
	}

	errorRate, err := groupedPanel(store, proxies, scenarios,
		"Error rate (lower is better)", "Error Rate (%)",
		models.NormalizedMetrics.ErrorRatePercent)
	if err != nil {
		return "", err
	}
	errorRate.Y.Min = 0
	errorRate.Y.Max = 100

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}

	now := opts.Now()
	path := filepath.Join(opts.Dir, FileName(now))
	if err := save(path, []*plot.Plot{throughput, latency, errorRate}, footerText(opts.Footer, now), opts); err != nil {
		return "", err
	}
	return path, nil
}

// withData keeps the scenarios at least one proxy has a record for
func withData(store *models.Store, scenarios []string) []string {
	var out []string
	for _, s := range scenarios {
		for _, p := range store.AllProxies() {
			if _, ok := store.Get(p, s); ok {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func newPanel(scenarios []string, title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Protocol"
	p.Y.Label.Text = ylabel
	p.Y.Min = 0
	p.X.Min = -0.5
	p.X.Max = float64(len(scenarios)) - 0.5

	ticks := make([]plot.Tick, len(scenarios))
	for i, s := range scenarios {
		ticks[i] = plot.Tick{Value: float64(i), Label: presenter.DisplayName(s)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Add(plotter.NewGrid())
	return p
}

// values returns one value per scenario; missing pairs plot as zero
func values(store *models.Store, proxy string, scenarios []string, fn metric) plotter.Values {
	vs := make(plotter.Values, len(scenarios))
	for i, s := range scenarios {
		if m, ok := store.Get(proxy, s); ok {
			vs[i] = fn(m)
		}
	}
	return vs
}

// offset centres the bar group of n proxies around each tick
func offset(i, n int) vg.Length {
	return vg.Points(barWidth) * vg.Length(float64(i)-float64(n-1)/2)
}

func groupedPanel(store *models.Store, proxies, scenarios []string, title, ylabel string, fn metric) (*plot.Plot, error) {
	p := newPanel(scenarios, title, ylabel)

	for i, proxy := range proxies {
		bars, err := plotter.NewBarChart(values(store, proxy, scenarios, fn), vg.Points(barWidth))
		if err != nil {
			return nil, fmt.Errorf("failed to build %s bars for %s: %w", ylabel, proxy, err)
		}
		bars.Color = proxyColor(proxy, i)
		bars.LineStyle.Color = color.White
		bars.Offset = offset(i, len(proxies))
		p.Add(bars)
		p.Legend.Add(labelCaser.String(proxy), bars)
	}
	return p, nil
}

// latencyPanel draws mean latency as filled bars and p99 as dashed outlines
func latencyPanel(store *models.Store, proxies, scenarios []string) (*plot.Plot, error) {
	p := newPanel(scenarios, "Mean (filled) & P99 (outline) latency (lower is better)", "Latency (ms)")

	for i, proxy := range proxies {
		c := proxyColor(proxy, i)

		mean, err := plotter.NewBarChart(values(store, proxy, scenarios,
			func(m models.NormalizedMetrics) float64 { return m.LatencyMeanMs }), vg.Points(barWidth))
		if err != nil {
			return nil, fmt.Errorf("failed to build mean latency bars for %s: %w", proxy, err)
		}
		mean.Color = c
		mean.LineStyle.Color = color.White
		mean.Offset = offset(i, len(proxies))

		p99, err := plotter.NewBarChart(values(store, proxy, scenarios,
			func(m models.NormalizedMetrics) float64 { return m.LatencyP99Ms }), vg.Points(barWidth))
		if err != nil {
			return nil, fmt.Errorf("failed to build p99 latency bars for %s: %w", proxy, err)
		}
		p99.Color = color.Transparent
		p99.LineStyle.Color = c
		p99.LineStyle.Width = vg.Points(1.5)
		p99.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p99.Offset = mean.Offset

		p.Add(mean, p99)
	}
	return p, nil
}

// save lays the panels out in one row under a title and above the footer
func save(path string, panels []*plot.Plot, footer string, opts Options) error {
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthInches)*vg.Inch, vg.Length(opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	dc := draw.New(img)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	center := (dc.Min.X + dc.Max.X) / 2
	dc.FillText(textStyle(14, color.Black, text.YTop), vg.Point{X: center, Y: dc.Max.Y - vg.Points(6)}, Title)
	dc.FillText(textStyle(8, color.Gray{Y: 0x66}, text.YBottom), vg.Point{X: center, Y: dc.Min.Y + vg.Points(4)}, footer)

	body := draw.Crop(dc, 0, 0, vg.Points(footerHeight), -vg.Points(titleHeight))
	tiles := draw.Tiles{
		Rows: 1,
		Cols: len(panels),
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{panels}, tiles, body)
	for j, p := range panels {
		p.Draw(canvases[0][j])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return f.Close()
}

func textStyle(size float64, c color.Color, valign text.YAlignment) text.Style {
	return text.Style{
		Color:   c,
		Font:    font.From(plot.DefaultFont, vg.Points(size)),
		XAlign:  text.XCenter,
		YAlign:  valign,
		Handler: plot.DefaultTextHandler,
	}
}
