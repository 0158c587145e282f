package starbox

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/starbox/internal/fsutil"
	"github.com/banshee-data/starbox/internal/skycoord"
)

// DistanceLabel names the colour scale in both renderings.
const DistanceLabel = "Distance from Earth (pc)"

// colorStops is the number of colours sampled into the HTML visual map.
const colorStops = 10

// RenderOptions tunes the rendered outputs. The zero value is usable.
type RenderOptions struct {
	// AssetsHost overrides where the HTML page loads the echarts scripts.
	AssetsHost    string
	HistogramBins int
	// PNGSize is the edge of the square PNG; defaults to 8 inches.
	PNGSize vg.Length
}

func (o RenderOptions) pngSize() vg.Length {
	if o.PNGSize <= 0 {
		return 8 * vg.Inch
	}
	return o.PNGSize
}

func (b *Box) subtitle() string {
	return fmt.Sprintf("%d of %d objects within %s, depth %s", len(b.Points), b.RegionCount, b.Radius, b.Window)
}

// RenderHTML writes an interactive page: a 3D scatter (RA, Dec, distance)
// with points coloured by distance and the target drawn as a gold pin, and
// a bar chart of the depth distribution.
func RenderHTML(w io.Writer, box *Box, o RenderOptions) error {
	colors := newDistanceColors(box.Distances())

	points := make([]opts.Chart3DData, 0, len(box.Points))
	for _, p := range box.Points {
		points = append(points, opts.Chart3DData{
			Name:  tooltipName(p),
			Value: []interface{}{p.Coord.RA, p.Coord.Dec, p.DistancePC},
		})
	}
	target := []opts.Chart3DData{{
		Name:      tooltipName(box.Target),
		Value:     []interface{}{box.Target.Coord.RA, box.Target.Coord.Dec, box.Target.DistancePC},
		ItemStyle: &opts.ItemStyle{Color: hexColor(Gold)},
	}}

	initOpts := opts.Initialization{
		PageTitle:  "Star box: " + box.StarName,
		Width:      "1100px",
		Height:     "900px",
		AssetsHost: o.AssetsHost,
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: "Objects near " + box.StarName, Subtitle: box.subtitle()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Show: opts.Bool(true), Name: "Right Ascension (deg)"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Show: opts.Bool(true), Name: "Declination (deg)"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Show: opts.Bool(true), Name: "Distance (pc)"}),
		charts.WithGrid3DOpts(opts.Grid3D{BoxWidth: 100, BoxHeight: 100, BoxDepth: 100}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(colors.Min()),
			Max:        float32(colors.Max()),
			Dimension:  "2",
			Text:       []string{DistanceLabel},
			Left:       "2%",
			Bottom:     "5%",
			InRange:    &opts.VisualMapInRange{Color: colors.Stops(colorStops)},
		}),
	)
	// go-echarts has no visualMap.seriesIndex, so scope the scale to the
	// region series once the chart is initialised; the target stays gold.
	scatter.AddJSFuncs("%MY_ECHARTS%.setOption({visualMap: [{seriesIndex: 0}]});")
	scatter.AddSeries("region", points, charts.WithScatterChartOpts(opts.ScatterChart{Symbol: "circle", SymbolSize: 8}))
	scatter.AddSeries(box.StarName, target, charts.WithScatterChartOpts(opts.ScatterChart{Symbol: "pin", SymbolSize: 28}))

	bins := DepthHistogram(box, o.HistogramBins)
	labels := make([]string, len(bins))
	counts := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = b.Label()
		counts[i] = opts.BarData{Value: b.Count}
	}
	initOpts.Height = "400px"
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: "Depth distribution", Subtitle: "objects per distance bin (pc)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("objects", counts)

	page := components.NewPage()
	page.SetPageTitle("Star box: " + box.StarName)
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(scatter, bar)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func tooltipName(p Point) string {
	name := fmt.Sprintf("%s (%.2f pc)", p.Object.ID, p.DistancePC)
	if p.Object.SpectralType != "" {
		name += " " + p.Object.SpectralType
	}
	return name + " at " + positionLabel(p)
}

// positionLabel renders a point's position in sexagesimal RA/Dec.
func positionLabel(p Point) string {
	return skycoord.FormatRA(p.Coord.RA) + " " + skycoord.FormatDec(p.Coord.Dec)
}

// RenderPNG draws the sky projection (RA against Dec) with glyphs coloured
// by distance above a distance colour bar, and saves it as a PNG through
// fsys.
func RenderPNG(fsys fsutil.FileSystem, path string, box *Box, o RenderOptions) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Objects near %s\n%s", box.StarName, box.subtitle())
	p.X.Label.Text = "Right Ascension (degrees)"
	p.Y.Label.Text = "Declination (degrees)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	colors := newDistanceColors(box.Distances())
	if len(box.Points) > 0 {
		xys := make(plotter.XYs, len(box.Points))
		for i, pt := range box.Points {
			xys[i].X = pt.Coord.RA
			xys[i].Y = pt.Coord.Dec
		}
		region, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("failed to build region scatter: %w", err)
		}
		region.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  colors.At(box.Points[i].DistancePC),
				Radius: vg.Points(3),
				Shape:  draw.CircleGlyph{},
			}
		}
		p.Add(region)
		p.Legend.Add("region", region)
	}

	target, err := plotter.NewScatter(plotter.XYs{{X: box.Target.Coord.RA, Y: box.Target.Coord.Dec}})
	if err != nil {
		return fmt.Errorf("failed to build target scatter: %w", err)
	}
	target.GlyphStyle = draw.GlyphStyle{Color: Gold, Radius: vg.Points(9), Shape: draw.PyramidGlyph{}}
	p.Add(target)
	p.Legend.Add(box.StarName+" ("+positionLabel(box.Target)+")", target)

	scale := plot.New()
	scale.Add(&plotter.ColorBar{ColorMap: colors.cm})
	scale.HideY()
	scale.X.Label.Text = DistanceLabel
	scale.X.Min, scale.X.Max = colors.Min(), colors.Max()

	size := o.pngSize()
	img := vgimg.New(size, size)
	dc := draw.New(img)
	barHeight := size / 7
	p.Draw(draw.Crop(dc, 0, 0, barHeight, 0))
	scale.Draw(draw.Crop(dc, 0, 0, 0, barHeight-size))
	return writeFile(fsys, path, vgimg.PngCanvas{Canvas: img})
}

// WriteHTML renders the HTML page into path.
func WriteHTML(fsys fsutil.FileSystem, path string, box *Box, o RenderOptions) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, box, o); err != nil {
		return err
	}
	return writeFile(fsys, path, &buf)
}

func writeFile(fsys fsutil.FileSystem, path string, wt io.WriterTo) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
