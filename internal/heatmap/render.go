package heatmap

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/seriesheat/seriesheat/internal/apperrors"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/metrics"
	"github.com/seriesheat/seriesheat/internal/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Supported image formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Default rendering options.
const (
	DefaultWidthInches  = 8.0
	DefaultHeightInches = 8.0
	DefaultFormat       = FormatPNG
)

// ratingScaleMax caps the color scale. IMDB ratings never exceed 10.
const ratingScaleMax = 10.0

// Options control the dimensions and encoding of a rendered heatmap.
type Options struct {
	WidthInches  float64
	HeightInches float64
	Format       string
}

// Normalized returns a copy of the options with defaults applied to zero or
// negative fields.
func (o Options) Normalized() Options {
	if o.WidthInches <= 0 {
		o.WidthInches = DefaultWidthInches
	}
	if o.HeightInches <= 0 {
		o.HeightInches = DefaultHeightInches
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}

	return o
}

// Renderer draws season-by-episode rating heatmaps
type Renderer struct {
	paletteSteps int
}

// NewRenderer creates a renderer with the default palette resolution
func NewRenderer() *Renderer {
	return &Renderer{
		paletteSteps: defaultPaletteSteps,
	}
}

// Render draws the ratings matrix of a series as a heatmap image and returns
// the encoded bytes. Returns an apperrors.ErrNoRatings when no episode of the
// series carries a rating.
func (r *Renderer) Render(series *models.SeriesRatings, opts Options) ([]byte, error) {
	logger := config.GetLogger()
	opts = opts.Normalized()

	if opts.Format != FormatPNG && opts.Format != FormatSVG {
		return nil, fmt.Errorf("unsupported image format %q", opts.Format)
	}

	minRating, rated := series.MinRating()
	if !rated {
		metrics.HeatmapRendersTotal.WithLabelValues(opts.Format, "error").Inc()
		logger.Warn().Str("show_id", series.ID).Str("title", series.Title).Msg("No rated episodes to render")
		return nil, apperrors.NewNoRatingsError(series.ID, series.Title)
	}

	start := time.Now()
	content, err := r.draw(series, opts, minRating)
	if err != nil {
		metrics.HeatmapRendersTotal.WithLabelValues(opts.Format, "error").Inc()
		logger.Error().Err(err).Str("show_id", series.ID).Msg("Failed to render heatmap")
		return nil, fmt.Errorf("render heatmap: %w", err)
	}

	metrics.RenderSeconds.Observe(time.Since(start).Seconds())
	metrics.HeatmapRendersTotal.WithLabelValues(opts.Format, "success").Inc()
	logger.Debug().
		Str("show_id", series.ID).
		Str("format", opts.Format).
		Int("bytes", len(content)).
		Dur("duration", time.Since(start)).
		Msg("Rendered heatmap")

	return content, nil
}

// draw assembles the plot and encodes it in the requested format.
func (r *Renderer) draw(series *models.SeriesRatings, opts Options, minRating float64) ([]byte, error) {
	grid := NewGrid(series)

	p := plot.New()
	p.Title.Text = series.Title
	p.Title.TextStyle.Font.Size = vg.Points(20)
	p.X.Label.Text = fmt.Sprintf("Season (average rating %.1f)", series.AverageRating())
	p.Y.Label.Text = "Episode"

	heat := plotter.NewHeatMap(grid, Palette(r.paletteSteps))
	heat.Min = minRating
	heat.Max = ratingScaleMax
	if heat.Min >= heat.Max {
		// Degenerate color range when every episode is rated 10.0.
		heat.Min = heat.Max - 1
	}
	p.Add(heat)

	labels, err := cellLabels(grid)
	if err != nil {
		return nil, fmt.Errorf("build cell labels: %w", err)
	}
	p.Add(labels)

	// Episode 1 at the top, matching the listing order on IMDB.
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	p.X.Tick.Marker = plot.ConstantTicks(seasonTicks(grid))
	p.Y.Tick.Marker = plot.ConstantTicks(episodeTicks(grid))

	canvas, err := p.WriterTo(
		vg.Length(opts.WidthInches)*vg.Inch,
		vg.Length(opts.HeightInches)*vg.Inch,
		opts.Format,
	)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// cellLabels annotates every rated cell with its rating to one decimal,
// centered on the cell.
func cellLabels(grid *Grid) (*plotter.Labels, error) {
	cols, rows := grid.Dims()

	var data plotter.XYLabels
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			rating := grid.Z(c, r)
			if math.IsNaN(rating) {
				continue
			}
			data.XYs = append(data.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			data.Labels = append(data.Labels, strconv.FormatFloat(rating, 'f', 1, 64))
		}
	}

	labels, err := plotter.NewLabels(data)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}

	return labels, nil
}

// seasonTicks returns one integer tick per season column.
func seasonTicks(grid *Grid) []plot.Tick {
	cols, _ := grid.Dims()
	ticks := make([]plot.Tick, cols)
	for c := 0; c < cols; c++ {
		ticks[c] = plot.Tick{
			Value: grid.X(c),
			Label: strconv.Itoa(int(grid.X(c))),
		}
	}

	return ticks
}

// episodeTicks returns one integer tick per episode row.
func episodeTicks(grid *Grid) []plot.Tick {
	_, rows := grid.Dims()
	ticks := make([]plot.Tick, rows)
	for r := 0; r < rows; r++ {
		ticks[r] = plot.Tick{
			Value: grid.Y(r),
			Label: strconv.Itoa(int(grid.Y(r))),
		}
	}

	return ticks
}
