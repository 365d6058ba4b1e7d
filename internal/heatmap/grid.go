package heatmap

import (
	"math"

	"github.com/seriesheat/seriesheat/internal/models"

	"gonum.org/v1/plot/plotter"
)

// Grid adapts a ratings matrix to plotter.GridXYZ. Columns are seasons and
// rows are episode ordinals; cells without a rated episode hold NaN so the
// heatmap leaves them blank.
type Grid struct {
	seasons []int
	rows    int
	cells   [][]float64 // indexed [column][row]
}

var _ plotter.GridXYZ = &Grid{}

// NewGrid builds a Grid from the series ratings. The row count is the highest
// episode ordinal across all seasons, so shorter seasons get trailing NaN
// cells.
func NewGrid(series *models.SeriesRatings) *Grid {
	rows := 0
	for _, season := range series.Seasons {
		for _, episode := range season.Episodes {
			if episode.Episode > rows {
				rows = episode.Episode
			}
		}
	}

	grid := &Grid{
		seasons: make([]int, len(series.Seasons)),
		rows:    rows,
		cells:   make([][]float64, len(series.Seasons)),
	}
	for c, season := range series.Seasons {
		grid.seasons[c] = season.Season

		column := make([]float64, rows)
		for r := range column {
			column[r] = math.NaN()
		}
		for _, episode := range season.Episodes {
			if !episode.Rated() || episode.Episode < 1 || episode.Episode > rows {
				continue
			}
			column[episode.Episode-1] = episode.Rating
		}
		grid.cells[c] = column
	}

	return grid
}

// Dims implements plotter.GridXYZ.
func (g *Grid) Dims() (c, r int) {
	return len(g.seasons), g.rows
}

// X implements plotter.GridXYZ, mapping columns to season numbers.
func (g *Grid) X(c int) float64 {
	return float64(g.seasons[c])
}

// Y implements plotter.GridXYZ, mapping rows to 1-based episode numbers.
func (g *Grid) Y(r int) float64 {
	return float64(r + 1)
}

// Z implements plotter.GridXYZ. NaN marks cells without a rated episode.
func (g *Grid) Z(c, r int) float64 {
	return g.cells[c][r]
}
