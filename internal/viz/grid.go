// Package viz renders face datasets and training curves for people.
package viz

import (
	"strings"

	"github.com/pkg/errors"

	"facenet/internal/model"
)

// ErrGridNotFound is returned when a requested row is not in the dataset.
var ErrGridNotFound = errors.New("grid not found")

// Grid is one dataset row laid out as a square pixel grid.
type Grid struct {
	Row   int
	Cells [][]float64
	Label float64
}

// IsFace reports whether the row is labeled as a face.
func (g Grid) IsFace() bool { return g.Label == 1 }

// Kind is the display name of the label.
func (g Grid) Kind() string {
	if g.IsFace() {
		return "Face"
	}
	return "Non-Face"
}

// GridsFromSamples lays out the first size*size inputs of every sample. Rows
// are numbered from 1 in dataset order.
func GridsFromSamples(samples []model.Sample, size int) ([]Grid, error) {
	grids := make([]Grid, len(samples))
	for i, s := range samples {
		if len(s.Inputs) < size*size {
			return nil, errors.Errorf("row %d: got %d values, want at least %d", i+1, len(s.Inputs), size*size)
		}
		cells := make([][]float64, size)
		for r := range cells {
			cells[r] = s.Inputs[r*size : (r+1)*size]
		}
		grids[i] = Grid{Row: i + 1, Cells: cells, Label: s.Label}
	}
	return grids, nil
}

// ASCII draws set pixels as █ and everything else as ·, one line per row.
func ASCII(g Grid) string {
	var sb strings.Builder
	for _, row := range g.Cells {
		for _, v := range row {
			if v == 1 {
				sb.WriteString("█")
			} else {
				sb.WriteString("·")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Find returns the grid with the given 1-based row index.
func Find(grids []Grid, row int) (Grid, error) {
	for _, g := range grids {
		if g.Row == row {
			return g, nil
		}
	}
	return Grid{}, errors.Wrapf(ErrGridNotFound, "row %d", row)
}

// Filter keeps faces, non-faces or everything.
func Filter(grids []Grid, faces, nonFaces bool) []Grid {
	out := make([]Grid, 0, len(grids))
	for _, g := range grids {
		if (g.IsFace() && faces) || (!g.IsFace() && nonFaces) {
			out = append(out, g)
		}
	}
	return out
}

// Stats counts labels in a dataset.
type Stats struct {
	Total    int
	Faces    int
	NonFaces int
}

// ComputeStats counts rows labeled 1 as faces and 0 as non-faces.
func ComputeStats(grids []Grid) Stats {
	st := Stats{Total: len(grids)}
	for _, g := range grids {
		switch g.Label {
		case 1:
			st.Faces++
		case 0:
			st.NonFaces++
		}
	}
	return st
}

// FacePct is the share of faces in percent; zero for an empty dataset.
func (s Stats) FacePct() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Faces) / float64(s.Total) * 100
}

func (s Stats) NonFacePct() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.NonFaces) / float64(s.Total) * 100
}
