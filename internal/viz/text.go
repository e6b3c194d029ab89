package viz

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	htmlFile     = "face_dataset_visualization.html"
	textFile     = "face_dataset_visualization.txt"
	examplesDir  = "examples"
	exampleGrids = 10
)

func heading(g Grid) string {
	return fmt.Sprintf("Row %d - %s", g.Row, strings.ToUpper(g.Kind()))
}

// WriteStats prints label counts and percentages.
func WriteStats(w io.Writer, st Stats) error {
	_, err := fmt.Fprintf(w, "\nDataset Statistics:\n==================\nTotal Images: %d\nFaces: %d (%.1f%%)\nNon-Faces: %d (%.1f%%)\n",
		st.Total, st.Faces, st.FacePct(), st.NonFaces, st.NonFacePct())
	return err
}

// Display prints a single grid with its heading.
func Display(w io.Writer, grids []Grid, row int) error {
	g, err := Find(grids, row)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\n%s\n%s\n%s", heading(g), strings.Repeat("-", 20), ASCII(g))
	return err
}

// WriteText writes the plain-text rendering of every grid.
func WriteText(w io.Writer, grids []Grid) error {
	st := ComputeStats(grids)
	var sb strings.Builder
	sb.WriteString("Face Dataset Visualization\n")
	sb.WriteString("========================\n\n")
	fmt.Fprintf(&sb, "Total Images: %d\nFaces: %d\nNon-Faces: %d\n\n", st.Total, st.Faces, st.NonFaces)
	sb.WriteString("Legend: █ = Black (1), · = White (0)\n\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	for _, g := range grids {
		sb.WriteString(heading(g) + "\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		sb.WriteString(ASCII(g))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Generate writes the HTML page, the text rendering and one file for each
// of the first ten grids into dir. It returns the paths written.
func Generate(dir string, grids []Grid) ([]string, error) {
	exDir := filepath.Join(dir, examplesDir)
	if err := os.MkdirAll(exDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create output dir")
	}

	var written []string
	write := func(path string, render func(io.Writer) error) error {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		if err := render(f); err != nil {
			f.Close()
			return errors.Wrapf(err, "write %s", path)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "close %s", path)
		}
		written = append(written, path)
		return nil
	}

	if err := write(filepath.Join(dir, htmlFile), func(w io.Writer) error { return WriteHTML(w, grids) }); err != nil {
		return written, err
	}
	if err := write(filepath.Join(dir, textFile), func(w io.Writer) error { return WriteText(w, grids) }); err != nil {
		return written, err
	}
	for i, g := range grids {
		if i == exampleGrids {
			break
		}
		name := fmt.Sprintf("grid_%d_%s.txt", g.Row, strings.ToLower(strings.ReplaceAll(g.Kind(), "-", "")))
		g := g
		err := write(filepath.Join(exDir, name), func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s\n\n%s", heading(g), ASCII(g))
			return err
		})
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
