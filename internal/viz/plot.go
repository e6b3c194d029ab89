package viz

import (
	"bytes"
	"html/template"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrorCurve plots the average error of each epoch against the epoch number.
func ErrorCurve(epochErrors []float64) (*plot.Plot, error) {
	if len(epochErrors) == 0 {
		return nil, errors.New("no epochs to plot")
	}
	p := plot.New()
	p.Title.Text = "Training error"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "average error"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(epochErrors))
	for i, e := range epochErrors {
		pts[i].X = float64(i + 1)
		pts[i].Y = e
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "error curve")
	}
	line.Width = vg.Points(2)
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("average error", line)
	return p, nil
}

// WriteErrorCurve writes the error curve as an SVG of width×height pixels.
func WriteErrorCurve(w io.Writer, epochErrors []float64, width, height int) error {
	p, err := ErrorCurve(epochErrors)
	if err != nil {
		return err
	}
	writer, err := p.WriterTo(vg.Inch*vg.Length(width)/vgimg.DefaultDPI, vg.Inch*vg.Length(height)/vgimg.DefaultDPI, "svg")
	if err != nil {
		return errors.Wrap(err, "render error curve")
	}
	_, err = writer.WriteTo(w)
	return err
}

// ErrorCurveSVG returns the error curve ready to inline in a page.
func ErrorCurveSVG(epochErrors []float64, width, height int) (template.HTML, error) {
	var buf bytes.Buffer
	if err := WriteErrorCurve(&buf, epochErrors, width, height); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
