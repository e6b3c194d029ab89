package viz

import (
	"html/template"
	"io"

	"facenet/internal/model"
)

// Page is the data behind the HTML dataset view.
type Page struct {
	Title  string
	Stats  Stats
	Grids  []Grid
	Curve  template.HTML
	Result *model.TestResult
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"pixelColor": func(v float64) string {
		if v == 1 {
			return "#000"
		}
		return "#fff"
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: 'Courier New', monospace; margin: 20px; background: #f5f5f5; }
h1 { text-align: center; color: #333; }
.stats, .card { background: #fff; border-radius: 8px; padding: 15px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.stats { margin-bottom: 20px; }
.stat { display: inline-block; margin-right: 20px; }
.grids { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 20px; }
.card { text-align: center; border: 2px solid #ddd; }
.card.face { border-color: #4CAF50; background: #f8fff8; }
.card.non-face { border-color: #f44336; background: #fff8f8; }
.pixels { font-size: 12px; line-height: 1; letter-spacing: 1px; margin: 10px 0; }
.faces { color: #4CAF50; font-weight: bold; }
.non-faces { color: #f44336; font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="stats">
<h2>Dataset Statistics</h2>
<span class="stat">Total Images: <strong>{{.Stats.Total}}</strong></span>
<span class="stat">Faces: <span class="faces">{{.Stats.Faces}}</span></span>
<span class="stat">Non-Faces: <span class="non-faces">{{.Stats.NonFaces}}</span></span>
</div>
{{with .Result}}<div class="stats">
<h2>Test Result</h2>
<span class="stat">Correct: <strong>{{.CorrectPredictions}}</strong></span>
<span class="stat">Accuracy: <strong>{{printf "%.2f" .Accuracy}}%</strong></span>
<span class="stat">Avg Error: <strong>{{printf "%.4f" .AvgTestError}}</strong></span>
</div>{{end}}
{{if .Curve}}<div class="stats">{{.Curve}}</div>{{end}}
<div class="grids">
{{range .Grids}}<div class="card {{if .IsFace}}face{{else}}non-face{{end}}">
<div><strong>Row {{.Row}} - {{.Kind}}</strong></div>
<div class="pixels">{{range .Cells}}{{range .}}<span style="color: {{pixelColor .}};">█</span>{{end}}<br>{{end}}</div>
</div>
{{end}}</div>
</body>
</html>
`))

// WritePage renders p as a standalone HTML document.
func WritePage(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = "Face Dataset Visualization"
	}
	return pageTemplate.Execute(w, p)
}

// WriteHTML renders every grid with the dataset statistics.
func WriteHTML(w io.Writer, grids []Grid) error {
	return WritePage(w, Page{Stats: ComputeStats(grids), Grids: grids})
}
