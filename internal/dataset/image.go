package dataset

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/pkg/errors"
)

// GridSize is the side of the square pixel grids the face datasets use.
const GridSize = 10

// darkThreshold is the intensity below which a sampled pixel counts as set.
const darkThreshold = 0.5

// ImageGrid decodes a PNG or JPEG image and samples it down to a size×size
// grid in row-major order. Dark pixels become 1 and light pixels 0, matching
// the CSV datasets.
func ImageGrid(raw []byte, size int) ([]float64, error) {
	if size <= 0 {
		return nil, errors.Errorf("grid size must be > 0 (got %d)", size)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.New("empty image")
	}
	grid := make([]float64, size*size)
	stepX := float64(width) / float64(size)
	stepY := float64(height) / float64(size)
	for gy := 0; gy < size; gy++ {
		for gx := 0; gx < size; gx++ {
			px := bounds.Min.X + int(math.Min(float64(width-1), float64(gx)*stepX))
			py := bounds.Min.Y + int(math.Min(float64(height-1), float64(gy)*stepY))
			r, g, b, _ := img.At(px, py).RGBA()
			intensity := (float64(r) + float64(g) + float64(b)) / (3 * 65535.0)
			if intensity < darkThreshold {
				grid[gy*size+gx] = 1
			}
		}
	}
	return grid, nil
}

// LoadImageGrid reads path and converts it with ImageGrid.
func LoadImageGrid(path string, size int) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}
	grid, err := ImageGrid(raw, size)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return grid, nil
}
