package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"facenet/internal/model"
)

// LoadCSV reads a labeled grid dataset from path.
func LoadCSV(path string) ([]model.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	samples, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return samples, nil
}

// ReadCSV parses rows of comma separated values. The first row is a header
// and is skipped. In every other row the last value is the label and the rest
// are inputs. Rows with fewer than two values are ignored. All rows must have
// the same width.
func ReadCSV(r io.Reader) ([]model.Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read header")
	}

	var samples []model.Sample
	width := -1
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}
		if len(record) < 2 {
			continue
		}
		if width < 0 {
			width = len(record)
		} else if len(record) != width {
			return nil, errors.Errorf("row %d: got %d values, want %d", row, len(record), width)
		}

		values := make([]float64, len(record))
		for col, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %d", row, col+1)
			}
			values[col] = v
		}
		last := len(values) - 1
		samples = append(samples, model.Sample{Inputs: values[:last:last], Label: values[last]})
	}
	return samples, nil
}
