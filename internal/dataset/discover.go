package dataset

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"facenet/internal/model"
)

var splitRegexp = regexp.MustCompile(`(?i)_(train|test)\.csv$`)

// Splits lists the dataset files found for each split.
type Splits struct {
	Train []string
	Test  []string
}

// DiscoverSplits returns the *_TRAIN.csv and *_TEST.csv files beneath root,
// sorted by path.
func DiscoverSplits(root string) (Splits, error) {
	var splits Splits
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m := splitRegexp.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}
		if strings.EqualFold(m[1], "train") {
			splits.Train = append(splits.Train, path)
		} else {
			splits.Test = append(splits.Test, path)
		}
		return nil
	})
	if err != nil {
		return Splits{}, errors.Wrap(err, "discover splits")
	}
	sort.Strings(splits.Train)
	sort.Strings(splits.Test)
	return splits, nil
}

// LoadAll concatenates the samples of every path in order.
func LoadAll(paths []string) ([]model.Sample, error) {
	var all []model.Sample
	for _, path := range paths {
		samples, err := LoadCSV(path)
		if err != nil {
			return nil, err
		}
		all = append(all, samples...)
	}
	return all, nil
}
