// Package dataset loads the labelled feature matrices that experiments
// train and score classifiers on.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyDataset is returned when a dataset has no rows
var ErrEmptyDataset = errors.New("dataset is empty")

// Dataset is a feature matrix with one integer class label per row
type Dataset struct {
	Features [][]float64
	Labels   []int
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Labels)
}

// NumFeatures returns the width of the feature matrix
func (d *Dataset) NumFeatures() int {
	if d == nil || len(d.Features) == 0 {
		return 0
	}
	return len(d.Features[0])
}

// NumClasses returns max label + 1, never less than 2
func (d *Dataset) NumClasses() int {
	n := 2
	if d == nil {
		return n
	}
	for _, l := range d.Labels {
		if l+1 > n {
			n = l + 1
		}
	}
	return n
}

// Validate checks that the matrix is rectangular and labels line up with rows
func (d *Dataset) Validate() error {
	if d == nil || len(d.Features) == 0 {
		return ErrEmptyDataset
	}
	if len(d.Features) != len(d.Labels) {
		return fmt.Errorf("features have %d rows but labels have %d", len(d.Features), len(d.Labels))
	}
	width := len(d.Features[0])
	if width == 0 {
		return fmt.Errorf("row 0 has no features")
	}
	for i, row := range d.Features {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	for i, l := range d.Labels {
		if l < 0 {
			return fmt.Errorf("row %d has negative label %d", i, l)
		}
	}
	return nil
}

// LoadCSV reads a dataset from a CSV file. labelColumn selects the label
// column; a negative value counts from the end (-1 is the last column).
// A non-numeric first row is treated as a header.
func LoadCSV(path string, labelColumn int) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	ds, err := ReadCSV(f, labelColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV reads a dataset from CSV text
func ReadCSV(r io.Reader, labelColumn int) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && isHeader(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	ds := &Dataset{
		Features: make([][]float64, 0, len(records)),
		Labels:   make([]int, 0, len(records)),
	}
	for i, rec := range records {
		col := labelColumn
		if col < 0 {
			col = len(rec) + col
		}
		if col < 0 || col >= len(rec) {
			return nil, fmt.Errorf("row %d: label column %d out of range", i, labelColumn)
		}

		label, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
		if err != nil || label != math.Trunc(label) {
			return nil, fmt.Errorf("row %d: invalid label %q", i, rec[col])
		}

		row := make([]float64, 0, len(rec)-1)
		for j, field := range rec {
			if j == col {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			row = append(row, v)
		}
		ds.Features = append(ds.Features, row)
		ds.Labels = append(ds.Labels, int(label))
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func isHeader(rec []string) bool {
	for _, field := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return true
		}
	}
	return false
}
