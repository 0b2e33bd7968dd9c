package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
)

// WriteCSV writes one grid row per line. Non-finite cells are written as
// NaN, +Inf and -Inf, which [ReadCSV] parses back.
func WriteCSV(g *heightmap.Grid, w io.Writer) error {
	cw := csv.NewWriter(w)
	record := make([]string, g.Width())
	for h := 0; h < g.Height(); h++ {
		for c := range record {
			record[c] = strconv.FormatFloat(float64(g.At(h, c)), 'g', -1, 32)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", h, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads one grid row per line. Every line must have the same number
// of fields; blank fields are rejected.
func ReadCSV(r io.Reader) (*heightmap.Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0 // all records must match the first
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGrid, err, "read csv")
	}

	rows := make([][]float32, len(records))
	for h, rec := range records {
		rows[h] = make([]float32, len(rec))
		for w, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "row %d column %d", h, w)
			}
			rows[h][w] = float32(v)
		}
	}
	return heightmap.New(rows)
}

// ImportFile reads a grid from path, choosing the decoder by extension:
// .csv for CSV, anything else for JSON.
func ImportFile(path string) (*heightmap.Grid, error) {
	if !isCSV(path) {
		return ImportJSON(path)
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ExportFile writes a grid to path, choosing the encoder by extension.
func ExportFile(g *heightmap.Grid, path string) error {
	if !isCSV(path) {
		return ExportJSON(g, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
