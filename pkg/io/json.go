package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
)

type document struct {
	Height int      `json:"height,omitempty"`
	Width  int      `json:"width,omitempty"`
	Values [][]cell `json:"values"`
}

// cell encodes non-finite floats as strings.
type cell float32

func (c cell) MarshalJSON() ([]byte, error) {
	f := float64(c)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 32), nil
}

func (c *cell) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*c = cell(math.NaN())
		case "+Inf", "Inf":
			*c = cell(math.Inf(1))
		case "-Inf":
			*c = cell(math.Inf(-1))
		default:
			return fmt.Errorf("invalid cell value %q", s)
		}
		return nil
	}
	var f float32
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = cell(f)
	return nil
}

func toDocument(g *heightmap.Grid) document {
	doc := document{
		Height: g.Height(),
		Width:  g.Width(),
		Values: make([][]cell, g.Height()),
	}
	for h := range doc.Values {
		row := make([]cell, g.Width())
		for w := range row {
			row[w] = cell(g.At(h, w))
		}
		doc.Values[h] = row
	}
	return doc
}

func fromDocument(doc document) (*heightmap.Grid, error) {
	rows := make([][]float32, len(doc.Values))
	for h, r := range doc.Values {
		rows[h] = make([]float32, len(r))
		for w, v := range r {
			rows[h][w] = float32(v)
		}
	}
	g, err := heightmap.New(rows)
	if err != nil {
		return nil, err
	}
	if doc.Height != 0 && doc.Height != g.Height() {
		return nil, errors.New(errors.ErrCodeInvalidGrid,
			"declared height %d but found %d rows", doc.Height, g.Height())
	}
	if doc.Width != 0 && doc.Width != g.Width() {
		return nil, errors.New(errors.ErrCodeInvalidGrid,
			"declared width %d but found %d columns", doc.Width, g.Width())
	}
	return g, nil
}

// WriteJSON encodes a grid as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *heightmap.Grid, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a grid from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*heightmap.Grid, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode grid")
	}
	return fromDocument(doc)
}

// MarshalGrid returns the compact JSON encoding of g.
func MarshalGrid(g *heightmap.Grid) ([]byte, error) {
	return json.Marshal(toDocument(g))
}

// UnmarshalGrid decodes a grid produced by [MarshalGrid] or [WriteJSON].
func UnmarshalGrid(data []byte) (*heightmap.Grid, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ExportJSON writes a grid to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *heightmap.Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportJSON reads a JSON grid file at path.
// A missing file is reported with code FILE_NOT_FOUND.
func ImportJSON(path string) (*heightmap.Grid, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "grid file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
