// Package io provides JSON and CSV import and export for heightmap grids.
//
// # Overview
//
// The core heightmap packages never touch files. This package is the boundary
// where grids produced by external generators enter relief and where results
// leave it for rendering or export tools.
//
// # JSON Format
//
// A grid is a JSON object with its dimensions and nested rows:
//
//	{
//	  "height": 2,
//	  "width": 3,
//	  "values": [
//	    [0, 0.5, 1],
//	    [1, 0.5, 0]
//	  ]
//	}
//
// height and width are optional on input; when present they must match the
// rows. Rows must all have the same length. Non-finite cells, which a power
// curve can produce, are written as the strings "NaN", "+Inf" and "-Inf" so
// that a grid survives a round trip exactly.
//
// # Import
//
// Use [ImportJSON] to read a grid from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	g, err := io.ImportJSON("base.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Decoding validates the shape through heightmap.New. Shape errors carry the
// INVALID_GRID code; malformed JSON carries INVALID_FORMAT.
//
// # Export
//
// Use [ExportJSON] to write a grid to a file, or [WriteJSON] to write to any
// io.Writer. [MarshalGrid] and [UnmarshalGrid] work on byte slices and are
// used for cache entries.
//
// # CSV
//
// [ReadCSV] and [WriteCSV] handle the plain one-row-per-line format many
// terrain tools emit. [ImportFile] and [ExportFile] pick JSON or CSV from the
// file extension.
package io
