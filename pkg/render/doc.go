// Package render turns heightmaps into images.
//
// Two modes are supported:
//
//   - Heatmap draws the grid with a color palette through gonum/plot, with
//     axes and a title, as PNG, SVG or PDF.
//   - Gray writes an exact one-pixel-per-cell 16-bit grayscale PNG, the
//     form most terrain tools import as a displacement map.
//
// [Shade] downsamples a grid to text for terminal previews.
//
// Rendering never changes the grid. Values are normalized by the grid's own
// finite minimum and maximum; non-finite cells are drawn transparent in a
// heatmap and black in grayscale.
package render
