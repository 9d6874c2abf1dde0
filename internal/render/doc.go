// Package render turns HTML tables and LaTeX formulas into PNG images.
//
// Two table strategies share the TableConverter shape (HTML in, image bytes out):
//
//   - Screenshot drives a headless browser through a Capturer, grows the
//     viewport until the trailing edges are blank, then crops to content.
//   - PlotTable parses the table and paints it in-process with freetype.
//
// LatexRenderer rasterizes display formulas for markdown cells.
package render
