// Package pipeline implements the notebook-to-Medium conversion stages.
//
// Stages run in a fixed order over one notebook and a shared Resources bag:
//   - LatexPreprocessor: display-formula cells become attached images
//   - MarkdownPreprocessor: images and markdown tables move into the image store
//   - OutputPreprocessor: rich outputs collapse to a single image
//   - MarkdownExporter: the notebook becomes one markdown document
//   - Gistifier: long code blocks are moved to GitHub gists
//
// Table rasterization is delegated to a TableConverter; the browser and
// plot implementations live in internal/render.
package pipeline
