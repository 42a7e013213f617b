// Package render writes styled scenes to output formats.
//
// # Formats
//
//   - [FormatSVG]: a standalone SVG document; the root group carries the
//     viewport transform
//   - [FormatHTML]: a page embedding the SVG with a small pan/zoom script
//     that starts from the centered transform and clamps zoom to the same
//     extent as the viewport controller
//   - [FormatJSON]: the positioned graph, for tooling
//   - [FormatPNG], [FormatPDF]: the SVG converted by rsvg-convert
//
// The PNG and PDF converters need librsvg: brew install librsvg (macOS),
// apt install librsvg2-bin (Linux).
//
// # Usage
//
//	view := render.ViewOf(controller)
//	err := render.Write(ctx, w, render.FormatSVG, render.Input{Scene: sc, Layout: pg, View: view})
package render
