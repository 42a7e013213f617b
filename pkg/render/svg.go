package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/topovis/pkg/fonts"
	"github.com/matzehuels/topovis/pkg/scene"
)

const svgStyle = `
    text { font-family: %s; }
    .edgePath path { fill: none; }
    .node, .cluster { cursor: default; }`

// SVG writes a standalone SVG document for sc. The root group carries the
// view transform; no other element is transformed by the viewport.
func SVG(w io.Writer, sc *scene.Scene, view View) error {
	if sc == nil {
		return fmt.Errorf("render svg: nil scene")
	}
	view = view.withDefaults(sc)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(view.Width), num(view.Height), num(view.Width), num(view.Height))
	writeDefs(bw)

	root := sc.Root
	fmt.Fprintf(bw, `  <g class="%s" transform="%s">`+"\n", attr(root.Class), view.Transform)
	for _, child := range root.Children {
		writeElement(bw, child, 2)
	}
	bw.WriteString("  </g>\n</svg>\n")
	return bw.Flush()
}

func writeDefs(w *bufio.Writer) {
	w.WriteString("  <defs>\n")
	fmt.Fprintf(w, `    <marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerUnits="strokeWidth" markerWidth="8" markerHeight="6" orient="auto">`+"\n", scene.MarkerArrowhead)
	w.WriteString(`      <path d="M0,0L10,5L0,10z" style="fill: #333; stroke-width: 1; stroke-dasharray: 1,0"/>` + "\n")
	w.WriteString("    </marker>\n")
	fmt.Fprintf(w, "    <style>\n    %s%s\n    </style>\n", fonts.FontFaceCSS(), fmt.Sprintf(svgStyle, fonts.FallbackFontFamily))
	w.WriteString("  </defs>\n")
}

func writeElement(w *bufio.Writer, el scene.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	common := commonAttrs(el)

	switch el.Kind {
	case scene.KindGroup:
		transform := ""
		if el.X != 0 || el.Y != 0 {
			transform = fmt.Sprintf(` transform="translate(%s,%s)"`, num(el.X), num(el.Y))
		}
		if len(el.Children) == 0 {
			fmt.Fprintf(w, "%s<g%s%s/>\n", indent, common, transform)
			return
		}
		fmt.Fprintf(w, "%s<g%s%s>\n", indent, common, transform)
		for _, c := range el.Children {
			writeElement(w, c, depth+1)
		}
		fmt.Fprintf(w, "%s</g>\n", indent)

	case scene.KindRect:
		fmt.Fprintf(w, `%s<rect%s x="%s" y="%s" width="%s" height="%s"`, indent, common,
			num(el.X), num(el.Y), num(el.Width), num(el.Height))
		if el.RX != 0 || el.RY != 0 {
			fmt.Fprintf(w, ` rx="%s" ry="%s"`, num(el.RX), num(el.RY))
		}
		w.WriteString("/>\n")

	case scene.KindCircle:
		fmt.Fprintf(w, `%s<circle%s cx="%s" cy="%s" r="%s"/>`+"\n", indent, common, num(el.X), num(el.Y), num(el.R))

	case scene.KindPath:
		fmt.Fprintf(w, `%s<path%s d="%s"`, indent, common, el.PathData())
		if el.Marker != "" {
			fmt.Fprintf(w, ` marker-end="url(#%s)"`, attr(el.Marker))
		}
		w.WriteString("/>\n")

	case scene.KindText:
		writeText(w, el, indent, common)
	}
}

func writeText(w *bufio.Writer, el scene.Element, indent, common string) {
	anchor := ""
	if el.Anchor != "" {
		anchor = fmt.Sprintf(` text-anchor="%s"`, attr(el.Anchor))
	}
	lines := strings.Split(el.Text, "\n")
	if len(lines) == 1 {
		fmt.Fprintf(w, `%s<text%s x="%s" y="%s" dy="%s"%s>%s</text>`+"\n", indent, common,
			num(el.X), num(el.Y), num(el.DY), anchor, html.EscapeString(el.Text))
		return
	}

	// Multi-line labels stack tspans, centered on the anchor as a block.
	step := el.Style.FontSize * fonts.LineHeight
	first := el.DY - step*float64(len(lines)-1)/2
	fmt.Fprintf(w, `%s<text%s x="%s" y="%s"%s>`, indent, common, num(el.X), num(el.Y), anchor)
	for i, line := range lines {
		dy := step
		if i == 0 {
			dy = first
		}
		fmt.Fprintf(w, `<tspan x="%s" dy="%s">%s</tspan>`, num(el.X), num(dy), html.EscapeString(line))
	}
	w.WriteString("</text>\n")
}

func commonAttrs(el scene.Element) string {
	var b strings.Builder
	if el.Class != "" {
		fmt.Fprintf(&b, ` class="%s"`, attr(el.Class))
	}
	if el.Datum != "" {
		fmt.Fprintf(&b, ` data-id="%s"`, attr(el.Datum))
	}
	if el.HasEdge() {
		fmt.Fprintf(&b, ` data-edge="%s" data-source="%s" data-target="%s"`,
			attr(el.Edge.ID), attr(el.Edge.Source), attr(el.Edge.Target))
	}
	if css := el.Style.CSS(); css != "" {
		fmt.Fprintf(&b, ` style="%s"`, attr(css))
	}
	return b.String()
}

func attr(s string) string { return html.EscapeString(s) }

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
