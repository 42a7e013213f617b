package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/matzehuels/topovis/pkg/scene"
)

// pageTemplate hosts the SVG full-window. The script mirrors the viewport
// controller: wheel zoom anchored at the pointer, drag to pan, scale clamped
// to [min, max], double click returns to the centered view.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; height: 100%; background: #fff; overflow: hidden; }
  body > svg { display: block; width: 100vw; height: 100vh; cursor: grab; touch-action: none; }
</style>
</head>
<body>
{{.SVG}}
<script>
(function () {
  var svg = document.querySelector('body > svg');
  var root = svg.querySelector('g.output');
  var home = {x: {{.X}}, y: {{.Y}}, k: {{.K}}};
  var min = {{.Min}}, max = {{.Max}};
  var t = {x: home.x, y: home.y, k: home.k};

  function apply() {
    root.setAttribute('transform', 'translate(' + t.x + ',' + t.y + ') scale(' + t.k + ')');
  }
  function point(e) {
    var p = svg.createSVGPoint();
    p.x = e.clientX; p.y = e.clientY;
    return p.matrixTransform(svg.getScreenCTM().inverse());
  }
  function clamp(k) { return Math.max(min, Math.min(max, k)); }

  svg.addEventListener('wheel', function (e) {
    e.preventDefault();
    var p = point(e);
    var delta = -e.deltaY * (e.deltaMode === 1 ? 0.05 : e.deltaMode ? 1 : 0.002);
    var k = clamp(t.k * Math.pow(2, delta));
    t.x = p.x - (p.x - t.x) * k / t.k;
    t.y = p.y - (p.y - t.y) * k / t.k;
    t.k = k;
    apply();
  }, {passive: false});

  var last = null;
  svg.addEventListener('pointerdown', function (e) {
    last = point(e);
    svg.setPointerCapture(e.pointerId);
    svg.style.cursor = 'grabbing';
  });
  svg.addEventListener('pointermove', function (e) {
    if (!last) return;
    var p = point(e);
    t.x += p.x - last.x;
    t.y += p.y - last.y;
    last = p;
    apply();
  });
  function release() { last = null; svg.style.cursor = 'grab'; }
  svg.addEventListener('pointerup', release);
  svg.addEventListener('pointercancel', release);
  svg.addEventListener('dblclick', function () {
    t = {x: home.x, y: home.y, k: home.k};
    apply();
  });
})();
</script>
</body>
</html>
`))

type pageData struct {
	Title    string
	SVG      template.HTML
	X, Y, K  float64
	Min, Max float64
}

// DefaultTitle is the page title when none is given.
const DefaultTitle = "topovis"

// HTML writes a page embedding the SVG of sc with interactive pan and zoom.
func HTML(w io.Writer, sc *scene.Scene, view View, title string) error {
	if sc == nil {
		return fmt.Errorf("render html: nil scene")
	}
	view = view.withDefaults(sc)
	if title == "" {
		title = DefaultTitle
	}

	var svg bytes.Buffer
	if err := SVG(&svg, sc, view); err != nil {
		return err
	}
	return pageTemplate.Execute(w, pageData{
		Title: title,
		SVG:   template.HTML(svg.String()),
		X:     view.Transform.X,
		Y:     view.Transform.Y,
		K:     view.Transform.K,
		Min:   view.MinScale,
		Max:   view.MaxScale,
	})
}
