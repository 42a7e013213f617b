package pipeline

import (
	"context"
	"io"

	"github.com/matzehuels/topovis/pkg/render"
)

// Input returns the sink input for the current viewport state.
func (r *Result) Input() render.Input {
	return render.Input{
		Scene:  r.Scene,
		Layout: r.Layout,
		View:   render.ViewOf(r.Viewport),
		Title:  r.Title,
	}
}

// Render produces one artifact in the given format.
func (r *Result) Render(ctx context.Context, format render.Format) ([]byte, error) {
	return render.Bytes(ctx, format, r.Input())
}

// Write writes one artifact in the given format to w.
func (r *Result) Write(ctx context.Context, w io.Writer, format render.Format) error {
	return render.Write(ctx, w, format, r.Input())
}

// RenderAll produces one artifact per format, keyed by format.
func (r *Result) RenderAll(ctx context.Context, formats []render.Format) (map[render.Format][]byte, error) {
	out := make(map[render.Format][]byte, len(formats))
	for _, f := range formats {
		data, err := r.Render(ctx, f)
		if err != nil {
			return nil, err
		}
		out[f] = data
	}
	return out, nil
}
