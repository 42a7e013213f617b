package source

import (
	"context"

	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
)

// Static serves a fixed in-memory document.
type Static struct {
	doc  graph.Document
	name string
}

// NewStatic returns a source that always yields doc.
func NewStatic(name string, doc graph.Document) *Static {
	return &Static{doc: doc, name: name}
}

func (s *Static) String() string { return "static://" + s.name }

func (s *Static) Fetch(ctx context.Context) (graph.Document, error) {
	if err := ctx.Err(); err != nil {
		return graph.Document{}, err
	}
	return s.doc, nil
}

func (s *Static) Raw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.doc.Marshal()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "encode %s", s)
	}
	return data, nil
}
