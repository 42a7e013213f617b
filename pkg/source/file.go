package source

import (
	"context"
	"os"

	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
)

// File reads a JSON or YAML description from disk. The format follows the
// file extension.
type File struct {
	path string
}

// NewFile returns a source for path.
func NewFile(path string) *File { return &File{path: path} }

// Path returns the file path.
func (s *File) Path() string { return s.path }

func (s *File) String() string { return "file://" + s.path }

func (s *File) Fetch(ctx context.Context) (graph.Document, error) {
	data, err := s.Raw(ctx)
	if err != nil {
		return graph.Document{}, err
	}
	return decode(s, data, graph.FormatFromPath(s.path))
}

func (s *File) Raw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "read %s", s.path)
	}
	return data, nil
}
