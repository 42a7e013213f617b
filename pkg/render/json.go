package render

import (
	"fmt"
	"io"

	"github.com/matzehuels/topovis/pkg/layout"
)

// JSON writes the positioned graph as indented JSON.
func JSON(w io.Writer, pg *layout.PositionedGraph) error {
	if pg == nil {
		return fmt.Errorf("render json: nil layout")
	}
	data, err := pg.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
