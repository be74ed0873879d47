package mesh

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
)

// DecodeTriangles reads a JSON array of {"a": {...}, "b": {...}, "c": {...}}
// triangles.
func DecodeTriangles(r io.Reader) ([]geometry.Triangle, error) {
	var triangles []geometry.Triangle
	if err := json.NewDecoder(r).Decode(&triangles); err != nil {
		return nil, fmt.Errorf("failed to decode triangles: %w", err)
	}
	for i := range triangles {
		if !triangles[i].IsFinite() {
			return nil, fmt.Errorf("triangle %d has a non-finite vertex", i)
		}
	}
	return triangles, nil
}
