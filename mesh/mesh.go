// Package mesh turns mesh sources into world-space triangle lists: Wavefront
// OBJ files, JSON triangle lists and procedural sdfx primitives.
package mesh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// ErrNoTriangles is returned when a mesh source yields no triangles.
var ErrNoTriangles = errors.New("mesh has no triangles")

// Load reads the triangles of the mesh file at path. The format is chosen by
// extension: .json is a triangle list, anything else is parsed as OBJ.
func Load(path string) ([]geometry.Triangle, error) {
	var (
		triangles []geometry.Triangle
		err       error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		triangles, err = loadJSON(path)
	default:
		var obj *OBJ
		if obj, err = LoadOBJ(path); err == nil {
			triangles, err = obj.Triangles()
		}
	}
	if err != nil {
		return nil, err
	}
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTriangles)
	}
	return triangles, nil
}

func loadJSON(path string) ([]geometry.Triangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh: %w", err)
	}
	defer f.Close()
	return DecodeTriangles(f)
}

// Scale scales every triangle around the origin.
func Scale(triangles []geometry.Triangle, s float32) []geometry.Triangle {
	if s == 1 {
		return triangles
	}
	return lo.Map(triangles, func(t geometry.Triangle, _ int) geometry.Triangle {
		return t.Scale(s)
	})
}

// Translate moves every triangle by offset.
func Translate(triangles []geometry.Triangle, offset math32.Vector3) []geometry.Triangle {
	return lo.Map(triangles, func(t geometry.Triangle, _ int) geometry.Triangle {
		return t.Translate(offset)
	})
}
