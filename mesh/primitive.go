package mesh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 32

// Primitive builds a closed surface from a short description and tessellates
// it with marching cubes. Supported descriptions, all centered on the origin:
//
//	box:X,Y,Z     axis-aligned box with the given edge lengths
//	cylinder:H,R  cylinder of height H along Z and radius R
func Primitive(desc string) ([]geometry.Triangle, error) {
	kind, args, _ := strings.Cut(desc, ":")

	var (
		s   sdf.SDF3
		err error
	)
	switch strings.ToLower(kind) {
	case "box":
		var v []float64
		if v, err = parseArgs(args, 3); err != nil {
			break
		}
		s, err = sdf.Box3D(v3.Vec{X: v[0], Y: v[1], Z: v[2]}, 0)
	case "cylinder":
		var v []float64
		if v, err = parseArgs(args, 2); err != nil {
			break
		}
		s, err = sdf.Cylinder3D(v[0], v[1], 0)
	default:
		return nil, fmt.Errorf("unknown primitive %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", desc, err)
	}

	return Tessellate(s, defaultMeshCells), nil
}

// Tessellate converts a signed distance function to triangles using
// marching cubes over a uniform grid of cells along the longest axis.
func Tessellate(s sdf.SDF3, cells int) []geometry.Triangle {
	renderer := render.NewMarchingCubesUniform(cells)
	sdfTriangles := render.ToTriangles(s, renderer)

	triangles := make([]geometry.Triangle, 0, len(sdfTriangles))
	for _, tri := range sdfTriangles {
		var v [3]math32.Vector3
		for j := 0; j < 3; j++ {
			v[j] = math32.Vec3(float32(tri[j].X), float32(tri[j].Y), float32(tri[j].Z))
		}
		triangles = append(triangles, geometry.NewTriangle(v[0], v[1], v[2]))
	}
	return triangles
}

func parseArgs(args string, n int) ([]float64, error) {
	parts := strings.Split(args, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated values, got %q", n, args)
	}
	values := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", p, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("value %q must be positive", p)
		}
		values[i] = v
	}
	return values, nil
}
