package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

const blanks = "\r\n\t "

// OBJ holds the geometry decoded from a Wavefront OBJ file. Only vertex
// positions and faces are kept; normals, texture coordinates and materials
// are ignored.
type OBJ struct {
	Vertices []math32.Vector3
	Objects  []Object
	// Skipped counts faces that are not triangles.
	Skipped  int
	Warnings []string

	line       uint
	objCurrent *Object
}

// Object is a named group of faces.
type Object struct {
	Name  string
	Faces []Face
}

// Face lists zero-based vertex indices.
type Face struct {
	Vertices []int
	Line     uint
}

// LoadOBJ decodes the OBJ file at path.
func LoadOBJ(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh: %w", err)
	}
	defer f.Close()

	obj, err := DecodeOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return obj, nil
}

// DecodeOBJ reads an OBJ stream.
func DecodeOBJ(r io.Reader) (*OBJ, error) {
	dec := &OBJ{}
	bufin := bufio.NewReader(r)
	dec.line = 1
	for {
		line, err := bufin.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if perr := dec.parseLine(strings.Trim(line, blanks)); perr != nil {
			return nil, perr
		}
		if err == io.EOF {
			break
		}
		dec.line++
	}
	return dec, nil
}

// Triangles returns one triangle per three-vertex face, in file order.
func (dec *OBJ) Triangles() ([]geometry.Triangle, error) {
	var triangles []geometry.Triangle
	for _, ob := range dec.Objects {
		for _, face := range ob.Faces {
			if len(face.Vertices) != 3 {
				continue
			}
			var v [3]math32.Vector3
			for i, idx := range face.Vertices {
				if idx < 0 || idx >= len(dec.Vertices) {
					return nil, fmt.Errorf("face vertex index %d out of range in line:%d", idx+1, face.Line)
				}
				v[i] = dec.Vertices[idx]
			}
			triangles = append(triangles, geometry.NewTriangle(v[0], v[1], v[2]))
		}
	}
	return triangles, nil
}

func (dec *OBJ) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	ltype := fields[0]
	if strings.HasPrefix(ltype, "#") {
		return nil
	}
	switch ltype {
	// groups are treated as objects
	case "o", "g":
		return dec.parseObject(fields[1:])
	case "v":
		return dec.parseVertex(fields[1:])
	case "f":
		return dec.parseFace(fields[1:])
	case "vn", "vt", "vp", "s", "l", "mtllib", "usemtl":
	default:
		dec.Warnings = append(dec.Warnings, dec.formatError("field not supported: "+ltype).Error())
	}
	return nil
}

func (dec *OBJ) parseObject(fields []string) error {
	name := fmt.Sprintf("unnamed%d", dec.line)
	if len(fields) > 0 {
		name = fields[0]
	}
	dec.Objects = append(dec.Objects, Object{Name: name})
	dec.objCurrent = &dec.Objects[len(dec.Objects)-1]
	return nil
}

// parseVertex parses a vertex position line:
// v <x> <y> <z> [w]
func (dec *OBJ) parseVertex(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError("Less than 3 coordinates in 'v' line")
	}
	var xyz [3]float32
	for i, f := range fields[:3] {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return dec.formatError(err.Error())
		}
		xyz[i] = float32(val)
		if !math32.IsFinite(xyz[i]) {
			return dec.formatError(fmt.Sprintf("Non-finite coordinate %q", f))
		}
	}
	dec.Vertices = append(dec.Vertices, math32.Vec3(xyz[0], xyz[1], xyz[2]))
	return nil
}

// parseFace parses a face line, keeping only the position indices:
// f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (dec *OBJ) parseFace(fields []string) error {
	if dec.objCurrent == nil {
		// faces before any o or g line go to a default object
		if err := dec.parseObject(nil); err != nil {
			return err
		}
	}
	if len(fields) != 3 {
		dec.Skipped++
		return nil
	}

	face := Face{Vertices: make([]int, len(fields)), Line: dec.line}
	for pos, f := range fields {
		vfields := strings.Split(f, "/")
		val, err := strconv.ParseInt(vfields[0], 10, 32)
		if err != nil {
			return dec.formatError(err.Error())
		}

		switch {
		case val > 0:
			face.Vertices[pos] = int(val - 1)
		case val < 0:
			// relative to the last parsed vertex
			current := len(dec.Vertices) - 1
			face.Vertices[pos] = current + int(val) + 1
		default:
			return dec.formatError("Face vertex index value equal to 0")
		}
	}
	dec.objCurrent.Faces = append(dec.objCurrent.Faces, face)
	return nil
}

func (dec *OBJ) formatError(msg string) error {
	return fmt.Errorf("%s in line:%d", msg, dec.line)
}
