// Package meshio loads triangle meshes from disk, feeding prim.Triangle
// directly rather than an intermediate mesh type.
package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3
type Vec2 = vecmath.Vec2

// property describes one "property <type> <name>" or
// "property list <countType> <type> <name>" header line.
type property struct {
	name     string
	dataType string
	isList   bool
	listType string
}

// header is the parsed preamble of a PLY file, up to end_header.
type header struct {
	format      string // "ascii", "binary_little_endian", "binary_big_endian"
	vertexCount int
	faceCount   int
	vertexProps []property

	xIdx, yIdx, zIdx    int
	nxIdx, nyIdx, nzIdx int
	hasNormals          bool
}

// LoadPLY reads a triangle mesh from an ASCII or binary-little-endian
// PLY file and returns one prim.Triangle per face, all sharing material.
// Only triangular faces are supported; per-vertex normals are used for
// smooth shading when present, otherwise each triangle gets a flat
// face normal.
func LoadPLY(path string, material prim.Material) ([]prim.Primitive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	h, err := parseHeader(r)
	if err != nil {
		return nil, fmt.Errorf("meshio: parsing header of %s: %w", path, err)
	}

	switch h.format {
	case "ascii":
		return loadASCII(r, h, material)
	case "binary_little_endian":
		return loadBinaryLittleEndian(r, h, material)
	default:
		return nil, fmt.Errorf("meshio: unsupported PLY format %q", h.format)
	}
}

func parseHeader(r *bufio.Reader) (*header, error) {
	h := &header{xIdx: -1, yIdx: -1, zIdx: -1, nxIdx: -1, nyIdx: -1, nzIdx: -1}

	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(line) != "ply" {
		return nil, fmt.Errorf("not a PLY file (got %q)", line)
	}

	var element string
	for {
		line, err = readLine(r)
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "end_header" {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "format":
			if len(parts) < 2 {
				return nil, fmt.Errorf("malformed format line %q", line)
			}
			h.format = parts[1]
		case "comment":
			// ignored
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("malformed element line %q", line)
			}
			element = parts[1]
			count, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("bad element count in %q: %w", line, err)
			}
			switch element {
			case "vertex":
				h.vertexCount = count
			case "face":
				h.faceCount = count
			}
		case "property":
			if element != "vertex" {
				continue
			}
			prop, err := parseProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			h.vertexProps = append(h.vertexProps, prop)
			idx := len(h.vertexProps) - 1
			switch prop.name {
			case "x":
				h.xIdx = idx
			case "y":
				h.yIdx = idx
			case "z":
				h.zIdx = idx
			case "nx":
				h.nxIdx = idx
				h.hasNormals = true
			case "ny":
				h.nyIdx = idx
				h.hasNormals = true
			case "nz":
				h.nzIdx = idx
				h.hasNormals = true
			}
		}
	}

	if h.xIdx < 0 || h.yIdx < 0 || h.zIdx < 0 {
		return nil, fmt.Errorf("PLY file is missing x/y/z vertex properties")
	}
	return h, nil
}

func parseProperty(parts []string) (property, error) {
	if len(parts) < 2 {
		return property{}, fmt.Errorf("malformed property definition")
	}
	if parts[0] == "list" {
		if len(parts) < 4 {
			return property{}, fmt.Errorf("malformed list property definition")
		}
		return property{isList: true, listType: parts[1], dataType: parts[2], name: parts[3]}, nil
	}
	return property{dataType: parts[0], name: parts[1]}, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if line == "" && err == io.EOF {
		return "", fmt.Errorf("unexpected end of file")
	}
	return line, nil
}

type vertex struct {
	pos    Vec3
	normal Vec3
}

func buildTriangles(vertices []vertex, faces [][3]int, material prim.Material, hasNormals bool) []prim.Primitive {
	prims := make([]prim.Primitive, 0, len(faces))
	for _, face := range faces {
		a, b, c := vertices[face[0]], vertices[face[1]], vertices[face[2]]
		if hasNormals {
			prims = append(prims, prim.NewTriangleWithNormals(a.pos, b.pos, c.pos, a.normal, b.normal, c.normal, material))
		} else {
			prims = append(prims, prim.NewTriangle(a.pos, b.pos, c.pos, material))
		}
	}
	return prims
}

func loadASCII(r *bufio.Reader, h *header, material prim.Material) ([]prim.Primitive, error) {
	vertices := make([]vertex, 0, h.vertexCount)
	for i := 0; i < h.vertexCount; i++ {
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("reading vertex %d: %w", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < len(h.vertexProps) {
			return nil, fmt.Errorf("vertex %d has too few fields", i)
		}
		values := make([]Float, len(fields))
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("vertex %d field %d: %w", i, j, err)
			}
			values[j] = v
		}
		v := vertex{pos: Vec3{X: values[h.xIdx], Y: values[h.yIdx], Z: values[h.zIdx]}}
		if h.hasNormals {
			v.normal = Vec3{X: values[h.nxIdx], Y: values[h.nyIdx], Z: values[h.nzIdx]}
		}
		vertices = append(vertices, v)
	}

	faces := make([][3]int, 0, h.faceCount)
	for i := 0; i < h.faceCount; i++ {
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("reading face %d: %w", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("face %d is malformed", i)
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil || count != 3 {
			return nil, fmt.Errorf("face %d: only triangular faces are supported", i)
		}
		var face [3]int
		for j := 0; j < 3; j++ {
			idx, err := strconv.Atoi(fields[1+j])
			if err != nil {
				return nil, fmt.Errorf("face %d index %d: %w", i, j, err)
			}
			face[j] = idx
		}
		faces = append(faces, face)
	}

	return buildTriangles(vertices, faces, material, h.hasNormals), nil
}

func loadBinaryLittleEndian(r *bufio.Reader, h *header, material prim.Material) ([]prim.Primitive, error) {
	vertices := make([]vertex, 0, h.vertexCount)
	for i := 0; i < h.vertexCount; i++ {
		values := make([]Float, len(h.vertexProps))
		for j, prop := range h.vertexProps {
			v, err := readScalar(r, prop.dataType)
			if err != nil {
				return nil, fmt.Errorf("vertex %d property %s: %w", i, prop.name, err)
			}
			values[j] = v
		}
		v := vertex{pos: Vec3{X: values[h.xIdx], Y: values[h.yIdx], Z: values[h.zIdx]}}
		if h.hasNormals {
			v.normal = Vec3{X: values[h.nxIdx], Y: values[h.nyIdx], Z: values[h.nzIdx]}
		}
		vertices = append(vertices, v)
	}

	faces := make([][3]int, 0, h.faceCount)
	for i := 0; i < h.faceCount; i++ {
		count, err := readListCount(r, "uchar")
		if err != nil {
			return nil, fmt.Errorf("reading face %d vertex count: %w", i, err)
		}
		if count != 3 {
			return nil, fmt.Errorf("face %d: only triangular faces are supported, got %d vertices", i, count)
		}
		var face [3]int
		for j := 0; j < 3; j++ {
			idx, err := readScalar(r, "int32")
			if err != nil {
				return nil, fmt.Errorf("face %d index %d: %w", i, j, err)
			}
			face[j] = int(idx)
		}
		faces = append(faces, face)
	}

	return buildTriangles(vertices, faces, material, h.hasNormals), nil
}

func readScalar(r io.Reader, dataType string) (Float, error) {
	switch dataType {
	case "float", "float32":
		var v float32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return Float(v), nil
	case "double", "float64":
		var v float64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return Float(v), nil
	case "int", "int32":
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return Float(v), nil
	case "uint", "uint32":
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return Float(v), nil
	case "short", "int16":
		var v int16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return Float(v), nil
	case "ushort", "uint16":
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return Float(v), nil
	case "char", "int8":
		var v int8
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return Float(v), nil
	case "uchar", "uint8":
		var v uint8
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return Float(v), nil
	default:
		return 0, fmt.Errorf("unsupported scalar type %q", dataType)
	}
}

func readListCount(r io.Reader, countType string) (int, error) {
	v, err := readScalar(r, countType)
	return int(v), err
}
