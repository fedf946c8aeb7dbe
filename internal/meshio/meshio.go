// Package meshio reads the text geometry format the scene meshes ship in:
// `v x y z` vertex positions, `vn x y z` vertex normals, and
// `f a/*/na b/*/nb c/*/nc` triangular faces with 1-based slash-separated
// position/normal indices (the middle token is ignored).
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

// Parse reads mesh data from r. Non-triangular faces are a fatal parse
// error. Unknown record types are skipped.
func Parse(r io.Reader) (geom.MeshData, error) {
	var data geom.MeshData

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return geom.MeshData{}, fmt.Errorf("meshio: line %d: vertex: %w", lineNo, err)
			}
			data.Verts = append(data.Verts, p)

		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return geom.MeshData{}, fmt.Errorf("meshio: line %d: normal: %w", lineNo, err)
			}
			data.Norms = append(data.Norms, n)

		case "f":
			if len(fields) != 4 {
				return geom.MeshData{}, fmt.Errorf("meshio: line %d: face has %d vertices, only triangles are supported", lineNo, len(fields)-1)
			}
			var face [3]geom.FaceVert
			for i := 0; i < 3; i++ {
				fv, err := parseFaceVert(fields[i+1])
				if err != nil {
					return geom.MeshData{}, fmt.Errorf("meshio: line %d: %w", lineNo, err)
				}
				face[i] = fv
			}
			data.Faces = append(data.Faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return geom.MeshData{}, fmt.Errorf("meshio: %w", err)
	}

	if len(data.Faces) == 0 {
		return geom.MeshData{}, fmt.Errorf("meshio: no faces found")
	}

	return data, nil
}

// Load reads mesh data from a file.
func Load(path string) (geom.MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return geom.MeshData{}, fmt.Errorf("meshio: %w", err)
	}
	defer f.Close()

	data, err := Parse(f)
	if err != nil {
		return geom.MeshData{}, fmt.Errorf("%w (in %s)", err, path)
	}
	return data, nil
}

func parseVec3(fields []string) (vecmat.Vec3, error) {
	if len(fields) != 3 {
		return vecmat.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var v vecmat.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return vecmat.Vec3{}, fmt.Errorf("component %q: %w", f, err)
		}
		v[i] = x
	}
	return v, nil
}

// parseFaceVert decodes a pos/tex/norm index triple. The texture slot may
// be empty (`a//n`); the position and normal slots may not.
func parseFaceVert(tok string) (geom.FaceVert, error) {
	parts := strings.Split(tok, "/")
	if len(parts) != 3 {
		return geom.FaceVert{}, fmt.Errorf("face vertex %q is not of the form pos/tex/norm", tok)
	}

	pos, err := strconv.Atoi(parts[0])
	if err != nil {
		return geom.FaceVert{}, fmt.Errorf("face vertex %q: position index: %w", tok, err)
	}
	norm, err := strconv.Atoi(parts[2])
	if err != nil {
		return geom.FaceVert{}, fmt.Errorf("face vertex %q: normal index: %w", tok, err)
	}
	if pos < 1 || norm < 1 {
		return geom.FaceVert{}, fmt.Errorf("face vertex %q: indices are 1-based", tok)
	}

	return geom.FaceVert{Pos: pos - 1, Norm: norm - 1}, nil
}
