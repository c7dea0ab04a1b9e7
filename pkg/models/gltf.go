package models

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/meshview/pkg/math3d"
)

// LoadGLTF loads a .gltf or .glb file. Every triangle primitive becomes one
// sub-mesh, colored by position like text-format groups.
func LoadGLTF(path string, opts LoadOptions) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		kind := InvalidFormat
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			kind = FileUnreadable
		}
		return nil, &LoadError{Kind: kind, Path: path, Err: err}
	}

	scene := NewScene()
	for _, m := range doc.Meshes {
		if err := appendGLTFMesh(doc, m, scene, opts); err != nil {
			return nil, &LoadError{
				Kind: InvalidFormat,
				Path: path,
				Err:  fmt.Errorf("process mesh %q: %w", m.Name, err),
			}
		}
	}
	return scene, nil
}

// appendGLTFMesh extracts the triangle primitives of one glTF mesh.
func appendGLTFMesh(doc *gltf.Document, m *gltf.Mesh, scene *Scene, opts LoadOptions) error {
	for i, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		sub := SubMesh{
			Name:     primitiveName(m, i),
			Vertices: make([]math3d.Vec3, len(positions)),
		}
		for j, p := range positions {
			sub.Vertices[j] = math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]uint32, len(positions))
			for j := range indices {
				indices[j] = uint32(j)
			}
		}

		// glTF winds front faces counter-clockwise in a right-handed frame.
		// The projection looks down +Z, which mirrors that winding on
		// screen, so the last two corners swap to keep front faces visible.
		for j := 0; j+2 < len(indices); j += 3 {
			sub.Triangles = append(sub.Triangles, Triangle{
				int(indices[j]),
				int(indices[j+2]),
				int(indices[j+1]),
			})
		}

		if len(sub.Triangles) == 0 {
			continue
		}
		sub.Color = opts.Palette.At(len(scene.Meshes))
		scene.Meshes = append(scene.Meshes, sub)
	}
	return nil
}

func primitiveName(m *gltf.Mesh, i int) string {
	if len(m.Primitives) == 1 {
		return m.Name
	}
	return fmt.Sprintf("%s.%d", m.Name, i)
}
