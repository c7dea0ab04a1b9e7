package models

import (
	"path/filepath"
	"strings"
)

// Format identifies the parser used for a file.
type Format string

const (
	FormatOBJ  Format = "obj"
	FormatGLTF Format = "gltf"
)

// DetectFormat picks a parser from the file extension. Anything that is not
// glTF is read as the line-oriented text format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return FormatGLTF
	default:
		return FormatOBJ
	}
}

// Load reads a mesh file into a raw (not normalized) Scene.
func Load(path string, opts LoadOptions) (*Scene, LoadStats, error) {
	switch DetectFormat(path) {
	case FormatGLTF:
		scene, err := LoadGLTF(path, opts)
		if err != nil {
			return nil, LoadStats{}, err
		}
		return scene, LoadStats{
			Vertices: scene.VertexCount(),
			Faces:    scene.TriangleCount(),
		}, nil
	default:
		return LoadOBJ(path, opts)
	}
}
