// Package models provides scene loading and representation for meshview.
package models

import (
	"image/color"

	"github.com/taigrr/meshview/pkg/math3d"
)

// Triangle is an ordered triple of indices into its sub-mesh's vertex list.
// The order is the winding: it decides the facing used for culling and
// the direction of the shading normal.
type Triangle [3]int

// SubMesh is an independently colored group of vertices and triangles.
type SubMesh struct {
	Name      string
	Vertices  []math3d.Vec3
	Triangles []Triangle
	Color     color.RGBA
}

// Valid reports whether all three indices of t address a vertex of m.
func (m *SubMesh) Valid(t Triangle) bool {
	n := len(m.Vertices)
	for _, i := range t {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}

// Scene is an ordered sequence of sub-meshes. It is replaced wholesale on
// every load and never mutated while it is being rendered.
type Scene struct {
	Meshes []SubMesh
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Empty reports whether the scene has no sub-meshes.
func (s *Scene) Empty() bool {
	return s == nil || len(s.Meshes) == 0
}

// MeshCount returns the number of sub-meshes.
func (s *Scene) MeshCount() int {
	if s == nil {
		return 0
	}
	return len(s.Meshes)
}

// VertexCount returns the number of vertices across all sub-meshes.
func (s *Scene) VertexCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for i := range s.Meshes {
		n += len(s.Meshes[i].Vertices)
	}
	return n
}

// TriangleCount returns the number of triangles across all sub-meshes.
func (s *Scene) TriangleCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for i := range s.Meshes {
		n += len(s.Meshes[i].Triangles)
	}
	return n
}

// Clone creates a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	if s == nil {
		return NewScene()
	}
	clone := &Scene{Meshes: make([]SubMesh, len(s.Meshes))}
	for i, m := range s.Meshes {
		clone.Meshes[i] = SubMesh{
			Name:      m.Name,
			Vertices:  make([]math3d.Vec3, len(m.Vertices)),
			Triangles: make([]Triangle, len(m.Triangles)),
			Color:     m.Color,
		}
		copy(clone.Meshes[i].Vertices, m.Vertices)
		copy(clone.Meshes[i].Triangles, m.Triangles)
	}
	return clone
}
