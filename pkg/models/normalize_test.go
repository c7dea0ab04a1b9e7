package models

import (
	"math"
	"testing"

	"github.com/taigrr/meshview/pkg/math3d"
)

const tol = 1e-9

func sceneOf(verts ...[]math3d.Vec3) *Scene {
	s := NewScene()
	for _, v := range verts {
		s.Meshes = append(s.Meshes, SubMesh{Vertices: v, Triangles: []Triangle{{0, 1, 2}}})
	}
	return s
}

func TestNormalizeCentersAndScales(t *testing.T) {
	tests := []struct {
		name  string
		scene *Scene
	}{
		{"unit square offset", sceneOf([]math3d.Vec3{
			math3d.V3(10, 10, 10), math3d.V3(11, 10, 10), math3d.V3(11, 11, 10), math3d.V3(10, 11, 10),
		})},
		{"large units", sceneOf([]math3d.Vec3{
			math3d.V3(-500, 0, 250), math3d.V3(1200, 40, 0), math3d.V3(3, -900, 7),
		})},
		{"two sub-meshes", sceneOf(
			[]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
			[]math3d.Vec3{math3d.V3(5, 5, 5), math3d.V3(6, 5, 5), math3d.V3(5, 6, 9)},
		)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Normalize(tc.scene)

			center, n := out.Centroid()
			if n != tc.scene.VertexCount() {
				t.Fatalf("Centroid counted %d vertices, want %d", n, tc.scene.VertexCount())
			}
			if center.Abs().MaxComponent() > tol {
				t.Errorf("centroid = %v, want origin", center)
			}
			if dev := out.MaxDeviation(math3d.Zero3()); math.Abs(dev-1) > tol {
				t.Errorf("max deviation = %v, want 1", dev)
			}
		})
	}
}

func TestNormalizeSingleUniqueVertex(t *testing.T) {
	p := math3d.V3(3, -2, 7)
	out := Normalize(sceneOf([]math3d.Vec3{p, p, p}))

	for _, v := range out.Meshes[0].Vertices {
		if v != math3d.Zero3() {
			t.Errorf("vertex = %v, want origin", v)
		}
	}
	if dev := out.MaxDeviation(math3d.Zero3()); dev != 0 {
		t.Errorf("max deviation = %v, want 0", dev)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := sceneOf([]math3d.Vec3{math3d.V3(2, 0, 0), math3d.V3(4, 0, 0), math3d.V3(3, 2, 0)})
	before := in.Clone()

	_ = Normalize(in)

	for i, v := range in.Meshes[0].Vertices {
		if v != before.Meshes[0].Vertices[i] {
			t.Errorf("input vertex %d changed: %v -> %v", i, before.Meshes[0].Vertices[i], v)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	out := Normalize(NewScene())
	if !out.Empty() {
		t.Error("Normalize(empty) should stay empty")
	}
	if out := Normalize(nil); !out.Empty() {
		t.Error("Normalize(nil) should return an empty scene")
	}
}

func TestNormalizePreservesTopologyAndColor(t *testing.T) {
	in := sceneOf([]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(8, 0, 0), math3d.V3(0, 8, 0)})
	in.Meshes[0].Color = DefaultPalette().At(3)
	in.Meshes[0].Name = "body"

	out := Normalize(in)

	if out.Meshes[0].Triangles[0] != in.Meshes[0].Triangles[0] {
		t.Errorf("triangle changed: %v", out.Meshes[0].Triangles[0])
	}
	if out.Meshes[0].Color != in.Meshes[0].Color || out.Meshes[0].Name != "body" {
		t.Errorf("sub-mesh attributes not preserved: %+v", out.Meshes[0])
	}
}
