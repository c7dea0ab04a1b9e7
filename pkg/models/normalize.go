package models

import (
	"github.com/taigrr/meshview/pkg/math3d"
)

// Centroid returns the arithmetic mean of every vertex in the scene and
// the number of vertices averaged.
func (s *Scene) Centroid() (math3d.Vec3, int) {
	var sum math3d.Vec3
	n := 0
	if s == nil {
		return sum, 0
	}
	for i := range s.Meshes {
		for _, v := range s.Meshes[i].Vertices {
			sum = sum.Add(v)
			n++
		}
	}
	if n == 0 {
		return sum, 0
	}
	return sum.Scale(1 / float64(n)), n
}

// MaxDeviation returns the largest absolute per-axis distance of any
// vertex from center.
func (s *Scene) MaxDeviation(center math3d.Vec3) float64 {
	maxDev := 0.0
	if s == nil {
		return maxDev
	}
	for i := range s.Meshes {
		for _, v := range s.Meshes[i].Vertices {
			if d := v.Sub(center).Abs().MaxComponent(); d > maxDev {
				maxDev = d
			}
		}
	}
	return maxDev
}

// Normalize returns a copy of s recentered on its centroid and scaled so
// the largest per-axis deviation is 1. When every vertex coincides the
// scale is 1. The input scene is not modified.
func Normalize(s *Scene) *Scene {
	out := s.Clone()

	center, n := out.Centroid()
	if n == 0 {
		return out
	}

	scale := 1.0
	if maxDev := out.MaxDeviation(center); maxDev > 0 {
		scale = 1 / maxDev
	}

	for i := range out.Meshes {
		verts := out.Meshes[i].Vertices
		for j, v := range verts {
			verts[j] = v.Sub(center).Scale(scale)
		}
	}
	return out
}
