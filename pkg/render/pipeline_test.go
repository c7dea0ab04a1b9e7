package render

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/models"
)

// flatCamera looks straight down the +Z axis with no rotation.
var flatCamera = Camera{Zoom: 1}

func triangleScene(tris ...models.Triangle) *models.Scene {
	return &models.Scene{Meshes: []models.SubMesh{{
		Vertices: []math3d.Vec3{
			math3d.V3(0, 0, 0),
			math3d.V3(1, 0, 0),
			math3d.V3(0, 1, 0),
		},
		Triangles: tris,
		Color:     RGB(100, 200, 250),
	}}}
}

func TestRenderEmptyScene(t *testing.T) {
	for _, scene := range []*models.Scene{nil, models.NewScene()} {
		frame := Render(scene, DefaultCamera(), Viewport{400, 400}, DefaultOptions())

		if len(frame.Polygons) != 0 {
			t.Errorf("empty scene produced %d polygons", len(frame.Polygons))
		}
		// Lines at 0, 40, ..., 360 in both directions
		if len(frame.Grid) != 20 {
			t.Errorf("len(Grid) = %d, want 20", len(frame.Grid))
		}
		if len(frame.Labels) != 2 {
			t.Fatalf("len(Labels) = %d, want 2", len(frame.Labels))
		}
		if frame.Labels[0].Text != PlaceholderTitle || frame.Labels[0].Align != AlignCenter {
			t.Errorf("Labels[0] = %+v, want centered placeholder", frame.Labels[0])
		}
		if frame.Labels[0].X != 200 {
			t.Errorf("placeholder X = %d, want 200", frame.Labels[0].X)
		}
	}
}

func TestRenderBackFaceCulling(t *testing.T) {
	// (0,1,2) projects counter-clockwise on screen and faces the viewer;
	// (0,2,1) is the same triangle seen from behind.
	tests := []struct {
		name   string
		tri    models.Triangle
		drawn  int
		culled int
	}{
		{"front", models.Triangle{0, 1, 2}, 1, 0},
		{"back", models.Triangle{0, 2, 1}, 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame := Render(triangleScene(tc.tri), flatCamera, Viewport{400, 400}, Options{})
			if frame.Stats.Drawn != tc.drawn || len(frame.Polygons) != tc.drawn {
				t.Errorf("drawn = %d (%d polygons), want %d", frame.Stats.Drawn, len(frame.Polygons), tc.drawn)
			}
			if frame.Stats.Culled != tc.culled {
				t.Errorf("culled = %d, want %d", frame.Stats.Culled, tc.culled)
			}
		})
	}
}

func TestRenderNeverDrawsBackFaces(t *testing.T) {
	scene := triangleScene(models.Triangle{0, 1, 2}, models.Triangle{0, 2, 1})
	rng := rand.New(rand.NewSource(1))

	for range 200 {
		cam := Camera{
			RotX: rng.Float64()*720 - 360,
			RotY: rng.Float64()*720 - 360,
			Zoom: ClampZoom(rng.Float64() * 5),
			PanX: rng.Float64()*100 - 50,
			PanY: rng.Float64()*100 - 50,
		}
		frame := Render(scene, cam, Viewport{300, 200}, Options{})
		for _, p := range frame.Polygons {
			a, b, c := p.Points[0], p.Points[1], p.Points[2]
			if area := SignedArea(a.X, a.Y, b.X, b.Y, c.X, c.Y); area > 0 {
				t.Fatalf("camera %+v: drew polygon with signed area %v", cam, area)
			}
		}
		if frame.Stats.Drawn+frame.Stats.Culled != 2 {
			t.Fatalf("camera %+v: drawn %d + culled %d != 2", cam, frame.Stats.Drawn, frame.Stats.Culled)
		}
	}
}

func TestRenderDepthOrder(t *testing.T) {
	near := models.SubMesh{
		Vertices:  []math3d.Vec3{math3d.V3(0, 0, -0.5), math3d.V3(1, 0, -0.5), math3d.V3(0, 1, -0.5)},
		Triangles: []models.Triangle{{0, 1, 2}},
		Color:     RGB(255, 0, 0),
	}
	far := models.SubMesh{
		Vertices:  []math3d.Vec3{math3d.V3(0, 0, 0.5), math3d.V3(1, 0, 0.5), math3d.V3(0, 1, 0.5)},
		Triangles: []models.Triangle{{0, 1, 2}},
		Color:     RGB(0, 255, 0),
	}
	scene := &models.Scene{Meshes: []models.SubMesh{near, far}}

	frame := Render(scene, flatCamera, Viewport{400, 400}, Options{})
	if len(frame.Polygons) != 2 {
		t.Fatalf("len(Polygons) = %d, want 2", len(frame.Polygons))
	}
	if frame.Polygons[0].Mesh != 1 || frame.Polygons[1].Mesh != 0 {
		t.Errorf("draw order = [%d %d], want far mesh first [1 0]",
			frame.Polygons[0].Mesh, frame.Polygons[1].Mesh)
	}
	if !approxEqual(frame.Polygons[0].Depth, 3.5, 1e-9) || !approxEqual(frame.Polygons[1].Depth, 2.5, 1e-9) {
		t.Errorf("depths = [%v %v], want [3.5 2.5]", frame.Polygons[0].Depth, frame.Polygons[1].Depth)
	}
	for i := 1; i < len(frame.Polygons); i++ {
		if frame.Polygons[i].Depth > frame.Polygons[i-1].Depth {
			t.Errorf("polygon %d is farther than polygon %d", i, i-1)
		}
	}
}

func TestRenderStableOrder(t *testing.T) {
	a := triangleScene(models.Triangle{0, 1, 2}).Meshes[0]
	b := a
	b.Color = RGB(1, 2, 3)
	scene := &models.Scene{Meshes: []models.SubMesh{a, b}}

	frame := Render(scene, flatCamera, Viewport{400, 400}, Options{})
	if len(frame.Polygons) != 2 {
		t.Fatalf("len(Polygons) = %d, want 2", len(frame.Polygons))
	}
	if frame.Polygons[0].Mesh != 0 || frame.Polygons[1].Mesh != 1 {
		t.Errorf("equal depths reordered: [%d %d]", frame.Polygons[0].Mesh, frame.Polygons[1].Mesh)
	}
}

func TestRenderSkipsOutOfRange(t *testing.T) {
	scene := triangleScene(
		models.Triangle{0, 1, 5},
		models.Triangle{-1, 1, 2},
		models.Triangle{0, 1, 2},
	)
	frame := Render(scene, flatCamera, Viewport{400, 400}, Options{})
	if frame.Stats.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", frame.Stats.Skipped)
	}
	if frame.Stats.Drawn != 1 {
		t.Errorf("Drawn = %d, want 1", frame.Stats.Drawn)
	}
}

func TestRenderDegenerateTriangle(t *testing.T) {
	scene := &models.Scene{Meshes: []models.SubMesh{{
		Vertices:  []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(0, 0, 0), math3d.V3(0, 0, 0)},
		Triangles: []models.Triangle{{0, 1, 2}},
		Color:     RGB(200, 100, 50),
	}}}

	frame := Render(scene, flatCamera, Viewport{400, 400}, Options{})
	if len(frame.Polygons) != 1 {
		t.Fatalf("len(Polygons) = %d, want 1", len(frame.Polygons))
	}
	want := RGB(40, 20, 10)
	if got := frame.Polygons[0].Color; got != want {
		t.Errorf("degenerate color = %v, want ambient-only %v", got, want)
	}
}

func TestRenderOverlay(t *testing.T) {
	frame := Render(triangleScene(models.Triangle{0, 1, 2}), flatCamera, Viewport{640, 480}, Options{})
	if len(frame.Labels) != 2 {
		t.Fatalf("len(Labels) = %d, want 2", len(frame.Labels))
	}
	if want := "1 mesh  |  3 verts  |  1 tris"; frame.Labels[0].Text != want {
		t.Errorf("stats label = %q, want %q", frame.Labels[0].Text, want)
	}
	if frame.Labels[1].Text != HintText {
		t.Errorf("hint label = %q, want %q", frame.Labels[1].Text, HintText)
	}
	if frame.Labels[1].Y <= frame.Labels[0].Y {
		t.Errorf("hint label should be below the stats label")
	}

	opts := DefaultOptions()
	opts.HideOverlay = true
	frame = Render(triangleScene(models.Triangle{0, 1, 2}), flatCamera, Viewport{640, 480}, opts)
	if len(frame.Labels) != 0 {
		t.Errorf("HideOverlay left %d labels", len(frame.Labels))
	}
}

func TestRenderDefaultViewport(t *testing.T) {
	frame := Render(nil, DefaultCamera(), Viewport{}, Options{})
	if frame.Width != 400 || frame.Height != 400 {
		t.Errorf("frame size = %dx%d, want 400x400", frame.Width, frame.Height)
	}
	if frame.Background != DefaultTheme().Background {
		t.Errorf("Background = %v, want %v", frame.Background, DefaultTheme().Background)
	}
}

func TestShade(t *testing.T) {
	up := math3d.V3(0, 1, 0)
	down := math3d.V3(0, -1, 0)

	tests := []struct {
		name   string
		base   color.RGBA
		normal math3d.Vec3
		light  math3d.Vec3
		want   color.RGBA
	}{
		{"full light", RGB(255, 128, 10), up, up, RGB(255, 128, 10)},
		{"facing away", RGB(255, 100, 0), down, up, RGB(51, 20, 0)},
		{"clamped", RGB(200, 255, 1), up, math3d.V3(0, 5, 0), RGB(255, 255, 4)},
		{"zero normal", RGB(255, 255, 255), math3d.Zero3(), up, RGB(51, 51, 51)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Shade(tc.base, tc.normal, tc.light); got != tc.want {
				t.Errorf("Shade(%v, %v, %v) = %v, want %v", tc.base, tc.normal, tc.light, got, tc.want)
			}
		})
	}
}

func TestShadeDefaultLight(t *testing.T) {
	white := RGB(255, 255, 255)
	tests := []struct {
		name    string
		a, b, c math3d.Vec3
		want    color.RGBA
	}{
		{"facing +z", math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), RGB(153, 153, 153)},
		{"facing +x", math3d.V3(0, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1), RGB(214, 214, 214)},
		{"facing -x", math3d.V3(0, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0), RGB(51, 51, 51)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := FaceNormal(tc.a, tc.b, tc.c)
			if got := Shade(white, n, DefaultLight()); got != tc.want {
				t.Errorf("Shade(white, %v, DefaultLight()) = %v, want %v", n, got, tc.want)
			}
		})
	}
}

func TestFaceNormal(t *testing.T) {
	n := FaceNormal(math3d.V3(0, 0, 0), math3d.V3(2, 0, 0), math3d.V3(0, 3, 0))
	if !approxEqual(n.X, 0, epsilon) || !approxEqual(n.Y, 0, epsilon) || !approxEqual(n.Z, 1, epsilon) {
		t.Errorf("FaceNormal = %v, want (0, 0, 1)", n)
	}

	n = FaceNormal(math3d.V3(1, 1, 1), math3d.V3(2, 2, 2), math3d.V3(3, 3, 3))
	if n != math3d.Zero3() {
		t.Errorf("FaceNormal(collinear) = %v, want zero", n)
	}
}

func BenchmarkRender(b *testing.B) {
	scene := &models.Scene{}
	rng := rand.New(rand.NewSource(7))
	mesh := models.SubMesh{Color: RGB(124, 92, 252)}
	for range 3000 {
		mesh.Vertices = append(mesh.Vertices, math3d.V3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1))
	}
	for i := 0; i+2 < len(mesh.Vertices); i += 3 {
		mesh.Triangles = append(mesh.Triangles, models.Triangle{i, i + 1, i + 2})
	}
	scene.Meshes = append(scene.Meshes, mesh)

	vp := Viewport{800, 600}
	opts := DefaultOptions()
	for b.Loop() {
		Render(scene, DefaultCamera(), vp, opts)
	}
}
