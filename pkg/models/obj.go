package models

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/meshview/pkg/math3d"
)

// Line markers of the text mesh format.
const (
	markerObject = "o"
	markerGroup  = "g"
	markerVertex = "v"
	markerFace   = "f"

	// attrSeparator splits a face token into its vertex index and the
	// unused texture/normal indices.
	attrSeparator = "/"
)

// maxLineSize bounds a single line of input.
const maxLineSize = 1 << 20

// LoadOptions controls how a mesh file becomes a Scene.
type LoadOptions struct {
	// Palette colors sub-meshes by position; nil uses DefaultPalette.
	Palette Palette

	// CarryVertices starts every new group with a copy of the previous
	// group's vertices instead of an empty list, so files that index
	// vertices globally across objects still resolve.
	CarryVertices bool
}

// LoadStats reports what the loader saw besides the Scene itself.
type LoadStats struct {
	Lines         int // Lines read
	Vertices      int // Vertex lines accepted
	Faces         int // Face lines accepted
	SkippedLines  int // Vertex or face lines dropped as malformed
	DroppedMeshes int // Groups dropped for having no triangles
}

// LoadOBJ reads a text mesh file from disk.
func LoadOBJ(path string, opts LoadOptions) (*Scene, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, &LoadError{Kind: FileUnreadable, Path: path, Err: err}
	}
	defer file.Close()

	scene, stats, err := ParseOBJ(file, opts)
	if err != nil {
		return nil, stats, &LoadError{Kind: FileUnreadable, Path: path, Err: err}
	}
	return scene, stats, nil
}

// ParseOBJ parses the line-oriented mesh format. Malformed vertex and face
// lines are skipped and counted; only read failures return an error.
//
// Faces with more than three corners keep only their first three: there is
// no fan or ear triangulation.
func ParseOBJ(r io.Reader, opts LoadOptions) (*Scene, LoadStats, error) {
	p := &objParser{
		opts:    opts,
		scene:   NewScene(),
		current: &SubMesh{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		p.stats.Lines++
		p.parseLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, p.stats, err
	}

	p.flush()
	return p.scene, p.stats, nil
}

type objParser struct {
	opts    LoadOptions
	scene   *Scene
	current *SubMesh
	stats   LoadStats
}

func (p *objParser) parseLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case markerObject, markerGroup:
		p.startGroup(strings.Join(fields[1:], " "))

	case markerVertex:
		v, ok := parseVertex(fields[1:])
		if !ok {
			p.stats.SkippedLines++
			return
		}
		p.current.Vertices = append(p.current.Vertices, v)
		p.stats.Vertices++

	case markerFace:
		t, ok := parseFace(fields[1:])
		if !ok {
			p.stats.SkippedLines++
			return
		}
		p.current.Triangles = append(p.current.Triangles, t)
		p.stats.Faces++
	}
}

// startGroup closes the current sub-mesh and opens a new one.
func (p *objParser) startGroup(name string) {
	if p.opts.CarryVertices && len(p.current.Triangles) == 0 {
		// Nothing to close yet: keep accumulating vertices under the new name.
		p.current.Name = name
		return
	}

	prev := p.current
	p.flush()

	next := &SubMesh{Name: name}
	if p.opts.CarryVertices {
		next.Vertices = append([]math3d.Vec3(nil), prev.Vertices...)
	}
	p.current = next
}

// flush appends the current sub-mesh if it has at least one triangle.
func (p *objParser) flush() {
	if len(p.current.Triangles) == 0 {
		if len(p.current.Vertices) > 0 {
			p.stats.DroppedMeshes++
		}
		return
	}
	p.current.Color = p.opts.Palette.At(len(p.scene.Meshes))
	p.scene.Meshes = append(p.scene.Meshes, *p.current)
}

func parseVertex(args []string) (math3d.Vec3, bool) {
	if len(args) < 3 {
		return math3d.Vec3{}, false
	}
	var xyz [3]float64
	for i := range xyz {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return math3d.Vec3{}, false
		}
		xyz[i] = f
	}
	return math3d.V3(xyz[0], xyz[1], xyz[2]), true
}

func parseFace(args []string) (Triangle, bool) {
	if len(args) < 3 {
		return Triangle{}, false
	}
	var t Triangle
	for i := range t {
		idx, _, _ := strings.Cut(args[i], attrSeparator)
		n, err := strconv.Atoi(idx)
		if err != nil {
			return Triangle{}, false
		}
		t[i] = n - 1
	}
	return t, true
}
