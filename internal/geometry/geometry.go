package geometry

import (
	"errors"
	"math"

	"SceneGL/internal/layout"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrMalformed  = errors.New("malformed geometry statement")
	ErrIndexRange = errors.New("index out of range")
)

// Group is a contiguous run of indices drawn with one material.
type Group struct {
	Material string // Empty for the object's own material
	Start    int    // First index in Indices
	Count    int
}

// Geometry is an indexed triangle mesh with one unified index per vertex.
// Attribute slices are flat: 3 floats per position, normal and tangent,
// 2 per texture coordinate.
type Geometry struct {
	Positions []float32
	Normals   []float32
	Tangents  []float32
	TexCoords []float32
	Indices   []uint32

	Groups      []Group
	MaterialLib string // Resolved mtllib path, empty when none
}

// VertexCount is the number of unified vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Attribute implements layout.Source.
func (g *Geometry) Attribute(s layout.Semantic) []float32 {
	switch s {
	case layout.Position:
		return g.Positions
	case layout.Normal:
		return g.Normals
	case layout.Tangent:
		return g.Tangents
	case layout.TexCoord:
		return g.TexCoords
	}
	return nil
}

// Prepare fills in every attribute the layout needs and the mesh lacks:
// normals are recalculated, missing texture coordinates become zero and
// tangents are derived from positions and texture coordinates.
func (g *Geometry) Prepare(l layout.Layout) {
	n := g.VertexCount()
	if l.Has(layout.Normal) && len(g.Normals) < n*3 {
		g.RecalculateNormals()
	}
	if l.Has(layout.TexCoord) && len(g.TexCoords) < n*2 {
		g.TexCoords = append(g.TexCoords, make([]float32, n*2-len(g.TexCoords))...)
	}
	if l.Has(layout.Tangent) && len(g.Tangents) < n*3 {
		g.ComputeTangents()
	}
}

// Bounds returns the axis aligned bounding box of the positions.
func (g *Geometry) Bounds() (lo, hi mgl32.Vec3) {
	if g.VertexCount() == 0 {
		return
	}
	inf := float32(math.Inf(1))
	lo = mgl32.Vec3{inf, inf, inf}
	hi = mgl32.Vec3{-inf, -inf, -inf}
	for i := 0; i+2 < len(g.Positions); i += 3 {
		for c := 0; c < 3; c++ {
			v := g.Positions[i+c]
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}
	return lo, hi
}

func (g *Geometry) position(i uint32) mgl32.Vec3 {
	return mgl32.Vec3{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
}

func (g *Geometry) normal(i uint32) mgl32.Vec3 {
	return mgl32.Vec3{g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2]}
}

func (g *Geometry) texCoord(i uint32) mgl32.Vec2 {
	return mgl32.Vec2{g.TexCoords[i*2], g.TexCoords[i*2+1]}
}
