package geometry

import (
	"slices"

	"SceneGL/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const epsilon = 1e-8

// RecalculateNormals replaces the normals with area weighted face normals
// averaged per vertex. Some models ship broken normals, this fixes them.
func (g *Geometry) RecalculateNormals() {
	g.Normals = make([]float32, 0, g.VertexCount()*3)
	for _, nv := range g.smoothNormals() {
		g.Normals = append(g.Normals, nv[0], nv[1], nv[2])
	}
}

// fillNormals recalculates only the vertices flagged in missing and keeps
// every other normal as it is.
func (g *Geometry) fillNormals(missing []bool) {
	if len(g.Normals) < g.VertexCount()*3 {
		g.RecalculateNormals()
		return
	}
	if !slices.Contains(missing, true) {
		return
	}
	for i, nv := range g.smoothNormals() {
		if i < len(missing) && missing[i] {
			copy(g.Normals[i*3:i*3+3], nv[:])
		}
	}
}

// smoothNormals accumulates face normals per vertex and normalizes them;
// vertices touched by no triangle get +Y.
func (g *Geometry) smoothNormals() []mgl32.Vec3 {
	n := g.VertexCount()
	normals := make([]mgl32.Vec3, n)
	skipped := 0

	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			skipped++
			continue
		}
		v0, v1, v2 := g.position(i0), g.position(i1), g.position(i2)
		// not normalized: the cross product length weights by area
		face := v1.Sub(v0).Cross(v2.Sub(v0))
		normals[i0] = normals[i0].Add(face)
		normals[i1] = normals[i1].Add(face)
		normals[i2] = normals[i2].Add(face)
	}
	if skipped > 0 {
		logger.Log.Warn("Triangles with out of range indices skipped", zap.Int("count", skipped))
	}

	for i, nv := range normals {
		if nv.LenSqr() < epsilon {
			normals[i] = mgl32.Vec3{0, 1, 0}
		} else {
			normals[i] = nv.Normalize()
		}
	}
	return normals
}

// ComputeTangents derives per-vertex tangents from the texture coordinate
// gradients of each triangle, orthogonalized against the vertex normal.
// Vertices without usable texture coordinates get an arbitrary tangent
// perpendicular to their normal.
func (g *Geometry) ComputeTangents() {
	n := g.VertexCount()
	if len(g.Normals) < n*3 {
		g.RecalculateNormals()
	}
	acc := make([]mgl32.Vec3, n)

	if len(g.TexCoords) >= n*2 {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
			if int(i0) >= n || int(i1) >= n || int(i2) >= n {
				continue
			}
			p0 := g.position(i0)
			e1, e2 := g.position(i1).Sub(p0), g.position(i2).Sub(p0)
			uv0 := g.texCoord(i0)
			d1, d2 := g.texCoord(i1).Sub(uv0), g.texCoord(i2).Sub(uv0)

			det := d1[0]*d2[1] - d2[0]*d1[1]
			if det*det < epsilon {
				continue
			}
			t := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(1 / det)
			acc[i0] = acc[i0].Add(t)
			acc[i1] = acc[i1].Add(t)
			acc[i2] = acc[i2].Add(t)
		}
	}

	g.Tangents = make([]float32, 0, n*3)
	for i := range acc {
		nv := g.normal(uint32(i))
		t := acc[i].Sub(nv.Mul(nv.Dot(acc[i])))
		if t.LenSqr() < epsilon {
			t = perpendicular(nv)
		} else {
			t = t.Normalize()
		}
		g.Tangents = append(g.Tangents, t[0], t[1], t[2])
	}
}

// perpendicular returns a unit vector orthogonal to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if n[0]*n[0] > 0.81 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	t := axis.Sub(n.Mul(n.Dot(axis)))
	if t.LenSqr() < epsilon {
		return axis
	}
	return t.Normalize()
}
