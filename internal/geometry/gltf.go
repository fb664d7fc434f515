package geometry

import (
	"fmt"

	"SceneGL/internal/logger"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// LoadGLTF loads every triangle primitive of a glTF or GLB file into one
// Geometry. Each primitive becomes a group named after its glTF material.
func LoadGLTF(path string) (*Geometry, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	g := &Geometry{}
	hasNormals := true
	hasUVs := false
	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			n, uv, err := appendPrimitive(doc, prim, g)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
			}
			hasNormals = hasNormals && n
			hasUVs = hasUVs || uv
		}
	}

	if !hasUVs {
		g.TexCoords = nil
	}
	if !hasNormals {
		g.RecalculateNormals()
	}
	logger.Log.Debug("glTF loaded",
		zap.String("path", path),
		zap.Int("vertices", g.VertexCount()),
		zap.Int("groups", len(g.Groups)))
	return g, nil
}

// appendPrimitive adds one primitive to g and reports whether it carried
// normals and texture coordinates.
func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, g *Geometry) (bool, bool, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		// lines and points are not drawn by this loader
		return true, false, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return true, false, nil
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return false, false, fmt.Errorf("read positions: %w", err)
	}
	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return false, false, fmt.Errorf("read normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return false, false, fmt.Errorf("read texture coordinates: %w", err)
		}
	}

	base := uint32(g.VertexCount())
	for i, p := range positions {
		g.Positions = append(g.Positions, p[:]...)
		if i < len(normals) {
			g.Normals = append(g.Normals, normals[i][:]...)
		} else {
			g.Normals = append(g.Normals, 0, 1, 0)
		}
		if i < len(uvs) {
			// glTF puts V=0 at the top of the image
			g.TexCoords = append(g.TexCoords, uvs[i][0], 1-uvs[i][1])
		} else {
			g.TexCoords = append(g.TexCoords, 0, 0)
		}
	}

	start := len(g.Indices)
	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return false, false, fmt.Errorf("read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(positions) {
				return false, false, fmt.Errorf("%w: index %d with %d vertices", ErrIndexRange, idx, len(positions))
			}
			g.Indices = append(g.Indices, base+idx)
		}
	} else {
		for i := range positions {
			g.Indices = append(g.Indices, base+uint32(i))
		}
	}

	name := ""
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		name = doc.Materials[*prim.Material].Name
	}
	if count := len(g.Indices) - start; count > 0 {
		g.Groups = append(g.Groups, Group{Material: name, Start: start, Count: count})
	}
	return len(normals) == len(positions), len(uvs) > 0, nil
}
