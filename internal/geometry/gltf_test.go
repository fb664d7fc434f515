package geometry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gltfTriangle = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

func saveGLB(t *testing.T, doc *gltf.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestLoadGLTFTriangle(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Materials = []*gltf.Material{{Name: "metal"}}
	tri := &gltf.Primitive{
		Indices:  gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
		Material: gltf.Index(0),
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION:   modeler.WritePosition(doc, gltfTriangle),
			gltf.NORMAL:     modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}}),
		},
	}
	lines := &gltf.Primitive{
		Mode:       gltf.PrimitiveLines,
		Attributes: gltf.PrimitiveAttributes{gltf.POSITION: modeler.WritePosition(doc, gltfTriangle[:2])},
	}
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{tri, lines}}}

	g, err := LoadGLTF(saveGLB(t, doc))
	require.NoError(t, err)

	// the line primitive adds nothing
	assert.Equal(t, 3, g.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2}, g.Indices)
	assert.Equal(t, []Group{{Material: "metal", Start: 0, Count: 3}}, g.Groups)
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, g.Normals)
	// V is flipped so the image origin matches the OBJ convention
	assert.Equal(t, []float32{0, 1, 1, 1, 0, 0}, g.TexCoords)
}

func TestLoadGLTFWithoutNormalsOrTexCoords(t *testing.T) {
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{gltf.POSITION: modeler.WritePosition(doc, gltfTriangle)},
	}
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{prim}}}

	g, err := Load(saveGLB(t, doc), OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 2}, g.Indices)
	assert.Nil(t, g.TexCoords)
	for i := uint32(0); i < 3; i++ {
		assert.InDelta(t, 1.0, g.normal(i).Z(), 1e-6)
	}
}

func TestLoadGLTFIndexOutOfRange(t *testing.T) {
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Indices:    gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 5})),
		Attributes: gltf.PrimitiveAttributes{gltf.POSITION: modeler.WritePosition(doc, gltfTriangle)},
	}
	doc.Meshes = []*gltf.Mesh{{Name: "broken", Primitives: []*gltf.Primitive{prim}}}

	_, err := LoadGLTF(saveGLB(t, doc))
	assert.True(t, errors.Is(err, ErrIndexRange), "got %v", err)
}

func TestLoadGLTFMissingFile(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "none.glb"))
	assert.Error(t, err)
}
