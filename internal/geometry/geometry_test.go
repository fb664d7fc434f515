package geometry

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"SceneGL/internal/layout"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOBJQuad(t *testing.T) {
	g, err := LoadOBJ(filepath.Join("testdata", "quad.obj"), OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, g.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, g.Indices)
	assert.Equal(t, filepath.Join("testdata", "quad.mtl"), g.MaterialLib)
	assert.Equal(t, []Group{
		{Material: "red", Start: 0, Count: 3},
		{Material: "blue", Start: 3, Count: 3},
	}, g.Groups)
	assert.Equal(t, []float32{0, 0, 1, 0, 1, 1, 0, 1}, g.TexCoords)
	for i := 0; i < 4; i++ {
		assert.Equal(t, mgl32.Vec3{0, 0, 1}, g.normal(uint32(i)))
	}
}

func TestParseOBJQuadTriangulation(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"
	g, err := ParseOBJ(strings.NewReader(src), "", OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, g.Indices)
	assert.Nil(t, g.TexCoords)
	// no usemtl: the whole mesh uses the object's material
	assert.Nil(t, g.Groups)
	// normals are derived when the file has none
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1.0, g.normal(uint32(i)).Z(), 1e-6)
	}
}

func TestParseOBJFanTriangulation(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 2 1 0\nv 1 2 0\nv 0 1 0\nf 1 2 3 4 5\n"
	g, err := ParseOBJ(strings.NewReader(src), "", OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}, g.Indices)
}

func TestParseOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	g, err := ParseOBJ(strings.NewReader(src), "", OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 2}, g.Indices)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, g.Positions)
}

func TestParseOBJUnifiesSharedTriples(t *testing.T) {
	// the same position with two texture coordinates becomes two vertices
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 1\n" +
		"f 1/1 2/1 3/1\nf 1/2 3/1 2/1\n"
	g, err := ParseOBJ(strings.NewReader(src), "", OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, g.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 3, 2, 1}, g.Indices)
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0, 1, 1}, g.TexCoords)
}

func TestParseOBJMergesRepeatedMaterial(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\n" +
		"usemtl a\nf 1 2 3\nusemtl a\nf 1 2 3\nusemtl b\nusemtl a\nf 1 2 3\n"
	g, err := ParseOBJ(strings.NewReader(src), "", OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, []Group{{Material: "a", Start: 0, Count: 9}}, g.Groups)
}

func TestParseOBJRecalculateNormalsOption(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 1 0 0\nf 1//1 2//1 3//1\n"

	g, err := ParseOBJ(strings.NewReader(src), "", OBJOptions{})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, g.normal(0))

	g, err = ParseOBJ(strings.NewReader(src), "", OBJOptions{RecalculateNormals: true})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, g.normal(0))
}

func TestParseOBJKeepsAuthoredNormalsWhenSomeAreMissing(t *testing.T) {
	// the first triangle has authored normals, the second has none
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 0 0 1\nvn 1 0 0\n" +
		"f 1//1 2//1 3//1\nf 1 2 4\n"
	g, err := ParseOBJ(strings.NewReader(src), "", OBJOptions{})
	require.NoError(t, err)

	require.Equal(t, 6, g.VertexCount())
	for i := 0; i < 3; i++ {
		assert.Equal(t, mgl32.Vec3{1, 0, 0}, g.normal(uint32(i)), "authored vertex %d", i)
	}
	// the triangle (0,0,0) (1,0,0) (0,0,1) faces -Y
	for i := 3; i < 6; i++ {
		assert.InDelta(t, -1.0, g.normal(uint32(i)).Y(), 1e-6, "derived vertex %d", i)
	}
}

func TestParseOBJUsesFirstMaterialLibrary(t *testing.T) {
	src := "mtllib first.mtl second.mtl\nmtllib third.mtl\n"
	g, err := ParseOBJ(strings.NewReader(src), "models", OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("models", "first.mtl"), g.MaterialLib)
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"short vertex", "v 1 2\n", ErrMalformed},
		{"bad vertex", "v 1 2 z\n", ErrMalformed},
		{"two corner face", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrMalformed},
		{"index zero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrIndexRange},
		{"index past end", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", ErrIndexRange},
		{"normal past end", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n", ErrIndexRange},
		{"bad index", "v 0 0 0\nf a b c\n", ErrMalformed},
		{"too many slashes", "v 0 0 0\nf 1/1/1/1 1 1\n", ErrMalformed},
		{"mtllib without name", "mtllib\n", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src), "", OBJOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRecalculateNormalsAveragesSharedVertices(t *testing.T) {
	// two triangles folded along the X axis at 90 degrees
	g := &Geometry{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 3, 1},
	}
	g.RecalculateNormals()

	require.Len(t, g.Normals, 12)
	shared := g.normal(0)
	inv := float32(1 / math.Sqrt2)
	assert.InDelta(t, 0, shared.X(), 1e-6)
	assert.InDelta(t, inv, shared.Y(), 1e-6)
	assert.InDelta(t, inv, shared.Z(), 1e-6)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, g.normal(2))
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, g.normal(3))
}

func TestRecalculateNormalsIsolatedVertex(t *testing.T) {
	g := &Geometry{Positions: []float32{0, 0, 0, 5, 5, 5}}
	g.RecalculateNormals()
	assert.Equal(t, []float32{0, 1, 0, 0, 1, 0}, g.Normals)
}

func assertUnit(t *testing.T, v mgl32.Vec3) {
	t.Helper()
	assert.InDelta(t, 1.0, v.Len(), 1e-5)
}

func TestComputeTangentsFollowsU(t *testing.T) {
	g, err := Plane(2, 1)
	require.NoError(t, err)
	g.ComputeTangents()

	require.Len(t, g.Tangents, g.VertexCount()*3)
	for i := 0; i < g.VertexCount(); i++ {
		tan := mgl32.Vec3{g.Tangents[i*3], g.Tangents[i*3+1], g.Tangents[i*3+2]}
		assertUnit(t, tan)
		// U grows along +X on the plane
		assert.InDelta(t, 1.0, tan.X(), 1e-5)
		assert.InDelta(t, 0, tan.Dot(g.normal(uint32(i))), 1e-5)
	}
}

func TestComputeTangentsWithoutTexCoords(t *testing.T) {
	g := &Geometry{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
	}
	g.ComputeTangents()

	require.Len(t, g.Tangents, 9)
	for i := 0; i < 3; i++ {
		tan := mgl32.Vec3{g.Tangents[i*3], g.Tangents[i*3+1], g.Tangents[i*3+2]}
		assertUnit(t, tan)
		assert.InDelta(t, 0, tan.Dot(g.normal(uint32(i))), 1e-5)
	}
}

func TestPerpendicular(t *testing.T) {
	for _, n := range []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, mgl32.Vec3{1, 1, 1}.Normalize()} {
		p := perpendicular(n)
		assertUnit(t, p)
		assert.InDelta(t, 0, p.Dot(n), 1e-5)
	}
}

func TestPrepareFillsTexturedLayout(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	g, err := ParseOBJ(strings.NewReader(src), "", OBJOptions{})
	require.NoError(t, err)

	l := layout.For(true)
	g.Prepare(l)

	assert.Len(t, g.TexCoords, 6)
	assert.Len(t, g.Tangents, 9)
	out, err := l.Interleave(g)
	require.NoError(t, err)
	assert.Len(t, out, 3*l.FloatsPerVertex())
}

func TestCube(t *testing.T) {
	g := Cube(2)

	assert.Equal(t, 24, g.VertexCount())
	assert.Len(t, g.Indices, 36)
	lo, hi := g.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, lo)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, hi)

	// every triangle winds counter clockwise around its face normal
	for i := 0; i < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		face := g.position(b).Sub(g.position(a)).Cross(g.position(c).Sub(g.position(a)))
		assert.Greater(t, face.Dot(g.normal(a)), float32(0), "triangle %d", i/3)
	}
}

func TestPlane(t *testing.T) {
	g, err := Plane(4, 2)
	require.NoError(t, err)

	assert.Equal(t, 9, g.VertexCount())
	assert.Len(t, g.Indices, 24)
	lo, hi := g.Bounds()
	assert.Equal(t, mgl32.Vec3{-2, 0, -2}, lo)
	assert.Equal(t, mgl32.Vec3{2, 0, 2}, hi)

	_, err = Plane(4, 0)
	assert.Error(t, err)
}

func TestTerrainIsDeterministic(t *testing.T) {
	a, err := Terrain(10, 8, 2, 42)
	require.NoError(t, err)
	b, err := Terrain(10, 8, 2, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Positions, b.Positions)
	assert.Len(t, a.Normals, a.VertexCount()*3)
	// summed octaves stay below twice the amplitude
	lo, hi := a.Bounds()
	assert.GreaterOrEqual(t, lo.Y(), float32(-4))
	assert.LessOrEqual(t, hi.Y(), float32(4))
}

func TestBoundsEmpty(t *testing.T) {
	lo, hi := (&Geometry{}).Bounds()
	assert.Equal(t, mgl32.Vec3{}, lo)
	assert.Equal(t, mgl32.Vec3{}, hi)
}

func TestAttribute(t *testing.T) {
	g := Cube(1)
	assert.Equal(t, g.Positions, g.Attribute(layout.Position))
	assert.Equal(t, g.TexCoords, g.Attribute(layout.TexCoord))
	assert.Nil(t, g.Attribute(layout.Tangent))
}
