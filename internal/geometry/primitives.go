package geometry

import (
	"errors"

	perlin "github.com/aquilax/go-perlin"
)

// Cube returns an axis aligned cube centered at the origin. Each face has
// its own four vertices so normals and texture coordinates stay sharp.
func Cube(size float32) *Geometry {
	h := size / 2
	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	g := &Geometry{}
	for _, f := range faces {
		base := uint32(g.VertexCount())
		for i, c := range f.corners {
			g.Positions = append(g.Positions, c[:]...)
			g.Normals = append(g.Normals, f.normal[:]...)
			g.TexCoords = append(g.TexCoords, uvs[i][:]...)
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// Plane returns a flat grid on the XZ plane, centered at the origin and
// facing +Y, with segments quads per side.
func Plane(size float32, segments int) (*Geometry, error) {
	return grid(size, segments, func(x, z float32) float32 { return 0 })
}

// Terrain returns a grid whose heights follow Perlin noise. The same seed
// always yields the same terrain.
func Terrain(size float32, segments int, amplitude float32, seed int64) (*Geometry, error) {
	noise := perlin.NewPerlin(2, 2, 3, seed)
	g, err := grid(size, segments, func(x, z float32) float32 {
		// sample a few noise cells across the grid
		return amplitude * float32(noise.Noise2D(float64(x/size)*4, float64(z/size)*4))
	})
	if err != nil {
		return nil, err
	}
	g.RecalculateNormals()
	return g, nil
}

func grid(size float32, segments int, height func(x, z float32) float32) (*Geometry, error) {
	if segments < 1 {
		return nil, errors.New("segments must be at least 1")
	}
	side := segments + 1
	step := size / float32(segments)
	start := -size / 2

	g := &Geometry{
		Positions: make([]float32, 0, side*side*3),
		Normals:   make([]float32, 0, side*side*3),
		TexCoords: make([]float32, 0, side*side*2),
		Indices:   make([]uint32, 0, segments*segments*6),
	}
	for x := 0; x < side; x++ {
		for z := 0; z < side; z++ {
			px := start + float32(x)*step
			pz := start + float32(z)*step
			g.Positions = append(g.Positions, px, height(px, pz), pz)
			g.Normals = append(g.Normals, 0, 1, 0)
			g.TexCoords = append(g.TexCoords, float32(x)/float32(segments), float32(z)/float32(segments))
		}
	}
	for x := 0; x < segments; x++ {
		for z := 0; z < segments; z++ {
			topLeft := uint32(x*side + z)
			topRight := topLeft + 1
			bottomLeft := uint32((x+1)*side + z)
			bottomRight := bottomLeft + 1
			// counter clockwise seen from +Y
			g.Indices = append(g.Indices, topLeft, topRight, bottomRight, topLeft, bottomRight, bottomLeft)
		}
	}
	return g, nil
}
