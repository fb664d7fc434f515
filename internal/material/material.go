package material

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGB reflectance triple.
type Color = mgl32.Vec3

// TextureMap is an image referenced by a material together with the
// texture-coordinate transform given by its map options.
type TextureMap struct {
	Path           string     // Resolved image path
	Scale          mgl32.Vec2 // -s option
	Offset         mgl32.Vec2 // -o option
	BumpMultiplier float32    // -bm option, normal maps only
	Texture        uint32     // GPU handle, 0 until uploaded
}

func newTextureMap(path string) *TextureMap {
	return &TextureMap{
		Path:           path,
		Scale:          mgl32.Vec2{1, 1},
		BumpMultiplier: 1,
	}
}

// Material describes Phong reflectance and the optional texture maps of a surface.
type Material struct {
	Name string

	Ambient  Color
	Diffuse  Color
	Specular Color
	Emissive Color

	Shininess      float32 // Specular exponent (Ns)
	Alpha          float32 // Opacity (d, or 1-Tr)
	OpticalDensity float32 // Index of refraction (Ni)
	Illum          int     // Illumination model

	DiffuseMap  *TextureMap
	SpecularMap *TextureMap
	NormalMap   *TextureMap
}

// New returns a material carrying the usual MTL defaults.
func New(name string) *Material {
	return &Material{
		Name:           name,
		Ambient:        Color{0.2, 0.2, 0.2},
		Diffuse:        Color{0.8, 0.8, 0.8},
		Specular:       Color{0, 0, 0},
		Shininess:      32,
		Alpha:          1,
		OpticalDensity: 1,
		Illum:          2,
	}
}

// Default is the material used for objects that reference none.
func Default() *Material {
	m := New("default")
	m.Ambient = Color{0.1, 0.1, 0.1}
	m.Diffuse = Color{1, 1, 1}
	m.Specular = Color{1, 1, 1}
	return m
}

// HasTextures reports whether any texture map is set.
func (m *Material) HasTextures() bool {
	return m.DiffuseMap != nil || m.SpecularMap != nil || m.NormalMap != nil
}

// Maps returns the set texture maps in unit order: diffuse, specular, normal.
// Unset maps are nil.
func (m *Material) Maps() [3]*TextureMap {
	return [3]*TextureMap{m.DiffuseMap, m.SpecularMap, m.NormalMap}
}

// Clone returns a deep copy so objects sharing a library entry can diverge.
func (m *Material) Clone() *Material {
	c := *m
	c.DiffuseMap = cloneMap(m.DiffuseMap)
	c.SpecularMap = cloneMap(m.SpecularMap)
	c.NormalMap = cloneMap(m.NormalMap)
	return &c
}

// CopyValues copies every property except the GPU texture handles of maps
// whose path did not change. Used when a library is reloaded from disk.
func (m *Material) CopyValues(src *Material) {
	keep := m.Maps()
	*m = *src.Clone()
	for i, tm := range m.Maps() {
		if tm != nil && keep[i] != nil && keep[i].Path == tm.Path {
			tm.Texture = keep[i].Texture
		}
	}
}

func cloneMap(tm *TextureMap) *TextureMap {
	if tm == nil {
		return nil
	}
	c := *tm
	return &c
}
