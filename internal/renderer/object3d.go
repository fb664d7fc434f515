package renderer

import (
	"errors"
	"fmt"
	"math"

	"SceneGL/internal/geometry"
	"SceneGL/internal/layout"
	"SceneGL/internal/logger"
	"SceneGL/internal/material"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Part is a run of indices drawn with one material.
type Part struct {
	Material *material.Material
	Start    int
	Count    int
}

// Parts resolves the material groups of geom against lib. Groups whose
// material is missing from lib, and geometry without groups, use mat.
func Parts(geom *geometry.Geometry, mat *material.Material, lib *material.Library) []Part {
	if mat == nil {
		mat = material.Default()
	}
	if len(geom.Groups) == 0 {
		return []Part{{Material: mat, Start: 0, Count: len(geom.Indices)}}
	}

	resolved := make(map[string]*material.Material)
	parts := make([]Part, 0, len(geom.Groups))
	for _, g := range geom.Groups {
		m, ok := resolved[g.Material]
		if !ok {
			m = mat
			if lib != nil && g.Material != "" {
				if found, ok := lib.Get(g.Material); ok {
					// objects sharing a library must not share mutable state
					m = found.Clone()
				} else {
					logger.Log.Warn("Material not found in library, using fallback",
						zap.String("material", g.Material),
						zap.String("fallback", mat.Name))
				}
			}
			resolved[g.Material] = m
		}
		parts = append(parts, Part{Material: m, Start: g.Start, Count: g.Count})
	}
	return parts
}

// Textured reports whether any part needs the textured layout.
func Textured(parts []Part) bool {
	for _, p := range parts {
		if p.Material.HasTextures() {
			return true
		}
	}
	return false
}

type Option func(*Object3D)

func WithName(name string) Option {
	return func(o *Object3D) { o.Name = name }
}

// WithLibrary resolves material groups against lib, loaded from path.
func WithLibrary(lib *material.Library, path string) Option {
	return func(o *Object3D) {
		o.library = lib
		o.LibraryPath = path
	}
}

// Object3D is a drawable mesh owning its GPU buffers.
type Object3D struct {
	Transform

	ID          uuid.UUID
	Name        string
	Mode        DrawMode
	Shader      *Shader
	Material    *material.Material
	Parts       []Part
	Layout      layout.Layout
	LibraryPath string

	BoundingCenter mgl32.Vec3
	BoundingRadius float32

	library    *material.Library
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int
	disposed   bool
}

// newObject3D resolves materials, layout and bounds without touching GL.
func newObject3D(geom *geometry.Geometry, shader *Shader, mat *material.Material, mode DrawMode, opts ...Option) (*Object3D, error) {
	if geom == nil || geom.VertexCount() == 0 {
		return nil, errors.New("empty geometry")
	}
	if len(geom.Indices) == 0 {
		return nil, errors.New("geometry has no indices")
	}
	if mat == nil {
		mat = material.Default()
	}

	o := &Object3D{
		Transform: NewTransform(),
		ID:        uuid.New(),
		Mode:      mode,
		Shader:    shader,
		Material:  mat,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Name == "" {
		o.Name = o.ID.String()
	}

	o.Parts = Parts(geom, mat, o.library)
	if len(o.Parts) == 1 && len(geom.Groups) == 0 {
		o.Layout = layout.ForMaterial(mat)
	} else {
		o.Layout = layout.For(Textured(o.Parts))
	}
	o.indexCount = len(geom.Indices)
	o.BoundingCenter, o.BoundingRadius = boundingSphere(geom)
	return o, nil
}

// NewObject3D uploads geom into a vertex array bound to shader's attributes.
// mat is used for geometry without material groups and for groups the
// library does not define.
func NewObject3D(geom *geometry.Geometry, shader *Shader, mat *material.Material, mode DrawMode, opts ...Option) (*Object3D, error) {
	if shader == nil || !shader.IsCompiled() {
		return nil, errors.New("shader not compiled")
	}
	o, err := newObject3D(geom, shader, mat, mode, opts...)
	if err != nil {
		return nil, err
	}

	geom.Prepare(o.Layout)
	data, err := o.Layout.Interleave(geom)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", o.Name, err)
	}

	var cleanup Unwind
	gl.GenVertexArrays(1, &o.vao)
	cleanup.Add(func() { gl.DeleteVertexArrays(1, &o.vao) })
	gl.BindVertexArray(o.vao)

	gl.GenBuffers(1, &o.vbo)
	cleanup.Add(func() { gl.DeleteBuffers(1, &o.vbo) })
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*layout.FloatSize, gl.Ptr(data), gl.STATIC_DRAW)

	gl.GenBuffers(1, &o.ebo)
	cleanup.Add(func() { gl.DeleteBuffers(1, &o.ebo) })
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, o.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geom.Indices)*4, gl.Ptr(geom.Indices), gl.STATIC_DRAW)

	enabled := o.Layout.Bind(glBinder{shader: shader})
	gl.BindVertexArray(0)

	if len(enabled) == 0 {
		cleanup.Unwind()
		return nil, fmt.Errorf("object %s: shader %s uses no attribute of %s", o.Name, shader.Name, o.Layout)
	}
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		cleanup.Unwind()
		return nil, fmt.Errorf("object %s: gl error 0x%x during upload", o.Name, errCode)
	}
	cleanup.Discard()

	logger.Log.Debug("Object uploaded",
		zap.String("name", o.Name),
		zap.Stringer("id", o.ID),
		zap.Stringer("layout", o.Layout),
		zap.Int("vertices", geom.VertexCount()),
		zap.Int("indices", o.indexCount),
		zap.Int("parts", len(o.Parts)))
	return o, nil
}

// Draw issues one draw call per part. bind is called before each part
// whose material differs from the previous one.
func (o *Object3D) Draw(bind func(*material.Material)) {
	if o.disposed {
		return
	}
	gl.BindVertexArray(o.vao)
	var current *material.Material
	for _, p := range o.Parts {
		if p.Count == 0 {
			continue
		}
		if p.Material != current {
			bind(p.Material)
			current = p.Material
		}
		gl.DrawElements(o.Mode.GL(), int32(p.Count), gl.UNSIGNED_INT, gl.PtrOffset(p.Start*4))
	}
	gl.BindVertexArray(0)
}

// Materials returns the distinct materials of the object in part order.
func (o *Object3D) Materials() []*material.Material {
	seen := make(map[*material.Material]bool)
	var out []*material.Material
	for _, p := range o.Parts {
		if !seen[p.Material] {
			seen[p.Material] = true
			out = append(out, p.Material)
		}
	}
	return out
}

// IsDisposed reports whether Dispose ran.
func (o *Object3D) IsDisposed() bool {
	return o.disposed
}

// Dispose frees the GPU buffers. It is safe to call more than once.
func (o *Object3D) Dispose() {
	if o.disposed {
		return
	}
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.ebo != 0 {
		gl.DeleteBuffers(1, &o.ebo)
	}
	o.vao, o.vbo, o.ebo = 0, 0, 0
	o.disposed = true
}

// WorldBounds returns the bounding sphere in world space.
func (o *Object3D) WorldBounds() (mgl32.Vec3, float32) {
	m := o.ModelMatrix()
	center := m.Mul4x1(o.BoundingCenter.Vec4(1)).Vec3()
	var maxScale float32
	for _, v := range o.Scale() {
		maxScale = float32(math.Max(float64(maxScale), math.Abs(float64(v))))
	}
	return center, o.BoundingRadius * maxScale
}

func boundingSphere(geom *geometry.Geometry) (mgl32.Vec3, float32) {
	lo, hi := geom.Bounds()
	center := lo.Add(hi).Mul(0.5)
	var radiusSq float32
	for i := 0; i < geom.VertexCount(); i++ {
		p := mgl32.Vec3{geom.Positions[i*3], geom.Positions[i*3+1], geom.Positions[i*3+2]}
		if d := p.Sub(center).LenSqr(); d > radiusSq {
			radiusSq = d
		}
	}
	return center, float32(math.Sqrt(float64(radiusSq)))
}
