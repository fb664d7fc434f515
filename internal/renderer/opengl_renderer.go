package renderer

import (
	"fmt"

	"SceneGL/internal/config"
	"SceneGL/internal/geometry"
	"SceneGL/internal/layout"
	"SceneGL/internal/logger"
	"SceneGL/internal/material"
	"SceneGL/internal/texture"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Texture units used by the textured shader.
const (
	diffuseUnit = iota
	specularUnit
	normalUnit
)

type OpenGLRenderer struct {
	cfg      config.Render
	shaders  [2]*Shader // untextured, textured
	objects  []*Object3D
	textures *texture.Manager

	white      uint32
	flatNormal uint32

	// FrustumCulling skips objects whose bounding sphere is off screen.
	FrustumCulling bool
	// Culled counts objects skipped during the last frame.
	Culled int

	currentShader *Shader
}

func NewOpenGLRenderer(cfg config.Render) *OpenGLRenderer {
	return &OpenGLRenderer{
		cfg:            cfg,
		shaders:        [2]*Shader{PhongShader(false), PhongShader(true)},
		FrustumCulling: true,
	}
}

// Init loads the GL entry points, compiles the built-in shaders and uploads
// the fallback textures. It must run after the context is current.
func (rend *OpenGLRenderer) Init(width, height int32) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("OpenGL initialization failed: %w", err)
	}
	logger.Log.Info("OpenGL context",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	for _, s := range rend.shaders {
		if err := s.Compile(); err != nil {
			return err
		}
	}

	rend.textures = texture.NewManager(GLTextures{})
	var err error
	if rend.white, err = rend.textures.FromImage("builtin:white", texture.White()); err != nil {
		return err
	}
	if rend.flatNormal, err = rend.textures.FromImage("builtin:normal", texture.FlatNormal()); err != nil {
		return err
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	rend.ApplyConfig(rend.cfg)
	rend.Resize(width, height)
	logger.Log.Info("OpenGL render initialized")
	return nil
}

// ApplyConfig updates the fixed-function state.
func (rend *OpenGLRenderer) ApplyConfig(cfg config.Render) {
	rend.cfg = cfg
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)
	if cfg.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (rend *OpenGLRenderer) Resize(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

// Textures returns the texture cache shared by every object.
func (rend *OpenGLRenderer) Textures() *texture.Manager {
	return rend.textures
}

// NewObject creates an object with the built-in shader matching the
// layout its materials need.
func (rend *OpenGLRenderer) NewObject(geom *geometry.Geometry, mat *material.Material, lib *material.Library, libPath string, mode DrawMode, opts ...Option) (*Object3D, error) {
	shader := rend.shaders[0]
	if Textured(Parts(geom, mat, lib)) {
		shader = rend.shaders[1]
	}
	if lib != nil {
		opts = append(opts, WithLibrary(lib, libPath))
	}
	return NewObject3D(geom, shader, mat, mode, opts...)
}

// Add uploads the textures of the object's materials and schedules it for
// drawing. A texture that fails to load is logged and left unbound.
func (rend *OpenGLRenderer) Add(o *Object3D) {
	for _, m := range o.Materials() {
		rend.acquireTextures(m)
	}
	rend.objects = append(rend.objects, o)
	logger.Log.Debug("Object added", zap.String("name", o.Name), zap.Int("objects", len(rend.objects)))
}

// Remove stops drawing o, releases its textures and disposes it.
func (rend *OpenGLRenderer) Remove(o *Object3D) {
	for i, m := range rend.objects {
		if m == o {
			rend.objects = append(rend.objects[:i], rend.objects[i+1:]...)
			break
		}
	}
	for _, m := range o.Materials() {
		rend.releaseTextures(m)
	}
	o.Dispose()
}

func (rend *OpenGLRenderer) Objects() []*Object3D {
	return rend.objects
}

func (rend *OpenGLRenderer) acquireTextures(m *material.Material) {
	for _, tm := range m.Maps() {
		if tm == nil || tm.Texture != 0 {
			continue
		}
		id, err := rend.textures.Load(tm.Path)
		if err != nil {
			logger.Log.Warn("Texture load failed", zap.String("material", m.Name), zap.String("path", tm.Path), zap.Error(err))
			continue
		}
		tm.Texture = id
	}
}

func (rend *OpenGLRenderer) releaseTextures(m *material.Material) {
	for _, tm := range m.Maps() {
		if tm != nil && tm.Texture != 0 {
			rend.textures.Release(tm.Texture)
			tm.Texture = 0
		}
	}
}

// ApplyLibrary copies reloaded material values into every object that
// resolved its groups against the library at path. It returns the number
// of materials updated.
func (rend *OpenGLRenderer) ApplyLibrary(path string, lib *material.Library) int {
	updated := 0
	for _, o := range rend.objects {
		if o.LibraryPath != path {
			continue
		}
		for _, m := range o.Materials() {
			fresh, ok := lib.Get(m.Name)
			if !ok {
				continue
			}
			old := m.Maps()
			m.CopyValues(fresh)
			kept := m.Maps()
			for i, tm := range old {
				if tm != nil && tm.Texture != 0 && (kept[i] == nil || kept[i].Texture != tm.Texture) {
					rend.textures.Release(tm.Texture)
				}
			}
			if m.HasTextures() && !o.Layout.Has(layout.TexCoord) {
				logger.Log.Warn("Reloaded material has textures but object was built untextured",
					zap.String("object", o.Name), zap.String("material", m.Name))
			}
			rend.acquireTextures(m)
			updated++
		}
	}
	return updated
}

func (rend *OpenGLRenderer) Render(camera *Camera, light *Light) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if rend.cfg.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthMask(true)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	// Culling : https://learnopengl.com/Advanced-OpenGL/Face-culling
	if rend.cfg.FaceCulling {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		gl.FrontFace(gl.CCW)
	} else {
		gl.Disable(gl.CULL_FACE)
	}

	viewProjection := camera.GetViewProjection()
	var frustum Frustum
	if rend.FrustumCulling {
		frustum = camera.CalculateFrustum()
	}
	rend.Culled = 0
	rend.currentShader = nil

	for _, o := range rend.objects {
		if o.IsDisposed() {
			continue
		}
		if rend.FrustumCulling {
			center, radius := o.WorldBounds()
			if !frustum.IntersectsSphere(center, radius) {
				rend.Culled++
				continue
			}
		}

		shader := o.Shader
		if rend.currentShader != shader {
			shader.Use()
			rend.currentShader = shader
			rend.setFrameUniforms(shader, viewProjection, light, camera)
		}
		u := shader.Uniforms()
		u.SetMat4("model", o.ModelMatrix())
		u.SetMat3("normalMatrix", o.NormalMatrix())

		textured := o.Layout.Has(layout.TexCoord)
		o.Draw(func(m *material.Material) {
			rend.setMaterialUniforms(shader, m, textured)
		})
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
}

// setFrameUniforms sets the uniforms shared by every object drawn with shader.
func (rend *OpenGLRenderer) setFrameUniforms(shader *Shader, viewProjection mgl32.Mat4, light *Light, camera *Camera) {
	u := shader.Uniforms()
	u.SetMat4("viewProjection", viewProjection)
	u.SetVec3("viewPos", camera.Position)
	if light != nil {
		u.SetVec3("light.position", light.Position)
		u.SetVec3("light.color", light.Color)
		u.SetFloat("light.intensity", light.Intensity)
		u.SetFloat("light.ambientStrength", light.AmbientStrength)
	}
}

// setMaterialUniforms sets material-specific uniforms and binds the
// texture units, falling back to neutral textures for missing maps.
func (rend *OpenGLRenderer) setMaterialUniforms(shader *Shader, m *material.Material, textured bool) {
	u := shader.Uniforms()
	u.SetVec3("ambientColor", m.Ambient)
	u.SetVec3("diffuseColor", m.Diffuse)
	u.SetVec3("specularColor", m.Specular)
	u.SetVec3("emissiveColor", m.Emissive)
	u.SetFloat("shininess", m.Shininess)
	u.SetFloat("alpha", m.Alpha)
	if !textured {
		return
	}

	bind := func(unit uint32, sampler, transform string, tm *material.TextureMap, fallback uint32) {
		id := fallback
		uv := mgl32.Vec4{1, 1, 0, 0}
		if tm != nil {
			if tm.Texture != 0 {
				id = tm.Texture
			}
			uv = mgl32.Vec4{tm.Scale[0], tm.Scale[1], tm.Offset[0], tm.Offset[1]}
		}
		gl.ActiveTexture(gl.TEXTURE0 + unit)
		gl.BindTexture(gl.TEXTURE_2D, id)
		u.SetInt(sampler, int32(unit))
		u.SetVec4(transform, uv)
	}
	bind(diffuseUnit, "diffuseMap", "diffuseUV", m.DiffuseMap, rend.white)
	bind(specularUnit, "specularMap", "specularUV", m.SpecularMap, rend.white)
	bind(normalUnit, "normalMap", "normalUV", m.NormalMap, rend.flatNormal)

	bumpScale := float32(1)
	if m.NormalMap != nil {
		bumpScale = m.NormalMap.BumpMultiplier
	}
	u.SetFloat("bumpScale", bumpScale)
	gl.ActiveTexture(gl.TEXTURE0)
}

// Cleanup disposes every object, shader and texture.
func (rend *OpenGLRenderer) Cleanup() {
	for _, o := range rend.objects {
		o.Dispose()
	}
	rend.objects = nil
	for _, s := range rend.shaders {
		s.Delete()
	}
	if rend.textures != nil {
		rend.textures.Clear()
	}
	logger.Log.Info("Renderer cleaned up")
}
