package scene

import (
	"fmt"
	"path/filepath"

	"SceneGL/internal/behaviour"
	"SceneGL/internal/geometry"
	"SceneGL/internal/logger"
	"SceneGL/internal/material"
	"SceneGL/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Factory creates renderer objects. *renderer.OpenGLRenderer implements it.
type Factory interface {
	NewObject(geom *geometry.Geometry, mat *material.Material, lib *material.Library, libPath string, mode renderer.DrawMode, opts ...renderer.Option) (*renderer.Object3D, error)
}

// Scene is a built description, ready to be added to a renderer.
type Scene struct {
	Camera     *renderer.Camera
	Light      *renderer.Light
	Objects    []*renderer.Object3D
	Behaviours []behaviour.Behaviour
	// Libraries maps every material library path used to its parsed contents.
	Libraries map[string]*material.Library
}

// LibraryPaths returns the paths of every material library the scene uses.
func (s *Scene) LibraryPaths() []string {
	paths := make([]string, 0, len(s.Libraries))
	for p := range s.Libraries {
		paths = append(paths, p)
	}
	return paths
}

// Build loads every mesh and material library of desc and creates the
// objects through factory. Relative paths resolve against baseDir. On error
// the objects created so far are disposed.
func Build(desc *Description, baseDir string, factory Factory, width, height int32) (*Scene, error) {
	s := &Scene{
		Camera:    newCamera(desc.Camera, width, height),
		Light:     newLight(desc.Light),
		Libraries: make(map[string]*material.Library),
	}

	for i := range desc.Objects {
		od := &desc.Objects[i]
		obj, err := s.buildObject(od, baseDir, factory)
		if err != nil {
			for _, o := range s.Objects {
				o.Dispose()
			}
			return nil, fmt.Errorf("object %q: %w", od.Name, err)
		}
		s.Objects = append(s.Objects, obj)

		bs, err := behavioursFor(od, obj)
		if err != nil {
			for _, o := range s.Objects {
				o.Dispose()
			}
			return nil, fmt.Errorf("object %q: %w", od.Name, err)
		}
		s.Behaviours = append(s.Behaviours, bs...)
	}

	logger.Log.Info("Scene built",
		zap.Int("objects", len(s.Objects)),
		zap.Int("behaviours", len(s.Behaviours)),
		zap.Int("libraries", len(s.Libraries)))
	return s, nil
}

func newCamera(c Camera, width, height int32) *renderer.Camera {
	cam := renderer.NewDefaultCamera(width, height)
	cam.Position = mgl32.Vec3(c.Position)
	cam.LookAt(mgl32.Vec3(c.Target))
	if c.Fov > 0 {
		cam.SetFov(c.Fov)
	}
	return cam
}

func newLight(l Light) *renderer.Light {
	light := renderer.NewPointLight(mgl32.Vec3(l.Position), mgl32.Vec3(l.Color), l.Intensity)
	light.AmbientStrength = l.Ambient
	return light
}

func (s *Scene) buildObject(od *Object, baseDir string, factory Factory) (*renderer.Object3D, error) {
	geom, err := loadMesh(od, baseDir)
	if err != nil {
		return nil, err
	}

	libPath := geom.MaterialLib
	if od.MTLLib != "" {
		libPath = resolve(baseDir, od.MTLLib)
	}
	var lib *material.Library
	if libPath != "" {
		if lib, err = s.library(libPath); err != nil {
			return nil, err
		}
	}

	mat, err := objectMaterial(od, geom, lib)
	if err != nil {
		return nil, err
	}

	mode, err := renderer.ParseDrawMode(od.Mode)
	if err != nil {
		return nil, err
	}
	obj, err := factory.NewObject(geom, mat, lib, libPath, mode, renderer.WithName(od.Name))
	if err != nil {
		return nil, err
	}

	obj.SetPosition(mgl32.Vec3(od.Position))
	obj.SetRotationEuler(od.Rotation[0], od.Rotation[1], od.Rotation[2])
	if od.Scale != nil {
		obj.SetScale(mgl32.Vec3(*od.Scale))
	}
	return obj, nil
}

func loadMesh(od *Object, baseDir string) (*geometry.Geometry, error) {
	switch od.Mesh {
	case MeshCube:
		return geometry.Cube(orDefault(od.Size, 1)), nil
	case MeshPlane:
		return geometry.Plane(orDefault(od.Size, 10), orDefaultInt(od.Segments, 1))
	case MeshTerrain:
		return geometry.Terrain(orDefault(od.Size, 20), orDefaultInt(od.Segments, 64), orDefault(od.Amplitude, 2), od.Seed)
	}
	return geometry.Load(resolve(baseDir, od.Mesh), geometry.OBJOptions{RecalculateNormals: od.RecalculateNormals})
}

// library returns the parsed library at path, parsing each file once.
func (s *Scene) library(path string) (*material.Library, error) {
	if lib, ok := s.Libraries[path]; ok {
		return lib, nil
	}
	lib, err := material.Load(path)
	if err != nil {
		return nil, err
	}
	for _, w := range lib.Warnings {
		logger.Log.Warn("Material library warning", zap.String("path", path), zap.String("warning", w))
	}
	s.Libraries[path] = lib
	return lib, nil
}

// objectMaterial picks the material used for the whole object or for its
// groups that the library lacks. A named material replaces any groups.
func objectMaterial(od *Object, geom *geometry.Geometry, lib *material.Library) (*material.Material, error) {
	if od.Material != "" {
		if lib == nil {
			return nil, fmt.Errorf("material %q requested without a material library", od.Material)
		}
		m, ok := lib.Get(od.Material)
		if !ok {
			return nil, fmt.Errorf("material %q not in library", od.Material)
		}
		geom.Groups = nil
		return m.Clone(), nil
	}
	if lib != nil && len(geom.Groups) == 0 {
		if m := lib.First(); m != nil {
			return m.Clone(), nil
		}
	}
	return nil, nil
}

func behavioursFor(od *Object, obj *renderer.Object3D) ([]behaviour.Behaviour, error) {
	var out []behaviour.Behaviour
	if od.Spin != nil {
		out = append(out, behaviour.NewSpin(obj, mgl32.Vec3(*od.Spin)))
	}
	for _, spec := range od.Behaviours {
		b, err := behaviour.Create(spec.Type, obj, spec.Params)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, filepath.FromSlash(path))
}

func orDefault(v, def float32) float32 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
