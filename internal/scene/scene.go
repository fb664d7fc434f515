// Package scene reads YAML scene descriptions and builds them into
// renderer objects.
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"SceneGL/internal/behaviour"
	"SceneGL/internal/renderer"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid scene")

// Built-in meshes accepted in place of a file path.
const (
	MeshCube    = "cube"
	MeshPlane   = "plane"
	MeshTerrain = "terrain"
)

type Camera struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	Fov      float32    `yaml:"fov"` // Zero keeps the viewer default
}

type Light struct {
	Position  [3]float32 `yaml:"position"`
	Color     [3]float32 `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
	Ambient   float32    `yaml:"ambient"`
}

type BehaviourSpec struct {
	Type   string           `yaml:"type"`
	Params behaviour.Params `yaml:"params"`
}

type Object struct {
	Name string `yaml:"name"`
	// Mesh is a file path relative to the scene or a built-in mesh name.
	Mesh string `yaml:"mesh"`

	// Built-in mesh settings.
	Size      float32 `yaml:"size"`
	Segments  int     `yaml:"segments"`
	Amplitude float32 `yaml:"amplitude"`
	Seed      int64   `yaml:"seed"`

	// MTLLib overrides the library named by the mesh file.
	MTLLib string `yaml:"mtllib"`
	// Material names the library entry used for the whole object.
	Material           string `yaml:"material"`
	Mode               string `yaml:"mode"`
	RecalculateNormals bool   `yaml:"recalculate_normals"`

	Position [3]float32  `yaml:"position"`
	Rotation [3]float32  `yaml:"rotation"` // Degrees
	Scale    *[3]float32 `yaml:"scale"`
	// Spin is a shorthand for a spin behaviour, in degrees per second.
	Spin       *[3]float32     `yaml:"spin"`
	Behaviours []BehaviourSpec `yaml:"behaviours"`
}

type Description struct {
	Camera  Camera   `yaml:"camera"`
	Light   Light    `yaml:"light"`
	Objects []Object `yaml:"objects"`
}

func defaults() Description {
	return Description{
		Camera: Camera{Position: [3]float32{0, 2, 8}},
		Light: Light{
			Position:  [3]float32{4, 8, 6},
			Color:     [3]float32{1, 1, 1},
			Intensity: 1,
			Ambient:   0.1,
		},
	}
}

// Parse decodes a scene, filling in defaults. Unknown keys are errors.
func Parse(r io.Reader) (*Description, error) {
	desc := defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

func Load(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	desc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

// Validate checks everything that can be checked without reading meshes.
func (d *Description) Validate() error {
	if d.Camera.Fov < 0 || d.Camera.Fov >= 180 {
		return fmt.Errorf("%w: camera fov %g", ErrInvalid, d.Camera.Fov)
	}
	if d.Camera.Position == d.Camera.Target {
		return fmt.Errorf("%w: camera position equals its target", ErrInvalid)
	}
	if d.Light.Intensity < 0 {
		return fmt.Errorf("%w: negative light intensity", ErrInvalid)
	}

	names := make(map[string]bool)
	for i := range d.Objects {
		o := &d.Objects[i]
		if o.Name == "" {
			o.Name = fmt.Sprintf("object%d", i)
		}
		if names[o.Name] {
			return fmt.Errorf("%w: duplicate object name %q", ErrInvalid, o.Name)
		}
		names[o.Name] = true

		if err := o.validate(); err != nil {
			return fmt.Errorf("%w: object %q: %v", ErrInvalid, o.Name, err)
		}
	}
	return nil
}

func (o *Object) validate() error {
	if strings.TrimSpace(o.Mesh) == "" {
		return errors.New("mesh is required")
	}
	if _, err := renderer.ParseDrawMode(o.Mode); err != nil {
		return err
	}
	if o.Size < 0 {
		return fmt.Errorf("negative size %g", o.Size)
	}
	if o.Segments < 0 {
		return fmt.Errorf("negative segments %d", o.Segments)
	}
	if o.Scale != nil {
		for _, s := range o.Scale {
			if s == 0 {
				return errors.New("scale has a zero component")
			}
		}
	}
	for _, b := range o.Behaviours {
		if b.Type == "" {
			return errors.New("behaviour without type")
		}
	}
	return nil
}
