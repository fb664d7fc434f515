// Package renderer draws geometry with OpenGL 4.1 core. Every function that
// touches GL must run on the thread owning the context.
package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawMode selects the primitive type used to assemble indices.
type DrawMode int

const (
	Triangles DrawMode = iota
	Points
	Lines
	LineStrip
	LineLoop
	TriangleStrip
	TriangleFan
)

var drawModeNames = map[DrawMode]string{
	Triangles:     "triangles",
	Points:        "points",
	Lines:         "lines",
	LineStrip:     "line_strip",
	LineLoop:      "line_loop",
	TriangleStrip: "triangle_strip",
	TriangleFan:   "triangle_fan",
}

func (m DrawMode) String() string {
	if name, ok := drawModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("DrawMode(%d)", int(m))
}

// ParseDrawMode accepts the names printed by String, case-insensitively.
// An empty name means triangles.
func ParseDrawMode(name string) (DrawMode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Triangles, nil
	}
	for mode, n := range drawModeNames {
		if n == name {
			return mode, nil
		}
	}
	return Triangles, fmt.Errorf("unknown draw mode %q", name)
}

// GL returns the matching primitive enum.
func (m DrawMode) GL() uint32 {
	switch m {
	case Points:
		return gl.POINTS
	case Lines:
		return gl.LINES
	case LineStrip:
		return gl.LINE_STRIP
	case LineLoop:
		return gl.LINE_LOOP
	case TriangleStrip:
		return gl.TRIANGLE_STRIP
	case TriangleFan:
		return gl.TRIANGLE_FAN
	default:
		return gl.TRIANGLES
	}
}

// Light is a point light.
type Light struct {
	Position        mgl32.Vec3
	Color           mgl32.Vec3
	Intensity       float32
	AmbientStrength float32
}

func NewPointLight(position, color mgl32.Vec3, intensity float32) *Light {
	return &Light{
		Position:        position,
		Color:           color,
		Intensity:       intensity,
		AmbientStrength: 0.1,
	}
}

// DefaultLight is a white light above and in front of the origin.
func DefaultLight() *Light {
	return NewPointLight(mgl32.Vec3{4, 8, 6}, mgl32.Vec3{1, 1, 1}, 1)
}
