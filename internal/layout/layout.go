// Package layout computes interleaved vertex layouts and binds them to
// shader attribute locations.
//
// A vertex is packed as consecutive float32 components in attribute order.
// Untextured surfaces carry position and normal; textured surfaces add a
// tangent (for normal mapping) and a texture coordinate:
//
//	untextured: [px py pz | nx ny nz]                          stride 24
//	textured:   [px py pz | nx ny nz | tx ty tz | u v]        stride 44
package layout

import (
	"errors"
	"fmt"

	"SceneGL/internal/logger"
	"SceneGL/internal/material"

	"go.uber.org/zap"
)

// FloatSize is the byte size of one vertex component.
const FloatSize = 4

// ErrShortAttribute is returned when a source holds fewer components than
// the vertex count requires.
var ErrShortAttribute = errors.New("attribute data shorter than vertex count")

// Semantic identifies what a vertex attribute carries.
type Semantic int

const (
	Position Semantic = iota
	Normal
	Tangent
	TexCoord
)

var semanticNames = [...]string{"aPosition", "aNormal", "aTangent", "aTexCoord"}
var semanticComponents = [...]int32{3, 3, 3, 2}

// String returns the shader attribute name bound to the semantic.
func (s Semantic) String() string {
	if s < 0 || int(s) >= len(semanticNames) {
		return fmt.Sprintf("Semantic(%d)", int(s))
	}
	return semanticNames[s]
}

// Components is the number of float32 components of the semantic, zero
// for values outside the known semantics.
func (s Semantic) Components() int32 {
	if s < 0 || int(s) >= len(semanticComponents) {
		return 0
	}
	return semanticComponents[s]
}

// Attribute is one entry of an interleaved layout.
type Attribute struct {
	Semantic   Semantic
	Components int32
	Offset     int // Byte offset from the start of the vertex
}

// Layout describes how vertex attributes are packed in a buffer.
type Layout struct {
	Stride     int32 // Bytes per vertex
	Attributes []Attribute
}

var (
	untextured = []Semantic{Position, Normal}
	textured   = []Semantic{Position, Normal, Tangent, TexCoord}
)

// For returns the layout used for textured or untextured surfaces.
func For(isTextured bool) Layout {
	if isTextured {
		return build(textured)
	}
	return build(untextured)
}

// ForMaterial returns the layout matching a material. A nil material is
// untextured.
func ForMaterial(m *material.Material) Layout {
	return For(m != nil && m.HasTextures())
}

func build(semantics []Semantic) Layout {
	l := Layout{Attributes: make([]Attribute, 0, len(semantics))}
	offset := 0
	for _, s := range semantics {
		n := s.Components()
		l.Attributes = append(l.Attributes, Attribute{Semantic: s, Components: n, Offset: offset})
		offset += int(n) * FloatSize
	}
	l.Stride = int32(offset)
	return l
}

// FloatsPerVertex is Stride expressed in float32 components.
func (l Layout) FloatsPerVertex() int {
	return int(l.Stride) / FloatSize
}

// Has reports whether the layout carries the semantic.
func (l Layout) Has(s Semantic) bool {
	_, ok := l.find(s)
	return ok
}

// Offset returns the byte offset of the semantic, or -1 when absent.
func (l Layout) Offset(s Semantic) int {
	a, ok := l.find(s)
	if !ok {
		return -1
	}
	return a.Offset
}

func (l Layout) find(s Semantic) (Attribute, bool) {
	for _, a := range l.Attributes {
		if a.Semantic == s {
			return a, true
		}
	}
	return Attribute{}, false
}

// Source supplies flat per-vertex attribute data.
type Source interface {
	VertexCount() int
	// Attribute returns the flat component slice for a semantic, or nil.
	Attribute(s Semantic) []float32
}

// Interleave packs the attributes of src into one buffer following the layout.
func (l Layout) Interleave(src Source) ([]float32, error) {
	count := src.VertexCount()
	for _, a := range l.Attributes {
		data := src.Attribute(a.Semantic)
		if need := count * int(a.Components); len(data) < need {
			return nil, fmt.Errorf("%s: have %d floats, need %d: %w", a.Semantic, len(data), need, ErrShortAttribute)
		}
	}

	out := make([]float32, 0, count*l.FloatsPerVertex())
	for v := 0; v < count; v++ {
		for _, a := range l.Attributes {
			n := int(a.Components)
			data := src.Attribute(a.Semantic)
			out = append(out, data[v*n:v*n+n]...)
		}
	}
	return out, nil
}

// Binder is the subset of the GPU API needed to bind a layout to the
// attributes of a linked shader program.
type Binder interface {
	// AttribLocation returns the location of a named attribute, -1 when the
	// program does not use it.
	AttribLocation(name string) int32
	VertexAttribPointer(location uint32, components, stride int32, offset int)
	EnableVertexAttribArray(location uint32)
}

// Bind points every attribute the program uses at its offset in the bound
// vertex buffer and returns the enabled locations.
func (l Layout) Bind(b Binder) []uint32 {
	enabled := make([]uint32, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		loc := b.AttribLocation(a.Semantic.String())
		if loc < 0 {
			logger.Log.Debug("Attribute not used by shader", zap.String("attribute", a.Semantic.String()))
			continue
		}
		b.VertexAttribPointer(uint32(loc), a.Components, l.Stride, a.Offset)
		b.EnableVertexAttribArray(uint32(loc))
		enabled = append(enabled, uint32(loc))
	}
	return enabled
}

func (l Layout) String() string {
	s := fmt.Sprintf("stride=%d", l.Stride)
	for _, a := range l.Attributes {
		s += fmt.Sprintf(" %s(%d@%d)", a.Semantic, a.Components, a.Offset)
	}
	return s
}
