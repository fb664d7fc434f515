package layout

import (
	"errors"
	"testing"

	"SceneGL/internal/material"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForUntextured(t *testing.T) {
	l := For(false)

	assert.Equal(t, int32(24), l.Stride)
	assert.Equal(t, 6, l.FloatsPerVertex())
	assert.Equal(t, []Attribute{
		{Semantic: Position, Components: 3, Offset: 0},
		{Semantic: Normal, Components: 3, Offset: 12},
	}, l.Attributes)
	assert.False(t, l.Has(Tangent))
	assert.False(t, l.Has(TexCoord))
	assert.Equal(t, -1, l.Offset(TexCoord))
}

func TestForTextured(t *testing.T) {
	l := For(true)

	assert.Equal(t, int32(44), l.Stride)
	assert.Equal(t, 11, l.FloatsPerVertex())
	assert.Equal(t, 0, l.Offset(Position))
	assert.Equal(t, 12, l.Offset(Normal))
	assert.Equal(t, 24, l.Offset(Tangent))
	assert.Equal(t, 36, l.Offset(TexCoord))
}

func TestLayoutInvariants(t *testing.T) {
	for _, isTextured := range []bool{false, true} {
		l := For(isTextured)
		require.NotEmpty(t, l.Attributes)
		assert.Equal(t, 0, l.Attributes[0].Offset)

		var sum int32
		prev := -1
		for _, a := range l.Attributes {
			assert.Greater(t, a.Offset, prev)
			assert.Equal(t, int(sum)*FloatSize, a.Offset)
			prev = a.Offset
			sum += a.Components
		}
		assert.Equal(t, sum*FloatSize, l.Stride)
	}
}

func TestForMaterial(t *testing.T) {
	assert.Equal(t, For(false), ForMaterial(nil))
	assert.Equal(t, For(false), ForMaterial(material.Default()))

	m := material.New("tex")
	m.NormalMap = &material.TextureMap{Path: "n.png"}
	assert.Equal(t, For(true), ForMaterial(m))
}

func TestSemanticString(t *testing.T) {
	assert.Equal(t, "aPosition", Position.String())
	assert.Equal(t, "aTexCoord", TexCoord.String())
	assert.Equal(t, "Semantic(9)", Semantic(9).String())
}

func TestSemanticComponents(t *testing.T) {
	tests := []struct {
		sem  Semantic
		want int32
	}{
		{Position, 3},
		{Normal, 3},
		{Tangent, 3},
		{TexCoord, 2},
		{Semantic(9), 0},
		{Semantic(-1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sem.Components(), tt.sem.String())
	}
}

type flatSource struct {
	count int
	data  map[Semantic][]float32
}

func (s flatSource) VertexCount() int { return s.count }
func (s flatSource) Attribute(sem Semantic) []float32 { return s.data[sem] }

func TestInterleaveTextured(t *testing.T) {
	src := flatSource{count: 2, data: map[Semantic][]float32{
		Position: {1, 2, 3, 4, 5, 6},
		Normal:   {0, 1, 0, 0, 0, 1},
		Tangent:  {1, 0, 0, 0, 1, 0},
		TexCoord: {0.25, 0.5, 0.75, 1},
	}}

	out, err := For(true).Interleave(src)
	require.NoError(t, err)
	assert.Equal(t, []float32{
		1, 2, 3, 0, 1, 0, 1, 0, 0, 0.25, 0.5,
		4, 5, 6, 0, 0, 1, 0, 1, 0, 0.75, 1,
	}, out)
}

func TestInterleaveIgnoresUnusedAttributes(t *testing.T) {
	src := flatSource{count: 1, data: map[Semantic][]float32{
		Position: {1, 2, 3},
		Normal:   {0, 0, 1},
		TexCoord: {0.5, 0.5},
	}}

	out, err := For(false).Interleave(src)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 0, 0, 1}, out)
}

func TestInterleaveShortAttribute(t *testing.T) {
	src := flatSource{count: 2, data: map[Semantic][]float32{
		Position: {1, 2, 3, 4, 5, 6},
		Normal:   {0, 1, 0},
	}}

	_, err := For(false).Interleave(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortAttribute))
	assert.Contains(t, err.Error(), "aNormal")
}

type pointerCall struct {
	location   uint32
	components int32
	stride     int32
	offset     int
}

type recordingBinder struct {
	locations map[string]int32
	pointers  []pointerCall
	enabled   []uint32
}

func (b *recordingBinder) AttribLocation(name string) int32 {
	if loc, ok := b.locations[name]; ok {
		return loc
	}
	return -1
}

func (b *recordingBinder) VertexAttribPointer(location uint32, components, stride int32, offset int) {
	b.pointers = append(b.pointers, pointerCall{location, components, stride, offset})
}

func (b *recordingBinder) EnableVertexAttribArray(location uint32) {
	b.enabled = append(b.enabled, location)
}

func TestBindTextured(t *testing.T) {
	b := &recordingBinder{locations: map[string]int32{
		"aPosition": 0, "aNormal": 1, "aTangent": 2, "aTexCoord": 3,
	}}

	enabled := For(true).Bind(b)

	assert.Equal(t, []uint32{0, 1, 2, 3}, enabled)
	assert.Equal(t, enabled, b.enabled)
	assert.Equal(t, []pointerCall{
		{0, 3, 44, 0},
		{1, 3, 44, 12},
		{2, 3, 44, 24},
		{3, 2, 44, 36},
	}, b.pointers)
}

func TestBindSkipsInactiveAttributes(t *testing.T) {
	// the compiler may drop an attribute the shader never reads
	b := &recordingBinder{locations: map[string]int32{"aPosition": 4, "aTexCoord": 1}}

	enabled := For(true).Bind(b)

	assert.Equal(t, []uint32{4, 1}, enabled)
	assert.Equal(t, []pointerCall{{4, 3, 44, 0}, {1, 2, 44, 36}}, b.pointers)
}

func TestLayoutString(t *testing.T) {
	assert.Equal(t, "stride=24 aPosition(3@0) aNormal(3@12)", For(false).String())
}
