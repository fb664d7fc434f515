package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"SceneGL/internal/config"
	"SceneGL/internal/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspectLayout(t *testing.T) {
	tests := []struct {
		args   []string
		stride string
		has    []string
		hasNot []string
	}{
		{[]string{"inspect-layout"}, "stride 24 bytes", []string{"aPosition", "aNormal"}, []string{"aTexCoord"}},
		{[]string{"inspect-layout", "--textured"}, "stride 44 bytes", []string{"aTangent", "aTexCoord"}, nil},
	}
	for _, tt := range tests {
		out, err := execute(t, tt.args...)
		require.NoError(t, err)
		assert.Contains(t, out, tt.stride)
		for _, s := range tt.has {
			assert.Contains(t, out, s)
		}
		for _, s := range tt.hasNot {
			assert.NotContains(t, out, s)
		}
	}
}

func TestInspectMTL(t *testing.T) {
	out, err := execute(t, "inspect-mtl", filepath.Join("..", "..", "internal", "material", "testdata", "crate.mtl"))
	require.NoError(t, err)

	assert.Contains(t, out, "crate\n")
	assert.Contains(t, out, "glass\n")
	assert.Contains(t, out, "diffuse map")
	assert.Contains(t, out, "crate_specular.png scale=2,2")
	assert.Contains(t, out, "stride=44")
	assert.Contains(t, out, "stride=24")
}

func TestInspectMTLMissingFile(t *testing.T) {
	_, err := execute(t, "inspect-mtl", filepath.Join(t.TempDir(), "none.mtl"))
	assert.Error(t, err)
}

func TestBake(t *testing.T) {
	out := filepath.Join(t.TempDir(), "quad"+geometry.MeshExt)
	stdout, err := execute(t, "bake", "--textured", filepath.Join("..", "..", "internal", "geometry", "testdata", "quad.obj"), out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "4 vertices, 2 triangles, 2 groups")

	g, err := geometry.LoadMesh(out)
	require.NoError(t, err)
	assert.Equal(t, 4, g.VertexCount())
	assert.Len(t, g.Tangents, 12)

	_, err = execute(t, "bake", "quad.obj", "quad.bin")
	assert.Error(t, err)
}

func TestConfigWritesEffectiveConfig(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.yaml")
	cfg := config.Default()
	cfg.Window.Title = "custom"
	require.NoError(t, cfg.Save(src))

	dst := filepath.Join(dir, "out.yaml")
	_, err := execute(t, "--config", src, "config", dst)
	require.NoError(t, err)

	got, err := config.Load(dst)
	require.NoError(t, err)
	assert.Equal(t, "custom", got.Window.Title)
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "render")
	assert.Error(t, err)
}
