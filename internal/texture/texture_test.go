package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	next    uint32
	live    map[uint32]*image.RGBA
	deleted []uint32
	fail    bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{live: make(map[uint32]*image.RGBA)}
}

func (b *fakeBackend) Upload(img *image.RGBA) (uint32, error) {
	if b.fail {
		return 0, errors.New("out of memory")
	}
	b.next++
	b.live[b.next] = img
	return b.next, nil
}

func (b *fakeBackend) Delete(id uint32) {
	delete(b.live, id)
	b.deleted = append(b.deleted, id)
}

// writePNG writes a 1x2 image: red on top, blue below.
func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestDecodeFlipsRows(t *testing.T) {
	path := writePNG(t, t.TempDir(), "stripe.png")

	img, err := DecodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 1, 2), img.Rect)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 1))
}

func TestDecodeReportsFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, White()))

	img, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(0, 0))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestSolidImages(t *testing.T) {
	assert.Equal(t, color.RGBA{128, 128, 255, 255}, FlatNormal().RGBAAt(0, 0))
	assert.Equal(t, 1, White().Rect.Dx())
}

func TestManagerCachesByPath(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png")
	backend := newFakeBackend()
	tm := NewManager(backend)

	first, err := tm.Load(path)
	require.NoError(t, err)
	second, err := tm.Load(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, backend.live, 1)
	assert.Equal(t, 2, tm.RefCount(first))

	stats := tm.Stats()
	assert.Equal(t, 1, stats.TotalTextures)
	assert.Equal(t, 1, stats.CacheHits)
	assert.Equal(t, 1, stats.CacheMisses)
	assert.Equal(t, 1, stats.ActiveTextures)
}

func TestManagerReleaseFreesOnLastReference(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png")
	backend := newFakeBackend()
	tm := NewManager(backend)

	id, err := tm.Load(path)
	require.NoError(t, err)
	tm.AddReference(id)

	tm.Release(id)
	assert.Empty(t, backend.deleted)
	tm.Release(id)
	assert.Equal(t, []uint32{id}, backend.deleted)
	assert.Equal(t, 0, tm.RefCount(id))

	// released path is loaded again
	again, err := tm.Load(path)
	require.NoError(t, err)
	assert.NotEqual(t, id, again)

	// unknown and zero handles are ignored
	tm.Release(999)
	tm.Release(0)
	assert.Len(t, backend.deleted, 1)
}

func TestManagerFromImage(t *testing.T) {
	backend := newFakeBackend()
	tm := NewManager(backend)

	a, err := tm.FromImage("builtin:white", White())
	require.NoError(t, err)
	b, err := tm.FromImage("builtin:white", White())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 2, tm.RefCount(a))
}

func TestManagerErrors(t *testing.T) {
	backend := newFakeBackend()
	tm := NewManager(backend)

	_, err := tm.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	backend.fail = true
	_, err = tm.FromImage("white", White())
	assert.Error(t, err)
	assert.Equal(t, 0, tm.Stats().ActiveTextures)
}

func TestManagerClear(t *testing.T) {
	backend := newFakeBackend()
	tm := NewManager(backend)
	_, err := tm.FromImage("white", White())
	require.NoError(t, err)
	_, err = tm.FromImage("normal", FlatNormal())
	require.NoError(t, err)

	tm.Clear()

	assert.Empty(t, backend.live)
	assert.Equal(t, 0, tm.Stats().ActiveTextures)
}
