package geometry

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MeshExt is the extension of baked meshes written by Save.
const MeshExt = ".sglmesh"

const (
	meshMagic   = uint32(0x4D4C4753) // "SGLM"
	meshVersion = uint32(1)

	// upper bounds on the counts in a header; arrays are still read in
	// chunks so a short stream never allocates the full claimed length
	maxMeshFloats = 1 << 28
	maxMeshString = 1 << 16
	meshChunk     = 1 << 14
)

var ErrBadMesh = errors.New("invalid baked mesh")

// Load reads a mesh by extension: .obj, .gltf, .glb or a baked .sglmesh.
func Load(path string, opts OBJOptions) (*Geometry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path, opts)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case MeshExt:
		return LoadMesh(path)
	}
	return nil, fmt.Errorf("unsupported mesh format %q", filepath.Ext(path))
}

// Encode writes the mesh as gzip compressed little endian binary, ready to
// be loaded without parsing or recomputing attributes.
func (g *Geometry) Encode(w io.Writer) error {
	zw := gzip.NewWriter(w)
	bw := &binWriter{w: zw}

	bw.put(meshMagic)
	bw.put(meshVersion)
	bw.floats(g.Positions)
	bw.floats(g.Normals)
	bw.floats(g.Tangents)
	bw.floats(g.TexCoords)
	bw.put(uint32(len(g.Indices)))
	bw.put(g.Indices)
	bw.put(uint32(len(g.Groups)))
	for _, grp := range g.Groups {
		bw.str(grp.Material)
		bw.put(uint32(grp.Start))
		bw.put(uint32(grp.Count))
	}
	bw.str(g.MaterialLib)

	if bw.err != nil {
		return bw.err
	}
	return zw.Close()
}

// Decode reads a mesh written by Encode.
func Decode(r io.Reader) (*Geometry, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMesh, err)
	}
	defer zr.Close()
	br := &binReader{r: zr}

	var magic, version uint32
	br.get(&magic)
	br.get(&version)
	if br.err == nil && magic != meshMagic {
		return nil, fmt.Errorf("%w: magic %x", ErrBadMesh, magic)
	}
	if br.err == nil && version != meshVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadMesh, version)
	}

	g := &Geometry{}
	g.Positions = br.floats()
	g.Normals = br.floats()
	g.Tangents = br.floats()
	g.TexCoords = br.floats()
	g.Indices = readArray[uint32](br, br.count(maxMeshFloats))
	groups := br.count(maxMeshString)
	for i := 0; i < groups && br.err == nil; i++ {
		var start, count uint32
		name := br.str()
		br.get(&start)
		br.get(&count)
		g.Groups = append(g.Groups, Group{Material: name, Start: int(start), Count: int(count)})
	}
	g.MaterialLib = br.str()

	if br.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMesh, br.err)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// validate checks that attribute lengths agree with the vertex count and
// that indices and groups stay inside their arrays.
func (g *Geometry) validate() error {
	if len(g.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d position floats", ErrBadMesh, len(g.Positions))
	}
	n := g.VertexCount()
	attrs := []struct {
		name string
		got  int
		want int
	}{
		{"normal", len(g.Normals), n * 3},
		{"tangent", len(g.Tangents), n * 3},
		{"texcoord", len(g.TexCoords), n * 2},
	}
	for _, a := range attrs {
		if a.got != 0 && a.got != a.want {
			return fmt.Errorf("%w: %d %s floats for %d vertices", ErrBadMesh, a.got, a.name, n)
		}
	}
	for _, idx := range g.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d with %d vertices", ErrIndexRange, idx, n)
		}
	}
	for _, grp := range g.Groups {
		if grp.Start+grp.Count > len(g.Indices) {
			return fmt.Errorf("%w: group %q covers indices %d..%d of %d",
				ErrIndexRange, grp.Material, grp.Start, grp.Start+grp.Count, len(g.Indices))
		}
	}
	return nil
}

// Save bakes the mesh to path.
func (g *Geometry) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadMesh reads a baked mesh.
func LoadMesh(path string) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// binWriter keeps the first error so a sequence of writes is checked once.
type binWriter struct {
	w   io.Writer
	err error
}

func (bw *binWriter) put(v any) {
	if bw.err == nil {
		bw.err = binary.Write(bw.w, binary.LittleEndian, v)
	}
}

func (bw *binWriter) floats(data []float32) {
	bw.put(uint32(len(data)))
	if len(data) > 0 {
		bw.put(data)
	}
}

func (bw *binWriter) str(s string) {
	bw.put(uint32(len(s)))
	if len(s) > 0 && bw.err == nil {
		_, bw.err = io.WriteString(bw.w, s)
	}
}

type binReader struct {
	r   io.Reader
	err error
}

func (br *binReader) get(v any) {
	if br.err == nil {
		br.err = binary.Read(br.r, binary.LittleEndian, v)
	}
}

func (br *binReader) count(limit int) int {
	var n uint32
	br.get(&n)
	if br.err == nil && int(n) > limit {
		br.err = fmt.Errorf("length %d exceeds %d", n, limit)
	}
	if br.err != nil {
		return 0
	}
	return int(n)
}

// floats returns nil for empty attributes so absent data stays absent.
func (br *binReader) floats() []float32 {
	return readArray[float32](br, br.count(maxMeshFloats))
}

// readArray reads n values, growing the result one chunk at a time so the
// allocation follows the data actually present.
func readArray[T float32 | uint32](br *binReader, n int) []T {
	if n == 0 || br.err != nil {
		return nil
	}
	data := make([]T, 0, min(n, meshChunk))
	for len(data) < n && br.err == nil {
		chunk := make([]T, min(n-len(data), meshChunk))
		br.get(chunk)
		data = append(data, chunk...)
	}
	return data
}

func (br *binReader) str() string {
	n := br.count(maxMeshString)
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if br.err == nil {
		_, br.err = io.ReadFull(br.r, buf)
	}
	return string(buf)
}
