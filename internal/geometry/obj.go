package geometry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"SceneGL/internal/logger"

	"go.uber.org/zap"
)

// OBJOptions controls how a Wavefront OBJ file is turned into a Geometry.
type OBJOptions struct {
	// RecalculateNormals ignores vn statements and derives smooth normals.
	RecalculateNormals bool
}

// LoadOBJ reads the OBJ file at path. A mtllib statement is resolved
// against the directory of the file.
func LoadOBJ(path string, opts OBJOptions) (*Geometry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g, err := ParseOBJ(file, filepath.Dir(path), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// faceVertex holds zero based indices into the raw attribute lists, -1 when absent.
type faceVertex struct {
	v, vt, vn int
}

type objDecoder struct {
	baseDir string
	line    int

	positions []float32
	texCoords []float32
	normals   []float32

	geom        *Geometry
	unified     map[faceVertex]uint32
	material    string
	hasTexCoord bool
	// missingNormal flags unified vertices whose face vertex had no vn
	missingNormal []bool
	libraries     []string
}

// ParseOBJ reads OBJ statements from r. Only v, vt, vn, f, mtllib and
// usemtl are interpreted; other statements are ignored.
func ParseOBJ(r io.Reader, baseDir string, opts OBJOptions) (*Geometry, error) {
	dec := &objDecoder{
		baseDir: baseDir,
		geom:    &Geometry{},
		unified: make(map[faceVertex]uint32),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	g := dec.geom
	dec.closeGroup()
	// a single group without usemtl carries no material of its own
	if len(g.Groups) == 1 && g.Groups[0].Material == "" {
		g.Groups = nil
	}
	if !dec.hasTexCoord {
		g.TexCoords = nil
	}
	if opts.RecalculateNormals {
		g.RecalculateNormals()
	} else {
		g.fillNormals(dec.missingNormal)
	}
	if len(dec.libraries) > 1 {
		logger.Log.Warn("OBJ names several material libraries, using the first",
			zap.String("used", dec.libraries[0]),
			zap.Strings("ignored", dec.libraries[1:]))
	}

	logger.Log.Debug("OBJ parsed",
		zap.Int("positions", len(dec.positions)/3),
		zap.Int("unifiedVertices", g.VertexCount()),
		zap.Int("indices", len(g.Indices)),
		zap.Int("groups", len(g.Groups)))
	return g, nil
}

func (dec *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	args := fields[1:]

	switch fields[0] {
	case "v":
		vals, err := dec.parseFloats("v", args, 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, vals[:3]...)
	case "vn":
		vals, err := dec.parseFloats("vn", args, 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, vals[:3]...)
	case "vt":
		vals, err := dec.parseFloats("vt", args, 1)
		if err != nil {
			return err
		}
		if len(vals) == 1 {
			vals = append(vals, 0)
		}
		dec.texCoords = append(dec.texCoords, vals[:2]...)
	case "f":
		return dec.parseFace(args)
	case "mtllib":
		if len(args) < 1 {
			return dec.errorf(ErrMalformed, "mtllib with no file name")
		}
		for _, name := range args {
			path := filepath.Join(dec.baseDir, filepath.FromSlash(name))
			if dec.geom.MaterialLib == "" {
				dec.geom.MaterialLib = path
			}
			dec.libraries = append(dec.libraries, path)
		}
	case "usemtl":
		if len(args) < 1 {
			return dec.errorf(ErrMalformed, "usemtl with no name")
		}
		name := strings.Join(args, " ")
		if name != dec.material {
			dec.closeGroup()
			dec.material = name
		}
	}
	return nil
}

func (dec *objDecoder) parseFloats(keyword string, args []string, want int) ([]float32, error) {
	if len(args) < want {
		return nil, dec.errorf(ErrMalformed, "'%s' needs %d values, got %d", keyword, want, len(args))
	}
	vals := make([]float32, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, dec.errorf(ErrMalformed, "'%s' invalid value %q", keyword, a)
		}
		vals[i] = float32(v)
	}
	return vals, nil
}

// f v1[/vt1][/vn1] v2... ; polygons are fan triangulated from the first vertex.
func (dec *objDecoder) parseFace(args []string) error {
	if len(args) < 3 {
		return dec.errorf(ErrMalformed, "face with %d vertices", len(args))
	}
	corners := make([]uint32, len(args))
	for i, a := range args {
		fv, err := dec.parseFaceVertex(a)
		if err != nil {
			return err
		}
		corners[i] = dec.unify(fv)
	}
	if len(corners) > 4 {
		logger.Log.Debug("Face with more than 4 vertices, using fan triangulation",
			zap.Int("line", dec.line), zap.Int("vertexCount", len(corners)))
	}
	for i := 1; i+1 < len(corners); i++ {
		dec.geom.Indices = append(dec.geom.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

func (dec *objDecoder) parseFaceVertex(s string) (faceVertex, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return faceVertex{}, dec.errorf(ErrMalformed, "invalid face vertex %q", s)
	}
	fv := faceVertex{v: -1, vt: -1, vn: -1}
	var err error
	if fv.v, err = dec.resolveIndex(parts[0], len(dec.positions)/3); err != nil {
		return fv, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if fv.vt, err = dec.resolveIndex(parts[1], len(dec.texCoords)/2); err != nil {
			return fv, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if fv.vn, err = dec.resolveIndex(parts[2], len(dec.normals)/3); err != nil {
			return fv, err
		}
	}
	return fv, nil
}

// resolveIndex converts a one based (or negative, relative) OBJ index into
// a zero based one, checking it against the elements declared so far.
func (dec *objDecoder) resolveIndex(s string, count int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, dec.errorf(ErrMalformed, "invalid index %q", s)
	}
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx += count
	default:
		return 0, dec.errorf(ErrIndexRange, "index 0")
	}
	if idx < 0 || idx >= count {
		return 0, dec.errorf(ErrIndexRange, "index %s with %d elements", s, count)
	}
	return idx, nil
}

// unify returns the index of the unified vertex for a (v, vt, vn) triple,
// creating it on first use. Material is not part of the key: the same
// vertex can be shared across groups.
func (dec *objDecoder) unify(fv faceVertex) uint32 {
	if idx, ok := dec.unified[fv]; ok {
		return idx
	}
	g := dec.geom
	idx := uint32(g.VertexCount())
	dec.unified[fv] = idx

	g.Positions = append(g.Positions, dec.positions[fv.v*3:fv.v*3+3]...)
	if fv.vt >= 0 {
		dec.hasTexCoord = true
		g.TexCoords = append(g.TexCoords, dec.texCoords[fv.vt*2:fv.vt*2+2]...)
	} else {
		g.TexCoords = append(g.TexCoords, 0, 0)
	}
	if fv.vn >= 0 {
		g.Normals = append(g.Normals, dec.normals[fv.vn*3:fv.vn*3+3]...)
	} else {
		g.Normals = append(g.Normals, 0, 1, 0)
	}
	dec.missingNormal = append(dec.missingNormal, fv.vn < 0)
	return idx
}

// closeGroup ends the run of indices drawn with the current material.
func (dec *objDecoder) closeGroup() {
	g := dec.geom
	start := 0
	if n := len(g.Groups); n > 0 {
		start = g.Groups[n-1].Start + g.Groups[n-1].Count
	}
	count := len(g.Indices) - start
	if count == 0 {
		return
	}
	if n := len(g.Groups); n > 0 && g.Groups[n-1].Material == dec.material {
		g.Groups[n-1].Count += count
		return
	}
	g.Groups = append(g.Groups, Group{Material: dec.material, Start: start, Count: count})
}

func (dec *objDecoder) errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", dec.line, kind, fmt.Sprintf(format, args...))
}
