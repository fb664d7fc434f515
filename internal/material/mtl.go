package material

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"SceneGL/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	// ErrNoMaterial is returned for a property line that precedes any newmtl.
	ErrNoMaterial = errors.New("property before newmtl")
	// ErrMalformed is returned for a line with missing or unparsable arguments.
	ErrMalformed = errors.New("malformed material line")
)

// Library is the set of materials declared by one .mtl file.
type Library struct {
	Materials map[string]*Material
	Order     []string // Declaration order
	Warnings  []string
}

// Get returns the named material.
func (lib *Library) Get(name string) (*Material, bool) {
	m, ok := lib.Materials[name]
	return m, ok
}

// First returns the first declared material, nil for an empty library.
func (lib *Library) First() *Material {
	if len(lib.Order) == 0 {
		return nil
	}
	return lib.Materials[lib.Order[0]]
}

// Names returns the material names in declaration order.
func (lib *Library) Names() []string {
	names := make([]string, len(lib.Order))
	copy(names, lib.Order)
	return names
}

// Load parses the .mtl file at path. Texture paths resolve against the
// directory of the file.
func Load(path string) (*Library, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lib, err := Parse(file, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Log.Debug("Material library loaded",
		zap.String("path", path),
		zap.Int("materials", len(lib.Order)),
		zap.Int("warnings", len(lib.Warnings)))
	return lib, nil
}

// Parse reads MTL statements from r. baseDir is used to resolve relative
// texture file names; an empty baseDir leaves them untouched.
func Parse(r io.Reader, baseDir string) (*Library, error) {
	dec := &decoder{
		lib:     &Library{Materials: make(map[string]*Material)},
		baseDir: baseDir,
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return dec.lib, nil
}

type decoder struct {
	lib     *Library
	baseDir string
	line    int
	current *Material
}

func (dec *decoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	keyword, args := fields[0], fields[1:]

	if keyword == "newmtl" {
		return dec.parseNewmtl(args)
	}

	switch keyword {
	case "Ka", "Kd", "Ks", "Ke", "Ns", "d", "Tr", "Ni", "illum",
		"map_Kd", "map_Ks", "map_Bump", "map_bump", "bump", "norm":
		if dec.current == nil {
			return dec.errorf(ErrNoMaterial, "%s", keyword)
		}
	default:
		dec.warn("field not supported: " + keyword)
		return nil
	}

	m := dec.current
	switch keyword {
	case "Ka":
		return dec.parseColor(keyword, args, &m.Ambient)
	case "Kd":
		return dec.parseColor(keyword, args, &m.Diffuse)
	case "Ks":
		return dec.parseColor(keyword, args, &m.Specular)
	case "Ke":
		return dec.parseColor(keyword, args, &m.Emissive)
	case "Ns":
		return dec.parseScalar(keyword, args, &m.Shininess)
	case "d":
		return dec.parseScalar(keyword, args, &m.Alpha)
	case "Tr":
		var tr float32
		if err := dec.parseScalar(keyword, args, &tr); err != nil {
			return err
		}
		m.Alpha = 1 - tr
	case "Ni":
		return dec.parseScalar(keyword, args, &m.OpticalDensity)
	case "illum":
		if len(args) < 1 {
			return dec.errorf(ErrMalformed, "'illum' with no fields")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return dec.errorf(ErrMalformed, "'illum' parse int error: %v", err)
		}
		m.Illum = v
	case "map_Kd":
		return dec.parseMap(keyword, args, &m.DiffuseMap)
	case "map_Ks":
		return dec.parseMap(keyword, args, &m.SpecularMap)
	default:
		return dec.parseMap(keyword, args, &m.NormalMap)
	}
	return nil
}

// newmtl <name>
func (dec *decoder) parseNewmtl(args []string) error {
	if len(args) < 1 {
		return dec.errorf(ErrMalformed, "newmtl with no fields")
	}
	name := strings.Join(args, " ")
	m, ok := dec.lib.Materials[name]
	if !ok {
		m = New(name)
		dec.lib.Materials[name] = m
		dec.lib.Order = append(dec.lib.Order, name)
	}
	dec.current = m
	return nil
}

// K? r [g b]; a single value is a grey level.
func (dec *decoder) parseColor(keyword string, args []string, dst *Color) error {
	if len(args) != 1 && len(args) < 3 {
		return dec.errorf(ErrMalformed, "'%s' needs 1 or 3 fields, got %d", keyword, len(args))
	}
	if len(args) == 1 {
		v, err := parseFloat(args[0])
		if err != nil {
			return dec.errorf(ErrMalformed, "'%s' parse float error: %v", keyword, err)
		}
		*dst = Color{v, v, v}
		return nil
	}
	var c Color
	for i := 0; i < 3; i++ {
		v, err := parseFloat(args[i])
		if err != nil {
			return dec.errorf(ErrMalformed, "'%s' parse float error: %v", keyword, err)
		}
		c[i] = v
	}
	*dst = c
	return nil
}

func (dec *decoder) parseScalar(keyword string, args []string, dst *float32) error {
	if len(args) < 1 {
		return dec.errorf(ErrMalformed, "'%s' with no fields", keyword)
	}
	v, err := parseFloat(args[0])
	if err != nil {
		return dec.errorf(ErrMalformed, "'%s' parse float error: %v", keyword, err)
	}
	*dst = v
	return nil
}

// map_xx [-options] <filename>
func (dec *decoder) parseMap(keyword string, args []string, dst **TextureMap) error {
	tm := newTextureMap("")
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || len(arg) == 1 {
			tm.Path = arg
			continue
		}
		var err error
		switch arg {
		case "-s":
			i, err = readVec2(args, i, &tm.Scale)
		case "-o":
			i, err = readVec2(args, i, &tm.Offset)
		case "-bm":
			if i+1 >= len(args) {
				return dec.errorf(ErrMalformed, "'%s' -bm with no value", keyword)
			}
			i++
			tm.BumpMultiplier, err = parseFloat(args[i])
		default:
			i = skipOptionArgs(args, i)
		}
		if err != nil {
			return dec.errorf(ErrMalformed, "'%s' option %s: %v", keyword, arg, err)
		}
	}
	if tm.Path == "" {
		return dec.errorf(ErrMalformed, "'%s' with no file name", keyword)
	}
	if dec.baseDir != "" && !filepath.IsAbs(tm.Path) {
		tm.Path = filepath.Join(dec.baseDir, filepath.FromSlash(tm.Path))
	}
	*dst = tm
	return nil
}

// readVec2 consumes one to three numeric values after args[i]; a single
// value applies to both components. It returns the index of the last
// consumed argument.
func readVec2(args []string, i int, dst *mgl32.Vec2) (int, error) {
	if i+1 >= len(args) {
		return i, errors.New("missing value")
	}
	u, err := parseFloat(args[i+1])
	if err != nil {
		return i, err
	}
	i++
	v := u
	if i+1 < len(args) {
		if f, err := parseFloat(args[i+1]); err == nil {
			v = f
			i++
			// optional w component
			if i+1 < len(args) {
				if _, err := parseFloat(args[i+1]); err == nil {
					i++
				}
			}
		}
	}
	*dst = mgl32.Vec2{u, v}
	return i, nil
}

// skipOptionArgs skips the numeric or on/off arguments of an unsupported option.
func skipOptionArgs(args []string, i int) int {
	for i+1 < len(args) {
		next := args[i+1]
		if next == "on" || next == "off" {
			i++
			continue
		}
		if _, err := parseFloat(next); err != nil {
			break
		}
		i++
	}
	return i
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

func (dec *decoder) errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", dec.line, kind, fmt.Sprintf(format, args...))
}

func (dec *decoder) warn(msg string) {
	w := fmt.Sprintf("mtl(%d): %s", dec.line, msg)
	dec.lib.Warnings = append(dec.lib.Warnings, w)
	logger.Log.Debug("Material file warning", zap.String("warning", w))
}
