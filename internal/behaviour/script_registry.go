package behaviour

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Params are the numeric settings of a behaviour as written in a scene file.
type Params map[string]float32

// Get returns the named parameter or def when it is absent.
func (p Params) Get(name string, def float32) float32 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

func (p Params) vec3() mgl32.Vec3 {
	return mgl32.Vec3{p.Get("x", 0), p.Get("y", 0), p.Get("z", 0)}
}

type Constructor func(target Target, params Params) (Behaviour, error)

var registry = map[string]Constructor{
	"spin": func(target Target, params Params) (Behaviour, error) {
		return NewSpin(target, params.vec3()), nil
	},
	"bob": func(target Target, params Params) (Behaviour, error) {
		freq := params.Get("frequency", 1)
		if freq < 0 {
			return nil, fmt.Errorf("bob: negative frequency %g", freq)
		}
		return NewBob(target, params.Get("amplitude", 0.5), freq), nil
	},
}

// Register makes a behaviour available to scene files under name.
func Register(name string, constructor Constructor) {
	registry[name] = constructor
}

// Available returns the registered names in sorted order.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Create(name string, target Target, params Params) (Behaviour, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown behaviour %q", name)
	}
	return constructor(target, params)
}
