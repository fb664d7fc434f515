package behaviour

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Spin rotates its target at a constant rate in degrees per second.
type Spin struct {
	Target Target
	Rate   mgl32.Vec3
}

func NewSpin(target Target, rate mgl32.Vec3) *Spin {
	return &Spin{Target: target, Rate: rate}
}

func (s *Spin) Start() {}

func (s *Spin) Update(dt float64) {
	d := s.Rate.Mul(float32(dt))
	if d == (mgl32.Vec3{}) {
		return
	}
	s.Target.Rotate(d[0], d[1], d[2])
}

// Bob moves its target up and down around the position it had on Start.
type Bob struct {
	Target    Target
	Amplitude float32
	Frequency float32 // Cycles per second

	origin  mgl32.Vec3
	elapsed float64
}

func NewBob(target Target, amplitude, frequency float32) *Bob {
	return &Bob{Target: target, Amplitude: amplitude, Frequency: frequency}
}

func (b *Bob) Start() {
	b.origin = b.Target.Position()
	b.elapsed = 0
}

func (b *Bob) Update(dt float64) {
	b.elapsed += dt
	offset := b.Amplitude * float32(math.Sin(2*math.Pi*float64(b.Frequency)*b.elapsed))
	b.Target.SetPosition(b.origin.Add(mgl32.Vec3{0, offset, 0}))
}
