// Package behaviour runs per-frame logic attached to scene objects.
package behaviour

import "github.com/go-gl/mathgl/mgl32"

// Behaviour is driven by the engine loop. Start runs once before the first
// Update; dt is the frame time in seconds.
type Behaviour interface {
	Start()
	Update(dt float64)
}

// Target is the part of a scene object a behaviour may move.
type Target interface {
	Position() mgl32.Vec3
	SetPosition(p mgl32.Vec3)
	Rotate(x, y, z float32)
}

type behaviourWrapper struct {
	behaviour Behaviour
	started   bool
}

type Manager struct {
	behaviours []behaviourWrapper
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(b Behaviour) {
	m.behaviours = append(m.behaviours, behaviourWrapper{behaviour: b})
}

// Remove drops b; update order of the others is kept.
func (m *Manager) Remove(b Behaviour) {
	for i := range m.behaviours {
		if m.behaviours[i].behaviour == b {
			m.behaviours = append(m.behaviours[:i], m.behaviours[i+1:]...)
			return
		}
	}
}

// Clear removes all behaviours from the manager
func (m *Manager) Clear() {
	m.behaviours = m.behaviours[:0]
}

func (m *Manager) Len() int {
	return len(m.behaviours)
}

func (m *Manager) UpdateAll(dt float64) {
	for i := range m.behaviours {
		if !m.behaviours[i].started {
			m.behaviours[i].behaviour.Start()
			m.behaviours[i].started = true
		}
		m.behaviours[i].behaviour.Update(dt)
	}
}
