package behaviour

// Behaviour is per-frame logic driven by the animation loop. Start runs once,
// right before the first Update. Update receives the elapsed time in seconds
// since the loop started.
type Behaviour interface {
	Start()
	Update(elapsed float64)
}

type behaviourWrapper struct {
	behaviour Behaviour
	started   bool
}

// Manager runs its behaviours in insertion order. It is not safe for
// concurrent use; everything runs on the loop thread.
type Manager struct {
	behaviours []behaviourWrapper
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(behaviour Behaviour) {
	m.behaviours = append(m.behaviours, behaviourWrapper{behaviour: behaviour})
}

// Clear removes all behaviours from the manager
func (m *Manager) Clear() {
	m.behaviours = nil
}

func (m *Manager) Len() int {
	return len(m.behaviours)
}

func (m *Manager) UpdateAll(elapsed float64) {
	for i := range m.behaviours {
		if !m.behaviours[i].started {
			m.behaviours[i].behaviour.Start()
			m.behaviours[i].started = true
		}
		m.behaviours[i].behaviour.Update(elapsed)
	}
}
