package synth

import "log/slog"

// BuildFunc constructs a voice for a spec.
type BuildFunc func(spec VoiceSpec) *Voice

// VoiceManager owns the active voices: an insertion-ordered pool of
// non-sustained voices capped at a fixed polyphony, plus a single sustain slot.
//
// VoiceManager is not safe for concurrent use; Engine serializes access.
type VoiceManager struct {
	capacity int
	build    BuildFunc
	pool     []*Voice
	held     *Voice
}

// NewVoiceManager creates a manager that builds voices with build.
func NewVoiceManager(capacity int, build BuildFunc) *VoiceManager {
	if capacity < 1 {
		capacity = MaxPolyphony
	}
	return &VoiceManager{
		capacity: capacity,
		build:    build,
		pool:     make([]*Voice, 0, capacity),
	}
}

// Allocate builds and registers a voice for spec. A non-sustained request on
// a full pool first stops the oldest pooled voice; a sustained request first
// stops the current sustain slot occupant.
func (m *VoiceManager) Allocate(spec VoiceSpec) *Voice {
	if spec.Sustained {
		m.StopSustained()
	} else if len(m.pool) >= m.capacity {
		oldest := m.pool[0]
		copy(m.pool, m.pool[1:])
		m.pool = m.pool[:len(m.pool)-1]
		oldest.Stop()
		slog.Debug("voice stolen", "id", oldest.id, "freq", oldest.freq)
	}

	v := m.build(spec)
	if v == nil {
		return nil
	}
	if spec.Sustained {
		m.held = v
	} else {
		m.pool = append(m.pool, v)
	}
	return v
}

// Complete handles a voice's natural end: it releases the voice's nodes
// and removes it from whichever collection holds it. Unknown or already
// removed ids are ignored.
func (m *VoiceManager) Complete(id VoiceID) bool {
	if m.held != nil && m.held.id == id {
		m.held.Stop()
		m.held = nil
		return true
	}
	for i, v := range m.pool {
		if v.id == id {
			v.Stop()
			m.pool = append(m.pool[:i], m.pool[i+1:]...)
			return true
		}
	}
	return false
}

// StopSustained stops and clears the sustain slot.
func (m *VoiceManager) StopSustained() bool {
	if m.held == nil {
		return false
	}
	m.held.Stop()
	m.held = nil
	return true
}

// StopAll tears down every voice.
func (m *VoiceManager) StopAll() {
	m.StopSustained()
	for _, v := range m.pool {
		v.Stop()
	}
	m.pool = m.pool[:0]
}

// ActiveCount returns the number of pooled (non-sustained) voices.
func (m *VoiceManager) ActiveCount() int {
	return len(m.pool)
}

// Capacity returns the pool size limit.
func (m *VoiceManager) Capacity() int {
	return m.capacity
}

// Sustained returns the sustain slot occupant, or nil.
func (m *VoiceManager) Sustained() *Voice {
	return m.held
}

// Pool returns the pooled voices, oldest first.
func (m *VoiceManager) Pool() []*Voice {
	out := make([]*Voice, len(m.pool))
	copy(out, m.pool)
	return out
}

// Voices returns every registered voice: the pool, then the sustain slot.
func (m *VoiceManager) Voices() []*Voice {
	out := m.Pool()
	if m.held != nil {
		out = append(out, m.held)
	}
	return out
}
