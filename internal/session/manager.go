package session

import (
	"errors"
	"log"
	"sync"
	"time"
)

var (
	ErrAlreadyExists = errors.New("session: call already live")
	ErrNotFound      = errors.New("session: call not found")
)

// stopGrace bounds how long Stop waits for a clean shutdown before
// force-releasing the audio resources.
const stopGrace = 5 * time.Second

// Factory builds a fully wired Session for one call.
type Factory func(callID, callerPhone string) (*Session, error)

// Info is one row of the status snapshot.
type Info struct {
	CallID    string    `json:"call_id"`
	Uptime    float64   `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
}

// Manager is the process-wide registry of live sessions, keyed by call
// id. The mutex guards the map only; per-session work runs outside it.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
}

func NewManager(factory Factory) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// Start creates, registers and launches a session for the call.
func (m *Manager) Start(callID, callerPhone string) (*Session, error) {
	m.mu.Lock()
	if _, ok := m.sessions[callID]; ok {
		m.mu.Unlock()
		return nil, ErrAlreadyExists
	}
	m.mu.Unlock()

	sess, err := m.factory(callID, callerPhone)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, ok := m.sessions[callID]; ok {
		m.mu.Unlock()
		sess.forceRelease()
		return nil, ErrAlreadyExists
	}
	m.sessions[callID] = sess
	m.mu.Unlock()

	if err := sess.Begin(); err != nil {
		m.remove(callID)
		return nil, err
	}

	go func() {
		sess.Run()
		m.remove(callID)
		log.Printf("[session %s] ended", callID)
	}()

	log.Printf("[session %s] started, caller=%s", callID, callerPhone)
	return sess, nil
}

// Stop signals the session and waits up to the grace period for it to
// drain before forcing the audio resources closed.
func (m *Manager) Stop(callID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[callID]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	sess.Stop()
	select {
	case <-sess.Done():
	case <-time.After(stopGrace):
		log.Printf("[session %s] did not stop within %s, forcing release", callID, stopGrace)
		sess.forceRelease()
	}
	m.remove(callID)
	return nil
}

// Status returns a snapshot of the live sessions. Safe to call
// concurrently with Start and Stop.
func (m *Manager) Status() (int, []Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]Info, 0, len(m.sessions))
	for _, sess := range m.sessions {
		infos = append(infos, Info{
			CallID:    sess.CallID(),
			Uptime:    sess.Uptime().Seconds(),
			StartedAt: sess.StartedAt(),
		})
	}
	return len(infos), infos
}

// StopAll drains every live session, used at process shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		if err := m.Stop(id); err != nil && !errors.Is(err, ErrNotFound) {
			log.Printf("[session %s] shutdown stop failed: %v", id, err)
		}
	}
}

func (m *Manager) remove(callID string) {
	m.mu.Lock()
	delete(m.sessions, callID)
	m.mu.Unlock()
}
