package budget

import "sync"

type sessionKey struct {
	UserID    uint
	ProjectID string
}

// SessionManager - oturumların yaşam döngüsü sahibi. main'de kurulur ve
// handler'lara açıkça geçirilir; modül seviyesinde singleton yok.
type SessionManager struct {
	mu       sync.Mutex
	store    Store
	sessions map[sessionKey]*Session
}

func NewSessionManager(store Store) *SessionManager {
	return &SessionManager{
		store:    store,
		sessions: make(map[sessionKey]*Session),
	}
}

// Get - kullanıcının proje oturumunu döner, yoksa yükleyip oluşturur
func (m *SessionManager) Get(userID uint, projectID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey{UserID: userID, ProjectID: projectID}
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}

	s := NewSession(m.store, nil)
	if err := s.Load(projectID); err != nil {
		return nil, err
	}
	m.sessions[key] = s
	return s, nil
}

// Drop - oturumu kapatır (proje sayfasından çıkış)
func (m *SessionManager) Drop(userID uint, projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey{UserID: userID, ProjectID: projectID})
}
