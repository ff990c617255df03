package realtime

import "sync"

// LockView - bir editörün gördüğü kilitli satır kümesi. Tamamen advisory:
// satırı düzenlenemez GÖSTERMEK içindir, sunucu yazmayı engellemez.
// Kendi senderId'sinden gelen frame'ler yok sayılır (kendi kendini kilitleme yok).
type LockView struct {
	mu        sync.RWMutex
	projectID string
	revision  float64
	selfID    string
	locked    map[string]bool
}

func NewLockView(projectID string, revision float64, selfID string) *LockView {
	return &LockView{
		projectID: projectID,
		revision:  revision,
		selfID:    selfID,
		locked:    make(map[string]bool),
	}
}

// Apply - gelen frame'i kilit kümesine işler. Yalnızca aynı proje ve aynı
// revizyon için gelen lineLocked/lineUnlocked dikkate alınır.
func (v *LockView) Apply(msg Message) {
	if msg.ProjectID != v.projectID || msg.Revision != v.revision {
		return
	}
	if msg.SenderID == v.selfID {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	switch msg.Action {
	case ActionLineLocked:
		v.locked[msg.LineID] = true
	case ActionLineUnlocked:
		delete(v.locked, msg.LineID)
	}
}

func (v *LockView) IsLocked(lineID string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.locked[lineID]
}

func (v *LockView) LockedLines() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, 0, len(v.locked))
	for id := range v.locked {
		out = append(out, id)
	}
	return out
}
