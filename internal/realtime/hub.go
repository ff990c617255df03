package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Sink - bir bağlantıya frame yazan taraf. Testlerde kanal, canlıda websocket.
type Sink interface {
	WriteMessage(data []byte) error
}

type member struct {
	senderID string
	sink     Sink
}

// Hub - conversation bazlı yayın merkezi. Sunucu tarafında kilit tablosu YOK:
// lineLocked/lineUnlocked dahil her frame sadece odadaki diğer üyelere aktarılır,
// zorlamayı kimse yapmaz (advisory protokol). main'de kurulur, handler'lara
// açıkça geçirilir.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*member]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*member]bool)}
}

// Join - üyeyi odaya ekler; dönen handle Leave ile kapatılır
func (h *Hub) Join(conversationID, senderID string, sink Sink) *member {
	h.mu.Lock()
	defer h.mu.Unlock()

	m := &member{senderID: senderID, sink: sink}
	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[*member]bool)
	}
	h.rooms[conversationID][m] = true
	return m
}

func (h *Hub) Leave(conversationID string, m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[conversationID]; ok {
		delete(room, m)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// Broadcast - frame'i odadaki göndericisi dışındaki tüm üyelere iletir.
// Yazma hatası o üyeyi etkilemez, loglanıp geçilir.
func (h *Hub) Broadcast(msg Message) {
	if !msg.known() {
		log.Printf("Tanınmayan websocket action yok sayıldı: %s", msg.Action)
		return
	}
	if msg.ConversationID == "" {
		msg.ConversationID = ConversationID(msg.ProjectID)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Websocket mesajı serileştirilemedi: %v", err)
		return
	}

	h.mu.RLock()
	room := h.rooms[msg.ConversationID]
	members := make([]*member, 0, len(room))
	for m := range room {
		members = append(members, m)
	}
	h.mu.RUnlock()

	for _, m := range members {
		if m.senderID == msg.SenderID {
			continue // kendi yayınını geri alma
		}
		if err := m.sink.WriteMessage(data); err != nil {
			log.Printf("Websocket yazılamadı (%s): %v", msg.ConversationID, err)
		}
	}
}

// RoomSize - test ve durum ucu için
func (h *Hub) RoomSize(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}
