package realtime

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"mylg-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// wsConn - websocket.Conn'u Sink'e sarar; fiber websocket bağlantısına
// aynı anda iki goroutine yazamaz, yazmalar mutex'le sıralanır
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) WriteMessage(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// UpgradeMiddleware - /ws sadece websocket upgrade isteklerini kabul eder
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			// Upgrade sonrası fiber context'i ölür, kimliği locals'a taşı
			c.Locals("ws_user_id", c.Locals(auth.CtxUserIDKey))
			c.Locals("ws_project_id", c.Query("projectId"))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// WebSocketHandler - GET /ws?projectId=...&token=...
// Bağlanan istemci projenin conversation odasına katılır; gönderdiği her
// geçerli frame odadaki diğer üyelere aynen aktarılır. Bozuk JSON sessizce
// düşürülür. Bağlantı koparken kilit temizliği YAPILMAZ: unlock frame'i
// gönderilmeden kapanan bağlantının kilidi ancak sahibi yeniden bağlanıp
// çözerse açılır.
func WebSocketHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		projectID, _ := c.Locals("ws_project_id").(string)
		if projectID == "" {
			c.Close()
			return
		}

		senderID := ""
		if uid, ok := c.Locals("ws_user_id").(uint); ok {
			senderID = strconv.FormatUint(uint64(uid), 10)
		}

		conversationID := ConversationID(projectID)
		sink := &wsConn{conn: c}
		m := hub.Join(conversationID, senderID, sink)
		defer hub.Leave(conversationID, m)

		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}

			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue // parse hatası yok sayılır
			}
			if !msg.known() {
				log.Printf("Websocket mesajı yok sayıldı: action=%s", msg.Action)
				continue
			}

			// senderId istemci beyanı değil, bağlantı kimliğidir
			msg.SenderID = senderID
			if msg.ConversationID == "" {
				msg.ConversationID = conversationID
			}
			hub.Broadcast(msg)
		}
	})
}
