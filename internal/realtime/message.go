package realtime

import "encoding/json"

type Action string

const (
	ActionBudgetUpdated   Action = "budgetUpdated"
	ActionLineLocked      Action = "lineLocked"
	ActionLineUnlocked    Action = "lineUnlocked"
	ActionTimelineUpdated Action = "timelineUpdated"
)

// Message - paylaşılan soket üzerindeki tek frame. Tüm action tipleri aynı
// gövdeyi kullanır; alıcılar tanımadığı action'ı yok sayar.
type Message struct {
	Action         Action          `json:"action"`
	ProjectID      string          `json:"projectId"`
	LineID         string          `json:"lineId,omitempty"`
	Title          string          `json:"title,omitempty"`
	Revision       float64         `json:"revision,omitempty"`
	Total          float64         `json:"total,omitempty"`
	Events         json.RawMessage `json:"events,omitempty"`
	ConversationID string          `json:"conversationId"`
	Username       string          `json:"username"`
	SenderID       string          `json:"senderId"`
}

func (m Message) known() bool {
	switch m.Action {
	case ActionBudgetUpdated, ActionLineLocked, ActionLineUnlocked, ActionTimelineUpdated:
		return true
	}
	return false
}

// ConversationID - soket odası anahtarı, her zaman project#<projectId>
func ConversationID(projectID string) string {
	return "project#" + projectID
}
