package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink - yazilan frame'leri biriktiren test sink'i
type captureSink struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (s *captureSink) WriteMessage(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("yazilamadi")
	}
	s.frames = append(s.frames, data)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *captureSink) last(t *testing.T) Message {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.frames)
	var msg Message
	require.NoError(t, json.Unmarshal(s.frames[len(s.frames)-1], &msg))
	return msg
}

func TestBroadcastExcludesSender(t *testing.T) {
	hub := NewHub()
	room := ConversationID("p1")

	alice := &captureSink{}
	bob := &captureSink{}
	hub.Join(room, "1", alice)
	hub.Join(room, "2", bob)

	hub.Broadcast(Message{Action: ActionLineLocked, ProjectID: "p1", LineID: "LINE-x", SenderID: "1"})

	assert.Equal(t, 0, alice.count())
	require.Equal(t, 1, bob.count())

	got := bob.last(t)
	assert.Equal(t, ActionLineLocked, got.Action)
	assert.Equal(t, "LINE-x", got.LineID)
	assert.Equal(t, "1", got.SenderID)
}

func TestBroadcastFillsConversationID(t *testing.T) {
	hub := NewHub()
	sink := &captureSink{}
	hub.Join(ConversationID("p1"), "2", sink)

	hub.Broadcast(Message{Action: ActionBudgetUpdated, ProjectID: "p1", SenderID: "1"})

	assert.Equal(t, "project#p1", sink.last(t).ConversationID)
}

func TestBroadcastUnknownActionDropped(t *testing.T) {
	hub := NewHub()
	sink := &captureSink{}
	hub.Join(ConversationID("p1"), "2", sink)

	hub.Broadcast(Message{Action: "selfDestruct", ProjectID: "p1", SenderID: "1"})

	assert.Equal(t, 0, sink.count())
}

func TestBroadcastIsolatesRooms(t *testing.T) {
	hub := NewHub()
	inRoom := &captureSink{}
	otherRoom := &captureSink{}
	hub.Join(ConversationID("p1"), "2", inRoom)
	hub.Join(ConversationID("p2"), "3", otherRoom)

	hub.Broadcast(Message{Action: ActionBudgetUpdated, ProjectID: "p1", SenderID: "1"})

	assert.Equal(t, 1, inRoom.count())
	assert.Equal(t, 0, otherRoom.count())
}

func TestBroadcastWriteErrorDoesNotStopOthers(t *testing.T) {
	hub := NewHub()
	room := ConversationID("p1")
	broken := &captureSink{fail: true}
	healthy := &captureSink{}
	hub.Join(room, "2", broken)
	hub.Join(room, "3", healthy)

	hub.Broadcast(Message{Action: ActionBudgetUpdated, ProjectID: "p1", SenderID: "1"})

	assert.Equal(t, 1, healthy.count())
}

func TestJoinLeave(t *testing.T) {
	hub := NewHub()
	room := ConversationID("p1")

	m1 := hub.Join(room, "1", &captureSink{})
	m2 := hub.Join(room, "2", &captureSink{})
	assert.Equal(t, 2, hub.RoomSize(room))

	hub.Leave(room, m1)
	assert.Equal(t, 1, hub.RoomSize(room))

	hub.Leave(room, m2)
	assert.Equal(t, 0, hub.RoomSize(room))
}
