package session

import (
	"strings"

	"github.com/google/uuid"

	"ragchat/internal/models"
)

// State is the in-memory view of one conversation. It owns the display
// history and the text-only memory history and guarantees the two grow in
// lockstep. State has no locking of its own; the orchestrator serializes
// turns per conversation id.
type State struct {
	rec *models.ConversationRecord
}

// New starts a fresh conversation with a newly generated unique id and
// empty histories.
func New() *State {
	return &State{
		rec: &models.ConversationRecord{
			ID:            uuid.NewString(),
			Messages:      []models.Message{},
			MemoryHistory: []models.Message{},
		},
	}
}

// FromRecord resumes a conversation from a stored record, replacing any
// prior in-memory view wholesale.
func FromRecord(rec *models.ConversationRecord) *State {
	clone := rec.Clone()
	if clone.Messages == nil {
		clone.Messages = []models.Message{}
	}
	if clone.MemoryHistory == nil {
		clone.MemoryHistory = []models.Message{}
	}
	return &State{rec: clone}
}

func (s *State) ID() string {
	return s.rec.ID
}

// AppendUserMessage appends the query to both histories.
func (s *State) AppendUserMessage(text string) {
	msg := models.Message{Role: models.RoleUser, Content: text}
	s.rec.Messages = append(s.rec.Messages, msg)
	s.rec.MemoryHistory = append(s.rec.MemoryHistory, msg)
}

// AppendAssistantMessage appends the reply with its references to the
// display history and a references-free copy to the memory history.
func (s *State) AppendAssistantMessage(text string, refs []models.ReferenceDoc) {
	s.rec.Messages = append(s.rec.Messages, models.Message{
		Role:       models.RoleAssistant,
		Content:    text,
		References: refs,
	})
	s.rec.MemoryHistory = append(s.rec.MemoryHistory, models.Message{
		Role:    models.RoleAssistant,
		Content: text,
	})
}

// MemoryWindow returns the most recent min(2n, len) memory history entries
// in original order. n counts user/assistant pairs; n <= 0 returns nothing.
func (s *State) MemoryWindow(n int) []models.Message {
	if n <= 0 {
		return nil
	}
	history := s.rec.MemoryHistory
	limit := 2 * n
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]models.Message, len(history))
	copy(out, history)
	return out
}

// Record returns a deep copy of the current conversation snapshot.
func (s *State) Record() *models.ConversationRecord {
	return s.rec.Clone()
}

// Touch stamps the record with the current wall-clock time. Called right
// before a save so the timestamp reflects the most recent successful save.
func (s *State) Touch() {
	s.rec.Timestamp = models.Now()
}

// LastMessage returns the newest display history entry.
func (s *State) LastMessage() (models.Message, bool) {
	if len(s.rec.Messages) == 0 {
		return models.Message{}, false
	}
	return s.rec.Messages[len(s.rec.Messages)-1], true
}

// FormatHistory renders memory entries into the chat-history blob fed to
// the prompt: one "Human:"/"Assistant:" line pair per entry.
func FormatHistory(msgs []models.Message) string {
	var b strings.Builder
	for _, msg := range msgs {
		label := "Assistant"
		if msg.Role == models.RoleUser {
			label = "Human"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
