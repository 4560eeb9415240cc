package models

import (
	"fmt"
	"time"
)

// TimeLayout is the wall-clock format used in durable conversation records.
const TimeLayout = "2006-01-02 15:04:05"

// Timestamp marshals as "YYYY-MM-DD HH:MM:SS" to keep stored records
// compatible across backends.
type Timestamp struct {
	time.Time
}

func Now() Timestamp {
	return Timestamp{time.Now()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Format(TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp must be a string, got %s", s)
	}
	s = s[1 : len(s)-1]
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// ConversationRecord is one durable conversation snapshot. Messages holds the
// full display history including retrieval references; MemoryHistory is the
// text-only projection fed back to the generator as context. The two grow in
// lockstep, one user/assistant pair per completed turn.
type ConversationRecord struct {
	ID            string    `json:"id"`
	Timestamp     Timestamp `json:"timestamp"`
	Messages      []Message `json:"messages"`
	MemoryHistory []Message `json:"memory_chat_history"`
}

// Clone returns a deep copy of the record so callers can hand snapshots out
// without sharing the underlying slices.
func (r *ConversationRecord) Clone() *ConversationRecord {
	if r == nil {
		return nil
	}
	out := &ConversationRecord{
		ID:        r.ID,
		Timestamp: r.Timestamp,
	}
	if r.Messages != nil {
		out.Messages = make([]Message, len(r.Messages))
		for i, m := range r.Messages {
			out.Messages[i] = m
			if m.References != nil {
				refs := make([]ReferenceDoc, len(m.References))
				copy(refs, m.References)
				out.Messages[i].References = refs
			}
		}
	}
	if r.MemoryHistory != nil {
		out.MemoryHistory = make([]Message, len(r.MemoryHistory))
		copy(out.MemoryHistory, r.MemoryHistory)
	}
	return out
}
