package session

import (
	"fmt"
	"testing"

	"ragchat/internal/models"
)

func TestNewSessionEmptyAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		state := New()
		rec := state.Record()
		if len(rec.Messages) != 0 || len(rec.MemoryHistory) != 0 {
			t.Fatalf("new session not empty: %#v", rec)
		}
		if rec.ID == "" || seen[rec.ID] {
			t.Fatalf("id not unique: %q", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestAppendKeepsHistoriesInLockstep(t *testing.T) {
	state := New()
	refs := []models.ReferenceDoc{{Title: "Doc1", Contents: "header\nbody1"}}

	state.AppendUserMessage("Hi")
	state.AppendAssistantMessage("Hello back", refs)

	rec := state.Record()
	if len(rec.Messages) != len(rec.MemoryHistory) {
		t.Fatalf("histories diverged: %d vs %d", len(rec.Messages), len(rec.MemoryHistory))
	}
	last := rec.Messages[len(rec.Messages)-1]
	if last.Role != models.RoleAssistant || last.References == nil {
		t.Fatalf("display entry missing references: %#v", last)
	}
	lastMemory := rec.MemoryHistory[len(rec.MemoryHistory)-1]
	if lastMemory.References != nil {
		t.Fatalf("memory entry must not carry references: %#v", lastMemory)
	}
	if lastMemory.Content != "Hello back" {
		t.Fatalf("memory content mismatch: %q", lastMemory.Content)
	}
}

func TestMemoryWindow(t *testing.T) {
	state := New()
	for i := 0; i < 5; i++ {
		state.AppendUserMessage(fmt.Sprintf("q%d", i))
		state.AppendAssistantMessage(fmt.Sprintf("a%d", i), nil)
	}

	if got := state.MemoryWindow(0); len(got) != 0 {
		t.Fatalf("window(0) should be empty, got %d", len(got))
	}
	if got := state.MemoryWindow(-1); len(got) != 0 {
		t.Fatalf("negative window should be empty, got %d", len(got))
	}

	window := state.MemoryWindow(2)
	if len(window) != 4 {
		t.Fatalf("window(2) length = %d, want 4", len(window))
	}
	want := []string{"q3", "a3", "q4", "a4"}
	for i, msg := range window {
		if msg.Content != want[i] {
			t.Fatalf("window order wrong at %d: %q != %q", i, msg.Content, want[i])
		}
	}

	// More pairs requested than exist: the whole history comes back.
	if got := state.MemoryWindow(50); len(got) != 10 {
		t.Fatalf("oversized window length = %d, want 10", len(got))
	}
}

func TestMemoryWindowIncludesUnpairedQuery(t *testing.T) {
	state := New()
	state.AppendUserMessage("only question")
	window := state.MemoryWindow(3)
	if len(window) != 1 || window[0].Content != "only question" {
		t.Fatalf("unexpected window: %#v", window)
	}
}

func TestFromRecordReplacesWholesale(t *testing.T) {
	rec := &models.ConversationRecord{
		ID: "resumed",
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "Hi"},
			{Role: models.RoleAssistant, Content: "Hello"},
		},
		MemoryHistory: []models.Message{
			{Role: models.RoleUser, Content: "Hi"},
			{Role: models.RoleAssistant, Content: "Hello"},
		},
	}
	state := FromRecord(rec)
	if state.ID() != "resumed" {
		t.Fatalf("wrong id: %s", state.ID())
	}
	// Mutating the state must not touch the source record.
	state.AppendUserMessage("more")
	if len(rec.Messages) != 2 {
		t.Fatalf("source record mutated: %d messages", len(rec.Messages))
	}
}

func TestFormatHistory(t *testing.T) {
	msgs := []models.Message{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleAssistant, Content: "Hello back"},
	}
	got := FormatHistory(msgs)
	want := "Human: Hi\n\nAssistant: Hello back\n\n"
	if got != want {
		t.Fatalf("blob mismatch:\n%q\nwant\n%q", got, want)
	}
	if FormatHistory(nil) != "" {
		t.Fatalf("empty history should render empty blob")
	}
}
