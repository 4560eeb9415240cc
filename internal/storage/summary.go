package storage

import (
	"sort"

	"ragchat/internal/models"
)

// Summary is a listing entry for one stored conversation.
type Summary struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Timestamp models.Timestamp `json:"timestamp"`
}

const titleRuneLimit = 20

// Summarize orders records by last-save time descending and derives a
// display title from the first user message, falling back to the save
// timestamp for conversations with no user message.
func Summarize(records []*models.ConversationRecord) []Summary {
	summaries := make([]Summary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, Summary{
			ID:        rec.ID,
			Title:     titleFor(rec),
			Timestamp: rec.Timestamp,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Timestamp.After(summaries[j].Timestamp.Time)
	})
	return summaries
}

func titleFor(rec *models.ConversationRecord) string {
	for _, msg := range rec.Messages {
		if msg.Role != models.RoleUser {
			continue
		}
		runes := []rune(msg.Content)
		if len(runes) > titleRuneLimit {
			return string(runes[:titleRuneLimit]) + "..."
		}
		return msg.Content
	}
	return rec.Timestamp.Format(models.TimeLayout)
}
