package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"ragchat/internal/models"
	"ragchat/internal/rag"
)

// Assembler renders the fixed system/user template pair into one prompt
// string. Templates use python-style {placeholders}: the system template
// fills {chat_history} and {reference}, the user template fills {question}.
type Assembler struct {
	template prompt.ChatTemplate
}

func New(systemTemplate, userTemplate string) *Assembler {
	return &Assembler{
		template: prompt.FromMessages(schema.FString,
			schema.SystemMessage(systemTemplate),
			schema.UserMessage(userTemplate),
		),
	}
}

func (a *Assembler) Render(ctx context.Context, in rag.PromptInput) (string, error) {
	messages, err := a.template.Format(ctx, map[string]any{
		"question":     in.Question,
		"reference":    FormatReferences(in.References),
		"chat_history": in.ChatHistory,
	})
	if err != nil {
		return "", fmt.Errorf("format prompt template: %w", err)
	}
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}

// FormatReferences renders retrieved documents as a numbered block. The
// first line of each document's contents is its header.
func FormatReferences(docs []models.ReferenceDoc) string {
	var b strings.Builder
	for i, doc := range docs {
		title := doc.Title
		if title == "" {
			title = doc.Header()
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, title)
		if body := doc.Body(); body != "" {
			b.WriteString(body)
		} else {
			b.WriteString(doc.Contents)
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
