package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"ragchat/internal/config"
)

// Generator backs the orchestrator's Generator interface with an eino chat
// model selected by provider name.
type Generator struct {
	chatModel model.BaseChatModel
}

func NewGenerator(ctx context.Context, cfg *config.Config) (*Generator, error) {
	providerName := cfg.BasicConfig.Provider
	provCfg, ok := cfg.Providers[providerName]
	if !ok {
		return nil, fmt.Errorf("provider %s not configured", providerName)
	}
	modelName := cfg.BasicConfig.Model
	if modelName == "" {
		modelName = provCfg.Model
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch providerName {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   modelName,
			APIKey:  provCfg.APIKey,
		})
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: provCfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    provCfg.APIKey,
			Model:     modelName,
			BaseURL:   baseURLPtr,
			MaxTokens: cfg.RAG.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", providerName)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", providerName, err)
	}
	return &Generator{chatModel: chatModel}, nil
}

// Generate runs the assembled prompt through the chat model and returns
// the candidate completions, best first.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) ([]string, error) {
	resp, err := g.chatModel.Generate(ctx,
		[]*schema.Message{schema.UserMessage(prompt)},
		model.WithTemperature(float32(temperature)),
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("chat model generate: %w", err)
	}
	if resp == nil {
		return nil, errors.New("chat model returned no message")
	}
	return []string{resp.Content}, nil
}
