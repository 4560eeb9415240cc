package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino-ext/components/tool/googlesearch"
	"github.com/cloudwego/eino/components/tool"

	"ragchat/internal/models"
)

const webSearchTimeout = 10 * time.Second

// WebRetriever answers retrieval requests from web search: Google when
// credentials are configured, DuckDuckGo as the no-token fallback.
type WebRetriever struct {
	google tool.InvokableTool
	duck   tool.InvokableTool
}

func NewWebRetriever(maxResults int) (*WebRetriever, error) {
	googleTool := initGoogleSearch(maxResults)
	duckTool, err := initDuckDuckGo(maxResults)
	if err != nil {
		log.Printf("duckduckgo search disabled: %v", err)
	}
	if googleTool == nil && duckTool == nil {
		return nil, errors.New("no web search provider available")
	}
	return &WebRetriever{google: googleTool, duck: duckTool}, nil
}

func (w *WebRetriever) Search(ctx context.Context, query string, k int) ([]models.ReferenceDoc, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	payloadBytes, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("marshal search params: %w", err)
	}
	payload := string(payloadBytes)

	if w.google != nil {
		if result, err := w.google.InvokableRun(ctx, payload); err == nil {
			return parseSearchResult(result, k), nil
		} else {
			log.Printf("google search failed: %v", err)
		}
	}
	if w.duck != nil {
		if result, err := w.duck.InvokableRun(ctx, payload); err == nil {
			return parseSearchResult(result, k), nil
		} else {
			log.Printf("duckduckgo search failed: %v", err)
		}
	}
	return nil, errors.New("no search provider succeeded")
}

// searchResult tolerates the output shapes of both search tools.
type searchResult struct {
	Results []searchItem `json:"results"`
	Items   []searchItem `json:"items"`
}

type searchItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Summary     string `json:"summary"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
}

func (it searchItem) text() string {
	for _, s := range []string{it.Summary, it.Snippet, it.Description} {
		if s != "" {
			return s
		}
	}
	return ""
}

func parseSearchResult(raw string, k int) []models.ReferenceDoc {
	var parsed searchResult
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		// Not JSON we recognize; surface the raw text as a single document.
		return []models.ReferenceDoc{{
			Title:    "Web search result",
			Contents: "Web search result\n" + raw,
		}}
	}
	items := parsed.Results
	if len(items) == 0 {
		items = parsed.Items
	}
	var docs []models.ReferenceDoc
	for _, item := range items {
		if len(docs) >= k {
			break
		}
		title := item.Title
		if title == "" {
			title = item.URL
		}
		if title == "" {
			title = item.Link
		}
		var b strings.Builder
		b.WriteString(title)
		if text := item.text(); text != "" {
			b.WriteString("\n")
			b.WriteString(text)
		}
		if link := firstNonEmpty(item.URL, item.Link); link != "" {
			b.WriteString("\nSource: ")
			b.WriteString(link)
		}
		docs = append(docs, models.ReferenceDoc{Title: title, Contents: b.String()})
	}
	return docs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func initDuckDuckGo(maxResults int) (tool.InvokableTool, error) {
	return duckduckgo.NewTextSearchTool(context.Background(), &duckduckgo.Config{
		ToolName:   "web_search_ddg",
		ToolDesc:   "DuckDuckGo Search Tool (no token required)",
		MaxResults: maxResults,
		Region:     duckduckgo.RegionWT,
		Timeout:    webSearchTimeout,
	})
}

func initGoogleSearch(maxResults int) tool.InvokableTool {
	googleAPIKey := os.Getenv("GOOGLE_API_KEY")
	googleSearchEngineID := os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
	if googleAPIKey == "" || googleSearchEngineID == "" {
		log.Printf("google search disabled: missing GOOGLE_API_KEY or GOOGLE_SEARCH_ENGINE_ID")
		return nil
	}
	googleTool, err := googlesearch.NewTool(context.Background(), &googlesearch.Config{
		ToolName:       "web_search_google",
		ToolDesc:       "Google Search Tool",
		APIKey:         googleAPIKey,
		SearchEngineID: googleSearchEngineID,
		Lang:           "en",
		Num:            maxResults,
	})
	if err != nil {
		log.Printf("google search disabled: %v", err)
		return nil
	}
	return googleTool
}
