package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"ragchat/internal/models"
)

// CorpusRetriever serves retrieval requests from a local JSONL corpus,
// one {"id","title","contents"} document per line. Ranking is plain term
// overlap; the corpus is meant for small local knowledge bases and tests.
type CorpusRetriever struct {
	docs   []models.ReferenceDoc
	tokens [][]string
}

func NewCorpusRetriever(path string) (*CorpusRetriever, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer file.Close()

	r := &CorpusRetriever{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var entry struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Contents string `json:"contents"`
		}
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("corpus %s line %d: %w", path, line, err)
		}
		doc := models.ReferenceDoc{Title: entry.Title, Contents: entry.Contents}
		if doc.Title == "" {
			doc.Title = doc.Header()
		}
		r.docs = append(r.docs, doc)
		r.tokens = append(r.tokens, tokenize(entry.Title+" "+entry.Contents))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return r, nil
}

func (r *CorpusRetriever) Search(ctx context.Context, query string, k int) ([]models.ReferenceDoc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || k <= 0 {
		return nil, nil
	}
	querySet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = struct{}{}
	}

	type scored struct {
		idx   int
		score int
	}
	var ranked []scored
	for i, docTokens := range r.tokens {
		seen := make(map[string]struct{})
		score := 0
		for _, t := range docTokens {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if _, ok := querySet[t]; ok {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{idx: i, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	docs := make([]models.ReferenceDoc, 0, len(ranked))
	for _, s := range ranked {
		docs = append(docs, r.docs[s.idx])
	}
	return docs, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
