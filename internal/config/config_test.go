package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"basic_config": {"provider": "openai"},
		"providers": {"openai": {"model": "gpt-4o-mini", "api_key": "k"}}
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.BasicConfig.ServerAddress != ":8090" {
		t.Fatalf("server address default missing: %q", cfg.BasicConfig.ServerAddress)
	}
	if cfg.Storage.Backend != "file" {
		t.Fatalf("storage backend default missing: %q", cfg.Storage.Backend)
	}
	if !filepath.IsAbs(cfg.Storage.ConversationsDir) {
		t.Fatalf("conversations dir must resolve relative to the config: %q", cfg.Storage.ConversationsDir)
	}
	if cfg.RAG.RetrievalTopK != 5 || cfg.RAG.MemoryWindow != 5 {
		t.Fatalf("rag defaults missing: %+v", cfg.RAG)
	}
	if cfg.RAG.Temperature != 0.5 || cfg.RAG.MaxTokens != 256 {
		t.Fatalf("generation defaults missing: %+v", cfg.RAG)
	}
	if cfg.RAG.SystemPrompt != DefaultSystemPrompt || cfg.RAG.UserPrompt != DefaultUserPrompt {
		t.Fatalf("prompt defaults missing")
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `{
		"basic_config": {"server_address": ":9000"},
		"rag": {"retrieval_topk": 1, "memory_window": 2, "temperature": 0.1, "max_tokens": 64},
		"storage": {"backend": "sqlite3"},
		"databases": {"sqlite3": {"dsn": "test.db"}}
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.BasicConfig.ServerAddress != ":9000" {
		t.Fatalf("server address overridden: %q", cfg.BasicConfig.ServerAddress)
	}
	if cfg.RAG.RetrievalTopK != 1 || cfg.RAG.MemoryWindow != 2 || cfg.RAG.MaxTokens != 64 {
		t.Fatalf("explicit rag values lost: %+v", cfg.RAG)
	}
	if cfg.Storage.Backend != "sqlite3" {
		t.Fatalf("storage backend lost: %q", cfg.Storage.Backend)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
