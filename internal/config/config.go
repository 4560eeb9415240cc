package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	RAG         RAGConfig                 `json:"rag"`
	Storage     StorageConfig             `json:"storage"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
	Providers   map[string]ProviderConfig `json:"providers"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address"`
	APIKey        string `json:"api_key"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
}

// RAGConfig carries the per-turn orchestration parameters and the fixed
// prompt template pair.
type RAGConfig struct {
	RetrievalTopK     int     `json:"retrieval_topk"`
	MemoryWindow      int     `json:"memory_window"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	RetrievalTimeout  int     `json:"retrieval_timeout_sec"`
	GenerationTimeout int     `json:"generation_timeout_sec"`
	SystemPrompt      string  `json:"system_prompt"`
	UserPrompt        string  `json:"user_prompt"`
	Retriever         string  `json:"retriever"`
	CorpusPath        string  `json:"corpus_path"`
}

type StorageConfig struct {
	Backend          string `json:"backend"`
	ConversationsDir string `json:"conversations_dir"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// DefaultSystemPrompt feeds the generator the recent exchange plus the
// retrieved references. Placeholders are filled by the prompt assembler.
const DefaultSystemPrompt = "You are a friendly AI assistant. " +
	"Respond to the user's input with high-quality, human-like content and follow the instructions in the input as closely as possible." +
	"\n\nBelow is the prior conversation history; base your reply on it so the conversation stays coherent:\n\n{chat_history}" +
	"\n\nBelow are reference documents you may consult to answer the question:\n\n{reference}"

const DefaultUserPrompt = "{question}"

// Load reads configuration from the provided path (defaults to config.json).
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()

	if cfg.Storage.Backend == "file" && !filepath.IsAbs(cfg.Storage.ConversationsDir) {
		cfg.Storage.ConversationsDir = filepath.Join(filepath.Dir(absPath), cfg.Storage.ConversationsDir)
	}

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.BasicConfig.ServerAddress == "" {
		cfg.BasicConfig.ServerAddress = ":8090"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.ConversationsDir == "" {
		cfg.Storage.ConversationsDir = "conversations"
	}
	if cfg.RAG.RetrievalTopK <= 0 {
		cfg.RAG.RetrievalTopK = 5
	}
	if cfg.RAG.MemoryWindow <= 0 {
		cfg.RAG.MemoryWindow = 5
	}
	if cfg.RAG.Temperature == 0 {
		cfg.RAG.Temperature = 0.5
	}
	if cfg.RAG.MaxTokens <= 0 {
		cfg.RAG.MaxTokens = 256
	}
	if cfg.RAG.RetrievalTimeout <= 0 {
		cfg.RAG.RetrievalTimeout = 30
	}
	if cfg.RAG.GenerationTimeout <= 0 {
		cfg.RAG.GenerationTimeout = 120
	}
	if cfg.RAG.SystemPrompt == "" {
		cfg.RAG.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.RAG.UserPrompt == "" {
		cfg.RAG.UserPrompt = DefaultUserPrompt
	}
	if cfg.RAG.Retriever == "" {
		cfg.RAG.Retriever = "web"
	}
}
