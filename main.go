package main

import (
	"context"
	"log"
	"os"
	"time"

	"ragchat/internal/api"
	"ragchat/internal/cache"
	"ragchat/internal/config"
	"ragchat/internal/prompt"
	"ragchat/internal/provider"
	"ragchat/internal/rag"
	"ragchat/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("RAGCHAT_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("open conversation store: %v", err)
	}
	defer store.Close()

	summaryCache, err := cache.New(cfg)
	if err != nil {
		log.Fatalf("create summary cache: %v", err)
	}
	if summaryCache != nil {
		defer summaryCache.Close()
	}

	ctx := context.Background()
	generator, err := provider.NewGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("init generator: %v", err)
	}

	var retriever rag.Retriever
	switch cfg.RAG.Retriever {
	case "corpus":
		retriever, err = provider.NewCorpusRetriever(cfg.RAG.CorpusPath)
	default:
		retriever, err = provider.NewWebRetriever(cfg.RAG.RetrievalTopK)
	}
	if err != nil {
		log.Fatalf("init retriever: %v", err)
	}

	assembler := prompt.New(cfg.RAG.SystemPrompt, cfg.RAG.UserPrompt)

	orchestrator := rag.NewOrchestrator(store, retriever, generator, assembler, rag.Params{
		TopK:              cfg.RAG.RetrievalTopK,
		MemoryWindow:      cfg.RAG.MemoryWindow,
		Temperature:       cfg.RAG.Temperature,
		MaxTokens:         cfg.RAG.MaxTokens,
		RetrievalTimeout:  time.Duration(cfg.RAG.RetrievalTimeout) * time.Second,
		GenerationTimeout: time.Duration(cfg.RAG.GenerationTimeout) * time.Second,
	})
	if summaryCache != nil {
		orchestrator.SetSummaryIndex(summaryCache)
	}

	handlers := api.NewHandler(orchestrator, cfg.BasicConfig.APIKey)
	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
