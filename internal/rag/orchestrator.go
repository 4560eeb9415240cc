package rag

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"ragchat/internal/models"
	"ragchat/internal/session"
	"ragchat/internal/storage"
)

// Params bounds one turn of the pipeline.
type Params struct {
	TopK              int
	MemoryWindow      int
	Temperature       float64
	MaxTokens         int
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
}

// TurnResult is what the caller gets back for a completed turn.
type TurnResult struct {
	ConversationID string         `json:"conversation_id"`
	Message        models.Message `json:"message"`
}

// SummaryIndex is an optional fast path for conversation listings,
// refreshed on every save. The store stays authoritative.
type SummaryIndex interface {
	Put(ctx context.Context, summary storage.Summary) error
	List(ctx context.Context) ([]storage.Summary, error)
}

// Orchestrator owns the live conversation states and runs the
// retrieve → assemble → generate → persist pipeline for each turn.
// Turns on the same conversation id are serialized by a per-id mutex;
// different ids run in parallel.
type Orchestrator struct {
	store     storage.Store
	retriever Retriever
	generator Generator
	assembler PromptAssembler
	params    Params
	index     SummaryIndex

	mu       sync.Mutex
	sessions map[string]*session.State
	locks    map[string]*sync.Mutex
}

func NewOrchestrator(store storage.Store, r Retriever, g Generator, p PromptAssembler, params Params) *Orchestrator {
	return &Orchestrator{
		store:     store,
		retriever: r,
		generator: g,
		assembler: p,
		params:    params,
		sessions:  make(map[string]*session.State),
		locks:     make(map[string]*sync.Mutex),
	}
}

// SetSummaryIndex attaches the optional listing cache.
func (o *Orchestrator) SetSummaryIndex(index SummaryIndex) {
	o.index = index
}

// StartConversation registers a fresh empty conversation and returns its
// record. Nothing is persisted until the first completed turn.
func (o *Orchestrator) StartConversation() *models.ConversationRecord {
	state := session.New()
	o.mu.Lock()
	o.sessions[state.ID()] = state
	o.mu.Unlock()
	return state.Record()
}

// Conversation returns the current snapshot for an id, loading it from the
// store when it is not live in memory.
func (o *Orchestrator) Conversation(ctx context.Context, id string) (*models.ConversationRecord, error) {
	state, err := o.stateFor(ctx, id)
	if err != nil {
		return nil, err
	}
	lock := o.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	return state.Record(), nil
}

// List produces conversation summaries, newest first. The summary index is
// consulted first when present; an empty or failing index falls back to a
// full store scan.
func (o *Orchestrator) List(ctx context.Context) ([]storage.Summary, error) {
	if o.index != nil {
		summaries, err := o.index.List(ctx)
		if err != nil {
			log.Printf("summary index unavailable, scanning store: %v", err)
		} else if len(summaries) > 0 {
			return summaries, nil
		}
	}
	records, err := o.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := storage.Summarize(records)
	if o.index != nil {
		for _, s := range summaries {
			if err := o.index.Put(ctx, s); err != nil {
				log.Printf("refresh summary index: %v", err)
				break
			}
		}
	}
	return summaries, nil
}

// SubmitTurn runs one full turn: append the query, window the memory,
// retrieve, assemble, generate, append the reply, persist. A retrieval or
// generation failure aborts the turn with the user message still appended
// in volatile state and nothing persisted for this turn.
func (o *Orchestrator) SubmitTurn(ctx context.Context, conversationID, query string) (*TurnResult, error) {
	state, err := o.stateFor(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	lock := o.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	state.AppendUserMessage(query)

	// Window after the append so it includes the just-submitted query.
	recentMemory := state.MemoryWindow(o.params.MemoryWindow)

	retrievalCtx, cancelRetrieval := context.WithTimeout(ctx, o.params.RetrievalTimeout)
	docs, err := o.retriever.Search(retrievalCtx, query, o.params.TopK)
	cancelRetrieval()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	prompt, err := o.assembler.Render(ctx, PromptInput{
		Question:    query,
		References:  docs,
		ChatHistory: session.FormatHistory(recentMemory),
	})
	if err != nil {
		return nil, fmt.Errorf("assemble prompt: %w", err)
	}

	generationCtx, cancelGeneration := context.WithTimeout(ctx, o.params.GenerationTimeout)
	candidates, err := o.generator.Generate(generationCtx, prompt, o.params.Temperature, o.params.MaxTokens)
	cancelGeneration()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates returned", ErrGeneration)
	}

	state.AppendAssistantMessage(candidates[0], docs)

	state.Touch()
	record := state.Record()
	if err := o.store.Save(ctx, record); err != nil {
		// In-memory state already holds the completed pair; the next
		// successful save will carry it.
		return nil, err
	}
	if o.index != nil {
		summaries := storage.Summarize([]*models.ConversationRecord{record})
		if err := o.index.Put(ctx, summaries[0]); err != nil {
			log.Printf("update summary index for %s: %v", conversationID, err)
		}
	}

	reply, _ := state.LastMessage()
	return &TurnResult{ConversationID: conversationID, Message: reply}, nil
}

func (o *Orchestrator) stateFor(ctx context.Context, id string) (*session.State, error) {
	o.mu.Lock()
	state, ok := o.sessions[id]
	o.mu.Unlock()
	if ok {
		return state, nil
	}

	record, err := o.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	// Another caller may have loaded it while we read the store.
	if existing, ok := o.sessions[id]; ok {
		return existing, nil
	}
	state = session.FromRecord(record)
	o.sessions[id] = state
	return state, nil
}

func (o *Orchestrator) lockFor(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[id] = lock
	}
	return lock
}
