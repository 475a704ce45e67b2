package core

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/symlog/symlog-go/pkg/insight"
	"github.com/symlog/symlog-go/pkg/llm"
	ollamaLLM "github.com/symlog/symlog-go/pkg/llm/ollama"
	openaiLLM "github.com/symlog/symlog-go/pkg/llm/openai"
	"github.com/symlog/symlog-go/pkg/storage"
	mysqlStore "github.com/symlog/symlog-go/pkg/storage/mysql"
	postgresStore "github.com/symlog/symlog-go/pkg/storage/postgres"
	sqliteStore "github.com/symlog/symlog-go/pkg/storage/sqlite"
)

// Client is the main symlog client.
//
// It owns the in-memory store of learned memories and coordinates the
// insight engine around it: full rebuilds from the log history, per-entry
// analysis, user feedback, food-safety queries, and browsing. Persistence
// is write-through: every mutation is computed in memory first and then
// pushed to the storage backend, so a storage failure costs durability,
// never computed state.
//
// There is exactly one logical writer (the local user); the mutex
// serializes access so concurrent reads during a rebuild stay consistent.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	client.Rebuild(ctx, logs, treatments)
//	resp, _ := client.Analyze(ctx, &entry)
type Client struct {
	config *Config

	// store is the persistence backend.
	store storage.MemoryStore

	// memories is the in-memory store all queries run against.
	memories *insight.Store

	// allergies is the static allergy table for food-safety queries.
	allergies []insight.AllergyRecord

	builder   *insight.Builder
	generator *insight.Generator
	resolver  *insight.Resolver
	narrator  *insight.Narrator

	// node generates unique memory IDs.
	node *snowflake.Node

	mu sync.RWMutex
}

// NewClient creates a symlog client from the given configuration, opening
// the storage backend and loading any persisted memories into the
// in-memory store. The text-generation provider is optional: with provider
// "none" (or empty) the engine runs template-only.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, NewEngineError("NewClient", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := initStorage(&cfg.Store)
	if err != nil {
		return nil, err
	}

	provider, err := initLLM(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewEngineError("NewClient", err)
	}

	minOcc := cfg.Engine.MinOccurrences
	if minOcc <= 0 {
		minOcc = 2
	}

	client := &Client{
		config: cfg,
		store:  store,
		builder: insight.NewBuilder(&insight.BuilderConfig{
			DetailLevel:    cfg.Engine.DetailLevelValue(),
			MinOccurrences: minOcc,
			ReliefWindow:   cfg.Engine.ReliefWindow(),
		}),
		generator: insight.NewGenerator(&insight.GeneratorConfig{
			MinOccurrences: minOcc,
			MaxQuestions:   cfg.Engine.MaxQuestions,
		}),
		resolver: insight.NewResolver(minOcc),
		narrator: insight.NewNarrator(provider, cfg.Engine.NarratorTimeout()),
		memories: insight.NewStore(),
		node:     node,
	}

	if err := client.loadPersisted(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

// loadPersisted fills the in-memory store from the backend.
func (c *Client) loadPersisted(ctx context.Context) error {
	records, err := c.store.GetAll(ctx)
	if err != nil {
		return NewEngineError("NewClient", err)
	}
	for _, r := range records {
		c.memories.Upsert(fromRecord(r))
	}
	return nil
}

// Rebuild recomputes the full memory store from the complete log history
// and the tracked treatment list, carrying user feedback over for matching
// identifying tuples, then persists the result.
//
// Rebuilds are idempotent and safe to re-run at any time. Returns the
// number of memories in the rebuilt store. A persistence failure is
// returned, but the rebuilt in-memory state is kept.
func (c *Client) Rebuild(ctx context.Context, logs []insight.LogEntry, treatments []insight.TrackedItem) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	rebuilt := c.builder.BuildWithPrevious(c.memories, logs, treatments)
	for _, m := range rebuilt.All() {
		if m.ID == 0 {
			m.ID = c.node.Generate().Int64()
			rebuilt.Upsert(m)
		}
	}
	c.memories = rebuilt

	records := make([]*storage.Record, 0, rebuilt.Len())
	for _, m := range rebuilt.All() {
		records = append(records, toRecord(m))
	}
	if err := c.store.ReplaceAll(ctx, records); err != nil {
		return rebuilt.Len(), NewEngineError("Rebuild", err)
	}
	return rebuilt.Len(), nil
}

// Analyze processes a newly logged entry: it folds the entry's own
// cause/symptom co-occurrences into the store (promoting first-time
// observations into tentative, still-suppressed memories), generates the
// ranked response, and attaches narrator text when the optional
// collaborator is configured and responsive.
//
// A storage failure while persisting the touched memories is returned
// alongside the computed response; the response itself is always valid.
func (c *Client) Analyze(ctx context.Context, entry *insight.LogEntry) (*insight.Response, error) {
	if entry == nil {
		return nil, NewEngineError("Analyze", ErrInvalidInput)
	}

	c.mu.Lock()
	resp := c.generator.Generate(entry, c.memories)
	touched := c.generator.Observe(entry, c.memories)
	for _, m := range touched {
		if m.ID == 0 {
			m.ID = c.node.Generate().Int64()
			c.memories.Upsert(m)
		}
	}
	c.mu.Unlock()

	resp.Summary = c.narrator.Summarize(ctx, entry, resp)

	var firstErr error
	for _, m := range touched {
		if err := c.store.Upsert(ctx, toRecord(m)); err != nil && firstErr == nil {
			firstErr = NewEngineError("Analyze", err)
		}
	}
	return resp, firstErr
}

// ApplyFeedback applies one discrete user signal to the memory with the
// given ID and persists the change. The target memory is identified
// explicitly; the client never guesses which memory feedback refers to.
func (c *Client) ApplyFeedback(ctx context.Context, memoryID int64, fb insight.Feedback) (*insight.Memory, error) {
	c.mu.Lock()
	m, err := c.memories.GetByID(memoryID)
	if err != nil {
		c.mu.Unlock()
		return nil, NewEngineError("ApplyFeedback", ErrNotFound)
	}
	if err := insight.ApplyFeedback(m, fb); err != nil {
		c.mu.Unlock()
		return nil, NewEngineError("ApplyFeedback", err)
	}
	record := toRecord(m)
	c.mu.Unlock()

	if err := c.store.Upsert(ctx, record); err != nil {
		return m, NewEngineError("ApplyFeedback", err)
	}
	return m, nil
}

// CheckFood answers "can I eat X?" from the configured allergy list and
// the learned trigger memories. Read-only and idempotent.
func (c *Client) CheckFood(ctx context.Context, name string) (*insight.FoodSafetyResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolver.CheckFood(name, c.allergies, c.memories), nil
}

// SetAllergies replaces the static allergy table used by CheckFood.
func (c *Client) SetAllergies(allergies []insight.AllergyRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allergies = allergies
}

// Memories returns learned memories for the insights browser, sorted by
// confidence score descending. By default only visible memories (active
// and at or above the occurrence threshold) are returned; options widen
// or narrow the view.
func (c *Client) Memories(opts ...MemoriesOption) []*insight.Memory {
	options := applyMemoriesOptions(opts)

	c.mu.RLock()
	defer c.mu.RUnlock()

	minOcc := c.generator.Config().MinOccurrences
	out := make([]*insight.Memory, 0, c.memories.Len())
	for _, m := range c.memories.All() {
		if options.Kind != "" && m.Kind != options.Kind {
			continue
		}
		if !options.IncludeInactive && !m.IsActive {
			continue
		}
		if !options.IncludeSuppressed && m.OccurrenceCount < minOcc {
			continue
		}
		out = append(out, m)
	}
	insight.SortByConfidence(out)
	if options.Limit > 0 && len(out) > options.Limit {
		out = out[:options.Limit]
	}
	return out
}

// Close releases the storage backend and the text-generation provider.
func (c *Client) Close() error {
	var firstErr error
	if err := c.store.Close(); err != nil {
		firstErr = NewEngineError("Close", err)
	}
	if err := c.narrator.CloseProvider(); err != nil && firstErr == nil {
		firstErr = NewEngineError("Close", err)
	}
	return firstErr
}

// initStorage opens the configured persistence backend.
func initStorage(cfg *StoreConfig) (storage.MemoryStore, error) {
	switch cfg.Provider {
	case "", "sqlite":
		sc := cfg.SQLite
		if sc == nil {
			sc = &SQLiteConfig{DBPath: "./symlog.db"}
		}
		store, err := sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:    sc.DBPath,
			TableName: sc.TableName,
		})
		if err != nil {
			return nil, NewEngineError("NewClient", err)
		}
		return store, nil
	case "postgres":
		if cfg.SQL == nil {
			return nil, NewEngineError("NewClient", ErrInvalidConfig)
		}
		store, err := postgresStore.NewClient(&postgresStore.Config{
			Host:      cfg.SQL.Host,
			Port:      cfg.SQL.Port,
			User:      cfg.SQL.User,
			Password:  cfg.SQL.Password,
			DBName:    cfg.SQL.DBName,
			TableName: cfg.SQL.TableName,
			SSLMode:   cfg.SQL.SSLMode,
		})
		if err != nil {
			return nil, NewEngineError("NewClient", err)
		}
		return store, nil
	case "mysql":
		if cfg.SQL == nil {
			return nil, NewEngineError("NewClient", ErrInvalidConfig)
		}
		store, err := mysqlStore.NewClient(&mysqlStore.Config{
			Host:      cfg.SQL.Host,
			Port:      cfg.SQL.Port,
			User:      cfg.SQL.User,
			Password:  cfg.SQL.Password,
			DBName:    cfg.SQL.DBName,
			TableName: cfg.SQL.TableName,
		})
		if err != nil {
			return nil, NewEngineError("NewClient", err)
		}
		return store, nil
	default:
		return nil, NewEngineError("NewClient", ErrInvalidConfig)
	}
}

// initLLM builds the optional text-generation provider. Returns nil for
// provider "none" or empty, which leaves the narrator template-only.
func initLLM(cfg *LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "openai":
		provider, err := openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, NewEngineError("NewClient", err)
		}
		return provider, nil
	case "ollama":
		provider, err := ollamaLLM.NewClient(&ollamaLLM.Config{
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, NewEngineError("NewClient", err)
		}
		return provider, nil
	default:
		return nil, NewEngineError("NewClient", ErrInvalidConfig)
	}
}
