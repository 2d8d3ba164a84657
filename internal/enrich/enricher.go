package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/memweave/memweave/internal/adapter"
	"github.com/memweave/memweave/internal/item"
)

// promptTokenBudget caps how much item content is sent to the model.
const promptTokenBudget = 500

const titleSystemPrompt = `You generate short titles for notes.
Reply with a single title of at most eight words. No quotes, no punctuation at the end, no explanation.`

// TagStore is the slice of the item store enrichment needs.
type TagStore interface {
	UpdateTags(id string, tags []string) error
}

// Enricher generates titles for untitled items and writes them back as
// title: annotation tags.
type Enricher struct {
	llm   adapter.LLMAdapter
	store TagStore
	tok   *Tokenizer
	model string
}

// New creates an Enricher.
func New(llm adapter.LLMAdapter, store TagStore, model string) (*Enricher, error) {
	tok, err := NewTokenizer()
	if err != nil {
		return nil, err
	}
	return &Enricher{llm: llm, store: store, tok: tok, model: model}, nil
}

// HasTitle reports whether the item already carries a title annotation.
func HasTitle(it item.Item) bool {
	for _, tag := range it.Tags {
		if strings.HasPrefix(tag, "title:") {
			return true
		}
	}
	return false
}

// Title extracts the title annotation, or "" if absent.
func Title(it item.Item) string {
	for _, tag := range it.Tags {
		if strings.HasPrefix(tag, "title:") {
			return strings.TrimPrefix(tag, "title:")
		}
	}
	return ""
}

// EnrichItem generates and persists a title for the item. Already-titled
// items are left alone. The returned title is empty on a no-op.
func (e *Enricher) EnrichItem(ctx context.Context, it item.Item) (string, error) {
	if HasTitle(it) {
		return "", nil
	}
	content := strings.TrimSpace(it.Content)
	if content == "" {
		return "", nil
	}

	prompt := e.tok.Truncate(content, promptTokenBudget)
	raw, err := e.llm.Complete(ctx, adapter.CompletionRequest{
		SystemPrompt: titleSystemPrompt,
		UserMessage:  prompt,
		Model:        e.model,
		MaxTokens:    64,
		Temperature:  0.2,
	})
	if err != nil {
		return "", fmt.Errorf("enrich: generate title for %s: %w", it.ID, err)
	}

	title := cleanTitle(raw)
	if title == "" {
		return "", nil
	}

	tags := append(append([]string{}, it.Tags...), "title:"+title)
	if err := e.store.UpdateTags(it.ID, tags); err != nil {
		return "", fmt.Errorf("enrich: save title for %s: %w", it.ID, err)
	}
	return title, nil
}

// EnrichAll titles every untitled item, continuing past individual
// failures. It returns the number of items titled and the first error.
func (e *Enricher) EnrichAll(ctx context.Context, items []item.Item) (int, error) {
	var n int
	var firstErr error
	for _, it := range items {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		title, err := e.EnrichItem(ctx, it)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if title != "" {
			n++
		}
	}
	return n, firstErr
}

// cleanTitle normalises model output into a tag-safe single line.
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.Trim(title, `"'`)
	title = strings.TrimRight(title, ".!")
	return strings.TrimSpace(title)
}
