// Package gen produces training examples from the recipe catalog: randomized
// request templates are rendered to text, parsed back into constraints, and
// paired with catalog rows that satisfy them. Single-turn examples use the
// instruct format, multi-turn examples the chat-message format.
package gen

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/platewise/mealparse/internal/parse"
	"github.com/platewise/mealparse/internal/store"
)

// Opts controls a generation run.
type Opts struct {
	Examples int // examples to produce
	Results  int // catalog rows listed per example
	Seed     int64
}

// Example is one single-turn training example.
type Example struct {
	ID          string            `json:"id"`
	Instruction string            `json:"instruction"`
	Input       string            `json:"input"`
	Output      string            `json:"output"`
	Constraints parse.Constraints `json:"constraints"`
	EvidenceIDs []string          `json:"evidence_ids"`
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationExample is one multi-turn training example.
type ConversationExample struct {
	ID          string            `json:"id"`
	Messages    []Message         `json:"messages"`
	Constraints parse.Constraints `json:"constraints"`
	EvidenceIDs []string          `json:"evidence_ids"`
}

// Generator draws templated requests and matching catalog rows.
type Generator struct {
	store  store.Store
	parser *parse.Parser
	rng    *rand.Rand
}

func New(st store.Store, p *parse.Parser, seed int64) *Generator {
	return &Generator{store: st, parser: p, rng: rand.New(rand.NewSource(seed))}
}

// Singles generates single-turn examples. Templates whose filter matches no
// catalog row are retried with fresh random draws, up to five attempts per
// requested example; duplicate evidence sets are skipped.
func (g *Generator) Singles(ctx context.Context, opts Opts) ([]Example, error) {
	var out []Example
	seen := make(map[string]struct{})
	maxAttempts := opts.Examples * 5

	for attempts := 0; len(out) < opts.Examples && attempts < maxAttempts; attempts++ {
		t := singleTemplates[g.rng.Intn(len(singleTemplates))]
		instruction, filter := t(g.rng, opts.Results)

		constraints := g.parser.Parse(instruction)
		if constraints.IsZero() {
			continue
		}

		rows, err := g.store.Sample(ctx, filter, opts.Results)
		if err != nil {
			return nil, fmt.Errorf("sampling catalog: %w", err)
		}
		if len(rows) == 0 {
			continue
		}

		ids := evidenceIDs(rows)
		key := dedupeKey(ids)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, Example{
			ID:          uuid.NewString(),
			Instruction: instruction,
			Output:      renderListing(rows, constraints),
			Constraints: constraints,
			EvidenceIDs: ids,
		})
	}
	return out, nil
}

// Conversations generates multi-turn examples, up to eight attempts per
// requested example.
func (g *Generator) Conversations(ctx context.Context, opts Opts) ([]ConversationExample, error) {
	var out []ConversationExample
	seen := make(map[string]struct{})
	maxAttempts := opts.Examples * 8

	for attempts := 0; len(out) < opts.Examples && attempts < maxAttempts; attempts++ {
		t := conversationTemplates[g.rng.Intn(len(conversationTemplates))]
		turns, filter := t(g.rng, opts.Results)

		constraints := g.parser.ParseConversation(turns)
		if constraints.IsZero() {
			continue
		}

		rows, err := g.store.Sample(ctx, filter, opts.Results)
		if err != nil {
			return nil, fmt.Errorf("sampling catalog: %w", err)
		}
		if len(rows) == 0 {
			continue
		}

		ids := evidenceIDs(rows)
		key := dedupeKey(ids)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		messages := make([]Message, 0, len(turns)+1)
		for i, turn := range turns {
			role := "user"
			if i%2 != 0 {
				role = "assistant"
			}
			messages = append(messages, Message{Role: role, Content: turn})
		}
		messages = append(messages, Message{Role: "assistant", Content: renderListing(rows, constraints)})

		out = append(out, ConversationExample{
			ID:          uuid.NewString(),
			Messages:    messages,
			Constraints: constraints,
			EvidenceIDs: ids,
		})
	}
	return out, nil
}

func evidenceIDs(rows []*store.Recipe) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.RecipeID
	}
	return ids
}

// dedupeKey is order-insensitive: two examples listing the same rows are
// duplicates regardless of sampling order.
func dedupeKey(ids []string) string {
	s := append([]string(nil), ids...)
	sort.Strings(s)
	return strings.Join(s, "|")
}
