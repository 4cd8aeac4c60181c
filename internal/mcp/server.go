// Package mcp provides a Model Context Protocol server for the constraint
// parser. It exposes single-query parsing, conversation parsing, and training
// example generation as MCP tools, and the fixed extraction vocabulary and
// catalog statistics as MCP resources. Stdio transport only.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/platewise/mealparse/internal/gen"
	"github.com/platewise/mealparse/internal/parse"
	"github.com/platewise/mealparse/internal/pattern"
	"github.com/platewise/mealparse/internal/store"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Parser  *parse.Parser
	Store   store.Store // optional; generation tools error without it
	Version string
}

// dbMu serializes tool calls that touch the catalog database. The mcp-go
// library dispatches handlers concurrently via goroutines, and SQLite
// supports only one writer at a time.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all tools and resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"MealParse",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	registerParseTool(s, cfg.Parser)
	registerConversationTool(s, cfg.Parser)
	registerGenerateTool(s, cfg.Parser, cfg.Store)
	registerImportTool(s, cfg.Store)

	registerVocabularyResource(s)
	registerCatalogResource(s, cfg.Store)

	return s
}

// --- Tools ---

func registerParseTool(s *server.MCPServer, p *parse.Parser) {
	tool := mcp.NewTool("mealparse_parse",
		mcp.WithDescription("Parse a free-text recipe request into structured dietary constraints: nutrient bounds, result count, servings, duration, diet and health labels, and ingredient include/exclude lists."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Recipe request text, e.g. 'Find three vegan dinners under 500 kcal without peanuts'"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}
		constraints := p.Parse(query)
		data, err := json.MarshalIndent(constraints, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding constraints: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerConversationTool(s *server.MCPServer, p *parse.Parser) {
	tool := mcp.NewTool("mealparse_parse_conversation",
		mcp.WithDescription("Parse an alternating user/assistant dialogue into one merged constraint set. Turns at even indexes are user turns; assistant turns supply nutrient context for elliptical follow-ups like 'under 450 kcal, please'."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("turns",
			mcp.Required(),
			mcp.Description(`Dialogue turns as a JSON string array, e.g. ["Show vegan lunches.","Any calorie limit?","Under 400 kcal."]`),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("turns")
		if err != nil {
			return mcp.NewToolResultError("turns is required"), nil
		}
		var turns []string
		if err := json.Unmarshal([]byte(raw), &turns); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("turns must be a JSON string array: %v", err)), nil
		}
		if len(turns) == 0 {
			return mcp.NewToolResultError("turns must not be empty"), nil
		}
		constraints := p.ParseConversation(turns)
		data, err := json.MarshalIndent(constraints, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding constraints: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerGenerateTool(s *server.MCPServer, p *parse.Parser, st store.Store) {
	tool := mcp.NewTool("mealparse_generate",
		mcp.WithDescription("Generate randomized training examples from the recipe catalog. Each example pairs a templated request with its parsed constraints and the catalog rows that satisfy them."),
		mcp.WithNumber("examples",
			mcp.Description("Number of examples to generate (default: 10)"),
		),
		mcp.WithNumber("results",
			mcp.Description("Catalog rows listed per example (default: 3)"),
		),
		mcp.WithBoolean("multi_turn",
			mcp.Description("Generate multi-turn chat examples instead of single-turn instruct examples"),
		),
		mcp.WithNumber("seed",
			mcp.Description("Random seed for reproducible runs (default: 1)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		if st == nil {
			return mcp.NewToolResultError("no catalog database configured"), nil
		}

		opts := gen.Opts{Examples: 10, Results: 3}
		seed := int64(1)
		if v, err := req.RequireFloat("examples"); err == nil && int(v) > 0 {
			opts.Examples = int(v)
		}
		if v, err := req.RequireFloat("results"); err == nil && int(v) > 0 {
			opts.Results = int(v)
		}
		if v, err := req.RequireFloat("seed"); err == nil {
			seed = int64(v)
		}
		multiTurn := false
		if v, err := req.RequireString("multi_turn"); err == nil {
			multiTurn = v == "true"
		}

		g := gen.New(st, p, seed)
		var sb strings.Builder
		if multiTurn {
			examples, err := g.Conversations(ctx, opts)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("generating examples: %v", err)), nil
			}
			if err := gen.WriteJSONL(&sb, examples); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("encoding examples: %v", err)), nil
			}
		} else {
			examples, err := g.Singles(ctx, opts)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("generating examples: %v", err)), nil
			}
			if err := gen.WriteJSONL(&sb, examples); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("encoding examples: %v", err)), nil
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	})
}

func registerImportTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("mealparse_import",
		mcp.WithDescription("Import recipe catalog rows from a CSV file. The header row names the columns; recipe_id and title are required."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the CSV file"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		if st == nil {
			return mcp.NewToolResultError("no catalog database configured"), nil
		}
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError("path is required"), nil
		}
		n, err := st.ImportCSV(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("importing %s: %v", path, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("imported %d recipes", n)), nil
	})
}

// --- Resources ---

func registerVocabularyResource(s *server.MCPServer) {
	resource := mcp.NewResource(
		"mealparse://vocabulary",
		"Extraction Vocabulary",
		mcp.WithResourceDescription("The fixed vocabularies the parser matches against: nutrient keywords, operator phrases, diet tags, and health tags."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type operatorInfo struct {
			Phrase string `json:"phrase"`
			Bound  string `json:"bound"`
		}
		type nutrientInfo struct {
			Keyword   string `json:"keyword"`
			Canonical string `json:"canonical"`
		}

		operators := make([]operatorInfo, 0, len(pattern.Operators))
		for _, op := range pattern.Operators {
			bound := "max"
			if op.Dir == pattern.MinBound {
				bound = "min"
			}
			operators = append(operators, operatorInfo{Phrase: op.Phrase, Bound: bound})
		}
		nutrients := make([]nutrientInfo, 0, len(pattern.Nutrients))
		for _, n := range pattern.Nutrients {
			nutrients = append(nutrients, nutrientInfo{Keyword: n.Keyword, Canonical: n.Canonical})
		}

		payload := map[string]interface{}{
			"nutrients":   nutrients,
			"operators":   operators,
			"diet_tags":   pattern.DietTags,
			"health_tags": pattern.HealthTags,
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}

func registerCatalogResource(s *server.MCPServer, st store.Store) {
	resource := mcp.NewResource(
		"mealparse://catalog",
		"Catalog Statistics",
		mcp.WithResourceDescription("Recipe catalog row count."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		if st == nil {
			return nil, fmt.Errorf("no catalog database configured")
		}
		count, err := st.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting recipes: %w", err)
		}
		payload := map[string]interface{}{"recipes": count}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
