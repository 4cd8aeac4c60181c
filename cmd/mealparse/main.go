package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/platewise/mealparse/internal/config"
	"github.com/platewise/mealparse/internal/gen"
	"github.com/platewise/mealparse/internal/lexicon"
	"github.com/platewise/mealparse/internal/mcp"
	"github.com/platewise/mealparse/internal/parse"
	"github.com/platewise/mealparse/internal/store"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "parse":
		err = runParse(os.Args[2:])
	case "conversation":
		err = runConversation(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("mealparse %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds the flags shared across subcommands.
type cliFlags struct {
	configPath string
	wordnet    string
	db         string
	examples   string
	results    string
	seed       int64
	multiTurn  bool
	out        string
	rest       []string
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	f.seed = 1
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			return args[i], nil
		}
		var err error
		switch {
		case arg == "--config":
			f.configPath, err = next()
		case arg == "--wordnet":
			f.wordnet, err = next()
		case arg == "--db":
			f.db, err = next()
		case arg == "--examples":
			f.examples, err = next()
		case arg == "--results":
			f.results, err = next()
		case arg == "--seed":
			var v string
			if v, err = next(); err == nil {
				if _, serr := fmt.Sscanf(v, "%d", &f.seed); serr != nil {
					err = fmt.Errorf("bad seed %q", v)
				}
			}
		case arg == "--multi-turn":
			f.multiTurn = true
		case arg == "--out":
			f.out, err = next()
		case strings.HasPrefix(arg, "-"):
			return f, fmt.Errorf("unknown flag: %s", arg)
		default:
			f.rest = append(f.rest, arg)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func resolve(f cliFlags) (config.ResolvedConfig, error) {
	return config.ResolveConfig(config.ResolveOptions{
		ConfigPath:    f.configPath,
		CLIWordNetDir: f.wordnet,
		CLIDBPath:     f.db,
		CLIExamples:   f.examples,
		CLIResults:    f.results,
	})
}

func newParser(cfg config.ResolvedConfig) (*parse.Parser, error) {
	if cfg.WordNetDir.Value == "" {
		return nil, fmt.Errorf("wordnet database not configured (set --wordnet, MEALPARSE_WORDNET, or WNHOME)")
	}
	lex, err := lexicon.Load(cfg.WordNetDir.Value)
	if err != nil {
		return nil, fmt.Errorf("loading wordnet from %s: %w", cfg.WordNetDir.Value, err)
	}
	return parse.New(lex), nil
}

func openStore(cfg config.ResolvedConfig) (store.Store, error) {
	return store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
}

func runParse(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.rest) == 0 {
		return fmt.Errorf("usage: mealparse parse <query> [--wordnet DIR]")
	}
	cfg, err := resolve(f)
	if err != nil {
		return err
	}
	p, err := newParser(cfg)
	if err != nil {
		return err
	}
	constraints := p.Parse(strings.Join(f.rest, " "))
	return printJSON(constraints)
}

func runConversation(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.rest) < 1 {
		return fmt.Errorf("usage: mealparse conversation <turn>... [--wordnet DIR]")
	}
	cfg, err := resolve(f)
	if err != nil {
		return err
	}
	p, err := newParser(cfg)
	if err != nil {
		return err
	}
	constraints := p.ParseConversation(f.rest)
	return printJSON(constraints)
}

func runImport(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.rest) != 1 {
		return fmt.Errorf("usage: mealparse import <catalog.csv> [--db PATH]")
	}
	cfg, err := resolve(f)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	n, err := st.ImportCSV(context.Background(), f.rest[0])
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d recipes\n", n)
	return nil
}

func runGenerate(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := resolve(f)
	if err != nil {
		return err
	}
	p, err := newParser(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	out := os.Stdout
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.out, err)
		}
		defer file.Close()
		out = file
	}

	g := gen.New(st, p, f.seed)
	opts := gen.Opts{Examples: cfg.Examples(), Results: cfg.Results()}
	ctx := context.Background()

	if f.multiTurn {
		examples, err := g.Conversations(ctx, opts)
		if err != nil {
			return err
		}
		if err := gen.WriteJSONL(out, examples); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Generated %d multi-turn examples\n", len(examples))
		return nil
	}
	examples, err := g.Singles(ctx, opts)
	if err != nil {
		return err
	}
	if err := gen.WriteJSONL(out, examples); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Generated %d examples\n", len(examples))
	return nil
}

func runMCP(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := resolve(f)
	if err != nil {
		return err
	}
	p, err := newParser(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	srv := mcp.NewServer(mcp.ServerConfig{Parser: p, Store: st, Version: version})
	return mcpserver.ServeStdio(srv)
}

func runConfig(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := resolve(f)
	if err != nil {
		return err
	}
	return printJSON(cfg)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printUsage() {
	fmt.Println(`mealparse — dietary constraint extraction and training data generation

Usage:
  mealparse parse <query>            Parse a request into constraints (JSON)
  mealparse conversation <turn>...   Parse an alternating dialogue
  mealparse import <catalog.csv>     Import recipes into the catalog
  mealparse generate                 Generate training examples (JSONL)
  mealparse mcp                      Serve the MCP interface on stdio
  mealparse config                   Show resolved configuration
  mealparse version                  Show version

Flags:
  --config PATH     Config file (default ~/.mealparse/config.yaml)
  --wordnet DIR     WordNet dict directory
  --db PATH         Catalog database path
  --examples N      Examples to generate
  --results N       Catalog rows per example
  --multi-turn      Generate chat-format examples
  --seed N          Random seed (default 1)
  --out FILE        Write generated examples to FILE`)
}
