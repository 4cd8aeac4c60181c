// bench_slo.go — SLO benchmark for parse, conversation, and catalog filtering.
// Run: go run scripts/bench/bench_slo.go --wordnet /path/to/dict [--db path] [--iterations N]
//
// Generates a JSON report with p50/p95/p99 latencies for each operation.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/platewise/mealparse/internal/lexicon"
	"github.com/platewise/mealparse/internal/parse"
	"github.com/platewise/mealparse/internal/store"
)

type BenchResult struct {
	Operation  string  `json:"operation"`
	Iterations int     `json:"iterations"`
	P50Ms      float64 `json:"p50_ms"`
	P95Ms      float64 `json:"p95_ms"`
	P99Ms      float64 `json:"p99_ms"`
	MinMs      float64 `json:"min_ms"`
	MaxMs      float64 `json:"max_ms"`
	MeanMs     float64 `json:"mean_ms"`
	Pass       bool    `json:"pass"`
	SLOMs      float64 `json:"slo_ms"`
}

type BenchReport struct {
	GeneratedAt string        `json:"generated_at"`
	WordNetDir  string        `json:"wordnet_dir"`
	DBPath      string        `json:"db_path,omitempty"`
	RecipeCount int           `json:"recipe_count"`
	Results     []BenchResult `json:"results"`
	AllPass     bool          `json:"all_pass"`
}

func main() {
	wordnetDir := flag.String("wordnet", "", "Path to the WordNet dict directory (default: $WNHOME/dict)")
	dbPath := flag.String("db", "", "Path to catalog.db; catalog benchmarks are skipped without it")
	iterations := flag.Int("iterations", 50, "Number of iterations per benchmark")
	outFile := flag.String("out", "", "Output JSON file (default: stdout)")
	flag.Parse()

	if *wordnetDir == "" {
		if home := strings.TrimSpace(os.Getenv("WNHOME")); home != "" {
			*wordnetDir = filepath.Join(home, "dict")
		}
	}
	if *wordnetDir == "" {
		fmt.Fprintln(os.Stderr, "Error: set --wordnet or WNHOME")
		os.Exit(1)
	}

	lex, err := lexicon.Load(*wordnetDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading taxonomy: %v\n", err)
		os.Exit(1)
	}
	p := parse.New(lex)

	report := BenchReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		WordNetDir:  *wordnetDir,
		AllPass:     true,
	}

	fmt.Fprintf(os.Stderr, "MealParse SLO Benchmark\n")
	fmt.Fprintf(os.Stderr, "  WordNet: %s\n", *wordnetDir)
	fmt.Fprintf(os.Stderr, "  Iterations: %d\n\n", *iterations)

	// Representative request workload
	queries := []string{
		"Find three vegan dinners under 500 calories with at least 20g protein without peanuts.",
		"Show quick gluten-free lunches with less than 400 mg sodium in under 30 minutes.",
		"Healthy soup without butter, sodium less than 400mg.",
		"Find desserts under 300 kcal with less than 15g sugar and low saturated fat.",
		"Meals with scallions and chickpeas, no peanuts, under 600 calories.",
		"High-protein breakfast over 25g protein, sugar under 10g, ready in 15 minutes.",
		"Dinner that serves 6-8 people with moderate calories.",
		"Low-carb lunch under 20g total carbohydrates with at least 15g protein.",
	}
	conversations := [][]string{
		{
			"I need breakfast ideas.",
			"What's your time constraint and protein goal?",
			"Under 15 minutes, at least 20g.",
		},
		{
			"I want to make soup.",
			"Any dietary restrictions or sodium concerns?",
			"Yes, low sodium under 400mg and vegetarian.",
		},
	}

	parseTimes := make([]float64, 0, *iterations)
	for i := 0; i < *iterations; i++ {
		q := queries[i%len(queries)]
		start := time.Now()
		p.Parse(q)
		parseTimes = append(parseTimes, float64(time.Since(start).Microseconds())/1000.0)
	}
	add(&report, computeResult("parse", parseTimes, 50))

	convTimes := make([]float64, 0, *iterations)
	for i := 0; i < *iterations; i++ {
		turns := conversations[i%len(conversations)]
		start := time.Now()
		p.ParseConversation(turns)
		convTimes = append(convTimes, float64(time.Since(start).Microseconds())/1000.0)
	}
	add(&report, computeResult("parse_conversation", convTimes, 100))

	if *dbPath != "" {
		st, err := store.NewStore(store.StoreConfig{DBPath: *dbPath})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		ctx := context.Background()
		count, err := st.Count(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error counting recipes: %v\n", err)
			os.Exit(1)
		}
		report.DBPath = *dbPath
		report.RecipeCount = int(count)
		fmt.Fprintf(os.Stderr, "  Catalog: %d recipes\n\n", count)

		filterTimes := make([]float64, 0, *iterations)
		for i := 0; i < *iterations; i++ {
			c := p.Parse(queries[i%len(queries)])
			f := store.FromConstraints(c)
			start := time.Now()
			if _, err := st.Filter(ctx, f); err != nil {
				fmt.Fprintf(os.Stderr, "Error filtering: %v\n", err)
				os.Exit(1)
			}
			filterTimes = append(filterTimes, float64(time.Since(start).Microseconds())/1000.0)
		}
		add(&report, computeResult("catalog_filter", filterTimes, 2000))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
		os.Exit(1)
	}
	if *outFile != "" {
		if err := os.WriteFile(*outFile, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outFile)
	} else {
		fmt.Println(string(data))
	}

	if !report.AllPass {
		os.Exit(1)
	}
}

func add(report *BenchReport, r BenchResult) {
	report.Results = append(report.Results, r)
	if !r.Pass {
		report.AllPass = false
	}
	status := "PASS"
	if !r.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(os.Stderr, "  %-20s p50=%.2fms p95=%.2fms p99=%.2fms [%s, SLO %.0fms]\n",
		r.Operation, r.P50Ms, r.P95Ms, r.P99Ms, status, r.SLOMs)
}

func computeResult(operation string, times []float64, sloMs float64) BenchResult {
	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)

	var sum float64
	for _, t := range sorted {
		sum += t
	}

	p95 := percentile(sorted, 0.95)
	return BenchResult{
		Operation:  operation,
		Iterations: len(sorted),
		P50Ms:      percentile(sorted, 0.50),
		P95Ms:      p95,
		P99Ms:      percentile(sorted, 0.99),
		MinMs:      sorted[0],
		MaxMs:      sorted[len(sorted)-1],
		MeanMs:     sum / float64(len(sorted)),
		Pass:       p95 <= sloMs,
		SLOMs:      sloMs,
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
