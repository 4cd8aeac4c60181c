// parse_quality_test.go — Constraint-extraction quality benchmark suite.
//
// Run: go test -v -run TestParseQualityBenchmark ./scripts/bench/
//
// This tests extraction accuracy for representative request workloads:
// - Nutrient bound extraction
// - Negation guards
// - Elliptical context binding
// - Ingredient include/exclude resolution
// - Multi-turn constraint merging
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/platewise/mealparse/internal/lexicon"
	"github.com/platewise/mealparse/internal/parse"
)

// BenchCase represents a single extraction quality test case.
type BenchCase struct {
	Name        string             // Human-readable test name
	Query       string             // Single-turn request text
	Turns       []string           // Multi-turn dialogue; overrides Query when set
	WantScalars map[string]float64 // Numeric constraints that must equal
	WantLists   map[string][]string
	AbsentKeys  []string // Keys that must not appear
}

// BenchScorecard tracks pass/fail across the full benchmark.
type BenchScorecard struct {
	Total       int          `json:"total"`
	Passed      int          `json:"passed"`
	Failed      int          `json:"failed"`
	PassRate    float64      `json:"pass_rate"`
	Cases       []CaseResult `json:"cases"`
	GeneratedAt string       `json:"generated_at"`
}

type CaseResult struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
}

func benchParser() *parse.Parser {
	synsets := []*lexicon.Synset{
		{Offset: "100", Lemmas: []string{"food"}},
		{Offset: "101", Lemmas: []string{"foodstuff"}, Hypernyms: []string{"100"}},
		{Offset: "102", Lemmas: []string{"vegetable", "veggie"}, Hypernyms: []string{"101"}},
		{Offset: "103", Lemmas: []string{"legume"}, Hypernyms: []string{"102"}},
		{Offset: "104", Lemmas: []string{"chickpea", "garbanzo", "garbanzo_bean"}, Hypernyms: []string{"103"}},
		{Offset: "105", Lemmas: []string{"onion"}, Hypernyms: []string{"102"}},
		{Offset: "106", Lemmas: []string{"scallion", "green_onion", "spring_onion"}, Hypernyms: []string{"105"}},
		{Offset: "107", Lemmas: []string{"edible_nut"}, Hypernyms: []string{"100"}},
		{Offset: "108", Lemmas: []string{"peanut"}, Hypernyms: []string{"107"}},
		{Offset: "110", Lemmas: []string{"dairy_product"}, Hypernyms: []string{"101"}},
		{Offset: "111", Lemmas: []string{"butter"}, Hypernyms: []string{"110"}},
	}
	return parse.New(lexicon.New(synsets, nil))
}

var benchCases = []BenchCase{
	{
		Name:        "calorie and protein bounds",
		Query:       "Find vegan dinners under 450 kcal with at least 18g protein.",
		WantScalars: map[string]float64{"max_calories": 450, "min_protein": 18},
		WantLists:   map[string][]string{"diet": {"vegan"}},
	},
	{
		Name:        "reversed operator order",
		Query:       "I need meals with sodium less than 400mg and sugar under 10g.",
		WantScalars: map[string]float64{"max_sodium": 400, "max_sugar": 10},
	},
	{
		Name:        "negated operator guard",
		Query:       "Lunches with no more than 25g carbs.",
		WantScalars: map[string]float64{"max_carbs": 25},
		AbsentKeys:  []string{"min_carbs"},
	},
	{
		Name:        "symbolic bounds",
		Query:       "Dinner <500 kcal and >20g protein.",
		WantScalars: map[string]float64{"max_calories": 500, "min_protein": 20},
	},
	{
		Name:        "quick keyword duration",
		Query:       "Something quick and vegetarian.",
		WantScalars: map[string]float64{"max_duration": 30},
		WantLists:   map[string][]string{"diet": {"vegetarian"}},
	},
	{
		Name:        "explicit duration overrides quick",
		Query:       "Quick dinner under 15 minutes.",
		WantScalars: map[string]float64{"max_duration": 15},
	},
	{
		Name:        "servings range",
		Query:       "An appetizer for around 10-12 people.",
		WantScalars: map[string]float64{"min_servings": 10, "max_servings": 12},
	},
	{
		Name:      "synonym expansion",
		Query:     "Find recipes with garbanzo beans.",
		WantLists: map[string][]string{"include_ingredients": {"chickpea", "garbanzo"}},
	},
	{
		Name:      "exclusion beats inclusion",
		Query:     "Meals with scallions and peanuts, no peanuts.",
		WantLists: map[string][]string{"include_ingredients": {"scallion"}, "exclude_ingredients": {"peanut"}},
	},
	{
		Name:       "nutrient terms are not ingredients",
		Query:      "High protein meals without butter.",
		WantLists:  map[string][]string{"exclude_ingredients": {"butter"}},
		AbsentKeys: []string{"include_ingredients"},
	},
	{
		Name: "elliptical context binding",
		Turns: []string{
			"I need breakfast ideas.",
			"What's your time constraint and protein goal?",
			"Under 15 minutes, at least 20g.",
		},
		WantScalars: map[string]float64{"max_duration": 15, "min_protein": 20},
	},
	{
		Name: "latest turn wins scalars",
		Turns: []string{
			"Dinners under 700 calories.",
			"How strict is that limit?",
			"Make it under 500 calories.",
		},
		WantScalars: map[string]float64{"max_calories": 500},
	},
	{
		Name: "exclusion persists across turns",
		Turns: []string{
			"Show meals with peanuts and scallions.",
			"Noted. Anything else?",
			"On second thought, no peanuts.",
		},
		WantLists: map[string][]string{"exclude_ingredients": {"peanut"}},
	},
}

func TestParseQualityBenchmark(t *testing.T) {
	p := benchParser()
	scorecard := BenchScorecard{
		Total:       len(benchCases),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, bc := range benchCases {
		var c parse.Constraints
		if len(bc.Turns) > 0 {
			c = p.ParseConversation(bc.Turns)
		} else {
			c = p.Parse(bc.Query)
		}

		detail := evaluate(c, bc)
		pass := detail == ""
		if pass {
			scorecard.Passed++
		} else {
			scorecard.Failed++
			t.Errorf("%s: %s", bc.Name, detail)
		}
		scorecard.Cases = append(scorecard.Cases, CaseResult{Name: bc.Name, Pass: pass, Detail: detail})
	}

	scorecard.PassRate = float64(scorecard.Passed) / float64(scorecard.Total)
	data, _ := json.MarshalIndent(scorecard, "", "  ")
	fmt.Fprintf(os.Stderr, "\nExtraction quality scorecard:\n%s\n", data)

	if scorecard.PassRate < 1.0 {
		t.Errorf("pass rate %.2f, want 1.00", scorecard.PassRate)
	}
}

// evaluate returns an empty string when the constraints satisfy the case, or a
// description of the first mismatch.
func evaluate(c parse.Constraints, bc BenchCase) string {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Sprintf("unmarshal: %v", err)
	}

	for key, want := range bc.WantScalars {
		v, ok := raw[key]
		if !ok {
			return fmt.Sprintf("missing %s in %s", key, data)
		}
		if f, ok := v.(float64); !ok || f != want {
			return fmt.Sprintf("%s = %v, want %v", key, v, want)
		}
	}
	for key, members := range bc.WantLists {
		items, _ := raw[key].([]any)
		for _, m := range members {
			found := false
			for _, it := range items {
				if it == m {
					found = true
					break
				}
			}
			if !found {
				return fmt.Sprintf("expected %q in %s, got %v", m, key, raw[key])
			}
		}
	}
	for _, key := range bc.AbsentKeys {
		if _, ok := raw[key]; ok {
			return fmt.Sprintf("unexpected key %s in %s", key, data)
		}
	}
	return ""
}
