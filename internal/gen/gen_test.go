package gen

import (
	"context"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/platewise/mealparse/internal/lexicon"
	"github.com/platewise/mealparse/internal/parse"
	"github.com/platewise/mealparse/internal/store"
)

func testGenerator(t *testing.T) (*Generator, store.Store) {
	t.Helper()
	st, err := store.NewStore(store.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	rows := []*store.Recipe{
		{RecipeID: "r1", Title: "Lentil Lunch Bowl", Tags: "vegetarian,vegan,gluten-free,low-carb,lunch,dinner,breakfast,family-friendly,dessert,chicken,soup",
			Serves: "4-6", AverageRating: fp(4.5), Calories: fp(240), ProteinG: fp(32),
			SodiumMg: fp(280), CarbsG: fp(9), SugarsG: fp(4), TotalFatG: fp(8),
			SaturatedFatG: fp(2), DurationMin: fp(12)},
		{RecipeID: "r2", Title: "Tofu Scramble", Tags: "vegetarian,vegan,gluten-free,low-carb,lunch,dinner,breakfast,family-friendly,dessert,chicken,soup",
			Serves: "6-8", AverageRating: fp(4.8), Calories: fp(210), ProteinG: fp(30),
			SodiumMg: fp(250), CarbsG: fp(8), SugarsG: fp(3), TotalFatG: fp(9),
			SaturatedFatG: fp(1), DurationMin: fp(10)},
		{RecipeID: "r3", Title: "Veggie Soup", Tags: "vegetarian,vegan,gluten-free,low-carb,lunch,dinner,breakfast,family-friendly,dessert,chicken,soup",
			Serves: "8-10", AverageRating: fp(4.6), Calories: fp(230), ProteinG: fp(31),
			SodiumMg: fp(270), CarbsG: fp(7), SugarsG: fp(2), TotalFatG: fp(7),
			SaturatedFatG: fp(1), DurationMin: fp(14)},
		{RecipeID: "r4", Title: "Bean Chili", Tags: "vegetarian,vegan,gluten-free,low-carb,lunch,dinner,breakfast,family-friendly,dessert,chicken,soup",
			Serves: "10-12", AverageRating: fp(4.9), Calories: fp(420), ProteinG: fp(33),
			SodiumMg: fp(260), CarbsG: fp(9), SugarsG: fp(3), TotalFatG: fp(6),
			SaturatedFatG: fp(2), DurationMin: fp(13)},
	}
	for _, r := range rows {
		if _, err := st.AddRecipe(ctx, r); err != nil {
			t.Fatalf("AddRecipe(%s): %v", r.RecipeID, err)
		}
	}

	p := parse.New(lexicon.New(nil, nil))
	return New(st, p, 42), st
}

func TestSingles(t *testing.T) {
	g, st := testGenerator(t)
	ctx := context.Background()

	examples, err := g.Singles(ctx, Opts{Examples: 3, Results: 2})
	if err != nil {
		t.Fatalf("Singles: %v", err)
	}
	if len(examples) == 0 || len(examples) > 3 {
		t.Fatalf("generated %d examples, want 1-3", len(examples))
	}

	seen := make(map[string]bool)
	for _, ex := range examples {
		if ex.ID == "" {
			t.Error("example has empty id")
		}
		if ex.Instruction == "" {
			t.Error("example has empty instruction")
		}
		if ex.Output == "" {
			t.Error("example has empty output")
		}
		if len(ex.EvidenceIDs) == 0 || len(ex.EvidenceIDs) > 2 {
			t.Errorf("evidence ids = %v, want 1-2 rows", ex.EvidenceIDs)
		}
		key := dedupeKey(ex.EvidenceIDs)
		if seen[key] {
			t.Errorf("duplicate evidence set %v", ex.EvidenceIDs)
		}
		seen[key] = true

		for _, id := range ex.EvidenceIDs {
			if _, err := st.GetRecipe(ctx, id); err != nil {
				t.Errorf("evidence id %s not in catalog: %v", id, err)
			}
		}
	}
}

func TestSinglesConstraintsMatchInstruction(t *testing.T) {
	g, _ := testGenerator(t)

	examples, err := g.Singles(context.Background(), Opts{Examples: 5, Results: 1})
	if err != nil {
		t.Fatalf("Singles: %v", err)
	}
	if len(examples) == 0 {
		t.Fatal("no examples generated")
	}
	for _, ex := range examples {
		reparsed := g.parser.Parse(ex.Instruction)
		if !reflect.DeepEqual(reparsed, ex.Constraints) {
			t.Errorf("stored constraints do not re-parse from %q", ex.Instruction)
		}
		if ex.Constraints.IsZero() {
			t.Errorf("no constraints parsed from %q", ex.Instruction)
		}
	}
}

func TestTemplatesDeterministicForSeed(t *testing.T) {
	ra := rand.New(rand.NewSource(42))
	rb := rand.New(rand.NewSource(42))
	for i, tmpl := range singleTemplates {
		a, _ := tmpl(ra, 3)
		b, _ := tmpl(rb, 3)
		if a != b {
			t.Errorf("template %d not deterministic for the same seed:\n%q\n%q", i, a, b)
		}
	}
	for i, tmpl := range conversationTemplates {
		a, _ := tmpl(ra, 3)
		b, _ := tmpl(rb, 3)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("conversation template %d not deterministic for the same seed", i)
		}
	}
}

func TestSinglesStopsWhenCatalogExhausted(t *testing.T) {
	g, _ := testGenerator(t)

	// Four catalog rows cannot yield fifty distinct single-row evidence sets;
	// the attempt cap must end the run instead of looping forever.
	examples, err := g.Singles(context.Background(), Opts{Examples: 50, Results: 1})
	if err != nil {
		t.Fatalf("Singles: %v", err)
	}
	if len(examples) > 4 {
		t.Errorf("generated %d examples from a 4-row catalog", len(examples))
	}
}

func TestConversations(t *testing.T) {
	g, _ := testGenerator(t)

	examples, err := g.Conversations(context.Background(), Opts{Examples: 3, Results: 2})
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(examples) == 0 || len(examples) > 3 {
		t.Fatalf("generated %d conversations, want 1-3", len(examples))
	}
	for _, ex := range examples {
		if len(ex.Messages) != 4 {
			t.Fatalf("got %d messages, want 3 turns plus a final listing", len(ex.Messages))
		}
		for i, m := range ex.Messages[:3] {
			want := "user"
			if i%2 != 0 {
				want = "assistant"
			}
			if m.Role != want {
				t.Errorf("message %d role = %q, want %q", i, m.Role, want)
			}
		}
		last := ex.Messages[len(ex.Messages)-1]
		if last.Role != "assistant" {
			t.Errorf("final message role = %q", last.Role)
		}
		if !strings.HasPrefix(last.Content, "1) ") {
			t.Errorf("final message is not a listing: %q", last.Content)
		}
	}
}

func TestRenderListing(t *testing.T) {
	rows := []*store.Recipe{
		{Title: "Lentil Bowl", Calories: fp(240), ProteinG: fp(32), DurationMin: fp(12.7)},
		{Title: "Tofu Scramble", Calories: fp(210), ProteinG: fp(30)},
	}
	c := parse.Constraints{MaxCalories: fp(450), MinProtein: fp(20), MaxDuration: fp(30)}

	got := renderListing(rows, c)
	want := "1) Lentil Bowl—240.0 kcal—32.0 g protein—12 min; 2) Tofu Scramble—210.0 kcal—30.0 g protein"
	if got != want {
		t.Errorf("renderListing:\n got %q\nwant %q", got, want)
	}
}

func TestRenderListingOmitsUnconstrainedDimensions(t *testing.T) {
	rows := []*store.Recipe{
		{Title: "Veggie Soup", Calories: fp(230), SodiumMg: fp(270), SugarsG: fp(2)},
	}
	got := renderListing(rows, parse.Constraints{MaxSodium: fp(400)})
	want := "1) Veggie Soup—270.0 mg sodium"
	if got != want {
		t.Errorf("renderListing = %q, want %q", got, want)
	}
}

func TestWriteJSONL(t *testing.T) {
	var sb strings.Builder
	items := []Example{
		{ID: "a", Instruction: "Find one vegan lunch."},
		{ID: "b", Instruction: "Find two desserts."},
	}
	if err := WriteJSONL(&sb, items); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	out := strings.TrimRight(sb.String(), "\n")
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, `{"id":`) {
			t.Errorf("line %d is not a JSON object: %q", i, line)
		}
	}
}
