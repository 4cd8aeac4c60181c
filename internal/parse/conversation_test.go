package parse

import (
	"reflect"
	"testing"
)

func TestPastaWithCalorieDietPreferences(t *testing.T) {
	got := testParser().ParseConversation([]string{
		"Show quick pasta options.",
		"Do you have calorie or diet preferences?",
		"<450 kcal, vegetarian.",
	})
	check(t, got,
		map[string]float64{"max_calories": 450},
		map[string][]string{"diet": {"vegetarian"}})
}

func TestBreakfastWithTimeAndProtein(t *testing.T) {
	// The final turn names no nutrient; "at least 20g" binds to protein via
	// the responder turn's context.
	got := testParser().ParseConversation([]string{
		"I need breakfast ideas.",
		"What's your time constraint and protein goal?",
		"Under 15 minutes, at least 20g.",
	})
	check(t, got,
		map[string]float64{"max_duration": 15, "min_protein": 20},
		nil)
}

func TestDessertsWithCaloriePreference(t *testing.T) {
	got := testParser().ParseConversation([]string{
		"What desserts do you recommend?",
		"Are you looking for something low-calorie or low-sugar?",
		"Low-calorie, under 200 kcal.",
	})
	check(t, got, map[string]float64{"max_calories": 200}, nil)
}

func TestChickenWithStylePreference(t *testing.T) {
	got := testParser().ParseConversation([]string{
		"Show me chicken recipes.",
		"Would you prefer grilled, baked, or any specific style?",
		"Something quick and low-carb, under 20g carbs.",
	})
	check(t, got,
		map[string]float64{"max_duration": 30, "max_carbs": 20},
		map[string][]string{"diet": {"low-carb"}})
}

func TestSoupWithDietaryRestrictions(t *testing.T) {
	got := testParser().ParseConversation([]string{
		"I want to make soup.",
		"Any dietary restrictions or sodium concerns?",
		"Yes, low sodium under 400mg and vegetarian.",
	})
	check(t, got,
		map[string]float64{"max_sodium": 400},
		map[string][]string{"diet": {"vegetarian"}})
}

func TestPartyAppetizerWithServings(t *testing.T) {
	got := testParser().ParseConversation([]string{
		"I need a party appetizer.",
		"How many people are you serving?",
		"Around 10-12 people.",
	})
	check(t, got,
		map[string]float64{"min_servings": 10, "max_servings": 12},
		nil)
}

func TestConversationIngredientsAccumulate(t *testing.T) {
	got := testParser().ParseConversation([]string{
		"Show meals with scallions.",
		"Anything to avoid?",
		"Yes, no peanuts. Also add chickpeas.",
	})
	check(t, got, nil, map[string][]string{
		"include_ingredients": {"scallion", "chickpea"},
		"exclude_ingredients": {"peanut"},
	})
}

func TestConversationScalarLatestWins(t *testing.T) {
	got := testParser().ParseConversation([]string{
		"Dinners under 700 calories.",
		"How strict is that limit?",
		"Actually make it under 500 calories.",
	})
	if got.MaxCalories == nil || *got.MaxCalories != 500 {
		t.Fatalf("max_calories = %v, want 500 (latest turn wins)", got.MaxCalories)
	}
}

func TestConversationExcludeOverridesInclude(t *testing.T) {
	got := testParser().ParseConversation([]string{
		"Show meals with peanuts and scallions.",
		"Noted. Anything else?",
		"On second thought, no peanuts.",
	})
	for _, inc := range got.IncludeIngredients {
		if inc == "peanut" || inc == "peanuts" {
			t.Errorf("%q remained in include_ingredients after exclusion: %v", inc, got.IncludeIngredients)
		}
	}
	check(t, got, nil, map[string][]string{
		"include_ingredients": {"scallion"},
		"exclude_ingredients": {"peanut", "peanuts"},
	})
}

func TestResponderTurnsNeverParsed(t *testing.T) {
	// The responder mentions chickpeas and a calorie bound; neither may leak
	// into the merged constraints.
	got := testParser().ParseConversation([]string{
		"Show me dinner ideas.",
		"How about chickpeas dishes under 300 calories?",
	})
	if got.MaxCalories != nil {
		t.Errorf("max_calories = %v from a responder turn", *got.MaxCalories)
	}
	for _, inc := range got.IncludeIngredients {
		if inc == "chickpea" {
			t.Error("responder ingredients leaked into include_ingredients")
		}
	}
}

func TestContextRequiresUnit(t *testing.T) {
	// Without a unit the elliptical number must not bind to the context
	// nutrient.
	got := testParser().ParseConversation([]string{
		"I want something filling.",
		"Any protein goal?",
		"At least 20 would be good.",
	})
	if got.MinProtein != nil {
		t.Errorf("min_protein = %v, want unset without a unit", *got.MinProtein)
	}
}

func TestContextSkippedWhenNutrientNamed(t *testing.T) {
	// The user names sugar, so the calorie context from the responder turn
	// must not capture the bound.
	got := testParser().ParseConversation([]string{
		"Dessert ideas?",
		"Any calorie limit?",
		"Sugar under 10g.",
	})
	if got.MaxSugar == nil || *got.MaxSugar != 10 {
		t.Fatalf("max_sugar = %v, want 10", got.MaxSugar)
	}
	if got.MaxCalories != nil {
		t.Errorf("max_calories = %v, want unset", *got.MaxCalories)
	}
}

func TestContextNutrients(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Do you have calorie or sodium preferences?", []string{"calories", "sodium"}},
		{"What's your protein goal?", []string{"protein"}},
		{"Watching carbs or fat?", []string{"carbs", "fat"}},
		{"Any sodium or protein goals?", []string{"sodium", "protein"}},
		{"Any preferences?", nil},
	}
	for _, tt := range tests {
		got := ContextNutrients(tt.text)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ContextNutrients(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestConversationDeterministic(t *testing.T) {
	p := testParser()
	turns := []string{
		"Show meals with scallions and chickpeas.",
		"Any calorie limit?",
		"Under 450 kcal, no peanuts.",
	}
	first := p.ParseConversation(turns)
	for i := 0; i < 5; i++ {
		if got := p.ParseConversation(turns); !reflect.DeepEqual(got, first) {
			t.Fatalf("conversation parse not deterministic")
		}
	}
}
