package parse

import (
	"sort"
	"strings"
)

// contextTable maps nutrient mentions in a responder turn to the canonical
// dimensions the following user turn may reference elliptically. Saturated fat
// is deliberately absent, context never binds to it.
var contextTable = []struct {
	keyword   string
	canonical string
}{
	{"calorie", "calories"},
	{"calories", "calories"},
	{"kcal", "calories"},
	{"carb", "carbs"},
	{"carbohydrate", "carbs"},
	{"carbohydrates", "carbs"},
	{"protein", "protein"},
	{"sugar", "sugar"},
	{"sodium", "sodium"},
	{"fat", "fat"},
}

// ContextNutrients reports which canonical nutrients a responder turn
// mentions, deduplicated, in first-occurrence order.
func ContextNutrients(text string) []string {
	lower := strings.ToLower(text)
	first := make(map[string]int)
	for _, row := range contextTable {
		i := strings.Index(lower, row.keyword)
		if i < 0 {
			continue
		}
		if j, seen := first[row.canonical]; !seen || i < j {
			first[row.canonical] = i
		}
	}
	var out []string
	for canonical := range first {
		out = append(out, canonical)
	}
	sort.Slice(out, func(a, b int) bool { return first[out[a]] < first[out[b]] })
	return out
}

// ParseConversation folds an alternating requester/responder dialogue into a
// single constraint set. Turns at even indexes are requester turns; responder
// turns are never parsed but supply nutrient context for the turn after them.
// List constraints accumulate across turns, scalars take the latest value,
// and an exclusion in any turn removes the ingredient from the final include
// list.
func (p *Parser) ParseConversation(turns []string) Constraints {
	var merged Constraints
	include := make(map[string]struct{})
	exclude := make(map[string]struct{})
	diets := make(map[string]struct{})
	health := make(map[string]struct{})

	for i, turn := range turns {
		if i%2 != 0 {
			continue
		}
		var hints []string
		if i > 0 {
			hints = ContextNutrients(turns[i-1])
		}
		c := p.parse(turn, hints)

		for _, s := range c.IncludeIngredients {
			include[s] = struct{}{}
		}
		for _, s := range c.ExcludeIngredients {
			exclude[s] = struct{}{}
		}
		for _, s := range c.Diet {
			diets[s] = struct{}{}
		}
		for _, s := range c.HealthCategory {
			health[s] = struct{}{}
		}
		merged.overlayScalars(c)
	}

	if len(include) > 0 {
		for s := range exclude {
			delete(include, s)
		}
		if len(include) > 0 {
			merged.IncludeIngredients = sortedKeys(include)
		}
	}
	if len(exclude) > 0 {
		merged.ExcludeIngredients = sortedKeys(exclude)
	}
	if len(diets) > 0 {
		merged.Diet = sortedKeys(diets)
	}
	if len(health) > 0 {
		merged.HealthCategory = sortedKeys(health)
	}
	return merged
}
