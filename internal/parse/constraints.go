// Package parse turns free-text recipe requests into structured dietary
// constraints. Extraction is deterministic and rule-ordered: count, then
// servings, nutrient bounds, duration, diet tags, health tags, and finally
// ingredient inclusion/exclusion. ParseConversation folds a multi-turn
// dialogue into one constraint set, carrying nutrient context forward from
// the preceding responder turn.
package parse

import (
	"sort"

	"github.com/platewise/mealparse/internal/pattern"
)

// Constraints is the closed output vocabulary. Scalar fields are pointers so
// that "absent" and "zero" stay distinct; list fields are nil when absent and
// sorted when present. Saturated fat carries a max bound only.
type Constraints struct {
	Count       *int `json:"count,omitempty"`
	MinServings *int `json:"min_servings,omitempty"`
	MaxServings *int `json:"max_servings,omitempty"`

	MaxCalories     *float64 `json:"max_calories,omitempty"`
	MinCalories     *float64 `json:"min_calories,omitempty"`
	MaxCarbs        *float64 `json:"max_carbs,omitempty"`
	MinCarbs        *float64 `json:"min_carbs,omitempty"`
	MaxProtein      *float64 `json:"max_protein,omitempty"`
	MinProtein      *float64 `json:"min_protein,omitempty"`
	MaxSugar        *float64 `json:"max_sugar,omitempty"`
	MinSugar        *float64 `json:"min_sugar,omitempty"`
	MaxSodium       *float64 `json:"max_sodium,omitempty"`
	MinSodium       *float64 `json:"min_sodium,omitempty"`
	MaxFat          *float64 `json:"max_fat,omitempty"`
	MinFat          *float64 `json:"min_fat,omitempty"`
	MaxSaturatedFat *float64 `json:"max_saturated_fat,omitempty"`

	MaxDuration *float64 `json:"max_duration,omitempty"`

	Diet               []string `json:"diet,omitempty"`
	HealthCategory     []string `json:"health_category,omitempty"`
	IncludeIngredients []string `json:"include_ingredients,omitempty"`
	ExcludeIngredients []string `json:"exclude_ingredients,omitempty"`
}

// boundField returns the storage slot for a canonical nutrient bound, or nil
// when the vocabulary has no such key (min saturated fat).
func (c *Constraints) boundField(canonical string, dir pattern.Direction) **float64 {
	max := dir == pattern.MaxBound
	switch canonical {
	case "calories":
		if max {
			return &c.MaxCalories
		}
		return &c.MinCalories
	case "carbs":
		if max {
			return &c.MaxCarbs
		}
		return &c.MinCarbs
	case "protein":
		if max {
			return &c.MaxProtein
		}
		return &c.MinProtein
	case "sugar":
		if max {
			return &c.MaxSugar
		}
		return &c.MinSugar
	case "sodium":
		if max {
			return &c.MaxSodium
		}
		return &c.MinSodium
	case "fat":
		if max {
			return &c.MaxFat
		}
		return &c.MinFat
	case "saturated_fat":
		if max {
			return &c.MaxSaturatedFat
		}
		return nil
	}
	return nil
}

// Keys reports which vocabulary keys are set, in vocabulary order.
func (c Constraints) Keys() []string {
	var out []string
	add := func(name string, set bool) {
		if set {
			out = append(out, name)
		}
	}
	add("count", c.Count != nil)
	add("min_servings", c.MinServings != nil)
	add("max_servings", c.MaxServings != nil)
	add("max_calories", c.MaxCalories != nil)
	add("min_calories", c.MinCalories != nil)
	add("max_carbs", c.MaxCarbs != nil)
	add("min_carbs", c.MinCarbs != nil)
	add("max_protein", c.MaxProtein != nil)
	add("min_protein", c.MinProtein != nil)
	add("max_sugar", c.MaxSugar != nil)
	add("min_sugar", c.MinSugar != nil)
	add("max_sodium", c.MaxSodium != nil)
	add("min_sodium", c.MinSodium != nil)
	add("max_fat", c.MaxFat != nil)
	add("min_fat", c.MinFat != nil)
	add("max_saturated_fat", c.MaxSaturatedFat != nil)
	add("max_duration", c.MaxDuration != nil)
	add("diet", len(c.Diet) > 0)
	add("health_category", len(c.HealthCategory) > 0)
	add("include_ingredients", len(c.IncludeIngredients) > 0)
	add("exclude_ingredients", len(c.ExcludeIngredients) > 0)
	return out
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return len(c.Keys()) == 0
}

// overlayScalars copies every scalar set in next onto c: latest turn wins.
// List fields are merged separately by the conversation fold.
func (c *Constraints) overlayScalars(next Constraints) {
	if next.Count != nil {
		c.Count = next.Count
	}
	if next.MinServings != nil {
		c.MinServings = next.MinServings
	}
	if next.MaxServings != nil {
		c.MaxServings = next.MaxServings
	}
	if next.MaxDuration != nil {
		c.MaxDuration = next.MaxDuration
	}
	for _, canonical := range []string{"calories", "carbs", "protein", "sugar", "sodium", "fat", "saturated_fat"} {
		for _, dir := range []pattern.Direction{pattern.MaxBound, pattern.MinBound} {
			src := next.boundField(canonical, dir)
			if src == nil || *src == nil {
				continue
			}
			*c.boundField(canonical, dir) = *src
		}
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
