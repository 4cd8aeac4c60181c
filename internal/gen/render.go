package gen

import (
	"fmt"
	"strings"

	"github.com/platewise/mealparse/internal/parse"
	"github.com/platewise/mealparse/internal/store"
)

// renderListing formats catalog rows as a numbered result listing. Only the
// nutrition dimensions the constraints mention are shown, so the listing
// reads as evidence for the request it answers.
func renderListing(rows []*store.Recipe, c parse.Constraints) string {
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		parts := []string{fmt.Sprintf("%d) %s", i+1, r.Title)}

		add := func(want bool, v *float64, format string) {
			if want && v != nil {
				parts = append(parts, fmt.Sprintf(format, *v))
			}
		}
		add(c.MaxCalories != nil || c.MinCalories != nil, r.Calories, "%.1f kcal")
		add(c.MaxProtein != nil || c.MinProtein != nil, r.ProteinG, "%.1f g protein")
		add(c.MaxSodium != nil || c.MinSodium != nil, r.SodiumMg, "%.1f mg sodium")
		add(c.MaxCarbs != nil || c.MinCarbs != nil, r.CarbsG, "%.1f g carbs")
		add(c.MaxSugar != nil || c.MinSugar != nil, r.SugarsG, "%.1f g sugar")
		add(c.MaxFat != nil || c.MinFat != nil, r.TotalFatG, "%.1f g fat")
		if c.MaxDuration != nil && r.DurationMin != nil {
			parts = append(parts, fmt.Sprintf("%d min", int(*r.DurationMin)))
		}

		lines = append(lines, strings.Join(parts, "—"))
	}
	return strings.Join(lines, "; ")
}
