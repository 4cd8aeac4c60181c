package gen

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/platewise/mealparse/internal/store"
)

// singleTemplate renders one randomized instruction and the catalog filter
// its constraints imply.
type singleTemplate func(rng *rand.Rand, numResults int) (string, store.Filter)

// conversationTemplate renders one randomized dialogue and its filter.
type conversationTemplate func(rng *rand.Rand, numResults int) ([]string, store.Filter)

var numberWords = map[int]string{1: "one", 2: "two", 3: "three", 4: "four", 5: "five"}

func numWord(n int) string {
	if w, ok := numberWords[n]; ok {
		return w
	}
	return strconv.Itoa(n)
}

var (
	dietPool = []string{"vegetarian", "gluten-free", "vegan", "low-carb"}
	mealPool = []string{"breakfast", "lunch", "dinner"}
)

func pick(rng *rand.Rand, vals []string) string { return vals[rng.Intn(len(vals))] }

func pickF(rng *rand.Rand, vals ...float64) float64 { return vals[rng.Intn(len(vals))] }

func fp(v float64) *float64 { return &v }

func lowCalorieLimit(rng *rand.Rand) float64 { return pickF(rng, 250, 300, 350, 400) }
func proteinMin(rng *rand.Rand) float64      { return pickF(rng, 15, 20, 25, 30) }
func carbMax(rng *rand.Rand) float64         { return pickF(rng, 10, 15, 20, 30, 40, 50, 60) }
func sodiumMax(rng *rand.Rand) float64       { return pickF(rng, 300, 400, 500, 600, 700) }
func durationMax(rng *rand.Rand) float64     { return pickF(rng, 15, 20, 30, 45, 60, 75, 90, 120) }
func ratingMin(rng *rand.Rand) float64       { return pickF(rng, 3.0, 3.5, 4.0, 4.5) }

// servesRange returns the displayed range and the serves terms it matches.
func servesRange(rng *rand.Rand) (string, []string) {
	ranges := [][]string{
		{"4-6", "4", "6"},
		{"6-8", "6", "8"},
		{"8-10", "8", "10"},
		{"10-12", "10", "12"},
	}
	r := ranges[rng.Intn(len(ranges))]
	return r[0], r
}

var singleTemplates = []singleTemplate{
	func(rng *rand.Rand, n int) (string, store.Filter) {
		tag := pick(rng, dietPool)
		cal := lowCalorieLimit(rng)
		sod := sodiumMax(rng)
		dur := durationMax(rng)
		instruction := fmt.Sprintf(
			"Find %s quick %s lunches under %.0f kcal with less than %.0f mg sodium and under %.0f minutes.",
			numWord(n), tag, cal, sod, dur)
		return instruction, store.Filter{
			Tags: []string{tag}, MaxCalories: fp(cal), MaxSodium: fp(sod), MaxDuration: fp(dur),
		}
	},
	func(rng *rand.Rand, n int) (string, store.Filter) {
		tag := pick(rng, mealPool)
		prot := proteinMin(rng)
		dur := durationMax(rng)
		instruction := fmt.Sprintf(
			"Find %s high-protein %ss over %.0fg protein in under %.0f minutes.",
			numWord(n), tag, prot, dur)
		return instruction, store.Filter{
			Tags: []string{tag}, MinProtein: fp(prot), MaxDuration: fp(dur),
		}
	},
	func(rng *rand.Rand, n int) (string, store.Filter) {
		tag := pick(rng, []string{"dinner", "lunch"})
		carb := carbMax(rng)
		prot := proteinMin(rng)
		instruction := fmt.Sprintf(
			"Find %s low-carb %ss under %.0fg total carbohydrates with at least %.0fg protein.",
			numWord(n), tag, carb, prot)
		return instruction, store.Filter{
			Tags: []string{tag}, MaxCarbs: fp(carb), MinProtein: fp(prot),
		}
	},
	func(rng *rand.Rand, n int) (string, store.Filter) {
		cal := lowCalorieLimit(rng)
		sug := pickF(rng, 10, 15, 20, 25)
		sat := pickF(rng, 3, 5, 8)
		instruction := fmt.Sprintf(
			"Find %s desserts under %.0f kcal with less than %.0fg sugar and low saturated fat (under %.0fg).",
			numWord(n), cal, sug, sat)
		return instruction, store.Filter{
			Tags: []string{"dessert"}, MaxCalories: fp(cal), MaxSugar: fp(sug), MaxSaturatedFat: fp(sat),
		}
	},
	func(rng *rand.Rand, n int) (string, store.Filter) {
		tag := pick(rng, []string{"gluten-free", "vegetarian", "vegan"})
		rating := ratingMin(rng)
		dur := durationMax(rng)
		instruction := fmt.Sprintf(
			"Find %s highly-rated %s recipes with at least %.1f stars and under %.0f minutes.",
			numWord(n), tag, rating, dur)
		return instruction, store.Filter{
			Tags: []string{tag}, MinRating: fp(rating), MaxDuration: fp(dur),
		}
	},
	func(rng *rand.Rand, n int) (string, store.Filter) {
		tag := pick(rng, []string{"dinner", "family-friendly"})
		display, terms := servesRange(rng)
		calMin := float64(250 + rng.Intn(101))
		calMax := float64(500 + rng.Intn(151))
		instruction := fmt.Sprintf(
			"Find %s %s recipes that serve %s people with moderate calories (between %.0f and %.0f kcal).",
			numWord(n), tag, display, calMin, calMax)
		return instruction, store.Filter{
			Tags: []string{tag}, ServesTerms: terms, MinCalories: fp(calMin), MaxCalories: fp(calMax),
		}
	},
}

var conversationTemplates = []conversationTemplate{
	func(rng *rand.Rand, n int) ([]string, store.Filter) {
		tag := pick(rng, dietPool)
		cal := lowCalorieLimit(rng)
		sod := sodiumMax(rng)
		dur := durationMax(rng)
		turns := []string{
			fmt.Sprintf("Show %s lunch options.", tag),
			"Do you have any calorie or sodium preferences?",
			fmt.Sprintf("Under %.0f kcal and less than %.0f mg, please.", cal, sod),
		}
		return turns, store.Filter{
			Tags: []string{tag}, MaxCalories: fp(cal), MaxSodium: fp(sod), MaxDuration: fp(dur),
		}
	},
	func(rng *rand.Rand, n int) ([]string, store.Filter) {
		tag := pick(rng, mealPool)
		prot := proteinMin(rng)
		dur := durationMax(rng)
		turns := []string{
			fmt.Sprintf("I need %s ideas.", tag),
			"What's your time constraint and protein goal?",
			fmt.Sprintf("Under %.0f minutes, at least %.0fg.", dur, prot),
		}
		return turns, store.Filter{
			Tags: []string{tag}, MinProtein: fp(prot), MaxDuration: fp(dur),
		}
	},
	func(rng *rand.Rand, n int) ([]string, store.Filter) {
		tag := pick(rng, []string{"dinner", "lunch"})
		carb := carbMax(rng)
		prot := proteinMin(rng)
		turns := []string{
			fmt.Sprintf("Find %s ideas.", tag),
			"Are you looking for low-carb options?",
			fmt.Sprintf("Yes, under %.0fg carbs and at least %.0fg protein.", carb, prot),
		}
		return turns, store.Filter{
			Tags: []string{tag}, MaxCarbs: fp(carb), MinProtein: fp(prot),
		}
	},
	func(rng *rand.Rand, n int) ([]string, store.Filter) {
		cal := lowCalorieLimit(rng)
		sug := pickF(rng, 10, 15, 20, 25)
		sat := pickF(rng, 3, 5, 8)
		turns := []string{
			"What desserts do you recommend?",
			"Are you looking for low-calorie or low-sugar?",
			fmt.Sprintf("Low-calorie, under %.0f kcal, and low saturated fat (under %.0fg).", cal, sat),
		}
		return turns, store.Filter{
			Tags: []string{"dessert"}, MaxCalories: fp(cal), MaxSugar: fp(sug), MaxSaturatedFat: fp(sat),
		}
	},
	func(rng *rand.Rand, n int) ([]string, store.Filter) {
		turns := []string{
			"Show me chicken recipes.",
			"Would you prefer grilled, baked, or any particular style?",
			"Something quick and low-carb, under 20g carbs.",
		}
		return turns, store.Filter{
			Tags: []string{"chicken"}, MaxCarbs: fp(20), MaxDuration: fp(30),
		}
	},
	func(rng *rand.Rand, n int) ([]string, store.Filter) {
		turns := []string{
			"I want to make soup.",
			"Any dietary restrictions or sodium concerns?",
			"Yes, low sodium under 400 mg and vegetarian.",
		}
		return turns, store.Filter{
			Tags: []string{"soup", "vegetarian"}, MaxSodium: fp(400),
		}
	},
}
