// Package pattern holds the fixed vocabularies of the constraint engine and
// the regex templates built from them: the nutrient keyword table, the min/max
// operator phrases, diet and health tags, time words, stop words, and the
// generic nouns used to suppress false-positive ingredient detection.
//
// Operator/nutrient matching is table-driven: Rules is an ordered list of
// per-nutrient rule rows, each carrying the compiled patterns for every
// operator in precedence order, evaluated by one shared routine
// (FindGuarded). Precedence lives in the tables, not in control flow.
package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// Direction says which bound an operator phrase expresses.
type Direction int

const (
	MaxBound Direction = iota
	MinBound
)

// Operator is one operator phrase row: the surface phrase, the bound it sets,
// and whether matches must be guarded against a preceding "no " (computed in
// init: a phrase is guarded iff "no "+phrase is itself an operator, so
// "less than" never fires inside "no less than").
type Operator struct {
	Phrase  string
	Dir     Direction
	Guarded bool

	// Context matches the operator with a number and a required unit but no
	// nutrient keyword, for context-hinted elliptical turns ("under 450 kcal").
	Context *regexp.Regexp
}

// Operators in precedence order: all max phrases, then all min phrases.
var Operators = []Operator{
	{Phrase: "no more than", Dir: MaxBound},
	{Phrase: "less than", Dir: MaxBound},
	{Phrase: "fewer than", Dir: MaxBound},
	{Phrase: "under", Dir: MaxBound},
	{Phrase: "below", Dir: MaxBound},
	{Phrase: "maximum", Dir: MaxBound},
	{Phrase: "max", Dir: MaxBound},
	{Phrase: "no less than", Dir: MinBound},
	{Phrase: "more than", Dir: MinBound},
	{Phrase: "at least", Dir: MinBound},
	{Phrase: "over", Dir: MinBound},
	{Phrase: "above", Dir: MinBound},
	{Phrase: "minimum", Dir: MinBound},
	{Phrase: "min", Dir: MinBound},
	{Phrase: "exceeding", Dir: MinBound},
	{Phrase: "exceed", Dir: MinBound},
}

// Nutrient is one row of the ordered nutrient keyword table. HasMin is false
// for dimensions whose key vocabulary only carries a max bound.
type Nutrient struct {
	Keyword   string
	Canonical string
	HasMin    bool
}

// Nutrients maps surface keywords to canonical constraint names, in match
// precedence order. Never a Go map: row order is part of the contract.
var Nutrients = []Nutrient{
	{"calorie", "calories", true},
	{"kcal", "calories", true},
	{"calories", "calories", true},
	{"carb", "carbs", true},
	{"carbohydrate", "carbs", true},
	{"carbohydrates", "carbs", true},
	{"protein", "protein", true},
	{"sugar", "sugar", true},
	{"sodium", "sodium", true},
	{"fat", "fat", true},
	{"saturated fat", "saturated_fat", false},
}

// OpRule binds one operator to one nutrient keyword, in both phrase orders.
type OpRule struct {
	Op       Operator
	Forward  *regexp.Regexp // operator, number, optional unit, nutrient
	Reversed *regexp.Regexp // nutrient, operator, number
}

// NutrientRules is one row of the evaluation table: every operator pattern
// for a nutrient keyword plus its symbolic "<N"/">N" fallbacks.
type NutrientRules struct {
	Nutrient    Nutrient
	Max         []OpRule
	Min         []OpRule
	SymbolicMax *regexp.Regexp
	SymbolicMin *regexp.Regexp
}

// Rules is the full compiled rule table, one row per nutrient keyword.
var Rules []NutrientRules

const (
	number    = `(\d+(?:\.\d+)?)`
	unitOpt   = `(?:g|mg|kcal|gram|milligram|calorie)?`
	unitShort = `(?:g|mg|kcal)`
)

func init() {
	for i := range Operators {
		op := &Operators[i]
		op.Guarded = guardedPhrase(op.Phrase)
		op.Context = regexp.MustCompile(`\b` + regexp.QuoteMeta(op.Phrase) + `\s+` + number + `\s*` + unitShort + `\b`)
	}

	for _, n := range Nutrients {
		row := NutrientRules{
			Nutrient:    n,
			SymbolicMax: regexp.MustCompile(`<\s*` + number + `\s*` + unitShort + `?\s*` + regexp.QuoteMeta(n.Keyword) + `s?\b`),
			SymbolicMin: regexp.MustCompile(`>\s*` + number + `\s*` + unitShort + `?\s*` + regexp.QuoteMeta(n.Keyword) + `s?\b`),
		}
		for _, op := range Operators {
			rule := OpRule{
				Op:       op,
				Forward:  regexp.MustCompile(`\b` + regexp.QuoteMeta(op.Phrase) + `\s+` + number + `\s*` + unitOpt + `\s*` + regexp.QuoteMeta(n.Keyword) + `s?\b`),
				Reversed: regexp.MustCompile(regexp.QuoteMeta(n.Keyword) + `s?\s+` + regexp.QuoteMeta(op.Phrase) + `\s+` + number),
			}
			if op.Dir == MaxBound {
				row.Max = append(row.Max, rule)
			} else {
				row.Min = append(row.Min, rule)
			}
		}
		Rules = append(Rules, row)
	}
}

// guardedPhrase reports whether "no "+phrase is itself an operator phrase.
func guardedPhrase(phrase string) bool {
	negated := "no " + phrase
	for _, op := range Operators {
		if op.Phrase == negated {
			return true
		}
	}
	return false
}

// FindGuarded returns the first capture of re in text whose match is not
// excluded by the operator guard. Go's regexp has no lookbehind, so the
// guard is a positional check: a guarded match is rejected when the three
// bytes before it are "no" plus whitespace, and scanning continues at the
// next candidate.
func FindGuarded(re *regexp.Regexp, text string, guarded bool) (string, bool) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if guarded && blockedByNo(text, loc[0]) {
			continue
		}
		if loc[2] < 0 {
			continue
		}
		return text[loc[2]:loc[3]], true
	}
	return "", false
}

func blockedByNo(text string, start int) bool {
	if start < 3 {
		return false
	}
	return text[start-3:start-1] == "no" && isSpaceByte(text[start-1])
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// DietTags is the closed diet vocabulary, matched by substring.
var DietTags = []string{"vegan", "vegetarian", "paleo", "keto", "gluten-free", "dairy-free", "low-carb"}

// HealthTags is the closed health vocabulary; "healthy" additionally
// contributes the "healthy-2" category.
var HealthTags = []string{"healthy", "light", "low-fat"}

// TimeWords are suppressed during the ingredient token scan.
var TimeWords = newSet("minute", "time", "duration", "hour", "hr", "min", "minutes", "mins", "sec", "seconds")

// NutrientTerms reject ingredient candidates that mention a nutrient.
// Checked by substring containment on phrase candidates and by exact
// membership on single tokens.
var NutrientTerms = newSet("protein", "calorie", "sugar", "sodium", "carbohydrate", "carb", "fat", "calories", "carbs")

// StopWords are request-scaffolding words that are never ingredients.
var StopWords = newSet(
	"show", "find", "give", "need", "want", "something", "recipes", "dishes",
	"meals", "options", "ideas", "make", "breakfast", "lunch", "dinner",
	"dessert", "snack", "quick", "healthy", "high", "low", "people", "no",
)

// GenericNouns are food-adjacent but non-discriminative nouns ("dish",
// "meal"); they are dropped from ingredient candidates and synonym sets.
var GenericNouns = newSet(
	"recipe", "recipes", "option", "options", "idea", "ideas", "meal",
	"meals", "food", "dinner", "dinners", "lunch", "lunches", "breakfast",
	"breakfasts", "dessert", "desserts", "appetizer", "appetizers", "soup",
	"soups", "salad", "salads", "dish", "dishes", "serving", "servings",
	"person", "people", "g", "mg", "kcal", "time", "constraint",
	"preference", "preferences", "style", "diet", "diets", "sweet", "snack",
	"snacks", "appetiser", "appetisers", "starter", "starters",
)

// StopPhrases reject ingredient candidates that embed an operator fragment.
var StopPhrases = []string{"no more than", "no less than", "more than", "less than"}

// NumberWords resolve spelled-out counts, checked by substring in this order.
var NumberWords = []struct {
	Word  string
	Value float64
}{
	{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
	{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
}

var digitRE = regexp.MustCompile(number)

// Number extracts the first numeric value from text: digits win, then
// spelled-out number words. The second return is false when neither appears.
func Number(text string) (float64, bool) {
	if m := digitRE.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return v, true
		}
	}
	lower := strings.ToLower(text)
	for _, nw := range NumberWords {
		if strings.Contains(lower, nw.Word) {
			return nw.Value, true
		}
	}
	return 0, false
}

// CountPatterns capture the count word of a "find N recipes" style request.
var CountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:find|show|give me)\s+(\w+)\s+(?:recipes|dishes|meals|options)`),
	regexp.MustCompile(`(\w+)\s+(?:vegan|vegetarian|keto|paleo)`),
}

// ServingsRE captures a "serve 6-8 people" style range.
var ServingsRE = regexp.MustCompile(`(?:serve|serving|around|about)?\s*(\d+)\s*[-–to]+\s*(\d+)\s*(?:people|servings?)?`)

// TimeOpRE matches an explicit "operator N minutes" duration with any max
// operator; TimeInRE handles "in (under|about) N minutes".
var TimeOpRE *regexp.Regexp

var TimeInRE = regexp.MustCompile(`in\s+(?:under|about)?\s*(\d+)\s*(?:min|minute|minutes)`)

func init() {
	var phrases []string
	for _, op := range Operators {
		if op.Dir == MaxBound {
			phrases = append(phrases, regexp.QuoteMeta(op.Phrase))
		}
	}
	TimeOpRE = regexp.MustCompile(`(?:` + strings.Join(phrases, "|") + `)\s+(\d+)\s*(?:min|minute|minutes)`)
}

// FindDuration returns the leftmost duration capture of TimeOpRE, skipping
// matches where a guarded operator sits behind a "no ".
func FindDuration(text string) (string, bool) {
	for _, loc := range TimeOpRE.FindAllStringSubmatchIndex(text, -1) {
		if blockedByNo(text, loc[0]) && guardedAt(text, loc[0]) {
			continue
		}
		return text[loc[2]:loc[3]], true
	}
	return "", false
}

func guardedAt(text string, start int) bool {
	for _, op := range Operators {
		if op.Guarded && strings.HasPrefix(text[start:], op.Phrase) {
			return true
		}
	}
	return false
}

// Ingredient clause patterns. RE2 has no lookahead, so each clause ends with a
// consumed terminator group rather than a zero-width bound. The capture is the
// same either way since no terminator can begin another clause's cue word.
var IncludeClauses = []*regexp.Regexp{
	regexp.MustCompile(`with\s+([\w\s]+?)\s*(?:,|\band\b|\bunder\b|\bbelow\b|\bover\b|\babove\b|\bless\b|\bmore\b|\.|$)`),
	regexp.MustCompile(`containing\s+([\w\s]+?)\s*(?:,|\band\b|\bwithout\b|\.|$)`),
	regexp.MustCompile(`(?:include|using)\s+([\w\s]+?)\s*(?:,|\band\b|\.|$)`),
}

var ExcludeClauses = []*regexp.Regexp{
	regexp.MustCompile(`without\s+([\w\s]+?)\s*(?:,|\band\b|\.|$)`),
	regexp.MustCompile(`exclude\s+([\w\s]+?)\s*(?:,|\band\b|\.|$)`),
}

// The standalone "no X" clause is matched in two parts: NoLeadRE finds the
// candidate and NoTailRE validates what follows it. Consuming the "and no"
// terminator directly would swallow the next clause's own "no".
var (
	NoLeadRE = regexp.MustCompile(`\bno\s+(\w+)`)
	NoTailRE = regexp.MustCompile(`^\s*(?:,|and\s+no|\.|$)`)
)

// TokenRE selects the 3+ letter words scanned in the ingredient fallback pass.
var TokenRE = regexp.MustCompile(`\b[a-z]{3,}\b`)

// QualifierRE strips a trailing qualifier clause from an ingredient candidate.
var QualifierRE = regexp.MustCompile(`\s+(?:under|below|over|above|less|more|than|at|least).*`)

func newSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
