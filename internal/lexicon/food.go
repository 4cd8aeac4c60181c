package lexicon

import (
	"sort"
	"strings"
)

// Sense and traversal cutoffs. These are empirical precision/recall knobs:
// widening either one pulls in figurative senses ("turkey" the failure,
// "chicken" the coward) faster than it recovers real ingredients.
const (
	// MaxSenses is how many of a word's most common senses are examined.
	MaxSenses = 3
	// HypernymDepth is how many hypernym levels are searched for a food root.
	HypernymDepth = 2
	// MaxSynonymWords drops compound lemmas longer than this many words.
	MaxSynonymWords = 3
)

// foodRoots are the synset head names that mark a sense as food-related,
// either directly or via a near hypernym.
var foodRoots = map[string]struct{}{
	"food": {}, "foodstuff": {}, "nutriment": {}, "dish": {}, "ingredient": {}, "edible": {},
	"poultry": {}, "meat": {}, "beef": {}, "pork": {}, "fish": {}, "seafood": {},
	"vegetable": {}, "veg": {}, "fruit": {}, "grain": {}, "cereal": {},
	"spice": {}, "herb": {}, "condiment": {}, "sauce": {},
	"beverage": {}, "drink": {}, "dairy": {}, "cheese": {}, "bread": {},
}

// Classifier answers food-relatedness and synonym-expansion queries against a
// loaded Lexicon. It is immutable after construction.
type Classifier struct {
	lex *Lexicon
}

// NewClassifier wraps a loaded lexicon.
func NewClassifier(lex *Lexicon) *Classifier {
	return &Classifier{lex: lex}
}

// FoodRelated reports whether any of word's top senses is food-related.
// Unknown words are not food-related; there is no error path.
func (c *Classifier) FoodRelated(word string) bool {
	for _, syn := range topSenses(c.lex, word) {
		if c.foodSense(syn) {
			return true
		}
	}
	return false
}

// foodSense checks the synset itself and HypernymDepth levels of hypernyms
// against the food roots. First hit wins.
func (c *Classifier) foodSense(s *Synset) bool {
	if _, ok := foodRoots[s.Head()]; ok {
		return true
	}
	for _, h := range c.lex.HypernymsOf(s) {
		if _, ok := foodRoots[h.Head()]; ok {
			return true
		}
		for _, h2 := range c.lex.HypernymsOf(h) {
			if _, ok := foodRoots[h2.Head()]; ok {
				return true
			}
		}
	}
	return false
}

// Synonyms expands a food phrase into the lemma names of its food-related
// senses. Each whitespace token is looked up on its own, and the whole phrase
// is additionally tried as a single underscore-joined compound so multi-word
// dictionary entries ("garbanzo_bean") contribute their lemmas too. The
// original lowercased phrase is always part of the result. Sorted for
// determinism.
func (c *Classifier) Synonyms(phrase string) []string {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	set := map[string]struct{}{}
	if phrase != "" {
		set[phrase] = struct{}{}
	}

	for _, word := range strings.Fields(phrase) {
		c.collectLemmas(word, set)
	}
	if compound := strings.ReplaceAll(phrase, " ", "_"); compound != phrase {
		c.collectLemmas(compound, set)
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// collectLemmas adds the lemmas of word's food-related top senses to set.
func (c *Classifier) collectLemmas(word string, set map[string]struct{}) {
	for _, syn := range topSenses(c.lex, word) {
		if !c.foodSense(syn) {
			continue
		}
		for _, lemma := range syn.Lemmas {
			name := strings.ReplaceAll(strings.ToLower(lemma), "_", " ")
			if len(strings.Fields(name)) <= MaxSynonymWords {
				set[name] = struct{}{}
			}
		}
	}
}

func topSenses(lex *Lexicon, word string) []*Synset {
	senses := lex.Senses(word)
	if len(senses) > MaxSenses {
		senses = senses[:MaxSenses]
	}
	return senses
}
