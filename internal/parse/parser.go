package parse

import (
	"sort"
	"strconv"
	"strings"

	"github.com/platewise/mealparse/internal/lexicon"
	"github.com/platewise/mealparse/internal/pattern"
)

const quickMinutes = 30.0

// Parser extracts constraints from request text. It is stateless between
// calls and safe for concurrent use.
type Parser struct {
	foods *lexicon.Classifier
}

func New(lex *lexicon.Lexicon) *Parser {
	return &Parser{foods: lexicon.NewClassifier(lex)}
}

// Parse extracts the constraints of a single request.
func (p *Parser) Parse(query string) Constraints {
	return p.parse(query, nil)
}

func (p *Parser) parse(text string, contextNutrients []string) Constraints {
	var c Constraints
	lower := strings.ToLower(text)

	p.parseCount(lower, &c)
	p.parseServings(lower, &c)
	// Nutrient bounds before ingredients so operator clauses are never
	// mistaken for ingredient phrases.
	p.parseNutrients(lower, contextNutrients, &c)
	p.parseTime(lower, &c)
	p.parseDiet(lower, &c)
	p.parseHealth(lower, &c)
	p.parseIngredients(lower, &c)
	return c
}

func (p *Parser) parseCount(lower string, c *Constraints) {
	for _, re := range pattern.CountPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if v, ok := pattern.Number(m[1]); ok && v != 0 {
			c.Count = intPtr(int(v))
			return
		}
	}
}

func (p *Parser) parseServings(lower string, c *Constraints) {
	m := pattern.ServingsRE.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	lo, err1 := strconv.Atoi(m[1])
	hi, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return
	}
	c.MinServings = intPtr(lo)
	c.MaxServings = intPtr(hi)
}

func (p *Parser) parseNutrients(lower string, contextNutrients []string, c *Constraints) {
	for _, row := range pattern.Rules {
		maxSlot := c.boundField(row.Nutrient.Canonical, pattern.MaxBound)
		minSlot := c.boundField(row.Nutrient.Canonical, pattern.MinBound)

		// Forward order: "under 450 kcal", "at least 18g protein". A later
		// keyword for the same canonical overrides an earlier match.
		for _, rule := range row.Max {
			if s, ok := pattern.FindGuarded(rule.Forward, lower, rule.Op.Guarded); ok {
				*maxSlot = floatPtr(atof(s))
				break
			}
		}
		if minSlot != nil {
			for _, rule := range row.Min {
				if s, ok := pattern.FindGuarded(rule.Forward, lower, rule.Op.Guarded); ok {
					*minSlot = floatPtr(atof(s))
					break
				}
			}
		}

		// Reversed order: "protein at least 18". Fills gaps only.
		if *maxSlot == nil {
			for _, rule := range row.Max {
				if s, ok := pattern.FindGuarded(rule.Reversed, lower, rule.Op.Guarded); ok {
					*maxSlot = floatPtr(atof(s))
					break
				}
			}
		}
		if minSlot != nil && *minSlot == nil {
			for _, rule := range row.Min {
				if s, ok := pattern.FindGuarded(rule.Reversed, lower, rule.Op.Guarded); ok {
					*minSlot = floatPtr(atof(s))
					break
				}
			}
		}
	}

	// Symbolic fallback: "< 450 kcal", "> 20g protein".
	for _, row := range pattern.Rules {
		maxSlot := c.boundField(row.Nutrient.Canonical, pattern.MaxBound)
		minSlot := c.boundField(row.Nutrient.Canonical, pattern.MinBound)
		if *maxSlot == nil {
			if m := row.SymbolicMax.FindStringSubmatch(lower); m != nil {
				*maxSlot = floatPtr(atof(m[1]))
			}
		}
		if minSlot != nil && *minSlot == nil {
			if m := row.SymbolicMin.FindStringSubmatch(lower); m != nil {
				*minSlot = floatPtr(atof(m[1]))
			}
		}
	}

	if len(contextNutrients) == 0 {
		return
	}
	// Elliptical turn: apply a bare "under 450 kcal" to the nutrients the
	// previous responder turn was about, but only when this turn names no
	// nutrient of its own.
	for _, n := range pattern.Nutrients {
		if strings.Contains(lower, n.Keyword) {
			return
		}
	}
	for _, canonical := range contextNutrients {
		maxSlot := c.boundField(canonical, pattern.MaxBound)
		minSlot := c.boundField(canonical, pattern.MinBound)
		if maxSlot != nil && *maxSlot == nil {
			for _, op := range pattern.Operators {
				if op.Dir != pattern.MaxBound {
					continue
				}
				if s, ok := pattern.FindGuarded(op.Context, lower, op.Guarded); ok {
					*maxSlot = floatPtr(atof(s))
					break
				}
			}
		}
		if minSlot != nil && *minSlot == nil {
			for _, op := range pattern.Operators {
				if op.Dir != pattern.MinBound {
					continue
				}
				if s, ok := pattern.FindGuarded(op.Context, lower, op.Guarded); ok {
					*minSlot = floatPtr(atof(s))
					break
				}
			}
		}
	}
}

func (p *Parser) parseTime(lower string, c *Constraints) {
	if strings.Contains(lower, "quick") {
		c.MaxDuration = floatPtr(quickMinutes)
	}
	if s, ok := pattern.FindDuration(lower); ok {
		c.MaxDuration = floatPtr(atof(s))
		return
	}
	if m := pattern.TimeInRE.FindStringSubmatch(lower); m != nil {
		c.MaxDuration = floatPtr(atof(m[1]))
	}
}

func (p *Parser) parseDiet(lower string, c *Constraints) {
	var diets []string
	for _, tag := range pattern.DietTags {
		if strings.Contains(lower, tag) {
			diets = append(diets, tag)
		}
	}
	if len(diets) > 0 {
		sort.Strings(diets)
		c.Diet = diets
	}
}

func (p *Parser) parseHealth(lower string, c *Constraints) {
	var categories []string
	if strings.Contains(lower, "healthy") {
		categories = append(categories, "healthy-2", "healthy")
	}
	for _, tag := range pattern.HealthTags {
		if strings.Contains(lower, tag) && !containsString(categories, tag) {
			categories = append(categories, tag)
		}
	}
	if len(categories) > 0 {
		sort.Strings(categories)
		c.HealthCategory = categories
	}
}

func (p *Parser) parseIngredients(lower string, c *Constraints) {
	included := make(map[string]struct{})
	excluded := make(map[string]struct{})

	for _, re := range pattern.IncludeClauses {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			p.addClause(m[1], included)
		}
	}

	// Fallback scan: any remaining token that the taxonomy says is food.
	for _, word := range pattern.TokenRE.FindAllString(lower, -1) {
		if _, ok := pattern.StopWords[word]; ok {
			continue
		}
		if _, ok := pattern.NutrientTerms[word]; ok {
			continue
		}
		if containsString(pattern.DietTags, word) || containsString(pattern.HealthTags, word) {
			continue
		}
		if _, ok := pattern.TimeWords[word]; ok {
			continue
		}
		if _, ok := pattern.GenericNouns[word]; ok {
			continue
		}
		if !p.foods.FoodRelated(word) {
			continue
		}
		for _, s := range p.foods.Synonyms(word) {
			if _, generic := pattern.GenericNouns[s]; !generic {
				included[s] = struct{}{}
			}
		}
	}

	for _, m := range pattern.ExcludeClauses[0].FindAllStringSubmatch(lower, -1) {
		p.addClause(m[1], excluded)
	}

	// Standalone "no peanuts, no shellfish". The two-part match keeps one
	// clause's "and no" from consuming the next clause's cue.
	for _, loc := range pattern.NoLeadRE.FindAllStringSubmatchIndex(lower, -1) {
		if !pattern.NoTailRE.MatchString(lower[loc[1]:]) {
			continue
		}
		word := lower[loc[2]:loc[3]]
		if word == "more" || word == "less" || word == "fewer" {
			continue
		}
		if _, ok := pattern.NutrientTerms[word]; ok {
			continue
		}
		if len(word) > 2 {
			for _, s := range p.foods.Synonyms(word) {
				excluded[s] = struct{}{}
			}
		}
	}

	for _, m := range pattern.ExcludeClauses[1].FindAllStringSubmatch(lower, -1) {
		p.addClause(m[1], excluded)
	}

	if len(included) > 0 && len(excluded) > 0 {
		for s := range excluded {
			delete(included, s)
		}
	}
	if len(included) > 0 {
		c.IncludeIngredients = sortedKeys(included)
	}
	if len(excluded) > 0 {
		c.ExcludeIngredients = sortedKeys(excluded)
	}
}

// addClause vets one captured ingredient phrase and folds its synonyms into
// the target set.
func (p *Parser) addClause(raw string, into map[string]struct{}) {
	cand := strings.TrimSpace(raw)
	if _, ok := pattern.StopWords[cand]; ok {
		return
	}
	for _, phrase := range pattern.StopPhrases {
		if strings.Contains(cand, phrase) {
			return
		}
	}
	for term := range pattern.NutrientTerms {
		if strings.Contains(cand, term) {
			return
		}
	}
	cand = strings.TrimSpace(pattern.QualifierRE.ReplaceAllString(cand, ""))
	if cand == "" || len(strings.Fields(cand)) > lexicon.MaxSynonymWords {
		return
	}
	for _, s := range p.foods.Synonyms(cand) {
		into[s] = struct{}{}
	}
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
