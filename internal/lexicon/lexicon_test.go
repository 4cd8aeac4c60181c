package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

// writeDict writes a minimal WNdb-format dict directory.
func writeDict(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	dataNoun := `  1 This software and database is being provided to you, the LICENSEE.
07555863 13 n 01 food 0 001 ~ 07556637 n 0000 | any substance that can be metabolized
07566340 13 n 01 foodstuff 0 001 @ 07555863 n 0000 | a substance that can be used as food
07707451 13 n 02 vegetable 0 veggie 0 001 @ 07566340 n 0000 | edible plant matter
07724943 13 n 01 legume 0 001 @ 07707451 n 0000 | the seed of plants of the family Leguminosae
07725789 13 n 03 chickpea 0 garbanzo 0 garbanzo_bean 0 001 @ 07724943 n 0000 | large white roundish seed
04379243 06 n 01 table 0 001 @ 03405725 n 0000 | a piece of furniture
03405725 06 n 01 furniture 0 000 | furnishings that make a room ready for occupancy
`
	indexNoun := `  1 This software and database is being provided to you, the LICENSEE.
food n 1 1 @ 1 1 07555863
foodstuff n 1 1 @ 1 1 07566340
vegetable n 1 1 @ 1 1 07707451
veggie n 1 1 @ 1 1 07707451
legume n 1 1 @ 1 1 07724943
chickpea n 1 1 @ 1 1 07725789
garbanzo n 1 1 @ 1 1 07725789
garbanzo_bean n 1 1 @ 1 1 07725789
table n 1 1 @ 1 1 04379243
furniture n 1 1 @ 1 1 03405725
`
	nounExc := `teeth tooth
lives life
`
	files := map[string]string{
		"data.noun":  dataNoun,
		"index.noun": indexNoun,
		"noun.exc":   nounExc,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	lex, err := Load(writeDict(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	senses := lex.Senses("chickpea")
	if len(senses) != 1 {
		t.Fatalf("chickpea senses = %d, want 1", len(senses))
	}
	s := senses[0]
	if s.Head() != "chickpea" {
		t.Errorf("head = %q, want chickpea", s.Head())
	}
	if len(s.Lemmas) != 3 || s.Lemmas[2] != "garbanzo_bean" {
		t.Errorf("lemmas = %v", s.Lemmas)
	}

	hyps := lex.HypernymsOf(s)
	if len(hyps) != 1 || hyps[0].Head() != "legume" {
		t.Fatalf("hypernyms of chickpea = %v", hyps)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load of empty dir should fail")
	}
}

func TestMorphology(t *testing.T) {
	lex, err := Load(writeDict(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		word string
		head string
	}{
		{"chickpeas", "chickpea"},       // s-rule
		{"veggies", "vegetable"},        // s-rule on a non-head lemma
		{"garbanzo_beans", "chickpea"},  // compound plural
		{"CHICKPEA", "chickpea"},        // case folding
		{"legume", "legume"},            // identity
	}
	for _, tt := range tests {
		senses := lex.Senses(tt.word)
		if len(senses) == 0 {
			t.Errorf("Senses(%q) empty", tt.word)
			continue
		}
		if senses[0].Head() != tt.head {
			t.Errorf("Senses(%q)[0] = %q, want %q", tt.word, senses[0].Head(), tt.head)
		}
	}

	if senses := lex.Senses("quinoa"); senses != nil {
		t.Errorf("Senses(quinoa) = %v, want nil", senses)
	}
}

func TestClassifierFoodRelated(t *testing.T) {
	lex, err := Load(writeDict(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c := NewClassifier(lex)

	// vegetable is a root head; legume reaches it at depth one; chickpea at
	// depth two.
	for _, word := range []string{"vegetable", "legume", "chickpea", "garbanzo"} {
		if !c.FoodRelated(word) {
			t.Errorf("FoodRelated(%q) = false", word)
		}
	}
	for _, word := range []string{"table", "furniture", "quinoa"} {
		if c.FoodRelated(word) {
			t.Errorf("FoodRelated(%q) = true", word)
		}
	}
}

func TestClassifierSynonyms(t *testing.T) {
	lex := New([]*Synset{
		{Offset: "1", Lemmas: []string{"food"}},
		{Offset: "2", Lemmas: []string{"vegetable"}, Hypernyms: []string{"1"}},
		{Offset: "3", Lemmas: []string{"legume"}, Hypernyms: []string{"2"}},
		{Offset: "4", Lemmas: []string{"chickpea", "garbanzo", "garbanzo_bean"}, Hypernyms: []string{"3"}},
		{Offset: "5", Lemmas: []string{"very_long_compound_name_entry", "bean"}, Hypernyms: []string{"3"}},
	}, nil)
	c := NewClassifier(lex)

	got := c.Synonyms("garbanzo beans")
	want := []string{"bean", "chickpea", "garbanzo", "garbanzo bean", "garbanzo beans"}
	if len(got) != len(want) {
		t.Fatalf("Synonyms(garbanzo beans) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Synonyms(garbanzo beans) = %v, want %v", got, want)
		}
	}

	// The phrase itself survives even when nothing is known about it.
	got = c.Synonyms("Dragon Fruit")
	if len(got) != 1 || got[0] != "dragon fruit" {
		t.Errorf("Synonyms(Dragon Fruit) = %v", got)
	}
}

func TestSenseOrderCapped(t *testing.T) {
	// Four senses indexed for one lemma; only the first MaxSenses take part
	// in classification.
	synsets := []*Synset{
		{Offset: "10", Lemmas: []string{"bolt"}, Hypernyms: []string{"90"}},
		{Offset: "11", Lemmas: []string{"bolt"}, Hypernyms: []string{"90"}},
		{Offset: "12", Lemmas: []string{"bolt"}, Hypernyms: []string{"90"}},
		{Offset: "13", Lemmas: []string{"bolt"}, Hypernyms: []string{"91"}},
		{Offset: "90", Lemmas: []string{"hardware"}},
		{Offset: "91", Lemmas: []string{"food"}},
	}
	c := NewClassifier(New(synsets, nil))
	if c.FoodRelated("bolt") {
		t.Error("fourth sense should be beyond the sense cap")
	}
}

func TestExceptions(t *testing.T) {
	lex := New([]*Synset{
		{Offset: "1", Lemmas: []string{"tooth"}},
	}, map[string][]string{"teeth": {"tooth"}})

	senses := lex.Senses("teeth")
	if len(senses) != 1 || senses[0].Head() != "tooth" {
		t.Errorf("Senses(teeth) = %v", senses)
	}
}
