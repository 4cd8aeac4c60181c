// Package lexicon loads a WordNet-format noun database and answers the two
// questions the parser needs: which senses does a word have, and what are a
// sense's hypernyms. Only the noun tables are read; verbs, adjectives and
// adverbs never participate in food classification.
//
// The database is an external, versioned, read-only resource (the standard
// WNdb "dict" directory with index.noun, data.noun and noun.exc). It is loaded
// once at startup and never mutated, so a single Lexicon is safe to share
// across goroutines.
package lexicon

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Synset is one noun sense: a set of lemmas sharing a meaning, plus pointers
// to its direct hypernyms.
type Synset struct {
	Offset    string   // database offset, used as the synset's identity
	Lemmas    []string // lowercase, multi-word entries joined with underscores
	Hypernyms []string // offsets of direct hypernym synsets
}

// Head returns the synset's canonical name: its first lemma.
func (s *Synset) Head() string {
	if len(s.Lemmas) == 0 {
		return ""
	}
	return s.Lemmas[0]
}

// Lexicon holds the loaded noun database.
type Lexicon struct {
	synsets    map[string]*Synset  // offset -> synset
	index      map[string][]string // lemma -> sense offsets, most common first
	exceptions map[string][]string // irregular form -> base forms
}

// New builds a Lexicon directly from synsets, for callers that assemble their
// own vocabulary (tests, embedded fixtures). Sense order per lemma follows the
// order synsets appear in the slice.
func New(synsets []*Synset, exceptions map[string][]string) *Lexicon {
	l := &Lexicon{
		synsets:    make(map[string]*Synset, len(synsets)),
		index:      make(map[string][]string),
		exceptions: exceptions,
	}
	if l.exceptions == nil {
		l.exceptions = map[string][]string{}
	}
	for _, s := range synsets {
		l.synsets[s.Offset] = s
		for _, lemma := range s.Lemmas {
			lemma = strings.ToLower(lemma)
			l.index[lemma] = append(l.index[lemma], s.Offset)
		}
	}
	return l
}

// Load reads index.noun, data.noun and (if present) noun.exc from dir.
// A missing or unreadable index or data file is an error: the parser cannot
// run without its lexicon.
func Load(dir string) (*Lexicon, error) {
	l := &Lexicon{
		synsets:    map[string]*Synset{},
		index:      map[string][]string{},
		exceptions: map[string][]string{},
	}

	if err := l.loadData(filepath.Join(dir, "data.noun")); err != nil {
		return nil, err
	}
	if err := l.loadIndex(filepath.Join(dir, "index.noun")); err != nil {
		return nil, err
	}
	if err := l.loadExceptions(filepath.Join(dir, "noun.exc")); err != nil {
		return nil, err
	}
	return l, nil
}

// Senses returns the synsets for word, most common first, after noun
// morphology (plural reduction and the exception list). An unknown word
// yields nil, never an error.
func (l *Lexicon) Senses(word string) []*Synset {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil
	}
	for _, form := range l.baseForms(word) {
		offsets, ok := l.index[form]
		if !ok {
			continue
		}
		out := make([]*Synset, 0, len(offsets))
		for _, off := range offsets {
			if s, ok := l.synsets[off]; ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// HypernymsOf resolves a synset's direct hypernym pointers.
func (l *Lexicon) HypernymsOf(s *Synset) []*Synset {
	if s == nil {
		return nil
	}
	out := make([]*Synset, 0, len(s.Hypernyms))
	for _, off := range s.Hypernyms {
		if h, ok := l.synsets[off]; ok {
			out = append(out, h)
		}
	}
	return out
}

// nounSuffixRules are WordNet's noun detachment rules, applied in order.
var nounSuffixRules = []struct{ suffix, replace string }{
	{"s", ""},
	{"ses", "s"},
	{"ves", "f"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
}

// baseForms returns candidate dictionary forms for word: the word itself,
// any exception-list bases, then regular suffix detachments.
func (l *Lexicon) baseForms(word string) []string {
	forms := []string{word}
	forms = append(forms, l.exceptions[word]...)
	for _, rule := range nounSuffixRules {
		if strings.HasSuffix(word, rule.suffix) && len(word) > len(rule.suffix) {
			forms = append(forms, word[:len(word)-len(rule.suffix)]+rule.replace)
		}
	}
	return forms
}

// loadData parses data.noun. Each line is:
//
//	offset lex_filenum ss_type w_cnt word lex_id [word lex_id]... p_cnt ptr... | gloss
//
// w_cnt is two-digit hex, p_cnt three-digit decimal, and each pointer is
// "symbol offset pos source/target". Only hypernym pointers ("@") are kept.
func (l *Lexicon) loadData(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening lexicon data: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "  ") || strings.TrimSpace(line) == "" {
			continue // license header
		}
		if idx := strings.Index(line, " | "); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return fmt.Errorf("malformed data line: %q", sc.Text())
		}

		wcnt, err := strconv.ParseInt(fields[3], 16, 32)
		if err != nil || wcnt < 1 {
			return fmt.Errorf("bad word count in data line %q", fields[0])
		}
		pos := 4
		if len(fields) < pos+int(wcnt)*2+1 {
			return fmt.Errorf("truncated data line %q", fields[0])
		}

		syn := &Synset{Offset: fields[0]}
		for i := 0; i < int(wcnt); i++ {
			syn.Lemmas = append(syn.Lemmas, strings.ToLower(fields[pos]))
			pos += 2 // word, lex_id
		}

		pcnt, err := strconv.Atoi(fields[pos])
		if err != nil {
			return fmt.Errorf("bad pointer count in data line %q", fields[0])
		}
		pos++
		for i := 0; i < pcnt && pos+3 < len(fields)+1; i++ {
			if pos+3 > len(fields) {
				break
			}
			symbol, target, targetPos := fields[pos], fields[pos+1], fields[pos+2]
			if symbol == "@" && targetPos == "n" {
				syn.Hypernyms = append(syn.Hypernyms, target)
			}
			pos += 4 // symbol, offset, pos, source/target
		}

		l.synsets[syn.Offset] = syn
	}
	return sc.Err()
}

// loadIndex parses index.noun. Each line is:
//
//	lemma pos synset_cnt p_cnt [ptr_symbol]... sense_cnt tagsense_cnt offset...
//
// The trailing offsets are the lemma's senses in frequency order.
func (l *Lexicon) loadIndex(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening lexicon index: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "  ") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return fmt.Errorf("malformed index line: %q", line)
		}
		if fields[1] != "n" {
			continue
		}

		synsetCnt, err := strconv.Atoi(fields[2])
		if err != nil || synsetCnt < 1 {
			return fmt.Errorf("bad synset count for %q", fields[0])
		}
		if len(fields) < synsetCnt {
			return fmt.Errorf("truncated index line for %q", fields[0])
		}

		lemma := strings.ToLower(fields[0])
		offsets := fields[len(fields)-synsetCnt:]
		l.index[lemma] = append([]string(nil), offsets...)
	}
	return sc.Err()
}

// loadExceptions parses noun.exc: "irregular base [base]..." per line.
// The file is optional; regular morphology covers most of the vocabulary.
func (l *Lexicon) loadExceptions(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening lexicon exceptions: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		form := strings.ToLower(fields[0])
		l.exceptions[form] = append(l.exceptions[form], fields[1:]...)
	}
	return sc.Err()
}
