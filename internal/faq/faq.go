// Package faq answers visitor questions by keyword overlap against a static
// list of entries.
package faq

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Threshold is the minimum score for a confident answer.
const Threshold = 0.3

const (
	maxSuggestions = 3
	fallbackAnswer = "Sorry, we could not find an answer to that. Try one of the suggested questions or send us a message through the contact form."
)

//go:embed faq.json
var defaultEntries []byte

// Entry is one question with its answer.
type Entry struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

// Result is what Ask returns. Matched is false when the fallback answer is
// used; Suggestions then holds the closest questions.
type Result struct {
	Matched     bool     `json:"matched"`
	Score       float64  `json:"score"`
	EntryID     string   `json:"entry_id,omitempty"`
	Question    string   `json:"question,omitempty"`
	Answer      string   `json:"answer"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type indexed struct {
	Entry
	tokens map[string]struct{}
}

type Matcher struct {
	entries []indexed
}

// Default builds a matcher over the embedded entries.
func Default() *Matcher {
	m, err := Load(defaultEntries)
	if err != nil {
		panic(fmt.Sprintf("faq: embedded entries: %v", err))
	}
	return m
}

// Load builds a matcher from a JSON array of entries.
func Load(raw []byte) (*Matcher, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return New(entries), nil
}

func New(entries []Entry) *Matcher {
	m := &Matcher{entries: make([]indexed, 0, len(entries))}
	for _, e := range entries {
		set := map[string]struct{}{}
		for _, tok := range Tokenize(e.Question) {
			set[tok] = struct{}{}
		}
		for _, kw := range e.Keywords {
			for _, tok := range Tokenize(kw) {
				set[tok] = struct{}{}
			}
		}
		m.entries = append(m.entries, indexed{Entry: e, tokens: set})
	}
	return m
}

// Ask scores every entry by the share of question tokens it covers.
func (m *Matcher) Ask(question string) Result {
	tokens := Tokenize(question)
	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(m.entries))
	if len(tokens) > 0 {
		for i, e := range m.entries {
			overlap := 0
			for _, tok := range tokens {
				if _, ok := e.tokens[tok]; ok {
					overlap++
				}
			}
			if overlap > 0 {
				ranked = append(ranked, scored{idx: i, score: float64(overlap) / float64(len(tokens))})
			}
		}
	}
	// Stable keeps file order for ties.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > 0 && ranked[0].score >= Threshold {
		best := m.entries[ranked[0].idx]
		return Result{
			Matched:  true,
			Score:    ranked[0].score,
			EntryID:  best.ID,
			Question: best.Question,
			Answer:   best.Answer,
		}
	}

	res := Result{Answer: fallbackAnswer}
	if len(ranked) > 0 {
		res.Score = ranked[0].score
	}
	for _, r := range ranked {
		if len(res.Suggestions) == maxSuggestions {
			break
		}
		res.Suggestions = append(res.Suggestions, m.entries[r.idx].Question)
	}
	for i := 0; len(res.Suggestions) < maxSuggestions && i < len(m.entries); i++ {
		q := m.entries[i].Question
		if !contains(res.Suggestions, q) {
			res.Suggestions = append(res.Suggestions, q)
		}
	}
	return res
}

// Entries returns the questions in file order.
func (m *Matcher) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Entry
	}
	return out
}

var fold = cases.Fold()

// Tokenize case-folds s, strips accents, splits on anything that is not a
// letter or digit and drops stop words. Duplicates are removed.
func Tokenize(s string) []string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	plain = fold.String(plain)

	seen := map[string]struct{}{}
	var out []string
	for _, w := range strings.FieldsFunc(plain, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		w = stem(w)
		if len(w) < 2 {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// stem trims a plural "s" so "campaigns" matches "campaign".
func stem(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "get": {}, "has": {}, "have": {},
	"how": {}, "i": {}, "if": {}, "in": {}, "is": {}, "it": {}, "me": {}, "my": {},
	"of": {}, "on": {}, "or": {}, "our": {}, "so": {}, "that": {}, "the": {}, "this": {},
	"to": {}, "was": {}, "we": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "why": {}, "will": {}, "with": {}, "you": {}, "your": {},
}
