// Package knowledge serves advisor context passages from a local text file.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"stratoguide/internal/domain/ports/adapter"
)

var _ adapter.ContextRetriever = (*Store)(nil)

// Store holds passages split on blank lines and ranks them by term overlap.
type Store struct {
	passages []passage
}

type passage struct {
	text  string
	terms map[string]struct{}
}

// LoadFile reads path; passages are separated by one or more blank lines.
func LoadFile(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	return New(string(b)), nil
}

func New(text string) *Store {
	st := &Store{}
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		st.passages = append(st.passages, passage{text: block, terms: termSet(block)})
	}
	return st
}

func (s *Store) Len() int { return len(s.passages) }

func (s *Store) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 || len(s.passages) == 0 {
		return nil, nil
	}
	q := termSet(query)
	type scored struct {
		idx   int
		score int
	}
	var hits []scored
	for i, p := range s.passages {
		n := 0
		for t := range q {
			if _, ok := p.terms[t]; ok {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, scored{i, n})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, s.passages[h.idx].text)
	}
	return out, ctx.Err()
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "what": {},
	"how": {}, "you": {}, "your": {}, "are": {}, "was": {}, "did": {}, "does": {},
	"can": {}, "from": {}, "into": {}, "about": {}, "when": {}, "why": {},
}

func termSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
