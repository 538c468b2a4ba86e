package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const corpus = `Airbnb sold cereal boxes to fund operations during a cash crunch.

Slack pivoted from a game studio after noticing its internal chat tool was the real product.

Stripe grew by personally installing its payment integration for early customers.`

func TestRetrieve_RanksByOverlap(t *testing.T) {
	st := New(corpus)
	if st.Len() != 3 {
		t.Fatalf("passages = %d", st.Len())
	}
	got, err := st.Retrieve(context.Background(), "How did Slack pivot its product?", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0][:5] != "Slack" {
		t.Fatalf("got %q", got)
	}
}

func TestRetrieve_NoMatch(t *testing.T) {
	st := New(corpus)
	got, err := st.Retrieve(context.Background(), "zzz qqq", 5)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %q, %v", got, err)
	}
	if got, _ := st.Retrieve(context.Background(), "Stripe", 0); got != nil {
		t.Fatalf("k=0 should return nothing, got %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "kb.txt")
	if err := os.WriteFile(p, []byte(corpus), 0o600); err != nil {
		t.Fatal(err)
	}
	st, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if st.Len() != 3 {
		t.Fatalf("passages = %d", st.Len())
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("want error for missing file")
	}
}
