package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(cacheRequestsTotal.WithLabelValues("answer", "hit"))
	IncCacheRequest(" Answer ", "HIT")
	if got := testutil.ToFloat64(cacheRequestsTotal.WithLabelValues("answer", "hit")); got != before+1 {
		t.Fatalf("cache hits = %v, want %v", got, before+1)
	}

	IncFallback("Gemini", "groq")
	if got := testutil.ToFloat64(aiFallbacks.WithLabelValues("gemini", "groq")); got < 1 {
		t.Fatalf("fallbacks = %v", got)
	}

	ObserveChatUsage("groq", "llama-3.1-8b-instant", 10, 5, 15, 120, true)
	if got := testutil.ToFloat64(aiTokensTotal.WithLabelValues("groq", "llama-3.1-8b-instant")); got < 15 {
		t.Fatalf("tokens total = %v", got)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}
