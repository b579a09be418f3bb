package stream

import "testing"

func TestEstimateEmptyText(t *testing.T) {
	if got := NewTokenEstimator().Estimate(""); got != 0 {
		t.Fatalf("empty text must cost nothing, got %d", got)
	}
}

func TestEstimatePositiveForText(t *testing.T) {
	te := NewTokenEstimator()
	short := te.Estimate("ls")
	long := te.Estimate("find / -type f -name '*.log' -mtime +30 -delete")
	if short <= 0 || long <= 0 {
		t.Fatalf("estimates must be positive: short=%d long=%d", short, long)
	}
	if long <= short {
		t.Fatalf("longer text must cost more tokens: short=%d long=%d", short, long)
	}
}

func TestApproximateTokens(t *testing.T) {
	if got := approximateTokens("one two three"); got != 3 {
		t.Fatalf("expected 3 for three words, got %d", got)
	}
	if got := approximateTokens("  spaced \t out \n words  "); got != 3 {
		t.Fatalf("expected 3 for three words, got %d", got)
	}
}
