package stream

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// TokenEstimator counts tokens for results whose backend did not report
// usage. BPE when the codec loads, word-count approximation otherwise.
type TokenEstimator struct {
	once  sync.Once
	codec tokenizer.Codec
}

// NewTokenEstimator builds a lazy estimator; the codec is loaded on first use.
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{}
}

// Estimate returns the token count for text. Never fails: estimation
// degrades to an approximation rather than erroring.
func (te *TokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	te.once.Do(func() {
		codec, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			te.codec = codec
		}
	})
	if te.codec != nil {
		if ids, _, err := te.codec.Encode(text); err == nil {
			return len(ids)
		}
	}
	return approximateTokens(text)
}

// approximateTokens uses words * 1.3, the usual subword ratio.
func approximateTokens(text string) int {
	words := 0
	inWord := false
	for _, r := range text {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			inWord = false
		} else if !inWord {
			words++
			inWord = true
		}
	}
	return int(float64(words) * 1.3)
}
