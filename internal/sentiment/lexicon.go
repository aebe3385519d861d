// Package sentiment scores news text deterministically. The score feeds
// auto-trade decisions, so the same article must always produce the same
// result; nothing here consults a random source.
package sentiment

import (
	"strings"
	"unicode"
)

var positive = map[string]struct{}{
	"beat": {}, "beats": {}, "bullish": {}, "buy": {}, "buyback": {},
	"upgrade": {}, "upgraded": {}, "growth": {}, "profit": {}, "profits": {},
	"record": {}, "strong": {}, "surge": {}, "surges": {}, "rally": {},
	"rallies": {}, "gain": {}, "gains": {}, "dividend": {}, "outperform": {},
	"raise": {}, "raises": {}, "raised": {}, "jump": {}, "jumps": {},
	"soar": {}, "soars": {}, "optimistic": {}, "exceeds": {}, "expands": {},
}

var negative = map[string]struct{}{
	"miss": {}, "misses": {}, "missed": {}, "bearish": {}, "sell": {},
	"selloff": {}, "downgrade": {}, "downgraded": {}, "loss": {}, "losses": {},
	"weak": {}, "plunge": {}, "plunges": {}, "drop": {}, "drops": {},
	"fall": {}, "falls": {}, "decline": {}, "declines": {}, "lawsuit": {},
	"recall": {}, "fraud": {}, "probe": {}, "investigation": {}, "cuts": {},
	"cut": {}, "layoff": {}, "layoffs": {}, "bankruptcy": {}, "warns": {},
	"warning": {}, "slump": {}, "slumps": {}, "underperform": {},
}

// Score returns +1, 0 or -1 for the given text: the sign of positive
// minus negative lexicon hits.
func Score(text string) int64 {
	var pos, neg int
	for _, w := range tokenize(text) {
		if _, ok := positive[w]; ok {
			pos++
			continue
		}
		if _, ok := negative[w]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return 1
	case neg > pos:
		return -1
	default:
		return 0
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
