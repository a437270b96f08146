// Package textsim scores pairwise text similarity for short documents.
// Two measures are provided: a plain Jaccard index over token sets, and a
// corpus-weighted measure that rewards rare shared vocabulary via IDF
// weights. Everything here is pure; corpus statistics travel as an explicit
// Corpus value, never as ambient state.
package textsim

import (
	"math"
	"strings"
	"unicode"

	"github.com/kailas-cloud/topix/internal/domain"
)

// minTokenLen is exclusive: tokens of this length or shorter are discarded.
const minTokenLen = 2

// Tokenize normalizes text into an ordered token sequence: lowercase, strip
// non-alphanumeric runes, split on whitespace, drop tokens of length <= 2.
// Deterministic and pure.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)

	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, lowered)

	var tokens []string
	for _, t := range strings.Fields(stripped) {
		if len(t) <= minTokenLen {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// Jaccard computes |A ∩ B| / |A ∪ B| over the token sets of both texts.
// Cheap fallback measure; returns 0 when either text has no tokens.
func Jaccard(a, b string) domain.Similarity {
	setA := tokenSet(Tokenize(a))
	setB := tokenSet(Tokenize(b))

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return domain.Similarity(float64(intersection) / float64(union))
}

// Corpus holds document-frequency statistics for one batch invocation.
type Corpus struct {
	size    int
	docFreq map[string]int
}

// NewCorpus builds corpus statistics from the full text list of a batch.
// Each document contributes each of its distinct tokens once.
func NewCorpus(texts []string) *Corpus {
	df := make(map[string]int)
	for _, text := range texts {
		for t := range tokenSet(Tokenize(text)) {
			df[t]++
		}
	}
	return &Corpus{size: len(texts), docFreq: df}
}

// Size returns the number of documents in the corpus.
func (c *Corpus) Size() int { return c.size }

// DocFreq returns how many corpus documents contain the token.
func (c *Corpus) DocFreq(token string) int { return c.docFreq[token] }

// Weight is the inverse-document-frequency weight ln(size / (docFreq+1)).
// Rare tokens weigh more; tokens in every document weigh near (or below) zero.
func (c *Corpus) Weight(token string) float64 {
	return math.Log(float64(c.size) / float64(c.docFreq[token]+1))
}

// Similarity is the primary corpus-weighted measure: sum the IDF weights of
// tokens shared by both texts, divided by max(|tokens(a)|, |tokens(b)|)
// counted over the full token sequences. Returns 0 when either text has no
// tokens. The score is computed for the argument order as invoked; no
// symmetrization pass is applied.
func (c *Corpus) Similarity(a, b string) domain.Similarity {
	tokensA := Tokenize(a)
	tokensB := Tokenize(b)

	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := tokenSet(tokensA)
	setB := tokenSet(tokensB)

	var sum float64
	for t := range setA {
		if setB[t] {
			sum += c.Weight(t)
		}
	}
	if sum < 0 {
		sum = 0
	}

	longest := len(tokensA)
	if len(tokensB) > longest {
		longest = len(tokensB)
	}

	return domain.Similarity(sum / float64(longest))
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
