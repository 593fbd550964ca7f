package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Vectorizer computes L2-normalized TF-IDF vectors over a small ad-hoc
// corpus. It is fitted per call, which suits its only consumer: pairwise
// lexical similarity between one request's retrieval candidates.
type Vectorizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Vectorize builds a vocabulary from the given texts and returns one
// unit-length vector per text, in input order. Texts whose tokens are
// all stopwords map to the zero vector.
func (v *Vectorizer) Vectorize(texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, errors.New("empty corpus")
	}

	df := make(map[string]int)
	tokenized := make([][]string, len(texts))
	for i, text := range texts {
		tokens := v.tokenize(text)
		tokenized[i] = tokens
		seen := make(map[string]struct{})
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return nil, errors.New("no tokens found in corpus")
	}

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(texts))
	for i, term := range terms {
		vocabulary[term] = i
		// Smoothed IDF
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	vectors := make([][]float64, len(texts))
	for i, tokens := range tokenized {
		vec := make([]float64, len(terms))
		tf := make(map[int]int)
		total := 0
		for _, tok := range tokens {
			if idx, ok := vocabulary[tok]; ok {
				tf[idx]++
				total++
			}
		}
		if total > 0 {
			for idx, count := range tf {
				vec[idx] = float64(count) / float64(total) * idf[idx]
			}
			normalize(vec)
		}
		vectors[i] = vec
	}

	return vectors, nil
}

// Cosine returns the cosine similarity of two equal-length vectors.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func normalize(vec []float64) {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] /= norm
	}
}

func (v *Vectorizer) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := v.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
