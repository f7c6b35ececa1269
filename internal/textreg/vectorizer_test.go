package textreg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"paneer", "wrap", "2x"}, tokenize("Paneer-Wrap 2x"))
	// Single characters are dropped by the two-plus token pattern.
	assert.Empty(t, tokenize("a b c"))
}

func TestVectorizerFitVocabulary(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"paneer butter masala", "paneer tikka"})

	// 4 distinct unigrams plus 3 bigrams.
	assert.Equal(t, 7, v.NumFeatures())
	assert.Contains(t, v.Vocabulary, "paneer")
	assert.Contains(t, v.Vocabulary, "paneer butter")
	assert.Contains(t, v.Vocabulary, "butter masala")
	assert.Contains(t, v.Vocabulary, "paneer tikka")
	assert.Len(t, v.IDF, v.NumFeatures())

	// Indices are lexicographic over the retained terms.
	assert.Equal(t, 0, v.Vocabulary["butter"])
	for _, idf := range v.IDF {
		assert.Greater(t, idf, 0.0)
	}
}

func TestVectorizerMaxFeatures(t *testing.T) {
	v := NewVectorizer()
	v.NgramMax = 1
	v.MaxFeatures = 2
	v.Fit([]string{"rice dal rice", "rice dal", "rice naan"})

	// "rice" and "dal" are the most frequent terms.
	assert.Equal(t, 2, v.NumFeatures())
	assert.Contains(t, v.Vocabulary, "rice")
	assert.Contains(t, v.Vocabulary, "dal")
}

func TestVectorizerTransformL2Normalized(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"paneer butter masala", "chicken biryani"})

	rows := v.Transform([]string{"paneer butter"})
	require.Len(t, rows, 1)
	require.NotEmpty(t, rows[0])

	var norm float64
	for _, w := range rows[0] {
		norm += w * w
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestVectorizerTransformUnknownTerms(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"paneer butter masala"})

	rows := v.Transform([]string{"completely unseen words"})
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0])
}

func TestVectorizerFitDeterministic(t *testing.T) {
	docs := []string{"dal rice naan", "rice biryani", "naan dal"}
	a := NewVectorizer()
	a.Fit(docs)
	b := NewVectorizer()
	b.Fit(docs)
	assert.Equal(t, a.Vocabulary, b.Vocabulary)
	assert.Equal(t, a.IDF, b.IDF)
}

func TestBuildText(t *testing.T) {
	assert.Equal(t, "Paneer Wrap spice villa spicy wrap", BuildText("Paneer Wrap", "spice villa", "spicy wrap"))
	assert.Equal(t, "Paneer Wrap spice villa", BuildText("Paneer Wrap", "spice villa", "  "))
	assert.Equal(t, "", BuildText("", "", ""))
}
