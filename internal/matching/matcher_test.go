// internal/matching/matcher_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilaritySameProductDifferentListings(t *testing.T) {
	a := Identity{Name: "CeraVe Moisturizing Cream", Brand: "CeraVe"}
	b := Identity{Name: "Cerave Moisturizing Cream 16oz", Brand: "CeraVe"}

	score := Similarity(a, b)
	assert.Greater(t, score, MatchThreshold, "independently scraped listings of the same item must match")
	assert.True(t, IsMatch(a, b))
}

func TestSimilarityDifferentProducts(t *testing.T) {
	a := Identity{Name: "CeraVe Cream"}
	b := Identity{Name: "The Ordinary Niacinamide"}

	score := Similarity(a, b)
	assert.LessOrEqual(t, score, MatchThreshold, "unrelated products must not match")
	assert.False(t, IsMatch(a, b))
}

func TestSimilarityIdenticalIdentity(t *testing.T) {
	a := Identity{Name: "La Roche-Posay Cicaplast Balm B5", Brand: "La Roche-Posay"}
	score := Similarity(a, a)
	// 0.7 for the exact name plus 0.3 * 0.5 for the equal brand
	assert.InDelta(t, 0.85, score, 0.0001)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "cerave moisturizing cream", NormalizeName("  CeraVe   Moisturizing Cream!! "))
	assert.Equal(t, "la roche-posay balm", NormalizeName("La Roche-Posay (Balm)"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestNormalizeBrandStripsSuffixes(t *testing.T) {
	assert.Equal(t, "glossier", NormalizeBrand("Glossier Inc"))
	assert.Equal(t, "drunk elephant", NormalizeBrand("Drunk Elephant Skincare"))
	assert.Equal(t, "maybelline", NormalizeBrand("Maybelline New York"))
	assert.Equal(t, "cerave", NormalizeBrand("CeraVe"))
}

func TestBrandContainmentGuard(t *testing.T) {
	// "CeraVe" vs "CeraVe Labs" normalizes to equality via suffix stripping
	a := Identity{Name: "Moisturizing Cream", Brand: "CeraVe"}
	b := Identity{Name: "Hydrating Cleanser", Brand: "CeraVe Labs"}
	// names share no words, brand equality contributes 0.5 * 0.3
	assert.InDelta(t, 0.15, Similarity(a, b), 0.0001)
}

func TestBrandExtractedFromName(t *testing.T) {
	// No brand on one side: the leading capitalized words stand in
	a := Identity{Name: "CeraVe Moisturizing Cream", Brand: "CeraVe"}
	b := Identity{Name: "CeraVe Moisturizing Cream"}

	assert.True(t, IsMatch(a, b))
}

func TestJaccardWordOverlap(t *testing.T) {
	a := Identity{Name: "Niacinamide 10% Zinc Serum Treatment"}
	b := Identity{Name: "Niacinamide Zinc Face Serum"}

	// Word sets overlap without substring containment
	score := Similarity(a, b)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 0.7)
}

func TestBestMatchPicksHighest(t *testing.T) {
	target := Identity{Name: "CeraVe Moisturizing Cream", Brand: "CeraVe"}
	pool := []Identity{
		{Name: "The Ordinary Niacinamide"},
		{Name: "CeraVe Moisturizing Cream 16oz", Brand: "CeraVe"},
		{Name: "CeraVe Moisturizing Cream", Brand: "CeraVe"},
	}

	idx, score := BestMatch(target, pool, MatchThreshold)
	assert.Equal(t, 2, idx, "the exact match outranks the near match")
	assert.InDelta(t, 0.85, score, 0.0001)
}

func TestBestMatchNoneAboveThreshold(t *testing.T) {
	target := Identity{Name: "CeraVe Moisturizing Cream", Brand: "CeraVe"}
	pool := []Identity{
		{Name: "The Ordinary Niacinamide"},
		{Name: "Paula's Choice BHA Exfoliant"},
	}

	idx, score := BestMatch(target, pool, MatchThreshold)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 0.0, score)
}

func TestSimilarityEmptyNames(t *testing.T) {
	assert.Equal(t, 0.0, Similarity(Identity{}, Identity{}))
	assert.Equal(t, 0.0, Similarity(Identity{Name: "CeraVe Cream"}, Identity{}))
}
