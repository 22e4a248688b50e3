// internal/matching/matcher.go
package matching

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MatchThreshold is the combined similarity above which two identities are
	// considered the same real-world product.
	MatchThreshold = 0.4

	nameWeight  = 0.7
	brandWeight = 0.3
)

// Corporate and location suffixes stripped from brands before comparison, so
// "CeraVe Labs" and "CeraVe" compare equal.
var brandSuffixes = []string{
	" new york",
	" cosmetics",
	" skincare",
	" beauty",
	" labs",
	" inc",
	" llc",
	" ltd",
	" co",
}

var nonWordPattern = regexp.MustCompile(`[^\w\s-]`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// Identity is one candidate product identity as scraped from a source.
type Identity struct {
	Name  string
	Brand string // empty when the source did not report one
}

// Similarity returns a combined name/brand similarity in [0,1].
func Similarity(a, b Identity) float64 {
	return nameWeight*nameSimilarity(a.Name, b.Name) + brandWeight*brandSimilarity(a, b)
}

// IsMatch reports whether two identities likely describe the same product.
func IsMatch(a, b Identity) bool {
	return Similarity(a, b) > MatchThreshold
}

// BestMatch selects the candidate with the highest combined similarity that
// clears the threshold. Greedy single-best selection: pools are small and
// true matches are rare, so a globally optimal assignment is not worth it.
// Returns -1 when nothing clears the threshold.
func BestMatch(target Identity, pool []Identity, threshold float64) (int, float64) {
	bestIdx := -1
	bestScore := 0.0

	for i, candidate := range pool {
		score := Similarity(target, candidate)
		if score > threshold && score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	return bestIdx, bestScore
}

func nameSimilarity(a, b string) float64 {
	na := NormalizeName(a)
	nb := NormalizeName(b)

	if na == "" || nb == "" {
		return 0
	}

	if na == nb {
		return 1.0
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.8
	}

	return jaccardWords(na, nb)
}

// jaccardWords computes set similarity over words longer than 2 characters,
// so sizes and stop-words ("16oz", "of") don't dominate.
func jaccardWords(a, b string) float64 {
	wordsA := significantWords(a)
	wordsB := significantWords(b)

	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	union := make(map[string]bool, len(wordsA)+len(wordsB))
	for w := range wordsA {
		union[w] = true
	}
	for w := range wordsB {
		union[w] = true
		if wordsA[w] {
			intersection++
		}
	}

	return float64(intersection) / float64(len(union))
}

func significantWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		if len(w) > 2 {
			words[w] = true
		}
	}
	return words
}

func brandSimilarity(a, b Identity) float64 {
	brandA := brandOrExtracted(a)
	brandB := brandOrExtracted(b)

	if brandA == "" || brandB == "" {
		return 0
	}

	if brandA == brandB {
		return 0.5
	}

	// The 3-character guard keeps short fragments like "the" from matching
	// everything they appear in.
	if len(brandA) >= 3 && len(brandB) >= 3 &&
		(strings.Contains(brandA, brandB) || strings.Contains(brandB, brandA)) {
		return 0.3
	}

	return 0
}

func brandOrExtracted(id Identity) string {
	if id.Brand != "" {
		return NormalizeBrand(id.Brand)
	}
	return NormalizeBrand(extractBrand(id.Name))
}

// extractBrand guesses a brand from the leading capitalized words of a product
// name, for sources that report no brand field.
func extractBrand(name string) string {
	var leading []string
	for _, w := range strings.Fields(strings.TrimSpace(name)) {
		r := []rune(w)
		if len(r) == 0 || !unicode.IsUpper(r[0]) {
			break
		}
		leading = append(leading, w)
		if len(leading) == 2 {
			break
		}
	}
	return strings.Join(leading, " ")
}

// NormalizeName lowercases, collapses whitespace and strips punctuation other
// than hyphens.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeBrand additionally strips known corporate/location suffixes.
func NormalizeBrand(brand string) string {
	s := NormalizeName(brand)
	for _, suffix := range brandSuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}
