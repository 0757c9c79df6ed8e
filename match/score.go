package match

import "github.com/xrash/smetrics"

// Standard Jaro-Winkler parameters. The prefix boost suits both typo'd
// tokens and code strings, where related codes share long prefixes.
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Ratio returns the normalized indel similarity of two strings in [0, 1].
// Substitutions count as a delete plus an insert.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	dist := smetrics.Ukkonen(a, b, 1, 1, 2)
	total := len(a) + len(b)
	r := 1 - float64(dist)/float64(total)
	if r < 0 {
		return 0
	}
	return r
}

// TokenSortRatio returns the indel similarity of two texts after sorting
// their tokens, in [0, 1]. Word order does not affect the score.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortKey(a), sortKey(b))
}

// CodeSimilarity returns the Jaro-Winkler similarity of two code strings.
func CodeSimilarity(a, b string) float64 {
	return smetrics.JaroWinkler(a, b, jwBoostThreshold, jwPrefixSize)
}
