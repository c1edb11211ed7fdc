// Package similarity holds the string primitives behind duplicate detection:
// phone normalization and levenshtein-based name similarity.
package similarity

import "strings"

// NormalizePhone strips everything but digits, then a recognized country-code
// prefix: 1 for 11-digit numbers, 52 for 12-digit ones. Total function,
// unparseable input normalizes to whatever digits remain.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, "52"):
		return digits[2:]
	}
	return digits
}

// Similarity returns 1 - levenshtein(a,b)/max(len(a),len(b)) over the
// lower-cased inputs. Symmetric; two empty strings are identical.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance with unit insert/delete/substitute cost
// using the two-row dynamic-programming table.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
