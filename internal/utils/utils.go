package utils

import (
	"math/rand"
	"strings"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode returns a short room code. The alphabet skips easily
// confused characters (0/O, 1/I).
func GenerateCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// MaskContent converts every letter to an underscore for display,
// preserving spaces, so "ice cream" becomes "_ _ _   _ _ _ _ _".
func MaskContent(content string) string {
	return RevealHints(content, 0)
}

// RevealHints masks the content except for the first n units of its
// deterministic reveal order. The order is derived from the content itself
// so every reveal broadcast for the same word agrees.
func RevealHints(content string, n int) string {
	if content == "" {
		return ""
	}
	revealed := make(map[int]bool, n)
	for _, idx := range revealOrder(content) {
		if n <= 0 {
			break
		}
		revealed[idx] = true
		n--
	}

	masked := make([]string, 0, len(content))
	for i, r := range content {
		switch {
		case r == ' ':
			masked = append(masked, " ")
		case revealed[i]:
			masked = append(masked, string(r))
		default:
			masked = append(masked, "_")
		}
	}
	return strings.Join(masked, " ")
}

// HintUnits returns how many units of the content can be revealed before
// the whole word is shown; spaces never count.
func HintUnits(content string) int {
	return len(revealOrder(content))
}

// revealOrder produces a stable pseudo-random permutation of the letter
// indices, seeded from the content bytes.
func revealOrder(content string) []int {
	indices := make([]int, 0, len(content))
	var seed int64
	for i, r := range content {
		seed = seed*31 + int64(r)
		if r != ' ' {
			indices = append(indices, i)
		}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}

// NormalizeGuess prepares a guess or target word for comparison.
func NormalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
