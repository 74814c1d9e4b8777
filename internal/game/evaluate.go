// internal/game/evaluate.go
//
// Guess scoring and hint generation.

package game

import (
	"fmt"
	"strings"
)

// Evaluate scores guess against target using the two-pass algorithm.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count the remaining (non-correct) target letters.
//
// Pass 2:
//   - For each non-correct guess letter: if that letter still has a remaining
//     count, mark present and decrement; otherwise mark absent.
//
// Correct positions are consumed first, so a letter never earns more
// correct+present marks than it appears in target.
//
// Both inputs are expected to be uppercase A–Z of equal length. If they are
// not the same length only the shared prefix is compared and the result still
// has len(target) entries.
func Evaluate(guess, target string) []LetterStatus {
	n := len(target)
	res := make([]LetterStatus, n)
	var counts [26]int

	for i := 0; i < n; i++ {
		if i < len(guess) && guess[i] == target[i] {
			res[i] = StatusCorrect
			continue
		}
		if j := letterIndex(target[i]); j >= 0 {
			counts[j]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == StatusCorrect {
			continue
		}
		res[i] = StatusAbsent
		if i >= len(guess) {
			continue
		}
		if j := letterIndex(guess[i]); j >= 0 && counts[j] > 0 {
			res[i] = StatusPresent
			counts[j]--
		}
	}
	return res
}

// letterIndex maps an uppercase ASCII letter to 0..25, or -1.
func letterIndex(b byte) int {
	if b < 'A' || b > 'Z' {
		return -1
	}
	return int(b - 'A')
}

// IsAlpha reports whether s is non-empty and all uppercase A–Z.
func IsAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if letterIndex(s[i]) < 0 {
			return false
		}
	}
	return true
}

// Normalize trims and uppercases a typed word.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// BuildHints returns the letter hints for word: first letter, last letter,
// and for words of five or more letters the middle letter.
func BuildHints(word string) []string {
	w := Normalize(word)
	if w == "" {
		return nil
	}
	hints := []string{
		fmt.Sprintf("It starts with %q.", w[:1]),
		fmt.Sprintf("It ends with %q.", w[len(w)-1:]),
	}
	if len(w) >= 5 {
		mid := len(w) / 2
		hints = append(hints, fmt.Sprintf("Watch for the letter %q in the middle.", w[mid:mid+1]))
	}
	return hints
}
