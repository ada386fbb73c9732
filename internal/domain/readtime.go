package domain

import (
	"unicode"
)

// WordsPerMinute is the reading speed used for estimates
const WordsPerMinute = 200

// CountWords counts whitespace separated words. Each Han, Hiragana, Katakana
// or Hangul rune counts as a word of its own.
func CountWords(text string) int {
	words := 0
	inWord := false
	for _, r := range text {
		switch {
		case isCJK(r):
			words++
			inWord = false
		case unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '\'' && r != '-'):
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}
	return words
}

// ReadingMinutes returns max(1, ceil(words/WordsPerMinute))
func ReadingMinutes(text string) int {
	words := CountWords(text)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
