package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// CountTokens is a rough estimate: the larger of four characters per token
// and four tokens per three words.
func CountTokens(text string) int {
	byChars := utf8.RuneCountInString(text) / 4
	byWords := len(strings.Fields(text)) * 4 / 3
	return max(byChars, byWords, 1)
}
