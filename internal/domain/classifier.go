package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Trailing characters or particles that end a question.
var questionSuffixes = []string{"?", "？", "嗎", "吗", "呢", "麼", "么"}

// Phrases that open a question. English entries must be followed by a
// non-letter so that "whatever" or "however" do not count.
var questionPrefixes = []string{
	"what", "how", "why", "when", "where", "who", "which",
	"can you", "could you", "would you", "do you", "did you",
	"is there", "are there", "is it",
	"請問", "什麼", "甚麼", "怎麼", "怎樣", "為什麼", "为什么", "如何", "誰", "哪",
}

// Keywords that mark a question anywhere in the text.
var questionKeywords = []string{
	"多少", "幾點", "几点", "哪裡", "哪里", "哪個", "是不是", "有沒有", "有没有",
	"可不可以", "能不能", "要不要", "怎麼辦",
}

// questionChecks run in order; any match makes the text a question.
var questionChecks = []func(string) bool{
	hasQuestionSuffix,
	hasQuestionPrefix,
	hasQuestionKeyword,
}

// IsQuestion reports whether free text reads as a question rather than a task.
func IsQuestion(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	for _, check := range questionChecks {
		if check(normalized) {
			return true
		}
	}
	return false
}

func hasQuestionSuffix(s string) bool {
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '~' || r == '～' || r == '!' || r == '！'
	})
	for _, suffix := range questionSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func hasQuestionPrefix(s string) bool {
	for _, prefix := range questionPrefixes {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		rest := s[len(prefix):]
		if rest == "" || !isASCIIWord(prefix) {
			return true
		}
		next, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsLetter(next) {
			return true
		}
	}
	return false
}

func hasQuestionKeyword(s string) bool {
	for _, kw := range questionKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func isASCIIWord(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
