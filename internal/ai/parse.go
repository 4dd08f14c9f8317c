package ai

import (
	"errors"
	"regexp"
	"strings"
)

const maxAnswerRunes = 1200

var (
	fenceRegex     = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	blankRuns      = regexp.MustCompile(`\n{3,}`)
	ErrEmptyAnswer = errors.New("empty_answer")
)

// CleanAnswer strips code fences and surrounding blank space from model
// output and caps its length.
func CleanAnswer(text string) (string, error) {
	text = fenceRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	if r := []rune(text); len(r) > maxAnswerRunes {
		text = strings.TrimSpace(string(r[:maxAnswerRunes])) + "…"
	}
	return text, nil
}
