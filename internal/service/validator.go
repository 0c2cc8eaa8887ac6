package service

import (
	"strconv"
	"strings"
	"unicode"
)

// AnswerValidator turns typed answers into numbers.
//
// Parsing is lenient: leading whitespace is skipped, an optional sign and the
// leading decimal digits are read and anything after them is ignored, so
// "28abc" reads as 28 and "3.9" as 3. Input without a leading integer is not a
// number and never matches an expected answer.
type AnswerValidator struct{}

// NewAnswerValidator creates a new AnswerValidator.
func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// Parse returns the leading integer of raw and whether one was found.
func (v *AnswerValidator) Parse(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Out of int range: no question can have such an answer.
		return 0, false
	}

	return n, true
}
