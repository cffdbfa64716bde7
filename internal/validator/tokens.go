// internal/validator/tokens.go
package validator

import (
	"strconv"
	"strings"
	"unicode"
)

// token is one whitespace-delimited word of the draft with its parsed
// numeric value, if any. The raw form keeps unit markers ($, %, commas)
// so checks can tell money and percentages apart from bare scores.
type token struct {
	raw        string
	word       string // lowercased, punctuation trimmed
	value      float64
	isNumber   bool
	hasDollar  bool
	hasPercent bool
	hasComma   bool
}

func tokenize(text string) []token {
	fields := strings.Fields(text)
	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, parseToken(f))
	}
	return tokens
}

func parseToken(raw string) token {
	t := token{raw: raw}
	trimmed := strings.TrimFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '$' && r != '%'
	})
	t.word = strings.ToLower(strings.Trim(trimmed, "$%"))

	numeric := trimmed
	if strings.HasPrefix(numeric, "$") {
		t.hasDollar = true
		numeric = numeric[1:]
	}
	if strings.HasSuffix(numeric, "%") {
		t.hasPercent = true
		numeric = numeric[:len(numeric)-1]
	}
	if strings.Contains(numeric, ",") {
		t.hasComma = true
		numeric = strings.ReplaceAll(numeric, ",", "")
	}
	if numeric == "" {
		return t
	}
	if v, err := strconv.ParseFloat(numeric, 64); err == nil {
		t.value = v
		t.isNumber = true
	}
	return t
}

// nearKeyword reports whether any token within the window around index i
// is in the keyword set.
func nearKeyword(tokens []token, i, window int, keywords map[string]bool) bool {
	lo := i - window
	if lo < 0 {
		lo = 0
	}
	hi := i + window
	if hi >= len(tokens) {
		hi = len(tokens) - 1
	}
	for j := lo; j <= hi; j++ {
		if j == i {
			continue
		}
		if keywords[tokens[j].word] {
			return true
		}
	}
	return false
}

// keywordPrecedes reports whether a keyword occurs within the window of
// tokens just before index i. Used where word order matters: "average of
// 3.4" states an average, "5 (asset class average)" does not.
func keywordPrecedes(tokens []token, i, window int, keywords map[string]bool) bool {
	lo := i - window
	if lo < 0 {
		lo = 0
	}
	for j := lo; j < i; j++ {
		if keywords[tokens[j].word] {
			return true
		}
	}
	return false
}

// normalizeFormula maps a formula line onto the canonical spelling used by
// the whitelist: lowercase, unicode operators folded to / and *, runs of
// whitespace collapsed.
func normalizeFormula(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "÷", "/")
	s = strings.ReplaceAll(s, "×", "*")
	s = strings.ReplaceAll(s, " x ", " * ")
	return strings.Join(strings.Fields(s), " ")
}

// extractFormula pulls "label = expression" out of a line. The label is
// the trailing run of purely alphabetic words immediately before the first
// equals sign; a number or symbol there means the line is a worked numeric
// example, not a formula definition, and ok is false.
func extractFormula(line string) (label, expr string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}

	left := strings.Fields(line[:idx])
	var labelWords []string
	for i := len(left) - 1; i >= 0; i-- {
		w := strings.Trim(left[i], ".,;:()")
		if w == "" || !alphabetic(w) {
			break
		}
		labelWords = append([]string{w}, labelWords...)
	}
	if len(labelWords) == 0 {
		return "", "", false
	}

	expr = strings.TrimSpace(line[idx+1:])
	expr = strings.TrimRight(expr, ".")
	if expr == "" {
		return "", "", false
	}
	return strings.Join(labelWords, " "), expr, true
}

func alphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	return true
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
