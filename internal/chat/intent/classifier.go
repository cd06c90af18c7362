// Package intent provides the in/out-of-domain gate and the short-reply
// classifier used by the confirmation flows.
package intent

import (
	"strings"
)

// Intent is the coarse reading of a short reply.
type Intent string

const (
	Affirmative Intent = "affirmative"
	Negative    Intent = "negative"
	Unknown     Intent = "unknown"
)

var affirmativeKeywords = map[string]struct{}{
	"sí": {}, "si": {}, "claro": {}, "dale": {}, "ok": {}, "vale": {},
	"perfecto": {}, "excelente": {}, "afirmativo": {}, "confirmo": {},
	"muéstrame": {}, "muestrame": {}, "yes": {},
}

var negativeKeywords = map[string]struct{}{
	"no": {}, "para": {}, "detente": {}, "cancela": {}, "nada": {},
	"ninguna": {}, "negativo": {},
}

const punctuation = "¡!¿?.,;:"

// Classify maps a short reply to affirmative, negative or unknown using
// word-level keyword matching. Punctuation is stripped so "¡Sí!"
// matches the same as "si".
func Classify(text string) Intent {
	cleaned := strings.ToLower(text)
	cleaned = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, cleaned)

	for _, word := range strings.Fields(cleaned) {
		if _, ok := affirmativeKeywords[word]; ok {
			return Affirmative
		}
	}
	for _, word := range strings.Fields(cleaned) {
		if _, ok := negativeKeywords[word]; ok {
			return Negative
		}
	}
	return Unknown
}
