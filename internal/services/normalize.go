package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Jondude1/retro-pricer/internal/models"
)

// stripDiacritics decomposes accented characters and drops the combining
// marks, so "Pokémon" becomes "Pokemon".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stopWords are filler words plus every platform key in the catalog.
// Platform names appear inconsistently in buy-list labels ("Super Mario 64 N64")
// and search queries, so they carry no matching signal.
var stopWords = buildStopWords()

func buildStopWords() map[string]bool {
	words := map[string]bool{
		"the": true, "a": true, "an": true, "for": true,
		"in": true, "of": true, "and": true, "with": true, "w": true,
	}
	for _, key := range models.PlatformKeys() {
		words[key] = true
	}
	return words
}

// Normalize canonicalizes a free-form game title for fuzzy matching:
// ASCII-transliterated, lowercased, punctuation replaced by spaces, stop
// words removed, whitespace collapsed. Idempotent; empty input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	ascii, _, err := transform.String(stripDiacritics, text)
	if err != nil {
		ascii = text
	}
	ascii = strings.ToLower(ascii)

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if !stopWords[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// TokenSet splits a normalized string into its unique tokens.
func TokenSet(normalized string) map[string]bool {
	tokens := map[string]bool{}
	for _, f := range strings.Fields(normalized) {
		tokens[f] = true
	}
	return tokens
}
