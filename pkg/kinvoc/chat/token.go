// Package chat parses conversational transcript files: speaker lines,
// annotation tiers, and the word/punctuation tokenization the
// classifier operates on. It knows the file format only; vocabulary
// lives in the lexicon package.
package chat

import "regexp"

// Words are letter runs joined by internal hyphens or apostrophes
// ("mom's", "jack-in-the-box"). The token pattern additionally captures
// the four punctuation marks that matter for vocative detection, each
// as its own token.
var (
	wordRe  = regexp.MustCompile(`[A-Za-z]+(?:[-'][A-Za-z]+)*`)
	tokenRe = regexp.MustCompile(`[A-Za-z]+(?:[-'][A-Za-z]+)*|[.,!?]`)
)

// Token is one surface token of an utterance.
type Token struct {
	Surface string
	IsWord  bool // word token vs punctuation mark
}

// Tokenize splits an utterance into word and punctuation tokens,
// preserving order. Everything the patterns do not match (codes,
// digits, unusual symbols) is dropped silently.
func Tokenize(utterance string) []Token {
	matches := tokenRe.FindAllString(utterance, -1)
	tokens := make([]Token, len(matches))
	for i, m := range matches {
		tokens[i] = Token{Surface: m, IsWord: isLetter(m[0])}
	}
	return tokens
}

// Words returns only the word tokens of an utterance, punctuation
// excluded.
func Words(utterance string) []string {
	return wordRe.FindAllString(utterance, -1)
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
