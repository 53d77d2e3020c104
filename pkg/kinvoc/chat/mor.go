package chat

import (
	"regexp"
	"strings"
)

// Entry is one analyzed token of a morphological tier: a part-of-speech
// tag and a lemma. POS "n:prop" marks proper nouns, which the
// classifier uses for title+name exclusion. Sub-tokens carrying no
// part-of-speech separator are tagged "unk" so that positional
// alignment with the surface words is preserved; such entries have an
// empty Raw, which keeps them out of the lemma frequency stream.
type Entry struct {
	POS   string
	Lemma string // lowercased, inflection suffix stripped
	Raw   string // lemma as written, inflection suffix intact; "" when unanalyzed
}

var lemmaTrimRe = regexp.MustCompile(`^[^a-z]+|[^a-z]+$`)

// ParseMorTier parses the content of a morphological tier line into
// ordered entries. Tokens split on the clitic boundary marker "~" into
// separate entries (n:prop|Mommy~aux|be yields two), each entry splits
// on its first "|" into tag and lemma, and the lemma is truncated at
// the first "&" inflection marker and lowercased. Pure punctuation
// tokens are discarded.
func ParseMorTier(content string) []Entry {
	var entries []Entry
	for _, tok := range strings.Fields(content) {
		if strings.Contains(".,!?;:", tok) {
			continue
		}
		for _, sub := range strings.Split(tok, "~") {
			pos, rest, ok := strings.Cut(sub, "|")
			if !ok {
				entries = append(entries, Entry{POS: "unk", Lemma: strings.ToLower(sub)})
				continue
			}
			lemma, _, _ := strings.Cut(rest, "&")
			entries = append(entries, Entry{POS: pos, Lemma: strings.ToLower(lemma), Raw: rest})
		}
	}
	return entries
}

// NormalizeLemma reduces a raw tier lemma to its citation form: the
// part before any "&" inflection marker, with a trailing all-caps or
// all-digit hyphen suffix removed (compound markers like "-POSS"),
// lowercased, and stripped of leading and trailing non-letter
// characters. Returns "" when nothing survives.
func NormalizeLemma(raw string) string {
	base, _, _ := strings.Cut(raw, "&")
	base = strings.TrimSpace(base)
	if i := strings.LastIndex(base, "-"); i >= 0 {
		if tail := base[i+1:]; isUpperTail(tail) || isDigits(tail) {
			base = base[:i]
		}
	}
	base = strings.ToLower(base)
	return lemmaTrimRe.ReplaceAllString(base, "")
}

// isUpperTail mirrors the uppercase test used when trimming hyphen
// suffixes: at least one letter, and every letter uppercase.
func isUpperTail(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= 'a' && r <= 'z':
			return false
		}
	}
	return hasLetter
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
