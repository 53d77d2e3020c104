package corpus

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// punctuation part-of-speech tags excluded from the lemma stream
var punctPOS = map[string]bool{"cm": true, "0v": true, "0n": true, "L2": true}

// Frequency holds corpus-wide occurrence totals for every tracked
// lexeme, counted two ways: from surface word forms and from
// morphological-tier lemmas. The two denominators differ because the
// tier is absent from part of the corpus.
type Frequency struct {
	Surface      map[string]int
	Lemma        map[string]int
	SurfaceTotal int
	LemmaTotal   int
}

// AnalyzeFrequency counts tracked lexemes under root. Surface counts
// scan speaker lines with compound collapsing; lemma counts scan every
// morphological tier in the file independently, with agentive folding
// (teach&dv-AGT counts as teacher) and conservative lemma cleanup.
func AnalyzeFrequency(root string, lex *lexicon.Lexicon) (*Frequency, WalkStats, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	freq := &Frequency{
		Surface: make(map[string]int),
		Lemma:   make(map[string]int),
	}

	stats, err := Walk(root, func(f File) error {
		for _, u := range f.Utterances() {
			freq.addSurface(lex, u.Text)
		}
		for _, tier := range chat.MorTiers(f.Text) {
			freq.addLemmas(lex, tier)
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return freq, stats, nil
}

func (fr *Frequency) addSurface(lex *lexicon.Lexicon, text string) {
	tokens := chat.Words(text)
	for _, tok := range tokens {
		if !lexicon.IsNoise(tok) {
			fr.SurfaceTotal++
		}
	}

	for i := 0; i < len(tokens); {
		if lexicon.IsNoise(tokens[i]) {
			i++
			continue
		}
		t1 := lex.Normalize(tokens[i])
		if i+1 < len(tokens) && !lexicon.IsNoise(tokens[i+1]) {
			t2 := lex.Normalize(tokens[i+1])
			if lexeme, ok := lex.CompoundOf(t1, t2); ok && lex.IsTracked(lexeme) {
				fr.Surface[lexeme]++
				i += 2
				continue
			}
		}
		if lex.IsTracked(t1) {
			fr.Surface[t1]++
		}
		i++
	}
}

func (fr *Frequency) addLemmas(lex *lexicon.Lexicon, tier string) {
	var lemmas []string
	for _, e := range chat.ParseMorTier(tier) {
		if punctPOS[e.POS] {
			continue
		}
		var lemma string
		if strings.Contains(e.Raw, "&dv-AGT") {
			base, _, _ := strings.Cut(e.Raw, "&")
			if agent, ok := lex.Agentive(strings.ToLower(base)); ok {
				lemma = agent
			} else {
				lemma = lex.Variant(chat.NormalizeLemma(e.Raw))
			}
		} else {
			lemma = lex.Variant(chat.NormalizeLemma(e.Raw))
		}
		if !hasLetter(lemma) || lexicon.IsNoise(lemma) {
			continue
		}
		lemmas = append(lemmas, lemma)
	}
	fr.LemmaTotal += len(lemmas)

	for i := 0; i < len(lemmas); {
		if i+1 < len(lemmas) {
			if lexeme, ok := lex.CompoundOf(lemmas[i], lemmas[i+1]); ok && lex.IsTracked(lexeme) {
				fr.Lemma[lexeme]++
				i += 2
				continue
			}
		}
		if lex.IsTracked(lemmas[i]) {
			fr.Lemma[lemmas[i]]++
		}
		i++
	}
}

// hasLetter reports whether the normalized lemma contains any letter.
// Purely numeric or symbolic analyses stay out of the lemma stream and
// its denominator.
func hasLetter(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return true
		}
	}
	return false
}

// WriteTSV writes the frequency profile, one row per tracked lexeme in
// canonical order: kinship terms, non-kin nouns, benchmarks.
func (fr *Frequency) WriteTSV(w io.Writer, lex *lexicon.Lexicon) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{
		"term", "category",
		"surface_count", "surface_per_million",
		"lemma_count", "lemma_per_million",
	}); err != nil {
		return err
	}
	for _, term := range lex.Tracked() {
		category := "benchmark"
		switch {
		case lex.IsTerm(term):
			category = "kinship"
		case lex.IsNonKin(term):
			category = "non-kin"
		}
		record := []string{
			term, category,
			itoa(fr.Surface[term]), perMillion(fr.Surface[term], fr.SurfaceTotal),
			itoa(fr.Lemma[term]), perMillion(fr.Lemma[term], fr.LemmaTotal),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
