// Package classify labels kinship-term occurrences in transcript
// utterances as vocative calls or syntactic arguments, splitting
// arguments into bare and determined forms.
package classify

import (
	"strings"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// Label is the final classification of one occurrence.
type Label string

const (
	// LabelVocative marks a direct address ("Mommy, look!").
	LabelVocative Label = "vocative"
	// LabelBare marks an argument with no determiner or possessive
	// ("tell mommy"), the construction the study is after.
	LabelBare Label = "bare"
	// LabelDetermined marks an argument introduced by a determiner,
	// possessive, or coordination with a determined term ("my mom").
	LabelDetermined Label = "determined"
)

// IsArgument reports whether the label is either argument kind.
func (l Label) IsArgument() bool { return l != LabelVocative }

// Occurrence is one classified kinship-term instance within a single
// utterance.
type Occurrence struct {
	Term       string // normalized lexeme, compounds collapsed
	Label      Label
	StartToken int  // first token of the term in the utterance token sequence
	EndToken   int  // last token; differs from StartToken only for compounds
	TitleName  bool // the morphological tier flagged a following proper noun
}

// Classifier labels utterances against a fixed lexicon and heuristic.
//
// The decision procedure for each kinship item:
// - vocative when the utterance is a standalone call (nothing left but
//   kinship terms once discourse particles are stripped) or the item is
//   comma-offset; the strict and loose heuristics tighten or widen this
// - otherwise an argument: determined when the item carries a genitive,
//   follows a determiner or genitive, or coordinates with a determined
//   kinship term two positions back
// - title+name forms ("Aunt Sarah") are pulled out of the bare bucket
//   by checking the morphological tier for a following proper noun; the
//   name is the head there, not the kinship term
//
// Tie-breaks are fixed: the vocative test always wins, and determiner
// detection wins over the title+name override. Alignment between
// surface words and tier entries is approximate, so the proper-noun
// check searches a small window around the expected position instead of
// trusting the index.
type Classifier struct {
	lex       *lexicon.Lexicon
	heuristic Heuristic
}

// New returns a classifier over the given lexicon. A nil lexicon means
// the built-in defaults.
func New(lex *lexicon.Lexicon, h Heuristic) *Classifier {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Classifier{lex: lex, heuristic: h}
}

// Lexicon returns the vocabulary the classifier runs against.
func (c *Classifier) Lexicon() *lexicon.Lexicon { return c.lex }

// Heuristic returns the active vocative heuristic.
func (c *Classifier) Heuristic() Heuristic { return c.heuristic }

// word is one non-noise word token of the utterance being classified.
type word struct {
	norm string
	raw  string
	tok  int // index into the full token sequence
}

// item is one collapsed lexeme with its span in word positions.
type item struct {
	lex        string
	start, end int
}

// Classify returns the classified kinship occurrences of one
// utterance, in surface order. Utterances with no kinship terms return
// nil. Malformed input never fails: anything unparseable simply
// produces no occurrences.
func (c *Classifier) Classify(u chat.Utterance) []Occurrence {
	tokens := chat.Tokenize(u.Text)

	words := make([]word, 0, len(tokens))
	for i, tok := range tokens {
		if !tok.IsWord || lexicon.IsNoise(tok.Surface) {
			continue
		}
		words = append(words, word{norm: c.lex.Normalize(tok.Surface), raw: tok.Surface, tok: i})
	}
	if len(words) == 0 {
		return nil
	}

	items := c.collapse(words)

	// Standalone test: discourse particles and residual noise are
	// invisible to it, so "hi , Mommy !" is still a pure call.
	filtered := items[:0:0]
	for _, it := range items {
		if !c.lex.IsDiscourse(it.lex) && !lexicon.IsNoise(it.lex) {
			filtered = append(filtered, it)
		}
	}
	standalone := len(filtered) > 0
	for _, it := range filtered {
		if !c.lex.IsTerm(it.lex) {
			standalone = false
			break
		}
	}
	initialStart := -1
	if len(filtered) > 0 {
		initialStart = filtered[0].start
	}

	var occs []Occurrence
	for _, it := range items {
		if !c.lex.IsTerm(it.lex) {
			continue
		}
		startTok := words[it.start].tok
		endTok := words[it.end].tok

		if c.isVocative(tokens, startTok, endTok, standalone, it.start == initialStart) {
			occs = append(occs, Occurrence{
				Term:       it.lex,
				Label:      LabelVocative,
				StartToken: startTok,
				EndToken:   endTok,
			})
			continue
		}

		titleName := false
		if it.start == it.end && c.lex.IsTitleTerm(it.lex) && len(u.Mor) > 0 {
			titleName = c.titleNameFollows(it.lex, it.start, u.Mor)
		}

		label := LabelBare
		if c.hasDeterminer(words, it.start) || titleName {
			label = LabelDetermined
		}
		occs = append(occs, Occurrence{
			Term:       it.lex,
			Label:      label,
			StartToken: startTok,
			EndToken:   endTok,
			TitleName:  titleName,
		})
	}
	return occs
}

// collapse merges adjacent compound halves left to right, greedily and
// without overlap.
func (c *Classifier) collapse(words []word) []item {
	items := make([]item, 0, len(words))
	for i := 0; i < len(words); {
		if i+1 < len(words) {
			if lexeme, ok := c.lex.CompoundOf(words[i].norm, words[i+1].norm); ok {
				items = append(items, item{lex: lexeme, start: i, end: i + 1})
				i += 2
				continue
			}
		}
		items = append(items, item{lex: words[i].norm, start: i, end: i})
		i++
	}
	return items
}

func (c *Classifier) isVocative(tokens []chat.Token, startTok, endTok int, standalone, initial bool) bool {
	comma := commaAdjacent(tokens, startTok, endTok)
	switch c.heuristic {
	case HeuristicStrict:
		return comma
	case HeuristicLoose:
		return comma || standalone || initial
	default:
		return comma || standalone
	}
}

func commaAdjacent(tokens []chat.Token, startTok, endTok int) bool {
	if startTok > 0 && tokens[startTok-1].Surface == "," {
		return true
	}
	if endTok+1 < len(tokens) && tokens[endTok+1].Surface == "," {
		return true
	}
	return false
}

// hasDeterminer tests the three determined-argument patterns at word
// position idx: self-genitive, preceding determiner or genitive, and
// the coordination pattern "det + kin + and/or + kin".
func (c *Classifier) hasDeterminer(words []word, idx int) bool {
	if lexicon.HasGenitive(words[idx].raw) {
		return true
	}
	j := idx - 1
	if j >= 0 && (c.lex.IsDeterminer(words[j].norm) || lexicon.HasGenitive(words[j].raw)) {
		return true
	}
	if j >= 0 && c.lex.IsCoordinator(words[j].norm) && j-2 >= 0 &&
		c.lex.IsTerm(words[j-1].norm) &&
		(c.lex.IsDeterminer(words[j-2].norm) || lexicon.HasGenitive(words[j-2].raw)) {
		return true
	}
	return false
}

// titleNameFollows reports whether the tier entry aligned with the
// term at word position idx has an immediate proper-noun successor.
// The search tolerates up to two positions of drift either way and
// commits to the first entry that looks like our term.
func (c *Classifier) titleNameFollows(term string, idx int, mor []chat.Entry) bool {
	lo := idx - 2
	if lo < 0 {
		lo = 0
	}
	hi := idx + 3
	if hi > len(mor) {
		hi = len(mor)
	}
	for mi := lo; mi < hi; mi++ {
		if c.lex.IsTerm(mor[mi].Lemma) || strings.HasPrefix(term, mor[mi].Lemma) {
			return mi+1 < len(mor) && mor[mi+1].POS == "n:prop"
		}
	}
	return false
}
