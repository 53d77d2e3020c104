package corpus

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// Coverage reports how much of the corpus the morphological tier
// reaches. The title+name exclusion only operates where the tier
// exists, so kinship occurrences in uncovered files inflate the bare
// rate; this diagnostic bounds that risk.
type Coverage struct {
	Files             int                      `json:"files"`
	FilesWithMor      int                      `json:"files_with_mor"`
	Utterances        int                      `json:"utterances"`
	UtterancesWithMor int                      `json:"utterances_with_mor"`
	Terms             map[string]*TermCoverage `json:"terms"`
	Flagged           []FlaggedFile            `json:"flagged"`
}

// TermCoverage splits one term's occurrences by tier availability.
// CapFollowing counts occurrences in uncovered files whose next word
// is capitalized, the surface stand-in for a title+name reading.
type TermCoverage struct {
	WithMor      int `json:"with_mor"`
	WithoutMor   int `json:"without_mor"`
	CapFollowing int `json:"cap_following"`
}

// FlaggedFile is a transcript whose tier coverage falls below the
// thresholds.
type FlaggedFile struct {
	Rel        string     `json:"file"`
	Utterances int        `json:"utterances"`
	WithMor    int        `json:"with_mor"`
	Reason     FlagReason `json:"reason"`
}

// FlagReason explains why a file was flagged.
type FlagReason struct {
	NoMor    bool    `json:"no_mor"`    // no morphological tier anywhere in the file
	LowShare bool    `json:"low_share"` // tier share below the threshold
	Share    float64 `json:"share"`     // utterances with a tier / utterances
}

// CoverageThresholds tune file flagging. Zero values take defaults:
// flag files under 50% tier share once they have at least 20
// utterances.
type CoverageThresholds struct {
	MinShare      float64
	MinUtterances int
}

// AnalyzeCoverage measures tier coverage under root.
func AnalyzeCoverage(root string, lex *lexicon.Lexicon, th CoverageThresholds) (*Coverage, WalkStats, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	if th.MinShare == 0 {
		th.MinShare = 0.5
	}
	if th.MinUtterances == 0 {
		th.MinUtterances = 20
	}

	cov := &Coverage{Terms: make(map[string]*TermCoverage)}

	stats, err := Walk(root, func(f File) error {
		cov.Files++
		fileHasMor := chat.HasMorTier(f.Text)
		if fileHasMor {
			cov.FilesWithMor++
		}

		utts := f.Utterances()
		withMor := 0
		for _, u := range utts {
			if len(u.Mor) > 0 {
				withMor++
			}
			cov.countTerms(lex, u.Text, fileHasMor)
		}
		cov.Utterances += len(utts)
		cov.UtterancesWithMor += withMor

		share := 0.0
		if len(utts) > 0 {
			share = float64(withMor) / float64(len(utts))
		}
		if len(utts) >= th.MinUtterances && share < th.MinShare {
			cov.Flagged = append(cov.Flagged, FlaggedFile{
				Rel:        f.Rel,
				Utterances: len(utts),
				WithMor:    withMor,
				Reason: FlagReason{
					NoMor:    !fileHasMor,
					LowShare: true,
					Share:    share,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	sort.Slice(cov.Flagged, func(i, j int) bool {
		return cov.Flagged[i].Rel < cov.Flagged[j].Rel
	})
	return cov, stats, nil
}

// countTerms tallies kinship occurrences in one utterance by tier
// availability, plus the capitalized-successor signal where the tier
// is absent.
func (c *Coverage) countTerms(lex *lexicon.Lexicon, text string, fileHasMor bool) {
	words := chat.Words(text)
	for i, tok := range words {
		if lexicon.IsNoise(tok) {
			continue
		}
		term := lex.Normalize(tok)
		if !lex.IsTerm(term) {
			continue
		}
		tc := c.Terms[term]
		if tc == nil {
			tc = &TermCoverage{}
			c.Terms[term] = tc
		}
		if fileHasMor {
			tc.WithMor++
			continue
		}
		tc.WithoutMor++
		if i+1 < len(words) {
			next := words[i+1]
			if next[0] >= 'A' && next[0] <= 'Z' && !lexicon.IsNoise(next) {
				tc.CapFollowing++
			}
		}
	}
}

// WriteJSON writes the coverage report as indented JSON.
func (c *Coverage) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
