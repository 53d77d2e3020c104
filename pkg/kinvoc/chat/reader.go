package chat

import (
	"os"
	"strings"
)

// Utterance is one speaker line of a transcript, paired with its
// morphological tier when the file carries one.
type Utterance struct {
	Speaker string  // speaker code as transcribed, leading stars removed
	Text    string  // raw utterance text after the speaker delimiter
	Line    int     // 1-based line number in the source file
	Mor     []Entry // parsed morphological tier, nil when absent
}

// IsChild reports whether the utterance was produced by the target
// child (speaker code CHI, compared case-insensitively).
func (u Utterance) IsChild() bool {
	return strings.ToUpper(u.Speaker) == "CHI"
}

// Parse extracts the utterances of a transcript. A speaker line starts
// with "*" and carries a "speaker: text" pair; the morphological tier,
// when present, is found by scanning the annotation lines that
// immediately follow it. Speaker lines missing their delimiter are
// skipped, annotation and header lines are ignored.
func Parse(text string) []Utterance {
	lines := splitLines(text)
	var utts []Utterance
	for i, line := range lines {
		if !strings.HasPrefix(line, "*") {
			continue
		}
		prefix, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		u := Utterance{
			Speaker: strings.TrimSpace(strings.TrimLeft(prefix, "*")),
			Text:    rest,
			Line:    i + 1,
		}
		for j := i + 1; j < len(lines) && strings.HasPrefix(lines[j], "%"); j++ {
			if strings.HasPrefix(lines[j], "%mor:") {
				u.Mor = ParseMorTier(lines[j][len("%mor:"):])
				break
			}
		}
		utts = append(utts, u)
	}
	return utts
}

// ReadFile reads and parses one transcript. Bytes that do not form
// valid UTF-8 are dropped rather than failing the file, matching the
// mixed encodings found in older transcript collections.
func ReadFile(path string) ([]Utterance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(strings.ToValidUTF8(string(data), "")), nil
}

// HasMorTier reports whether any line of the transcript text is a
// morphological tier. Files lacking the tier entirely force the
// classifier down to surface-only heuristics, which the coverage
// report quantifies.
func HasMorTier(text string) bool {
	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, "%mor:") {
			return true
		}
	}
	return false
}

// MorTiers returns the content of every morphological tier line in the
// transcript, in order, independent of the speaker lines. The lemma
// frequency profile consumes tiers file-wide rather than
// per-utterance.
func MorTiers(text string) []string {
	var tiers []string
	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, "%mor:") {
			tiers = append(tiers, line[len("%mor:"):])
		}
	}
	return tiers
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
