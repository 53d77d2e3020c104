package lexicon

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
)

// Category is the semantic family of a kinship term.
type Category string

const (
	Parent      Category = "parent"
	Grandparent Category = "grandparent"
	Extended    Category = "extended"
)

// Lexicon is the immutable vocabulary configuration shared by the
// classifier and the analyses:
// - kinship terms in canonical order, carved into disjoint categories
// - two-part compounds collapsed into single lexemes (grand+ma -> grandma)
// - discourse particles, determiners, coordinators
// - dialectal variant folding and comparison vocabularies
//
// Design principles:
// - Immutable after compilation: analyses never mutate vocabulary
// - Conservative normalization: suffixes are stripped only when the base
//   form is already known, so unrelated "-s" endings pass through intact
// - Injectable: tests run with reduced vocabularies via New
type Lexicon struct {
	terms    []string
	termSet  map[string]bool
	category map[string]Category

	title      map[string]bool
	compounds  map[string]string
	components map[string]bool

	discourse    map[string]bool
	determiners  map[string]bool
	coordinators map[string]bool

	variants  map[string]string
	nonkin    []string
	nonkinSet map[string]bool
	bench     []string
	benchSet  map[string]bool
	agentives map[string]string

	clusters []Cluster
}

var noiseRe = regexp.MustCompile(`^[xyw]{3,}$`)

// IsNoise reports whether a token is an unintelligible-speech filler:
// three or more characters drawn only from x, y, w (a transcription
// convention, e.g. "xxx", "yyy"). Noise tokens are excluded from all counts.
func IsNoise(tok string) bool {
	return noiseRe.MatchString(strings.ToLower(tok))
}

// HasGenitive reports whether a surface token carries possessive marking:
// a trailing 's (ASCII or right-quote apostrophe) or s'.
func HasGenitive(tok string) bool {
	t := strings.ToLower(tok)
	return strings.HasSuffix(t, "'s") || strings.HasSuffix(t, "’s") || strings.HasSuffix(t, "s'")
}

// Default returns the lexicon compiled from the built-in research defaults.
func Default() *Lexicon {
	lex, err := New(Defaults())
	if err != nil {
		// The built-in data is validated by tests; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return lex
}

// Merge overlays an override onto a base: any list or map the override
// leaves empty keeps the base value, and a non-empty one replaces it
// wholesale. The result is raw data; compile it with New to re-derive
// the member sets.
func Merge(base, override Data) Data {
	if len(override.Terms) == 0 {
		override.Terms = base.Terms
	}
	if len(override.ParentTerms) == 0 {
		override.ParentTerms = base.ParentTerms
	}
	if len(override.GrandparentTerms) == 0 {
		override.GrandparentTerms = base.GrandparentTerms
	}
	if len(override.TitleTerms) == 0 {
		override.TitleTerms = base.TitleTerms
	}
	if len(override.Compounds) == 0 {
		override.Compounds = base.Compounds
	}
	if len(override.Discourse) == 0 {
		override.Discourse = base.Discourse
	}
	if len(override.Determiners) == 0 {
		override.Determiners = base.Determiners
	}
	if len(override.Coordinators) == 0 {
		override.Coordinators = base.Coordinators
	}
	if len(override.Variants) == 0 {
		override.Variants = base.Variants
	}
	if len(override.NonKin) == 0 {
		override.NonKin = base.NonKin
	}
	if len(override.Benchmark) == 0 {
		override.Benchmark = base.Benchmark
	}
	if len(override.Agentives) == 0 {
		override.Agentives = base.Agentives
	}
	if len(override.Clusters) == 0 {
		override.Clusters = base.Clusters
	}
	return override
}

// New compiles raw lexicon data. Empty fields inherit the built-in
// defaults via Merge. Returns internalerr.ErrInvalidConfig when the
// data is inconsistent (overlapping category sets, malformed compounds)
// and internalerr.ErrDuplicate when the inventory lists a term twice.
func New(d Data) (*Lexicon, error) {
	d = Merge(Defaults(), d)

	seen := make(map[string]bool, len(d.Terms))
	for _, t := range d.Terms {
		t = strings.ToLower(t)
		if seen[t] {
			return nil, fmt.Errorf("lexicon: term %q listed twice: %w", t, internalerr.ErrDuplicate)
		}
		seen[t] = true
	}

	l := &Lexicon{
		terms:        lowerAll(d.Terms),
		termSet:      toSet(d.Terms),
		category:     make(map[string]Category, len(d.Terms)),
		title:        toSet(d.TitleTerms),
		compounds:    make(map[string]string, len(d.Compounds)),
		components:   make(map[string]bool),
		discourse:    toSet(d.Discourse),
		determiners:  toSet(d.Determiners),
		coordinators: toSet(d.Coordinators),
		variants:     make(map[string]string, len(d.Variants)),
		nonkin:       lowerAll(d.NonKin),
		nonkinSet:    toSet(d.NonKin),
		bench:        lowerAll(d.Benchmark),
		benchSet:     toSet(d.Benchmark),
		agentives:    make(map[string]string, len(d.Agentives)),
		clusters:     make([]Cluster, 0, len(d.Clusters)),
	}
	for _, c := range d.Clusters {
		l.clusters = append(l.clusters, Cluster{Name: c.Name, Members: lowerAll(c.Members)})
	}

	parent := toSet(d.ParentTerms)
	grand := toSet(d.GrandparentTerms)
	for t := range parent {
		if grand[t] {
			return nil, fmt.Errorf("lexicon: term %q in both parent and grandparent sets: %w",
				t, internalerr.ErrInvalidConfig)
		}
	}
	for _, t := range l.terms {
		switch {
		case parent[t]:
			l.category[t] = Parent
		case grand[t]:
			l.category[t] = Grandparent
		default:
			l.category[t] = Extended
		}
	}

	for pair, lexeme := range d.Compounds {
		parts := strings.Fields(strings.ToLower(pair))
		if len(parts) != 2 {
			return nil, fmt.Errorf("lexicon: compound key %q is not a two-word pair: %w",
				pair, internalerr.ErrInvalidConfig)
		}
		l.compounds[parts[0]+" "+parts[1]] = strings.ToLower(lexeme)
		l.components[parts[0]] = true
		l.components[parts[1]] = true
	}

	for from, to := range d.Variants {
		l.variants[strings.ToLower(from)] = strings.ToLower(to)
	}
	for from, to := range d.Agentives {
		l.agentives[strings.ToLower(from)] = strings.ToLower(to)
	}

	return l, nil
}

// FromYAML compiles a lexicon from a YAML override file. Lists absent
// from the file keep their built-in defaults.
func FromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Data
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("lexicon: parse %s: %w", path, internalerr.ErrInvalidConfig)
	}
	return New(d)
}

// Terms returns the kinship inventory in canonical output order.
func (l *Lexicon) Terms() []string {
	out := make([]string, len(l.terms))
	copy(out, l.terms)
	return out
}

// IsTerm reports whether a normalized form is a known kinship term.
func (l *Lexicon) IsTerm(s string) bool { return l.termSet[s] }

// Category returns the semantic family of a term. Anything outside the
// parent and grandparent sets is Extended, matching the study's
// three-way split.
func (l *Lexicon) Category(term string) Category {
	if c, ok := l.category[term]; ok {
		return c
	}
	return Extended
}

// IsTitleTerm reports whether a term participates in title+name
// constructions ("Auntie Sarah").
func (l *Lexicon) IsTitleTerm(s string) bool { return l.title[s] }

// CompoundOf returns the single lexeme for an adjacent normalized pair,
// e.g. ("grand", "ma") -> ("grandma", true).
func (l *Lexicon) CompoundOf(a, b string) (string, bool) {
	lexeme, ok := l.compounds[a+" "+b]
	return lexeme, ok
}

// IsComponent reports whether a form appears as half of any compound.
func (l *Lexicon) IsComponent(s string) bool { return l.components[s] }

func (l *Lexicon) IsDiscourse(s string) bool   { return l.discourse[s] }
func (l *Lexicon) IsDeterminer(s string) bool  { return l.determiners[s] }
func (l *Lexicon) IsCoordinator(s string) bool { return l.coordinators[s] }

// NonKin returns the non-kin comparison nouns in report order.
func (l *Lexicon) NonKin() []string {
	out := make([]string, len(l.nonkin))
	copy(out, l.nonkin)
	return out
}

// IsNonKin reports whether a lexeme is a non-kin comparison noun.
func (l *Lexicon) IsNonKin(s string) bool { return l.nonkinSet[s] }

// IsBenchmark reports whether a lexeme is a function-word benchmark.
func (l *Lexicon) IsBenchmark(s string) bool { return l.benchSet[s] }

// Benchmark returns the stable function-word benchmarks in report order.
func (l *Lexicon) Benchmark() []string {
	out := make([]string, len(l.bench))
	copy(out, l.bench)
	return out
}

// Tracked returns every lexeme the frequency profile reports on:
// kinship terms, then non-kin nouns, then benchmarks, deduplicated in
// that order.
func (l *Lexicon) Tracked() []string {
	seen := make(map[string]bool, len(l.terms)+len(l.nonkin)+len(l.bench))
	out := make([]string, 0, len(l.terms)+len(l.nonkin)+len(l.bench))
	for _, group := range [][]string{l.terms, l.nonkin, l.bench} {
		for _, s := range group {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// IsTracked reports whether a lexeme belongs to any tracked vocabulary.
func (l *Lexicon) IsTracked(s string) bool { return l.known(s) }

// Agentive resolves a derivational %mor base to its agentive noun
// (teach -> teacher), when registered.
func (l *Lexicon) Agentive(base string) (string, bool) {
	to, ok := l.agentives[base]
	return to, ok
}

// Clusters returns the family clusters in report order.
func (l *Lexicon) Clusters() []Cluster {
	out := make([]Cluster, len(l.clusters))
	copy(out, l.clusters)
	return out
}

// ClusterCategory returns the category of a cluster, taken from its
// first member.
func (l *Lexicon) ClusterCategory(c Cluster) Category {
	if len(c.Members) == 0 {
		return Extended
	}
	return l.Category(strings.ToLower(c.Members[0]))
}

// Variant applies dialectal folding (neighbour -> neighbor), returning
// the input unchanged when no mapping exists.
func (l *Lexicon) Variant(s string) string {
	if to, ok := l.variants[s]; ok {
		return to
	}
	return s
}

// known is the vocabulary normalization may fold into: kinship terms
// plus the comparison lexemes tracked by the frequency profile.
func (l *Lexicon) known(s string) bool {
	return l.termSet[s] || l.nonkinSet[s] || l.benchSet[s]
}

// Normalize maps a raw surface token to its normalized lexeme:
// lowercase, possessive stripping, conservative plural folding, and
// dialectal variants as the final step. Suffixes are stripped only when
// the base form is known vocabulary, and -es/-s only when the base has
// at least three characters, so "ma" never degrades to "m" and ordinary
// plurals pass through untouched.
func (l *Lexicon) Normalize(tok string) string {
	t := strings.ToLower(tok)
	switch {
	case strings.HasSuffix(t, "'s"):
		base := strings.TrimSuffix(t, "'s")
		if l.known(base) || l.components[base] {
			t = base
		}
	case strings.HasSuffix(t, "’s"):
		base := strings.TrimSuffix(t, "’s")
		if l.known(base) || l.components[base] {
			t = base
		}
	case strings.HasSuffix(t, "s'"):
		base := strings.TrimSuffix(t, "'")
		if l.known(base) || l.components[base] {
			t = base
		}
	}
	if strings.HasSuffix(t, "ies") {
		base := strings.TrimSuffix(t, "ies") + "y"
		if l.known(base) {
			return l.Variant(base)
		}
	}
	if strings.HasSuffix(t, "es") {
		base := strings.TrimSuffix(t, "es")
		if l.known(base) && len(base) >= 3 {
			return l.Variant(base)
		}
	}
	if strings.HasSuffix(t, "s") {
		base := strings.TrimSuffix(t, "s")
		if l.known(base) && len(base) >= 3 {
			return l.Variant(base)
		}
	}
	return l.Variant(t)
}

// Stats summarizes the compiled vocabulary, mostly for logging.
func (l *Lexicon) Stats() Stats {
	return Stats{
		Terms:       len(l.terms),
		Compounds:   len(l.compounds),
		Determiners: len(l.determiners),
		Discourse:   len(l.discourse),
		NonKin:      len(l.nonkin),
		Benchmark:   len(l.bench),
		Clusters:    len(l.clusters),
	}
}

// Stats holds vocabulary sizes.
type Stats struct {
	Terms       int
	Compounds   int
	Determiners int
	Discourse   int
	NonKin      int
	Benchmark   int
	Clusters    int
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[strings.ToLower(s)] = true
	}
	return set
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return out
}
