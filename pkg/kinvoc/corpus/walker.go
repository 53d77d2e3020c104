// Package corpus walks transcript collections and aggregates
// classification results into corpus-level counts, rates, frequency
// profiles, and diagnostics.
package corpus

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
)

// File is one transcript delivered by Walk.
type File struct {
	Path string // full path on disk
	Rel  string // path relative to the walk root
	Text string // decoded content, invalid bytes dropped
}

// Utterances parses the file's speaker lines.
func (f File) Utterances() []chat.Utterance {
	return chat.Parse(f.Text)
}

// WalkStats counts what a corpus pass saw. Skipped files and malformed
// lines are tallied rather than failing the run: one corrupt transcript
// must never abort a corpus-level analysis.
type WalkStats struct {
	Files          int // transcripts read successfully
	SkippedFiles   int // unreadable transcripts
	Utterances     int // speaker lines parsed (WalkUtterances only)
	MalformedLines int // speaker lines missing their delimiter (WalkUtterances only)
}

// Walk visits every ".cha" transcript under root in sorted path order,
// which keeps runs reproducible regardless of directory enumeration
// order. Unreadable files are counted and skipped. An error from visit
// aborts the walk and is returned as-is.
func Walk(root string, visit func(File) error) (WalkStats, error) {
	var stats WalkStats

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			stats.SkippedFiles++
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".cha") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			stats.SkippedFiles++
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		stats.Files++
		f := File{Path: path, Rel: rel, Text: strings.ToValidUTF8(string(data), "")}
		if err := visit(f); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// WalkUtterances walks the corpus one utterance at a time, tracking
// utterance and malformed-line totals on top of the file counts.
func WalkUtterances(root string, fn func(File, chat.Utterance) error) (WalkStats, error) {
	var utterances, malformed int
	stats, err := Walk(root, func(f File) error {
		utts := f.Utterances()
		utterances += len(utts)
		malformed += countMalformed(f.Text)
		for _, u := range utts {
			if err := fn(f, u); err != nil {
				return err
			}
		}
		return nil
	})
	stats.Utterances = utterances
	stats.MalformedLines = malformed
	return stats, err
}

// countMalformed counts speaker lines that lack the delimiter colon
// and therefore carry no recoverable utterance.
func countMalformed(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "*") && !strings.Contains(line, ":") {
			n++
		}
	}
	return n
}
