package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
)

// indexTTL bounds how long a fetched index page is reused.
const indexTTL = 15 * time.Minute

// Archive outcomes.
const (
	StatusDownloaded = "downloaded"
	StatusSkipped    = "skipped"
	StatusDenied     = "denied"
	StatusFailed     = "failed"
)

// FileReport is the outcome for one archive link.
type FileReport struct {
	Name   string
	URL    string
	Status string
	Bytes  int64
	Err    string
}

// MirrorReport summarizes one mirror pass.
type MirrorReport struct {
	Discovered int
	Downloaded int
	Skipped    int
	Denied     int
	Failed     int
	Files      []FileReport
}

// Mirror downloads every archive an index page links to, politely and
// at most once.
type Mirror struct {
	fetcher *Fetcher
	robots  *Robots
	limiter *Limiter
	pages   *gocache.Cache
}

// NewMirror assembles a mirror from its parts. Nil parts take default
// construction.
func NewMirror(f *Fetcher, r *Robots, l *Limiter) *Mirror {
	if f == nil {
		f = NewFetcher(0, "", 0)
	}
	if r == nil {
		r = NewRobots("", 0)
	}
	if l == nil {
		l = NewLimiter(0, 0)
	}
	return &Mirror{
		fetcher: f,
		robots:  r,
		limiter: l,
		pages:   gocache.New(indexTTL, 2*indexTTL),
	}
}

// Run discovers archives on the index page and downloads the missing
// ones into destDir. Per-archive failures are recorded and the pass
// continues; only the index fetch, a robots denial of the index, or
// context cancellation abort it.
func (m *Mirror) Run(ctx context.Context, indexURL, destDir string) (*MirrorReport, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", destDir, err)
	}

	body, err := m.indexPage(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	links, err := Links(indexURL, body)
	if err != nil {
		return nil, err
	}
	archives := ArchiveLinks(indexURL, links)

	report := &MirrorReport{Discovered: len(archives)}
	for _, link := range archives {
		fr := m.fetchArchive(ctx, link, destDir)
		report.Files = append(report.Files, fr)
		switch fr.Status {
		case StatusDownloaded:
			report.Downloaded++
		case StatusSkipped:
			report.Skipped++
		case StatusDenied:
			report.Denied++
		default:
			report.Failed++
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}
	return report, nil
}

func (m *Mirror) indexPage(ctx context.Context, indexURL string) ([]byte, error) {
	if v, ok := m.pages.Get(indexURL); ok {
		return v.([]byte), nil
	}

	allowed, delay, err := m.robots.CanFetch(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("index %s disallowed by robots.txt: %w", indexURL, internalerr.ErrInvalidInput)
	}
	if err := m.limiter.WaitWithDelay(ctx, indexURL, delay); err != nil {
		return nil, err
	}

	res, err := m.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", indexURL, err)
	}
	m.pages.SetDefault(indexURL, res.Body)
	return res.Body, nil
}

func (m *Mirror) fetchArchive(ctx context.Context, link, destDir string) FileReport {
	fr := FileReport{Name: ArchiveName(link), URL: link}
	dest := filepath.Join(destDir, fr.Name)

	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		fr.Status = StatusSkipped
		fr.Bytes = info.Size()
		return fr
	}

	allowed, delay, err := m.robots.CanFetch(ctx, link)
	if err != nil {
		fr.Status = StatusFailed
		fr.Err = err.Error()
		return fr
	}
	if !allowed {
		fr.Status = StatusDenied
		return fr
	}
	if err := m.limiter.WaitWithDelay(ctx, link, delay); err != nil {
		fr.Status = StatusFailed
		fr.Err = err.Error()
		return fr
	}

	n, err := m.download(ctx, link, dest)
	if err != nil {
		fr.Status = StatusFailed
		fr.Err = err.Error()
		return fr
	}
	fr.Status = StatusDownloaded
	fr.Bytes = n
	return fr
}

// download writes through a .part file so an interrupted transfer
// never masquerades as a finished archive.
func (m *Mirror) download(ctx context.Context, link, dest string) (int64, error) {
	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return 0, err
	}

	n, err := m.fetcher.Download(ctx, link, f)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(part)
		return n, err
	}
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return n, err
	}
	return n, nil
}
