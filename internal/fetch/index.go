package fetch

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Links extracts every href from an index page, resolved against
// baseURL, deduplicated, in sorted order. Fragments and non-http
// schemes are dropped.
func Links(baseURL string, body []byte) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	seen := make(map[string]bool)
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := url.Parse(strings.TrimSpace(attr.Val))
				if err != nil {
					continue
				}
				resolved := base.ResolveReference(ref)
				if resolved.Scheme != "http" && resolved.Scheme != "https" {
					continue
				}
				resolved.Fragment = ""
				link := resolved.String()
				if !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	sort.Strings(links)
	return links, nil
}

// ArchiveLinks filters links down to corpus archives: same host as the
// index, ".zip" suffix.
func ArchiveLinks(indexURL string, links []string) []string {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil
	}
	var out []string
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || u.Host != base.Host {
			continue
		}
		if strings.HasSuffix(strings.ToLower(u.Path), ".zip") {
			out = append(out, link)
		}
	}
	return out
}

// ArchiveName returns the file name an archive link downloads to.
func ArchiveName(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return path.Base(link)
	}
	return path.Base(u.Path)
}
