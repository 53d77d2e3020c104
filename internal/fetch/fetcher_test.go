package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("User-Agent = %q, want test-agent", got)
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>index</body></html>")
	}))
	defer server.Close()

	f := NewFetcher(0, "test-agent", 0)
	res, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(res.Body) != "<html><body>index</body></html>" {
		t.Errorf("body = %q", res.Body)
	}
	if res.StatusCode != 200 || res.ContentType != "text/html" {
		t.Errorf("status %d content-type %q", res.StatusCode, res.ContentType)
	}
	if res.FinalURL != server.URL {
		t.Errorf("FinalURL = %q, want %q", res.FinalURL, server.URL)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(0, "", 0)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404")
	} else if !strings.Contains(err.Error(), "unexpected status") {
		t.Errorf("error = %v", err)
	}
}

func TestFetchTruncatesAtCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 100))
	}))
	defer server.Close()

	f := NewFetcher(0, "", 10)
	res, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(res.Body) != 10 {
		t.Errorf("body length = %d, want 10", len(res.Body))
	}
}

func TestDownloadStreams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "archive-bytes")
	}))
	defer server.Close()

	f := NewFetcher(0, "", 0)
	var buf bytes.Buffer
	n, err := f.Download(context.Background(), server.URL, &buf)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if n != int64(len("archive-bytes")) || buf.String() != "archive-bytes" {
		t.Errorf("wrote %d bytes %q", n, buf.String())
	}
}

func TestDownloadRejectsOversize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 100))
	}))
	defer server.Close()

	f := NewFetcher(0, "", 10)
	var buf bytes.Buffer
	if _, err := f.Download(context.Background(), server.URL, &buf); err == nil {
		t.Fatal("expected byte cap error")
	} else if !strings.Contains(err.Error(), "byte cap") {
		t.Errorf("error = %v", err)
	}
}

func TestFetchRedirectCap(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	f := NewFetcher(0, "", 0)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected redirect loop to fail")
	} else if !strings.Contains(err.Error(), "redirects") {
		t.Errorf("error = %v", err)
	}
}
